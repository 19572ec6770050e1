package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OPGLOL/opgl-matchboard-service/internal/models"
)

func sampleBoard() *models.MatchBoard {
	return &models.MatchBoard{
		TeamA: models.Roster{
			{RiotID: "Foo#NA1", Position: "TOP", Kills: 3, Deaths: 1, Assists: 4,
				RecentForm: []*models.ResultTuple{{Win: true}, nil, {Win: false}}},
		},
		TeamB: models.Roster{
			{RiotID: "Bar#EUW"},
		},
		TeamASummary: models.TeamSummary{Kills: 3, Deaths: 1, Assists: 4, TotalGold: 5000, Win: true},
	}
}

func TestFormatForm(t *testing.T) {
	assert.Equal(t, "W?L", formatForm([]*models.ResultTuple{{Win: true}, nil, {}}))
	assert.Equal(t, "", formatForm(nil))
}

func TestSlotRiotID(t *testing.T) {
	teams := boardTeams(sampleBoard())

	riotID, err := slotRiotID(teams, 1)
	require.NoError(t, err)
	assert.Equal(t, "Foo#NA1", riotID)

	riotID, err = slotRiotID(teams, 6)
	require.NoError(t, err)
	assert.Equal(t, "Bar#EUW", riotID)

	_, err = slotRiotID(teams, 2)
	assert.Error(t, err)

	_, err = slotRiotID(teams, 11)
	assert.Error(t, err)

	_, err = slotRiotID(teams, 0)
	assert.Error(t, err)
}

func TestRenderTeams(t *testing.T) {
	var output bytes.Buffer

	renderTeams(&output, boardTeams(sampleBoard()))

	text := output.String()
	assert.Contains(t, text, "Team A  WIN  3/1/4  5000 gold")
	assert.Contains(t, text, "Team B  LOSS")
	assert.Contains(t, text, "Foo#NA1")
	assert.Contains(t, text, "W?L")
	assert.Contains(t, text, "   2. -")
}

func TestDetailTeams(t *testing.T) {
	detail := &models.MatchDetail{
		Teams: []models.TeamView{
			{TeamID: 200, Players: []*models.PlayerCard{{RiotID: "A"}}},
			{TeamID: 100, Players: []*models.PlayerCard{{RiotID: "B"}}},
		},
	}

	teams := detailTeams(detail)

	require.Len(t, teams, 2)
	assert.Equal(t, "Team 200", teams[0].label)

	riotID, err := slotRiotID(teams, 2)
	require.NoError(t, err)
	assert.Equal(t, "B", riotID)
}
