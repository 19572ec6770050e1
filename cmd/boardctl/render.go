package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/OPGLOL/opgl-matchboard-service/internal/models"
)

// teamBlock is one printed team: its label, slots and totals
type teamBlock struct {
	label   string
	players []*models.PlayerCard
	summary models.TeamSummary
}

func boardTeams(board *models.MatchBoard) []teamBlock {
	return []teamBlock{
		{label: "Team A", players: board.TeamA[:], summary: board.TeamASummary},
		{label: "Team B", players: board.TeamB[:], summary: board.TeamBSummary},
	}
}

func detailTeams(detail *models.MatchDetail) []teamBlock {
	teams := make([]teamBlock, 0, len(detail.Teams))
	for _, team := range detail.Teams {
		teams = append(teams, teamBlock{
			label:   fmt.Sprintf("Team %d", team.TeamID),
			players: team.Players,
			summary: team.Summary,
		})
	}
	return teams
}

func renderTeams(writer io.Writer, teams []teamBlock) {
	slot := 0
	for _, team := range teams {
		result := "LOSS"
		if team.summary.Win {
			result = "WIN"
		}
		fmt.Fprintf(writer, "%s  %s  %d/%d/%d  %d gold\n",
			team.label, result, team.summary.Kills, team.summary.Deaths, team.summary.Assists, team.summary.TotalGold)

		for _, player := range team.players {
			slot++
			if player == nil {
				fmt.Fprintf(writer, "  %2d. -\n", slot)
				continue
			}
			fmt.Fprintf(writer, "  %2d. %-24s %-8s %d/%d/%d  %s\n",
				slot, player.RiotID, player.Position, player.Kills, player.Deaths, player.Assists, formatForm(player.RecentForm))
		}
		fmt.Fprintln(writer)
	}
}

// formatForm renders recent results as W/L letters, '?' for unreadable games
func formatForm(form []*models.ResultTuple) string {
	var builder strings.Builder
	for _, result := range form {
		switch {
		case result == nil:
			builder.WriteByte('?')
		case result.Win:
			builder.WriteByte('W')
		default:
			builder.WriteByte('L')
		}
	}
	return builder.String()
}

// slotRiotID returns the Riot ID shown at the 1-based slot
func slotRiotID(teams []teamBlock, slot int) (string, error) {
	if slot < 1 {
		return "", fmt.Errorf("slot must be at least 1")
	}

	index := slot
	for _, team := range teams {
		if index <= len(team.players) {
			player := team.players[index-1]
			if player == nil || player.RiotID == "" {
				return "", fmt.Errorf("slot %d is empty", slot)
			}
			return player.RiotID, nil
		}
		index -= len(team.players)
	}

	return "", fmt.Errorf("slot %d is out of range", slot)
}
