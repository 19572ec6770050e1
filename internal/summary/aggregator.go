package summary

import (
	"github.com/OPGLOL/opgl-matchboard-service/internal/models"
)

// UnknownLabel is returned when neither the mode nor the queue is known
const UnknownLabel = "unknown"

// queueLabels maps queue ids to match-type labels
var queueLabels = map[int]string{
	420:  "ranked solo",
	430:  "normal",
	440:  "flex",
	450:  "ARAM",
	490:  "quickplay",
	700:  "clash",
	830:  "bot games",
	840:  "bot games",
	850:  "bot games",
	1090: "TFT",
	1400: "ultimate spellbook",
	1700: "arena",
	2000: "tutorial 1",
	2010: "tutorial 2",
	2020: "tutorial 3",
}

// modeOverrides take precedence over the queue table
var modeOverrides = map[string]string{
	"CHERRY":    "arena",
	"SWIFTPLAY": "quickplay",
	"QUICKPLAY": "quickplay",
}

// QueueLabel maps a queue id and game mode to a display label
func QueueLabel(queueID int, gameMode string) string {
	if label, ok := modeOverrides[gameMode]; ok {
		return label
	}
	if label, ok := queueLabels[queueID]; ok {
		return label
	}
	if gameMode != "" {
		return gameMode
	}
	return UnknownLabel
}

// Summarize totals the non-empty slots of a roster.
// The team counts as a win as soon as one member recorded a win.
func Summarize(roster models.Roster) models.TeamSummary {
	return SummarizeMembers(roster[:])
}

// SummarizeMembers totals any list of cards, skipping nil entries
func SummarizeMembers(players []*models.PlayerCard) models.TeamSummary {
	var teamSummary models.TeamSummary
	for _, player := range players {
		if player == nil {
			continue
		}
		teamSummary.Kills += player.Kills
		teamSummary.Deaths += player.Deaths
		teamSummary.Assists += player.Assists
		teamSummary.TotalGold += player.GoldEarned
		teamSummary.Win = teamSummary.Win || player.Win
	}
	return teamSummary
}

// KDARatio returns (kills+assists)/deaths. A deathless game reports
// kills+assists and perfect set to true.
func KDARatio(kills int, deaths int, assists int) (ratio float64, perfect bool) {
	if deaths <= 0 {
		return float64(kills + assists), true
	}
	return float64(kills+assists) / float64(deaths), false
}
