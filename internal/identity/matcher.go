package identity

import (
	"github.com/OPGLOL/opgl-matchboard-service/internal/models"
)

// step tries one way of resolving a player inside a match
type step func(match *models.MatchRecord, ref models.PlayerRef) (int, bool)

// Precedence is fixed: the first step that resolves wins.
var steps = []step{
	byPUUID,
	byRiotID,
	firstParticipant,
}

// Locate returns the participant id of ref inside match.
// When neither the puuid nor the Riot ID resolves, the first participant is
// used, which can attribute another player's game to ref.
func Locate(match *models.MatchRecord, ref models.PlayerRef) (int, bool) {
	if match == nil {
		return 0, false
	}

	for _, try := range steps {
		if participantID, found := try(match, ref); found {
			return participantID, true
		}
	}

	return 0, false
}

func byPUUID(match *models.MatchRecord, ref models.PlayerRef) (int, bool) {
	if ref.PUUID == "" {
		return 0, false
	}

	for _, identity := range match.Identities {
		if identity.Player.PUUID == ref.PUUID {
			return identity.ParticipantID, true
		}
	}
	return 0, false
}

// byRiotID needs a game name to compare against; the tag line only narrows
func byRiotID(match *models.MatchRecord, ref models.PlayerRef) (int, bool) {
	if ref.GameName == "" {
		return 0, false
	}

	for _, identity := range match.Identities {
		player := identity.Player
		if player.GameName != ref.GameName && player.SummonerName != ref.GameName {
			continue
		}
		if ref.TagLine != "" && player.TagLine != ref.TagLine {
			continue
		}
		return identity.ParticipantID, true
	}
	return 0, false
}

func firstParticipant(match *models.MatchRecord, _ models.PlayerRef) (int, bool) {
	if len(match.Participants) == 0 {
		return 0, false
	}
	return match.Participants[0].ParticipantID, true
}

// ExtractResult returns the result of the participant with the given id.
// Missing stats read as zero and a missing win flag as a loss.
func ExtractResult(match *models.MatchRecord, participantID int) (*models.ResultTuple, bool) {
	participant, found := FindParticipant(match, participantID)
	if !found {
		return nil, false
	}

	return &models.ResultTuple{
		Kills:      participant.Stats.Kills.Int(),
		Deaths:     participant.Stats.Deaths.Int(),
		Assists:    participant.Stats.Assists.Int(),
		Win:        participant.Stats.Win,
		ChampionID: participant.ChampionID,
	}, true
}

// ResultFor locates ref inside match and extracts its result in one call
func ResultFor(match *models.MatchRecord, ref models.PlayerRef) (*models.ResultTuple, bool) {
	participantID, found := Locate(match, ref)
	if !found {
		return nil, false
	}
	return ExtractResult(match, participantID)
}

// FindParticipant returns the participant with the given id
func FindParticipant(match *models.MatchRecord, participantID int) (*models.Participant, bool) {
	if match == nil {
		return nil, false
	}
	for index := range match.Participants {
		if match.Participants[index].ParticipantID == participantID {
			return &match.Participants[index], true
		}
	}
	return nil, false
}

// FindIdentity returns the identity with the given participant id
func FindIdentity(match *models.MatchRecord, participantID int) (*models.ParticipantIdentity, bool) {
	if match == nil {
		return nil, false
	}
	for index := range match.Identities {
		if match.Identities[index].ParticipantID == participantID {
			return &match.Identities[index], true
		}
	}
	return nil, false
}

// RecentForm extracts ref's result from each of the first limit games.
// Games where ref cannot be resolved keep their position as a nil entry.
func RecentForm(games []models.MatchRecord, ref models.PlayerRef, limit int) []*models.ResultTuple {
	if limit > len(games) {
		limit = len(games)
	}
	if limit <= 0 {
		return []*models.ResultTuple{}
	}

	form := make([]*models.ResultTuple, limit)
	for index := 0; index < limit; index++ {
		if result, found := ResultFor(&games[index], ref); found {
			form[index] = result
		}
	}
	return form
}
