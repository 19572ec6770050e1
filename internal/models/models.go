package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/OPGLOL/opgl-matchboard-service/internal/imageref"
)

// LooseInt decodes JSON numbers, numeric strings and null into an int.
// Values it cannot interpret decode to 0.
type LooseInt int

// UnmarshalJSON implements json.Unmarshaler
func (value *LooseInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*value = 0
		return nil
	}

	text := string(trimmed)
	if trimmed[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(trimmed, &unquoted); err != nil {
			*value = 0
			return nil
		}
		text = strings.TrimSpace(unquoted)
	}

	if parsed, err := strconv.Atoi(text); err == nil {
		*value = LooseInt(parsed)
		return nil
	}
	if parsed, err := strconv.ParseFloat(text, 64); err == nil {
		*value = LooseInt(int(parsed))
		return nil
	}

	*value = 0
	return nil
}

// Int returns the plain int value
func (value LooseInt) Int() int {
	return int(value)
}

// PlayerRef identifies a player independently of any single match.
// Every field is optional; an empty string means absent.
type PlayerRef struct {
	PUUID    string `json:"puuid,omitempty"`
	GameName string `json:"gameName,omitempty"`
	TagLine  string `json:"tagLine,omitempty"`
}

// IsZero reports whether no identifying field is present
func (ref PlayerRef) IsZero() bool {
	return ref.PUUID == "" && ref.GameName == "" && ref.TagLine == ""
}

// RiotID joins the non-empty parts of a Riot ID with '#'
func RiotID(gameName string, tagLine string) string {
	parts := make([]string, 0, 2)
	if gameName != "" {
		parts = append(parts, gameName)
	}
	if tagLine != "" {
		parts = append(parts, tagLine)
	}
	return strings.Join(parts, "#")
}

// MatchRecord is one completed game as returned by the match-data API
type MatchRecord struct {
	GameID       int64                 `json:"gameId"`
	GameCreation int64                 `json:"gameCreation"`
	GameDuration int                   `json:"gameDuration"`
	QueueID      int                   `json:"queueId"`
	GameMode     string                `json:"gameMode"`
	Identities   []ParticipantIdentity `json:"participantIdentities"`
	Participants []Participant         `json:"participants"`
}

// ParticipantIdentity links a participant id to the player behind it
type ParticipantIdentity struct {
	ParticipantID int            `json:"participantId"`
	Player        IdentityPlayer `json:"player"`
}

// IdentityPlayer holds the account fields of a participant identity.
// SummonerName is the legacy alias of GameName.
type IdentityPlayer struct {
	PUUID        string   `json:"puuid"`
	GameName     string   `json:"gameName"`
	SummonerName string   `json:"summonerName"`
	TagLine      string   `json:"tagLine"`
	ProfileIcon  LooseInt `json:"profileIcon"`
}

// Participant is one player's performance inside a MatchRecord
type Participant struct {
	ParticipantID   int              `json:"participantId"`
	TeamID          int              `json:"teamId"`
	ChampionID      int              `json:"championId"`
	Position        string           `json:"position,omitempty"`
	Spell1ID        int              `json:"spell1Id"`
	Spell2ID        int              `json:"spell2Id"`
	ChampionPicture imageref.Payload `json:"championPicture"`
	Spell1Picture   imageref.Payload `json:"spell1Picture"`
	Spell2Picture   imageref.Payload `json:"spell2Picture"`
	Stats           ParticipantStats `json:"stats"`
}

// ParticipantStats are end-of-game stats. Missing fields decode to zero values.
type ParticipantStats struct {
	Kills                       LooseInt         `json:"kills"`
	Deaths                      LooseInt         `json:"deaths"`
	Assists                     LooseInt         `json:"assists"`
	Win                         bool             `json:"win"`
	GoldEarned                  LooseInt         `json:"goldEarned"`
	TotalDamageDealtToChampions LooseInt         `json:"totalDamageDealtToChampions"`
	ChampLevel                  LooseInt         `json:"champLevel"`
	Item0                       LooseInt         `json:"item0"`
	Item1                       LooseInt         `json:"item1"`
	Item2                       LooseInt         `json:"item2"`
	Item3                       LooseInt         `json:"item3"`
	Item4                       LooseInt         `json:"item4"`
	Item5                       LooseInt         `json:"item5"`
	Item6                       LooseInt         `json:"item6"`
	Item0Picture                imageref.Payload `json:"item0Picture"`
	Item1Picture                imageref.Payload `json:"item1Picture"`
	Item2Picture                imageref.Payload `json:"item2Picture"`
	Item3Picture                imageref.Payload `json:"item3Picture"`
	Item4Picture                imageref.Payload `json:"item4Picture"`
	Item5Picture                imageref.Payload `json:"item5Picture"`
	Item6Picture                imageref.Payload `json:"item6Picture"`
}

// Items returns item ids in slot order 0..6
func (stats ParticipantStats) Items() [7]int {
	return [7]int{
		stats.Item0.Int(), stats.Item1.Int(), stats.Item2.Int(), stats.Item3.Int(),
		stats.Item4.Int(), stats.Item5.Int(), stats.Item6.Int(),
	}
}

// ItemPictures returns item art payloads in slot order 0..6
func (stats ParticipantStats) ItemPictures() [7]imageref.Payload {
	return [7]imageref.Payload{
		stats.Item0Picture, stats.Item1Picture, stats.Item2Picture, stats.Item3Picture,
		stats.Item4Picture, stats.Item5Picture, stats.Item6Picture,
	}
}

// GamePlayer is one player of the game currently in progress, together with
// the raw recent games the match-data API attached to it.
type GamePlayer struct {
	PUUID           string           `json:"puuid"`
	GameName        string           `json:"gameName"`
	TagLine         string           `json:"tagLine"`
	Position        string           `json:"position"`
	TeamID          int              `json:"teamId"`
	ChampionID      int              `json:"championId"`
	Spell1ID        int              `json:"spell1Id"`
	Spell2ID        int              `json:"spell2Id"`
	ChampionPicture imageref.Payload `json:"championPicture"`
	Spell1Picture   imageref.Payload `json:"spell1Picture"`
	Spell2Picture   imageref.Payload `json:"spell2Picture"`
	Kills           LooseInt         `json:"kills"`
	Deaths          LooseInt         `json:"deaths"`
	Assists         LooseInt         `json:"assists"`
	GoldEarned      LooseInt         `json:"goldEarned"`
	Win             bool             `json:"win"`
	Games           []MatchRecord    `json:"game"`
}

// Ref returns the identifying fields of the player
func (player *GamePlayer) Ref() PlayerRef {
	return PlayerRef{PUUID: player.PUUID, GameName: player.GameName, TagLine: player.TagLine}
}

// ResultTuple is a participant's result in one game
type ResultTuple struct {
	Kills      int  `json:"kills"`
	Deaths     int  `json:"deaths"`
	Assists    int  `json:"assists"`
	Win        bool `json:"win"`
	ChampionID int  `json:"championId"`
}

// SpellView is a summoner spell on a player card
type SpellView struct {
	ID      int                  `json:"id"`
	Picture imageref.ResourceRef `json:"picture"`
}

// ItemView is an item on a player card
type ItemView struct {
	ID      int                  `json:"id"`
	Picture imageref.ResourceRef `json:"picture"`
}

// PlayerCard is the canonical per-player view handed to the presentation layer
type PlayerCard struct {
	ParticipantID int                  `json:"participantId,omitempty"`
	TeamID        int                  `json:"teamId,omitempty"`
	PUUID         string               `json:"puuid,omitempty"`
	GameName      string               `json:"gameName"`
	TagLine       string               `json:"tagLine"`
	RiotID        string               `json:"riotId"`
	Position      string               `json:"position,omitempty"`
	ChampionID    int                  `json:"championId"`
	ChampionLevel int                  `json:"championLevel,omitempty"`
	Champion      imageref.ResourceRef `json:"champion"`
	Spells        []SpellView          `json:"spells"`
	Items         []ItemView           `json:"items,omitempty"`
	Kills         int                  `json:"kills"`
	Deaths        int                  `json:"deaths"`
	Assists       int                  `json:"assists"`
	KDARatio      float64              `json:"kdaRatio"`
	PerfectKDA    bool                 `json:"perfectKda"`
	GoldEarned    int                  `json:"goldEarned"`
	DamageDealt   int                  `json:"damageDealt,omitempty"`
	Win           bool                 `json:"win"`
	RecentForm    []*ResultTuple       `json:"recentForm,omitempty"`
}

// TeamSize is the fixed number of slots in a roster
const TeamSize = 5

// Roster is one team as exactly TeamSize slots; nil slots are empty placeholders
type Roster [TeamSize]*PlayerCard

// TeamSummary aggregates a roster
type TeamSummary struct {
	Kills     int  `json:"kills"`
	Deaths    int  `json:"deaths"`
	Assists   int  `json:"assists"`
	TotalGold int  `json:"totalGold"`
	Win       bool `json:"win"`
}

// MatchBoard is the two-team view of the game in progress
type MatchBoard struct {
	TeamA        Roster      `json:"teamA"`
	TeamB        Roster      `json:"teamB"`
	TeamASummary TeamSummary `json:"teamASummary"`
	TeamBSummary TeamSummary `json:"teamBSummary"`
}

// TeamView is one team inside a match detail. Players is a padded 5-slot
// roster for 5v5 games and the unpadded member list otherwise.
type TeamView struct {
	TeamID  int           `json:"teamId"`
	Players []*PlayerCard `json:"players"`
	Summary TeamSummary   `json:"summary"`
}

// MatchDetail is the post-game view of one match
type MatchDetail struct {
	GameID       int64      `json:"gameId"`
	GameMode     string     `json:"gameMode"`
	GameType     string     `json:"gameType"`
	QueueID      int        `json:"queueId"`
	GameDuration int        `json:"gameDuration"`
	GameTime     string     `json:"gameTime,omitempty"`
	IsFiveVFive  bool       `json:"isFiveVFive"`
	Teams        []TeamView `json:"teams"`
}

// HistoryEntry is one line of a player's match history list
type HistoryEntry struct {
	GameID       int64                `json:"gameId"`
	ChampionID   int                  `json:"championId"`
	Champion     imageref.ResourceRef `json:"champion"`
	GameMode     string               `json:"gameMode"`
	GameType     string               `json:"gameType"`
	Win          bool                 `json:"win"`
	GameTime     string               `json:"gameTime,omitempty"`
	ProfileIcon  int                  `json:"profileIcon"`
	SummonerName string               `json:"summonerName"`
	TagLine      string               `json:"tagLine"`
	Kills        int                  `json:"kills"`
	Deaths       int                  `json:"deaths"`
	Assists      int                  `json:"assists"`
}
