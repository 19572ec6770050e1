package lcu

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/OPGLOL/opgl-matchboard-service/internal/models"
	"github.com/OPGLOL/opgl-matchboard-service/internal/proxy"
)

// Team ids used for the two sides of a session
const (
	teamOneID = 100
	teamTwoID = 200
)

type gameSession struct {
	GameData struct {
		GameID                   int64               `json:"gameId"`
		PlayerChampionSelections []championSelection `json:"playerChampionSelections"`
		TeamOne                  []sessionPlayer     `json:"teamOne"`
		TeamTwo                  []sessionPlayer     `json:"teamTwo"`
	} `json:"gameData"`
}

type sessionPlayer struct {
	PUUID            string `json:"puuid"`
	ChampionID       int    `json:"championId"`
	SelectedPosition string `json:"selectedPosition"`
	SummonerName     string `json:"summonerName"`
}

type championSelection struct {
	PUUID      string `json:"puuid"`
	ChampionID int    `json:"championId"`
	Spell1ID   int    `json:"spell1Id"`
	Spell2ID   int    `json:"spell2Id"`
}

type summoner struct {
	PUUID         string `json:"puuid"`
	GameName      string `json:"gameName"`
	TagLine       string `json:"tagLine"`
	DisplayName   string `json:"displayName"`
	ProfileIconID int    `json:"profileIconId"`
}

type matchHistoryResponse struct {
	Games struct {
		Games []models.MatchRecord `json:"games"`
	} `json:"games"`
}

// Source serves match data straight from the League client
type Source struct {
	client       *Client
	recentGames  int
	historyGames int
}

var _ proxy.MatchSource = (*Source)(nil)

// NewSource creates a Source. recentGames bounds the games attached to each
// live player and historyGames the length of the match history.
func NewSource(client *Client, recentGames int, historyGames int) *Source {
	return &Source{client: client, recentGames: recentGames, historyGames: historyGames}
}

// CurrentGame returns both teams of the running session with Riot IDs and
// recent games attached. Outside of a game the list is empty.
func (source *Source) CurrentGame(ctx context.Context) ([]models.GamePlayer, error) {
	var session gameSession
	err := source.client.getJSON(ctx, "/lol-gameflow/v1/session", &session)
	if errors.Is(err, errNotFound) {
		return []models.GamePlayer{}, nil
	}
	if err != nil {
		return nil, err
	}

	spells := make(map[string]championSelection, len(session.GameData.PlayerChampionSelections))
	for _, selection := range session.GameData.PlayerChampionSelections {
		spells[selection.PUUID] = selection
	}

	players := make([]models.GamePlayer, 0, len(session.GameData.TeamOne)+len(session.GameData.TeamTwo))
	for _, side := range []struct {
		teamID  int
		members []sessionPlayer
	}{
		{teamOneID, session.GameData.TeamOne},
		{teamTwoID, session.GameData.TeamTwo},
	} {
		for _, member := range side.members {
			players = append(players, source.gamePlayer(ctx, side.teamID, member, spells[member.PUUID]))
		}
	}

	return players, nil
}

func (source *Source) gamePlayer(ctx context.Context, teamID int, member sessionPlayer, selection championSelection) models.GamePlayer {
	player := models.GamePlayer{
		PUUID:      member.PUUID,
		GameName:   member.SummonerName,
		Position:   member.SelectedPosition,
		TeamID:     teamID,
		ChampionID: member.ChampionID,
		Spell1ID:   selection.Spell1ID,
		Spell2ID:   selection.Spell2ID,
	}

	// bots carry no puuid
	if member.PUUID == "" {
		return player
	}

	var profile summoner
	if err := source.client.getJSON(ctx, "/lol-summoner/v2/summoners/puuid/"+member.PUUID, &profile); err != nil {
		log.Debug().Err(err).Str("puuid", member.PUUID).Msg("Failed to resolve summoner")
	} else if profile.GameName != "" {
		player.GameName = profile.GameName
		player.TagLine = profile.TagLine
	}

	games, err := source.history(ctx, member.PUUID, source.recentGames)
	if err != nil {
		log.Debug().Err(err).Str("puuid", member.PUUID).Msg("Failed to load recent games")
	}
	player.Games = games

	return player
}

// MatchHistory returns the recent games of the logged in player
func (source *Source) MatchHistory(ctx context.Context) ([]models.MatchRecord, error) {
	return source.history(ctx, "current-summoner", source.historyGames)
}

func (source *Source) history(ctx context.Context, owner string, count int) ([]models.MatchRecord, error) {
	endpoint := fmt.Sprintf("/lol-match-history/v1/products/lol/%s/matches?begIndex=0&endIndex=%d", owner, count)

	var response matchHistoryResponse
	if err := source.client.getJSON(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	if response.Games.Games == nil {
		return []models.MatchRecord{}, nil
	}
	return response.Games.Games, nil
}

// GameDetail returns one completed game
func (source *Source) GameDetail(ctx context.Context, gameID int64) (*models.MatchRecord, error) {
	var match models.MatchRecord
	err := source.client.getJSON(ctx, fmt.Sprintf("/lol-match-history/v1/games/%d", gameID), &match)
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("game %d: %w", gameID, proxy.ErrMatchNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// CurrentPlayer returns the logged in summoner
func (source *Source) CurrentPlayer(ctx context.Context) (*models.PlayerRef, error) {
	var profile summoner
	if err := source.client.getJSON(ctx, "/lol-summoner/v1/current-summoner", &profile); err != nil {
		return nil, err
	}

	gameName := profile.GameName
	if gameName == "" {
		gameName = profile.DisplayName
	}

	return &models.PlayerRef{PUUID: profile.PUUID, GameName: gameName, TagLine: profile.TagLine}, nil
}
