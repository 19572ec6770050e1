package lcu

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OPGLOL/opgl-matchboard-service/internal/proxy"
)

func newLiveGameMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/lol-gameflow/v1/session", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(`{"gameData": {
			"gameId": 5001,
			"playerChampionSelections": [{"puuid": "p1", "championId": 103, "spell1Id": 4, "spell2Id": 14}],
			"teamOne": [{"puuid": "p1", "championId": 103, "selectedPosition": "MIDDLE", "summonerName": "old"}],
			"teamTwo": [{"puuid": "", "championId": 22, "selectedPosition": "", "summonerName": "Bot Ashe"}]
		}}`))
	})
	mux.HandleFunc("/lol-summoner/v2/summoners/puuid/p1", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(`{"puuid": "p1", "gameName": "Foo", "tagLine": "NA1"}`))
	})
	mux.HandleFunc("/lol-match-history/v1/products/lol/p1/matches", func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Query().Get("endIndex") != "8" {
			http.Error(writer, "bad endIndex", http.StatusBadRequest)
			return
		}
		writer.Write([]byte(`{"games": {"games": [{"gameId": 1}, {"gameId": 2}]}}`))
	})
	mux.HandleFunc("/lol-match-history/v1/products/lol/current-summoner/matches", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(`{"games": {"games": [{"gameId": 9, "gameMode": "ARAM"}]}}`))
	})
	mux.HandleFunc("/lol-match-history/v1/games/9", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(`{"gameId": 9, "queueId": 450}`))
	})
	mux.HandleFunc("/lol-summoner/v1/current-summoner", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte(`{"puuid": "me", "gameName": "", "displayName": "Legacy", "tagLine": ""}`))
	})
	return mux
}

func TestSourceCurrentGame(t *testing.T) {
	client, _ := newTestClient(t, newLiveGameMux())
	source := NewSource(client, 8, 20)

	players, err := source.CurrentGame(context.Background())

	require.NoError(t, err)
	require.Len(t, players, 2)

	assert.Equal(t, "Foo", players[0].GameName)
	assert.Equal(t, "NA1", players[0].TagLine)
	assert.Equal(t, teamOneID, players[0].TeamID)
	assert.Equal(t, "MIDDLE", players[0].Position)
	assert.Equal(t, 4, players[0].Spell1ID)
	assert.Equal(t, 14, players[0].Spell2ID)
	assert.Len(t, players[0].Games, 2)

	assert.Equal(t, "Bot Ashe", players[1].GameName)
	assert.Equal(t, teamTwoID, players[1].TeamID)
	assert.Empty(t, players[1].Games)
}

func TestSourceCurrentGameOutsideOfGame(t *testing.T) {
	client, _ := newTestClient(t, http.NotFoundHandler())

	players, err := NewSource(client, 8, 20).CurrentGame(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, players)
	assert.Empty(t, players)
}

func TestSourceHistoryAndDetail(t *testing.T) {
	client, _ := newTestClient(t, newLiveGameMux())
	source := NewSource(client, 8, 20)

	history, err := source.MatchHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "ARAM", history[0].GameMode)

	match, err := source.GameDetail(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 450, match.QueueID)

	_, err = source.GameDetail(context.Background(), 10)
	assert.ErrorIs(t, err, proxy.ErrMatchNotFound)
}

func TestSourceCurrentPlayerFallsBackToDisplayName(t *testing.T) {
	client, _ := newTestClient(t, newLiveGameMux())

	player, err := NewSource(client, 8, 20).CurrentPlayer(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "me", player.PUUID)
	assert.Equal(t, "Legacy", player.GameName)
}
