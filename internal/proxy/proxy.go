package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/OPGLOL/opgl-matchboard-service/internal/models"
)

// envelopeOK is the success code the match-data service puts in its envelope
const envelopeOK = 200

// errNotFound marks an HTTP 404 from the match-data service
var errNotFound = errors.New("resource not found")

// ServiceProxy handles communication with the match-data service
type ServiceProxy struct {
	dataServiceURL string
	httpClient     *http.Client
}

// envelope wraps every response of the match-data service
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

// NewServiceProxy creates a new ServiceProxy instance
func NewServiceProxy(dataServiceURL string, timeout time.Duration) *ServiceProxy {
	return &ServiceProxy{
		dataServiceURL: dataServiceURL,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

// CurrentGame retrieves the players of the game in progress.
// The service answers either with an envelope or with a bare array.
func (proxy *ServiceProxy) CurrentGame(ctx context.Context) ([]models.GamePlayer, error) {
	body, err := proxy.get(ctx, "/current/match/details", nil)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var players []models.GamePlayer
		if err := json.Unmarshal(trimmed, &players); err != nil {
			return nil, fmt.Errorf("failed to decode current game: %w", err)
		}
		return players, nil
	}

	data, err := unwrap(trimmed)
	if err != nil {
		return nil, err
	}

	players := []models.GamePlayer{}
	if len(data) == 0 || data[0] != '[' {
		return players, nil
	}
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("failed to decode current game: %w", err)
	}

	return players, nil
}

// MatchHistory retrieves the recent games of the current player
func (proxy *ServiceProxy) MatchHistory(ctx context.Context) ([]models.MatchRecord, error) {
	body, err := proxy.get(ctx, "/player/history/currentPlayer/match", nil)
	if err != nil {
		return nil, err
	}

	data, err := unwrap(body)
	if err != nil {
		return nil, err
	}

	var history struct {
		Games struct {
			Games []models.MatchRecord `json:"games"`
		} `json:"games"`
	}
	if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		if err := json.Unmarshal(data, &history); err != nil {
			return nil, fmt.Errorf("failed to decode match history: %w", err)
		}
	}

	if history.Games.Games == nil {
		return []models.MatchRecord{}, nil
	}
	return history.Games.Games, nil
}

// GameDetail retrieves one completed game by id
func (proxy *ServiceProxy) GameDetail(ctx context.Context, gameID int64) (*models.MatchRecord, error) {
	query := url.Values{}
	query.Set("gameId", strconv.FormatInt(gameID, 10))

	body, err := proxy.get(ctx, "/player/gameDetail", query)
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("game %d: %w", gameID, ErrMatchNotFound)
	}
	if err != nil {
		return nil, err
	}

	data, err := unwrap(body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("game %d: %w", gameID, ErrMatchNotFound)
	}

	var match models.MatchRecord
	if err := json.Unmarshal(data, &match); err != nil {
		return nil, fmt.Errorf("failed to decode game detail: %w", err)
	}

	return &match, nil
}

// CurrentPlayer retrieves the identity of the logged in player
func (proxy *ServiceProxy) CurrentPlayer(ctx context.Context) (*models.PlayerRef, error) {
	body, err := proxy.get(ctx, "/player/info", nil)
	if err != nil {
		return nil, err
	}

	data, err := unwrap(body)
	if err != nil {
		return nil, err
	}

	var player models.PlayerRef
	if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		if err := json.Unmarshal(data, &player); err != nil {
			return nil, fmt.Errorf("failed to decode player info: %w", err)
		}
	}

	return &player, nil
}

// get performs a GET against the match-data service and returns the raw body
func (proxy *ServiceProxy) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := proxy.dataServiceURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	response, err := proxy.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to call match-data service: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read match-data response: %w", err)
	}

	if response.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", path, errNotFound)
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("match-data service returned error %d: %s", response.StatusCode, string(body))
	}

	return body, nil
}

// unwrap checks the envelope code and returns its data
func unwrap(body []byte) (json.RawMessage, error) {
	var wrapped envelope
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}

	if wrapped.Code != envelopeOK {
		return nil, fmt.Errorf("match-data service returned code %d: %s", wrapped.Code, wrapped.Message)
	}

	return bytes.TrimSpace(wrapped.Data), nil
}
