package lcu

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// EventType is the WAMP opcode used by the client websocket
type EventType int

const (
	EventTypeSubscribe   EventType = 5
	EventTypeUnsubscribe EventType = 6
	EventTypeEvent       EventType = 8
)

// GameflowPhaseEvent is the topic carrying gameflow phase changes
const GameflowPhaseEvent = "OnJsonApiEvent_lol-gameflow_v1_gameflow-phase"

// PhaseHandler is called with the new phase, e.g. "ChampSelect" or "InProgress"
type PhaseHandler func(phase string)

// CredentialsProvider returns the credentials to dial with
type CredentialsProvider func() (*Credentials, error)

// GameflowWatcher follows gameflow phase changes over the client websocket
type GameflowWatcher struct {
	credentials    CredentialsProvider
	handler        PhaseHandler
	reconnectDelay time.Duration
	dialer         *websocket.Dialer
}

type eventPayload struct {
	EventType string          `json:"eventType"`
	URI       string          `json:"uri"`
	Data      json.RawMessage `json:"data"`
}

// NewGameflowWatcher creates a watcher that reports phases to handler
func NewGameflowWatcher(credentials CredentialsProvider, handler PhaseHandler, reconnectDelay time.Duration) *GameflowWatcher {
	return &GameflowWatcher{
		credentials:    credentials,
		handler:        handler,
		reconnectDelay: reconnectDelay,
		dialer: &websocket.Dialer{
			TLSClientConfig:  &tls.Config{InsecureSkipVerify: true},
			HandshakeTimeout: 5 * time.Second,
		},
	}
}

// Run keeps a subscription open until ctx is cancelled, reconnecting after
// every dropped connection
func (watcher *GameflowWatcher) Run(ctx context.Context) {
	for {
		if err := watcher.watch(ctx); err != nil && ctx.Err() == nil {
			log.Debug().Err(err).Msg("Gameflow watcher disconnected")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(watcher.reconnectDelay):
		}
	}
}

// watch runs a single connection until it fails or ctx is cancelled
func (watcher *GameflowWatcher) watch(ctx context.Context) error {
	credentials, err := watcher.credentials()
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("riot:"+credentials.Password)))

	connection, _, err := watcher.dialer.DialContext(ctx, fmt.Sprintf("wss://127.0.0.1:%s", credentials.Port), header)
	if err != nil {
		return fmt.Errorf("failed to connect to client websocket: %w", err)
	}
	defer connection.Close()

	if err := connection.WriteJSON([]any{EventTypeSubscribe, GameflowPhaseEvent}); err != nil {
		return fmt.Errorf("failed to subscribe to gameflow: %w", err)
	}

	log.Info().Str("port", credentials.Port).Msg("Subscribed to gameflow events")

	// unblock ReadMessage on shutdown
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			connection.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := connection.ReadMessage()
		if err != nil {
			return err
		}

		if phase, ok := parsePhaseEvent(message); ok && watcher.handler != nil {
			watcher.handler(phase)
		}
	}
}

// parsePhaseEvent extracts the phase from a [8, topic, payload] frame
func parsePhaseEvent(message []byte) (string, bool) {
	var frame []json.RawMessage
	if err := json.Unmarshal(message, &frame); err != nil || len(frame) < 3 {
		return "", false
	}

	var eventType EventType
	if err := json.Unmarshal(frame[0], &eventType); err != nil || eventType != EventTypeEvent {
		return "", false
	}

	var topic string
	if err := json.Unmarshal(frame[1], &topic); err != nil || topic != GameflowPhaseEvent {
		return "", false
	}

	var payload eventPayload
	if err := json.Unmarshal(frame[2], &payload); err != nil {
		return "", false
	}

	var phase string
	if err := json.Unmarshal(payload.Data, &phase); err != nil {
		return "", false
	}

	return phase, true
}
