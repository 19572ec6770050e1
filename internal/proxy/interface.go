package proxy

import (
	"context"
	"errors"

	"github.com/OPGLOL/opgl-matchboard-service/internal/models"
)

// ErrMatchNotFound is returned when the requested game does not exist
var ErrMatchNotFound = errors.New("match not found")

// MatchSource defines the retrieval operations the board depends on.
// This interface enables mocking in tests and switching between the
// match-data service and the League client.
type MatchSource interface {
	// CurrentGame returns the players of the game in progress, or an empty
	// list when there is none
	CurrentGame(ctx context.Context) ([]models.GamePlayer, error)

	// MatchHistory returns the recent games of the current player
	MatchHistory(ctx context.Context) ([]models.MatchRecord, error)

	// GameDetail returns a single completed game
	GameDetail(ctx context.Context, gameID int64) (*models.MatchRecord, error)

	// CurrentPlayer returns the identity of the logged in player
	CurrentPlayer(ctx context.Context) (*models.PlayerRef, error)
}
