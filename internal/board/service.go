package board

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/OPGLOL/opgl-matchboard-service/internal/cache"
	"github.com/OPGLOL/opgl-matchboard-service/internal/imageref"
	"github.com/OPGLOL/opgl-matchboard-service/internal/models"
	"github.com/OPGLOL/opgl-matchboard-service/internal/proxy"
)

const (
	currentGameKey = "source:current-game"
	matchKeyFormat = "source:match:%d"

	// completed games never change
	matchDetailTTL = time.Hour
)

// Service serves board views, caching the raw retrieval responses.
// Views are rebuilt on every call so each one carries fresh blob handles.
type Service struct {
	source   proxy.MatchSource
	store    cache.Store
	blobs    *cache.BlobStore
	builder  *Builder
	boardTTL time.Duration
}

// NewService creates a new Service
func NewService(source proxy.MatchSource, store cache.Store, blobs *cache.BlobStore, builder *Builder, boardTTL time.Duration) *Service {
	return &Service{
		source:   source,
		store:    store,
		blobs:    blobs,
		builder:  builder,
		boardTTL: boardTTL,
	}
}

// CurrentBoard returns the two-team board of the game in progress
func (service *Service) CurrentBoard(ctx context.Context) (*models.MatchBoard, error) {
	var players []models.GamePlayer

	err := cache.GetJSON(ctx, service.store, currentGameKey, &players)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Msg("Failed to read cached game, refetching")
		}

		players, err = service.source.CurrentGame(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load current game: %w", err)
		}

		if err := cache.SetJSON(ctx, service.store, currentGameKey, players, service.boardTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache current game")
		}
	}

	return service.builder.BuildBoard(ctx, players), nil
}

// MatchDetail returns the post-game view of gameID
func (service *Service) MatchDetail(ctx context.Context, gameID int64) (*models.MatchDetail, error) {
	key := fmt.Sprintf(matchKeyFormat, gameID)

	var match models.MatchRecord
	err := cache.GetJSON(ctx, service.store, key, &match)
	if err != nil {
		log.Debug().Err(err).Int64("gameId", gameID).Msg("Match detail cache miss")

		fetched, err := service.source.GameDetail(ctx, gameID)
		if err != nil {
			return nil, fmt.Errorf("failed to load game %d: %w", gameID, err)
		}
		match = *fetched

		if err := cache.SetJSON(ctx, service.store, key, match, matchDetailTTL); err != nil {
			log.Warn().Err(err).Int64("gameId", gameID).Msg("Failed to cache match detail")
		}
	}

	return service.builder.BuildMatchDetail(ctx, &match), nil
}

// History returns the match history of the logged in player. When the
// player cannot be identified every entry uses the first participant.
func (service *Service) History(ctx context.Context) ([]models.HistoryEntry, error) {
	matches, err := service.source.MatchHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load match history: %w", err)
	}

	var ref models.PlayerRef
	player, err := service.source.CurrentPlayer(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Current player unknown, using first participant")
	} else if player != nil {
		ref = *player
	}

	return service.builder.BuildHistory(ctx, matches, ref), nil
}

// ResolveImage resolves a single payload
func (service *Service) ResolveImage(ctx context.Context, payload imageref.Payload) imageref.ResourceRef {
	return service.builder.ResolveImage(ctx, payload)
}

// Blob returns the bytes behind a blob handle
func (service *Service) Blob(ctx context.Context, handle string) (*cache.Blob, error) {
	if service.blobs == nil {
		return nil, cache.ErrBlobNotFound
	}
	return service.blobs.Get(ctx, handle)
}

// ReleaseBlob frees the bytes behind a blob handle
func (service *Service) ReleaseBlob(ctx context.Context, handle string) error {
	if service.blobs == nil {
		return nil
	}
	return service.blobs.Release(ctx, handle)
}

// InvalidateBoard drops the cached live game so the next board is refetched
func (service *Service) InvalidateBoard(ctx context.Context) error {
	return service.store.Delete(ctx, currentGameKey)
}
