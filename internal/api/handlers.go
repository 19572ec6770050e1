package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/OPGLOL/opgl-matchboard-service/internal/cache"
	apierrors "github.com/OPGLOL/opgl-matchboard-service/internal/errors"
	"github.com/OPGLOL/opgl-matchboard-service/internal/imageref"
	"github.com/OPGLOL/opgl-matchboard-service/internal/models"
	"github.com/OPGLOL/opgl-matchboard-service/internal/proxy"
)

// BoardService builds the views served by Handler
type BoardService interface {
	CurrentBoard(ctx context.Context) (*models.MatchBoard, error)
	MatchDetail(ctx context.Context, gameID int64) (*models.MatchDetail, error)
	History(ctx context.Context) ([]models.HistoryEntry, error)
	ResolveImage(ctx context.Context, payload imageref.Payload) imageref.ResourceRef
	Blob(ctx context.Context, handle string) (*cache.Blob, error)
	ReleaseBlob(ctx context.Context, handle string) error
}

// Handler manages HTTP request handlers for board views
type Handler struct {
	boardService BoardService
}

// NewHandler creates a new Handler instance
func NewHandler(boardService BoardService) *Handler {
	return &Handler{
		boardService: boardService,
	}
}

// ResolveImageRequest is the body of POST /api/v1/images/resolve
type ResolveImageRequest struct {
	Payload imageref.Payload `json:"payload"`
}

func writeJSON(writer http.ResponseWriter, status int, body any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// HealthCheck handles health check requests
func (handler *Handler) HealthCheck(writer http.ResponseWriter, request *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "opgl-matchboard",
	})
}

// GetCurrentBoard handles GET /api/v1/board/current
func (handler *Handler) GetCurrentBoard(writer http.ResponseWriter, request *http.Request) {
	board, err := handler.boardService.CurrentBoard(request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to build current board")
		apierrors.WriteError(writer, apierrors.DataSourceError("Failed to load current game"))
		return
	}

	writeJSON(writer, http.StatusOK, board)
}

// GetHistory handles GET /api/v1/history
func (handler *Handler) GetHistory(writer http.ResponseWriter, request *http.Request) {
	entries, err := handler.boardService.History(request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to build match history")
		apierrors.WriteError(writer, apierrors.DataSourceError("Failed to load match history"))
		return
	}

	writeJSON(writer, http.StatusOK, entries)
}

// GetMatchDetail handles GET /api/v1/matches/{gameId}
func (handler *Handler) GetMatchDetail(writer http.ResponseWriter, request *http.Request) {
	gameID, err := strconv.ParseInt(mux.Vars(request)["gameId"], 10, 64)
	if err != nil || gameID <= 0 {
		apierrors.WriteError(writer, apierrors.ValidationFailed("gameId must be a positive integer"))
		return
	}

	detail, err := handler.boardService.MatchDetail(request.Context(), gameID)
	if errors.Is(err, proxy.ErrMatchNotFound) {
		apierrors.WriteError(writer, apierrors.MatchNotFound(gameID))
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("gameId", gameID).Msg("Failed to build match detail")
		apierrors.WriteError(writer, apierrors.DataSourceError("Failed to load match detail"))
		return
	}

	writeJSON(writer, http.StatusOK, detail)
}

// ResolveImage handles POST /api/v1/images/resolve
func (handler *Handler) ResolveImage(writer http.ResponseWriter, request *http.Request) {
	var resolveRequest ResolveImageRequest
	if err := json.NewDecoder(request.Body).Decode(&resolveRequest); err != nil {
		apierrors.WriteError(writer, apierrors.InvalidRequestBody("Invalid JSON format"))
		return
	}

	ref := handler.boardService.ResolveImage(request.Context(), resolveRequest.Payload)
	writeJSON(writer, http.StatusOK, ref)
}

// GetBlob handles GET /api/v1/blobs/{handle}
func (handler *Handler) GetBlob(writer http.ResponseWriter, request *http.Request) {
	handle := mux.Vars(request)["handle"]

	blob, err := handler.boardService.Blob(request.Context(), handle)
	if errors.Is(err, cache.ErrBlobNotFound) {
		apierrors.WriteError(writer, apierrors.BlobNotFound(handle))
		return
	}
	if err != nil {
		log.Error().Err(err).Str("handle", handle).Msg("Failed to read blob")
		apierrors.WriteError(writer, apierrors.InternalError("Failed to read blob"))
		return
	}

	contentType := blob.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	writer.Header().Set("Content-Type", contentType)
	writer.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
	writer.Header().Set("Cache-Control", "private, max-age=300")
	writer.WriteHeader(http.StatusOK)
	writer.Write(blob.Data)
}

// ReleaseBlob handles DELETE /api/v1/blobs/{handle}
func (handler *Handler) ReleaseBlob(writer http.ResponseWriter, request *http.Request) {
	handle := mux.Vars(request)["handle"]

	if err := handler.boardService.ReleaseBlob(request.Context(), handle); err != nil {
		log.Error().Err(err).Str("handle", handle).Msg("Failed to release blob")
		apierrors.WriteError(writer, apierrors.InternalError("Failed to release blob"))
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}
