package api

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/OPGLOL/opgl-matchboard-service/internal/auth"
	apierrors "github.com/OPGLOL/opgl-matchboard-service/internal/errors"
	"github.com/OPGLOL/opgl-matchboard-service/internal/repository"
)

const (
	defaultRateLimit         = 100
	defaultRateWindowSeconds = 60
)

// AdminAuthenticator exchanges the admin password for a token
type AdminAuthenticator interface {
	Login(password string) (*auth.AdminToken, error)
}

// AdminHandler manages admin login and API key endpoints
type AdminHandler struct {
	apiKeyRepository repository.APIKeyRepository
	authenticator    AdminAuthenticator
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(apiKeyRepository repository.APIKeyRepository, authenticator AdminAuthenticator) *AdminHandler {
	return &AdminHandler{
		apiKeyRepository: apiKeyRepository,
		authenticator:    authenticator,
	}
}

// LoginRequest is the body of POST /api/v1/admin/login
type LoginRequest struct {
	Password string `json:"password"`
}

// CreateAPIKeyRequest represents the request body for creating an API key
type CreateAPIKeyRequest struct {
	Name              string `json:"name"`
	RateLimit         int    `json:"rateLimit"`
	RateWindowSeconds int    `json:"rateWindowSeconds"`
}

// CreateAPIKeyResponse carries the plain key, shown only once
type CreateAPIKeyResponse struct {
	ID                string `json:"id"`
	APIKey            string `json:"apiKey"`
	Name              string `json:"name"`
	RateLimit         int    `json:"rateLimit"`
	RateWindowSeconds int    `json:"rateWindowSeconds"`
}

// APIKeyListItem represents an API key in list responses
type APIKeyListItem struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	RateLimit         int    `json:"rateLimit"`
	RateWindowSeconds int    `json:"rateWindowSeconds"`
	IsActive          bool   `json:"isActive"`
	CreatedAt         string `json:"createdAt"`
	LastUsedAt        string `json:"lastUsedAt,omitempty"`
}

// Login handles POST /api/v1/admin/login
func (adminHandler *AdminHandler) Login(writer http.ResponseWriter, request *http.Request) {
	var loginRequest LoginRequest
	if err := json.NewDecoder(request.Body).Decode(&loginRequest); err != nil {
		apierrors.WriteError(writer, apierrors.InvalidRequestBody("Invalid JSON format"))
		return
	}

	if loginRequest.Password == "" {
		apierrors.WriteError(writer, apierrors.ValidationFailed("password is required"))
		return
	}

	token, err := adminHandler.authenticator.Login(loginRequest.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		log.Warn().Str("remote_addr", request.RemoteAddr).Msg("Rejected admin login")
		apierrors.WriteError(writer, apierrors.InvalidCredentials())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue admin token")
		apierrors.WriteError(writer, apierrors.InternalError("Failed to issue token"))
		return
	}

	writeJSON(writer, http.StatusOK, token)
}

// CreateAPIKey handles POST /api/v1/admin/apikeys
func (adminHandler *AdminHandler) CreateAPIKey(writer http.ResponseWriter, request *http.Request) {
	var createRequest CreateAPIKeyRequest
	if err := json.NewDecoder(request.Body).Decode(&createRequest); err != nil {
		apierrors.WriteError(writer, apierrors.InvalidRequestBody("Invalid JSON format"))
		return
	}

	if createRequest.Name == "" {
		apierrors.WriteError(writer, apierrors.ValidationFailed("name is required"))
		return
	}

	rateLimit := createRequest.RateLimit
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}
	rateWindowSeconds := createRequest.RateWindowSeconds
	if rateWindowSeconds <= 0 {
		rateWindowSeconds = defaultRateWindowSeconds
	}

	// 32 random bytes, hex encoded
	apiKeyBytes := make([]byte, 32)
	if _, err := rand.Read(apiKeyBytes); err != nil {
		apierrors.WriteError(writer, apierrors.InternalError("Failed to generate API key"))
		return
	}
	apiKey := hex.EncodeToString(apiKeyBytes)

	apiKeyRecord, err := adminHandler.apiKeyRepository.Create(request.Context(), createRequest.Name, repository.HashAPIKey(apiKey), rateLimit, rateWindowSeconds)
	if err != nil {
		log.Error().Err(err).Str("name", createRequest.Name).Msg("Failed to create API key")
		apierrors.WriteError(writer, apierrors.InternalError("Failed to create API key"))
		return
	}

	writeJSON(writer, http.StatusCreated, CreateAPIKeyResponse{
		ID:                apiKeyRecord.ID.String(),
		APIKey:            apiKey,
		Name:              apiKeyRecord.Name,
		RateLimit:         apiKeyRecord.RateLimit,
		RateWindowSeconds: apiKeyRecord.RateWindowSeconds,
	})
}

// ListAPIKeys handles POST /api/v1/admin/apikeys/list
func (adminHandler *AdminHandler) ListAPIKeys(writer http.ResponseWriter, request *http.Request) {
	apiKeys, err := adminHandler.apiKeyRepository.List(request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list API keys")
		apierrors.WriteError(writer, apierrors.InternalError("Failed to list API keys"))
		return
	}

	responseItems := make([]APIKeyListItem, 0, len(apiKeys))
	for _, apiKey := range apiKeys {
		item := APIKeyListItem{
			ID:                apiKey.ID.String(),
			Name:              apiKey.Name,
			RateLimit:         apiKey.RateLimit,
			RateWindowSeconds: apiKey.RateWindowSeconds,
			IsActive:          apiKey.IsActive,
			CreatedAt:         apiKey.CreatedAt.Format(time.RFC3339),
		}
		if apiKey.LastUsedAt.Valid {
			item.LastUsedAt = apiKey.LastUsedAt.Time.Format(time.RFC3339)
		}
		responseItems = append(responseItems, item)
	}

	writeJSON(writer, http.StatusOK, responseItems)
}

// DeleteAPIKey handles DELETE /api/v1/admin/apikeys/{id}
func (adminHandler *AdminHandler) DeleteAPIKey(writer http.ResponseWriter, request *http.Request) {
	id, err := uuid.Parse(mux.Vars(request)["id"])
	if err != nil {
		apierrors.WriteError(writer, apierrors.ValidationFailed("invalid id format"))
		return
	}

	err = adminHandler.apiKeyRepository.Deactivate(request.Context(), id)
	if errors.Is(err, repository.ErrAPIKeyNotFound) {
		apierrors.WriteError(writer, apierrors.NewAPIError(apierrors.ErrCodeValidationFailed, "API key not found", http.StatusNotFound))
		return
	}
	if err != nil {
		log.Error().Err(err).Str("id", id.String()).Msg("Failed to revoke API key")
		apierrors.WriteError(writer, apierrors.InternalError("Failed to delete API key"))
		return
	}

	writeJSON(writer, http.StatusOK, map[string]string{
		"message": "API key revoked successfully",
	})
}
