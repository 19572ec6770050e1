package api

import (
	"github.com/gorilla/mux"

	"github.com/OPGLOL/opgl-matchboard-service/internal/middleware"
)

// RouterConfig holds all dependencies for router setup.
// AdminHandler, RateLimiter and TokenValidator are optional.
type RouterConfig struct {
	Handler        *Handler
	AdminHandler   *AdminHandler
	RateLimiter    middleware.RateLimitChecker
	TokenValidator middleware.TokenValidator
}

// SetupRouter configures all routes of the matchboard service
func SetupRouter(config *RouterConfig) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", config.Handler.HealthCheck).Methods("GET")

	// Blob reads back <img src> tags, which cannot carry an API key
	router.HandleFunc("/api/v1/blobs/{handle}", config.Handler.GetBlob).Methods("GET")

	// Admin routes are registered first so the rate limited subrouter never sees them
	if config.AdminHandler != nil && config.TokenValidator != nil {
		router.HandleFunc("/api/v1/admin/login", config.AdminHandler.Login).Methods("POST")

		adminRouter := router.PathPrefix("/api/v1/admin").Subrouter()
		adminRouter.Use(middleware.AuthMiddleware(config.TokenValidator))
		adminRouter.HandleFunc("/apikeys", config.AdminHandler.CreateAPIKey).Methods("POST")
		adminRouter.HandleFunc("/apikeys/list", config.AdminHandler.ListAPIKeys).Methods("POST")
		adminRouter.HandleFunc("/apikeys/{id}", config.AdminHandler.DeleteAPIKey).Methods("DELETE")
	}

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	if config.RateLimiter != nil {
		apiRouter.Use(middleware.RateLimitMiddleware(config.RateLimiter))
	}

	apiRouter.HandleFunc("/board/current", config.Handler.GetCurrentBoard).Methods("GET")
	apiRouter.HandleFunc("/history", config.Handler.GetHistory).Methods("GET")
	apiRouter.HandleFunc("/matches/{gameId:[0-9]+}", config.Handler.GetMatchDetail).Methods("GET")
	apiRouter.HandleFunc("/images/resolve", config.Handler.ResolveImage).Methods("POST")
	apiRouter.HandleFunc("/blobs/{handle}", config.Handler.ReleaseBlob).Methods("DELETE")

	return router
}
