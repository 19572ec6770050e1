package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/OPGLOL/opgl-matchboard-service/internal/api"
	"github.com/OPGLOL/opgl-matchboard-service/internal/auth"
	"github.com/OPGLOL/opgl-matchboard-service/internal/board"
	"github.com/OPGLOL/opgl-matchboard-service/internal/cache"
	"github.com/OPGLOL/opgl-matchboard-service/internal/config"
	"github.com/OPGLOL/opgl-matchboard-service/internal/db"
	"github.com/OPGLOL/opgl-matchboard-service/internal/lcu"
	"github.com/OPGLOL/opgl-matchboard-service/internal/middleware"
	"github.com/OPGLOL/opgl-matchboard-service/internal/proxy"
	"github.com/OPGLOL/opgl-matchboard-service/internal/ratelimit"
	"github.com/OPGLOL/opgl-matchboard-service/internal/repository"
)

const (
	adminTokenTTL       = 12 * time.Hour
	sourceTimeout       = 10 * time.Second
	memorySweepInterval = time.Minute
	pruneInterval       = 10 * time.Minute
	pruneRetention      = 24 * time.Hour
	watcherRetryDelay   = 5 * time.Second
)

func main() {
	// Initialize zerolog with colorized console output for development
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Caller().Logger()

	appConfig, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	zerolog.SetGlobalLevel(appConfig.LogLevel)

	log.Info().Msg("Starting OPGL Matchboard")
	log.Info().
		Str("port", appConfig.Port).
		Str("match_source", appConfig.MatchSource).
		Str("ddragon_version", appConfig.DDragonVersion).
		Int("recent_games", appConfig.RecentGames).
		Msg("Configuration loaded")

	// Background work stops when the server shuts down
	backgroundContext, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()

	// Step 1: Cache store (redis when configured, in-process otherwise)
	var store cache.Store
	var redisStore *cache.RedisStore
	if appConfig.Redis.Enabled() {
		redisStore, err = cache.NewRedisStore(backgroundContext, appConfig.Redis.Address(), appConfig.Redis.Password)
		if err != nil {
			log.Fatal().Err(err).Str("address", appConfig.Redis.Address()).Msg("Failed to connect to redis")
		}
		store = redisStore
		log.Info().Str("address", appConfig.Redis.Address()).Msg("Redis cache enabled")
	} else {
		memoryStore := cache.NewMemoryStore()
		go memoryStore.RunSweeper(backgroundContext, memorySweepInterval)
		store = memoryStore
		log.Warn().Msg("Redis not configured - using in-memory cache")
	}
	blobStore := cache.NewBlobStore(store, appConfig.BlobTTL)

	// Step 2: Match source
	var source proxy.MatchSource
	var lcuClient *lcu.Client
	switch appConfig.MatchSource {
	case config.SourceLCU:
		lcuClient = lcu.NewClient(appConfig.LockfilePath)
		source = lcu.NewSource(lcuClient, appConfig.RecentGames, 20)
		log.Info().Msg("Reading matches from the local League client")
	default:
		source = proxy.NewServiceProxy(appConfig.MatchDataURL, sourceTimeout)
		log.Info().Str("match_data_url", appConfig.MatchDataURL).Msg("Reading matches from the match data service")
	}

	// Step 3: Board service
	builder := board.NewBuilder(appConfig.DDragonVersion, appConfig.RecentGames, blobStore)
	boardService := board.NewService(source, store, blobStore, builder, appConfig.BoardCacheTTL)

	if lcuClient != nil {
		watcher := lcu.NewGameflowWatcher(lcuClient.Credentials, func(phase string) {
			log.Info().Str("phase", phase).Msg("Gameflow phase changed")
			if err := boardService.InvalidateBoard(backgroundContext); err != nil {
				log.Warn().Err(err).Msg("Failed to invalidate board")
			}
		}, watcherRetryDelay)
		go watcher.Run(backgroundContext)
	}

	// Step 4: Database, rate limiting and admin (optional)
	routerConfig := &api.RouterConfig{Handler: api.NewHandler(boardService)}

	var database *db.Database
	if appConfig.Database.Enabled() {
		connectContext, cancelConnect := context.WithTimeout(backgroundContext, 10*time.Second)
		database, err = db.NewPostgresConnection(
			connectContext,
			appConfig.Database.Host,
			appConfig.Database.Port,
			appConfig.Database.User,
			appConfig.Database.Password,
			appConfig.Database.Name,
		)
		if err == nil {
			err = database.EnsureSchema(connectContext)
		}
		cancelConnect()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare database")
		}
		log.Info().
			Str("host", appConfig.Database.Host).
			Str("database", appConfig.Database.Name).
			Msg("Database connection established")

		apiKeyRepository := repository.NewPostgresAPIKeyRepository(database.DB)

		rateLimiter := ratelimit.NewRateLimiter(apiKeyRepository)
		go rateLimiter.RunPruner(backgroundContext, pruneInterval, pruneRetention)
		routerConfig.RateLimiter = rateLimiter
		log.Info().Msg("Rate limiting enabled")

		if appConfig.AdminEnabled() {
			authService := auth.NewAuthService(appConfig.JWTSecret, appConfig.AdminPasswordHash, adminTokenTTL)
			routerConfig.AdminHandler = api.NewAdminHandler(apiKeyRepository, authService)
			routerConfig.TokenValidator = authService
			log.Info().Msg("Admin endpoints enabled")
		} else {
			log.Warn().Msg("Admin endpoints disabled - JWT_SECRET or ADMIN_PASSWORD_HASH missing")
		}
	} else {
		log.Warn().Msg("Database not configured - rate limiting and admin disabled")
	}

	router := api.SetupRouter(routerConfig)

	// Wrap router with CORS middleware first to handle preflight requests
	loggedRouter := middleware.LoggingMiddleware(middleware.CORSMiddleware(router))

	serverAddress := fmt.Sprintf(":%s", appConfig.Port)
	server := &http.Server{
		Addr:              serverAddress,
		Handler:           loggedRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdownChannel := make(chan os.Signal, 1)
	signal.Notify(shutdownChannel, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("address", serverAddress).Msg("OPGL Matchboard listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	<-shutdownChannel
	log.Info().Msg("Shutting down server...")
	cancelBackground()

	shutdownContext, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownContext); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	if database != nil {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Database close error")
		} else {
			log.Info().Msg("Database connection closed")
		}
	}

	if redisStore != nil {
		if err := redisStore.Close(); err != nil {
			log.Error().Err(err).Msg("Redis close error")
		}
	}

	log.Info().Msg("Server stopped")
}
