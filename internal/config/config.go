package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Match sources
const (
	SourceBackend = "backend"
	SourceLCU     = "lcu"
)

// maxRecentGames is the largest recent-form window a card shows
const maxRecentGames = 8

// RedisConfiguration holds the redis connection settings
type RedisConfiguration struct {
	Host     string
	Port     string
	Password string
}

// Enabled reports whether a redis host is configured
func (redisConfig RedisConfiguration) Enabled() bool {
	return redisConfig.Host != ""
}

// Address returns host:port, defaulting the port to 6379
func (redisConfig RedisConfiguration) Address() string {
	port := redisConfig.Port
	if port == "" {
		port = "6379"
	}
	return redisConfig.Host + ":" + port
}

// DatabaseConfiguration holds the postgres connection settings
type DatabaseConfiguration struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Enabled reports whether enough is configured to connect
func (databaseConfig DatabaseConfiguration) Enabled() bool {
	return databaseConfig.Host != "" && databaseConfig.Password != ""
}

// Config is the full service configuration
type Config struct {
	Port              string
	LogLevel          zerolog.Level
	MatchSource       string
	MatchDataURL      string
	LockfilePath      string
	Redis             RedisConfiguration
	Database          DatabaseConfiguration
	JWTSecret         string
	AdminPasswordHash string
	DDragonVersion    string
	RecentGames       int
	BoardCacheTTL     time.Duration
	BlobTTL           time.Duration
}

// AdminEnabled reports whether admin login can be offered
func (config *Config) AdminEnabled() bool {
	return config.JWTSecret != "" && config.AdminPasswordHash != ""
}

// Load reads a .env file when present and then the process environment.
// The .env file is skipped inside docker where the environment is injected.
func Load() (*Config, error) {
	if os.Getenv("ENVIRONMENT") != "docker" {
		// a missing .env file is fine
		_ = godotenv.Load()
	}
	return FromLookup(os.Getenv)
}

// FromLookup builds a Config from an environment lookup function
func FromLookup(lookup func(string) string) (*Config, error) {
	get := func(key string, fallback string) string {
		if value := strings.TrimSpace(lookup(key)); value != "" {
			return value
		}
		return fallback
	}

	config := &Config{
		Port:         get("PORT", "8080"),
		MatchSource:  strings.ToLower(get("MATCH_SOURCE", SourceBackend)),
		MatchDataURL: strings.TrimRight(get("MATCH_DATA_URL", "http://localhost:8081"), "/"),
		LockfilePath: get("LOL_LOCKFILE_PATH", ""),
		Redis: RedisConfiguration{
			Host:     get("REDIS_HOST", ""),
			Port:     get("REDIS_PORT", ""),
			Password: get("REDIS_PASSWORD", ""),
		},
		Database: DatabaseConfiguration{
			Host:     get("DB_HOST", ""),
			Port:     get("DB_PORT", "5432"),
			User:     get("DB_USER", ""),
			Password: get("DB_PASSWORD", ""),
			Name:     get("DB_NAME", ""),
		},
		JWTSecret:         get("JWT_SECRET", ""),
		AdminPasswordHash: get("ADMIN_PASSWORD_HASH", ""),
		DDragonVersion:    get("DDRAGON_VERSION", "15.19.1"),
	}

	if config.MatchSource != SourceBackend && config.MatchSource != SourceLCU {
		return nil, fmt.Errorf("MATCH_SOURCE must be %q or %q, got %q", SourceBackend, SourceLCU, config.MatchSource)
	}

	if config.MatchSource == SourceBackend && pointsAtSelf(config.MatchDataURL, config.Port) {
		return nil, fmt.Errorf("MATCH_DATA_URL %q points at this service's own port %s", config.MatchDataURL, config.Port)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(get("LOG_LEVEL", "info")))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	config.LogLevel = level

	recentGames, err := strconv.Atoi(get("RECENT_GAMES", strconv.Itoa(maxRecentGames)))
	if err != nil || recentGames <= 0 {
		return nil, fmt.Errorf("RECENT_GAMES must be a positive integer")
	}
	config.RecentGames = min(recentGames, maxRecentGames)

	if config.BoardCacheTTL, err = time.ParseDuration(get("BOARD_CACHE_TTL", "15s")); err != nil {
		return nil, fmt.Errorf("invalid BOARD_CACHE_TTL: %w", err)
	}
	if config.BlobTTL, err = time.ParseDuration(get("BLOB_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("invalid BLOB_TTL: %w", err)
	}

	return config, nil
}

// pointsAtSelf reports whether rawURL targets a loopback host on port
func pointsAtSelf(rawURL string, port string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	targetPort := parsed.Port()
	if targetPort == "" {
		switch parsed.Scheme {
		case "http":
			targetPort = "80"
		case "https":
			targetPort = "443"
		}
	}
	if targetPort != port {
		return false
	}

	switch parsed.Hostname() {
	case "localhost", "127.0.0.1", "::1", "0.0.0.0", "":
		return true
	}
	return false
}
