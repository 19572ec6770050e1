package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

// APIKey is a client key allowed to read boards, with its fixed-window quota
type APIKey struct {
	ID                uuid.UUID    `json:"id"`
	KeyHash           string       `json:"-"`
	Name              string       `json:"name"`
	RateLimit         int          `json:"rateLimit"`
	RateWindowSeconds int          `json:"rateWindowSeconds"`
	IsActive          bool         `json:"isActive"`
	CreatedAt         time.Time    `json:"createdAt"`
	LastUsedAt        sql.NullTime `json:"-"`
}

// APIKeyRepository stores API keys and their per-window request counters
type APIKeyRepository interface {
	GetByKeyHash(ctx context.Context, keyHash string) (*APIKey, error)
	Create(ctx context.Context, name string, keyHash string, rateLimit int, rateWindowSeconds int) (*APIKey, error)
	List(ctx context.Context) ([]APIKey, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	TouchLastUsed(ctx context.Context, id uuid.UUID) error
	IncrementWindow(ctx context.Context, apiKeyID uuid.UUID, windowStart time.Time) (int, error)
	PruneWindows(ctx context.Context, before time.Time) (int64, error)
}

// ErrAPIKeyNotFound is returned when deactivating an unknown key
var ErrAPIKeyNotFound = errors.New("api key not found")

const apiKeyColumns = `id, key_hash, name, rate_limit, rate_window_seconds, is_active, created_at, last_used_at`

// PostgresAPIKeyRepository implements APIKeyRepository on top of lib/pq
type PostgresAPIKeyRepository struct {
	database *sql.DB
}

// NewPostgresAPIKeyRepository creates a new PostgreSQL-backed API key repository
func NewPostgresAPIKeyRepository(database *sql.DB) *PostgresAPIKeyRepository {
	return &PostgresAPIKeyRepository{
		database: database,
	}
}

// HashAPIKey hashes an API key using SHA-256
func HashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(hash[:])
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAPIKey(row rowScanner) (*APIKey, error) {
	apiKey := &APIKey{}
	err := row.Scan(
		&apiKey.ID,
		&apiKey.KeyHash,
		&apiKey.Name,
		&apiKey.RateLimit,
		&apiKey.RateWindowSeconds,
		&apiKey.IsActive,
		&apiKey.CreatedAt,
		&apiKey.LastUsedAt,
	)
	if err != nil {
		return nil, err
	}
	return apiKey, nil
}

// GetByKeyHash returns the active key with the given hash, or nil when none exists
func (repository *PostgresAPIKeyRepository) GetByKeyHash(ctx context.Context, keyHash string) (*APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE key_hash = $1 AND is_active = true`

	apiKey, err := scanAPIKey(repository.database.QueryRowContext(ctx, query, keyHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return apiKey, err
}

// Create stores a new key
func (repository *PostgresAPIKeyRepository) Create(ctx context.Context, name string, keyHash string, rateLimit int, rateWindowSeconds int) (*APIKey, error) {
	query := `
		INSERT INTO api_keys (key_hash, name, rate_limit, rate_window_seconds)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + apiKeyColumns

	return scanAPIKey(repository.database.QueryRowContext(ctx, query, keyHash, name, rateLimit, rateWindowSeconds))
}

// List returns every key, newest first
func (repository *PostgresAPIKeyRepository) List(ctx context.Context) ([]APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys ORDER BY created_at DESC`

	rows, err := repository.database.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apiKeys := []APIKey{}
	for rows.Next() {
		apiKey, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		apiKeys = append(apiKeys, *apiKey)
	}

	return apiKeys, rows.Err()
}

// Deactivate soft-deletes a key
func (repository *PostgresAPIKeyRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := repository.database.ExecContext(ctx, `UPDATE api_keys SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

// TouchLastUsed records that a key was just used
func (repository *PostgresAPIKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := repository.database.ExecContext(ctx, `UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`, id)
	return err
}

// IncrementWindow bumps and returns the request count of one window
func (repository *PostgresAPIKeyRepository) IncrementWindow(ctx context.Context, apiKeyID uuid.UUID, windowStart time.Time) (int, error) {
	query := `
		INSERT INTO rate_limit_records (api_key_id, window_start, request_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (api_key_id, window_start)
		DO UPDATE SET request_count = rate_limit_records.request_count + 1
		RETURNING request_count
	`

	var requestCount int
	if err := repository.database.QueryRowContext(ctx, query, apiKeyID, windowStart).Scan(&requestCount); err != nil {
		return 0, err
	}
	return requestCount, nil
}

// PruneWindows removes counters of windows that started before the cutoff
func (repository *PostgresAPIKeyRepository) PruneWindows(ctx context.Context, before time.Time) (int64, error) {
	result, err := repository.database.ExecContext(ctx, `DELETE FROM rate_limit_records WHERE window_start < $1`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
