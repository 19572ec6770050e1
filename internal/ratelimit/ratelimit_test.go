package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OPGLOL/opgl-matchboard-service/internal/repository"
)

// mockAPIKeyRepository keeps keys and window counters in memory
type mockAPIKeyRepository struct {
	mu       sync.Mutex
	keys     map[string]*repository.APIKey
	windows  map[time.Time]int
	pruned   time.Time
	failWith error
}

func newMockRepository() *mockAPIKeyRepository {
	return &mockAPIKeyRepository{
		keys:    map[string]*repository.APIKey{},
		windows: map[time.Time]int{},
	}
}

func (m *mockAPIKeyRepository) GetByKeyHash(ctx context.Context, keyHash string) (*repository.APIKey, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.keys[keyHash], nil
}

func (m *mockAPIKeyRepository) Create(ctx context.Context, name string, keyHash string, rateLimit int, rateWindowSeconds int) (*repository.APIKey, error) {
	apiKey := &repository.APIKey{ID: uuid.New(), KeyHash: keyHash, Name: name, RateLimit: rateLimit, RateWindowSeconds: rateWindowSeconds, IsActive: true}
	m.keys[keyHash] = apiKey
	return apiKey, nil
}

func (m *mockAPIKeyRepository) List(ctx context.Context) ([]repository.APIKey, error) {
	return nil, nil
}

func (m *mockAPIKeyRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (m *mockAPIKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (m *mockAPIKeyRepository) IncrementWindow(ctx context.Context, apiKeyID uuid.UUID, windowStart time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows[windowStart]++
	return m.windows[windowStart], nil
}

func (m *mockAPIKeyRepository) PruneWindows(ctx context.Context, before time.Time) (int64, error) {
	m.pruned = before
	return 3, nil
}

func TestCheckRateLimitUnknownKey(t *testing.T) {
	rateLimiter := NewRateLimiter(newMockRepository())

	result, err := rateLimiter.CheckRateLimit(context.Background(), "missing")

	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Limit)
}

func TestCheckRateLimitFixedWindow(t *testing.T) {
	mockRepository := newMockRepository()
	_, _ = mockRepository.Create(context.Background(), "board", repository.HashAPIKey("key"), 2, 60)

	rateLimiter := NewRateLimiter(mockRepository)
	current := time.Unix(1_700_000_010, 0)
	rateLimiter.now = func() time.Time { return current }

	ctx := context.Background()
	first, err := rateLimiter.CheckRateLimit(ctx, "key")
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 1, first.Remaining)
	assert.Equal(t, time.Unix(1_700_000_040, 0).UTC(), first.ResetTime)

	second, err := rateLimiter.CheckRateLimit(ctx, "key")
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)

	third, err := rateLimiter.CheckRateLimit(ctx, "key")
	require.NoError(t, err)
	assert.False(t, third.Allowed)
	assert.Equal(t, 0, third.Remaining)
	assert.Equal(t, 2, third.Limit)

	current = current.Add(time.Minute)
	next, err := rateLimiter.CheckRateLimit(ctx, "key")
	require.NoError(t, err)
	assert.True(t, next.Allowed)
}

func TestCheckRateLimitRepositoryError(t *testing.T) {
	mockRepository := newMockRepository()
	mockRepository.failWith = errors.New("db down")

	result, err := NewRateLimiter(mockRepository).CheckRateLimit(context.Background(), "key")

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestCalculateWindowStart(t *testing.T) {
	start := calculateWindowStart(time.Unix(125, 0), time.Minute)
	assert.Equal(t, time.Unix(120, 0).UTC(), start)

	start = calculateWindowStart(time.Unix(125, 0), 0)
	assert.Equal(t, time.Unix(125, 0).UTC(), start)
}

func TestPrune(t *testing.T) {
	mockRepository := newMockRepository()
	rateLimiter := NewRateLimiter(mockRepository)
	rateLimiter.now = func() time.Time { return time.Unix(10_000, 0) }

	removed, err := rateLimiter.Prune(context.Background(), time.Hour)

	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.Equal(t, time.Unix(10_000-3600, 0), mockRepository.pruned)
}
