package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-coverage-api/pkg/errors"
)

type memoryCacheRepo struct {
	items   map[string][]byte
	deleted []string
	getErr  error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

func TestCacheServiceRoundTripAndInvalidate(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	ctx := context.Background()
	key := CoverageKey("2024-09-02")

	var out []string
	hit, err := svc.Get(ctx, key, &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, key, []string{"a"}, 0))
	hit, err = svc.Get(ctx, key, &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a"}, out)

	require.NoError(t, svc.InvalidateDate(ctx, "2024-09-02"))
	assert.Equal(t, []string{"sma-coverage:coverage:2024-09-02*"}, repo.deleted)
	hit, _ = svc.Get(ctx, key, &out)
	assert.False(t, hit)
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, false)

	require.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	assert.Empty(t, repo.items)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.getErr = errors.New("connection refused")
	svc := NewCacheService(repo, nil, 0, nil, true)

	var out int
	hit, err := svc.Get(context.Background(), "k", &out)
	assert.False(t, hit)
	assert.Error(t, err)
}
