package cache

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type weatherEntry struct {
	City string `json:"city"`
	Temp int    `json:"temp"`
}

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheServiceWithClient(client, zap.NewNop()), mr
}

func TestCacheServiceRoundTrip(t *testing.T) {
	svc, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "weather:seoul", weatherEntry{City: "Seoul", Temp: 21}, time.Minute))
	assert.True(t, mr.Exists("aidemo:weather:seoul"))

	var got weatherEntry
	found, err := svc.Get(ctx, "weather:seoul", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, weatherEntry{City: "Seoul", Temp: 21}, got)

	mr.FastForward(2 * time.Minute)
	found, err = svc.Get(ctx, "weather:seoul", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheServiceMissAndDelete(t *testing.T) {
	svc, _ := newTestCache(t)
	ctx := context.Background()

	found, err := svc.Get(ctx, "missing", nil)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, svc.Set(ctx, "k", "v", 0))
	require.NoError(t, svc.Del(ctx, "k"))
	found, err = svc.Get(ctx, "k", nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheServiceCorruptValue(t *testing.T) {
	svc, mr := newTestCache(t)
	require.NoError(t, mr.Set("aidemo:bad", "{not json"))

	var got weatherEntry
	found, err := svc.Get(context.Background(), "bad", &got)
	assert.False(t, found)
	assert.ErrorContains(t, err, "unmarshal failed")
}

func TestRememberLoadsOnceThenHits(t *testing.T) {
	svc, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (weatherEntry, error) {
		calls++
		return weatherEntry{City: "Paris", Temp: 12}, nil
	}

	first, err := Remember(ctx, svc, zap.NewNop(), "weather", "paris", time.Minute, load)
	require.NoError(t, err)
	second, err := Remember(ctx, svc, zap.NewNop(), "weather", "paris", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	svc, mr := newTestCache(t)
	boom := stderrors.New("upstream down")

	_, err := Remember(context.Background(), svc, zap.NewNop(), "weather", "oslo", time.Minute,
		func(context.Context) (weatherEntry, error) { return weatherEntry{}, boom })

	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("aidemo:weather:oslo"))
}

func TestRememberWithNoopAlwaysLoads(t *testing.T) {
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := Remember(context.Background(), Noop{}, zap.NewNop(), "search", "q", time.Minute,
			func(context.Context) (string, error) { calls++; return "x", nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestRememberIfSkipsRejectedValues(t *testing.T) {
	svc, mr := newTestCache(t)
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", nil
		}
		return "123", nil
	}
	keep := func(id string) bool { return id != "" }

	first, err := RememberIf(ctx, svc, zap.NewNop(), "hotel:mapping", "paris", time.Hour, keep, load)
	require.NoError(t, err)
	assert.Empty(t, first)
	assert.False(t, mr.Exists("aidemo:hotel:mapping:paris"))

	second, err := RememberIf(ctx, svc, zap.NewNop(), "hotel:mapping", "paris", time.Hour, keep, load)
	require.NoError(t, err)
	assert.Equal(t, "123", second)
	assert.True(t, mr.Exists("aidemo:hotel:mapping:paris"))
	assert.Equal(t, 2, calls)
}
