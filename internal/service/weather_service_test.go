package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/config"
	"github.com/kuyajp123/Rescuenect-sub003/internal/store"
)

const weatherBody = `{
	"weather": [{"main": "Rain", "description": "moderate rain"}],
	"main": {"temp": 29.4, "feels_like": 34.1, "humidity": 88},
	"wind": {"speed": 7.2}
}`

func setupWeather(t *testing.T) (*WeatherService, *atomic.Int64) {
	t.Helper()

	var calls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(weatherBody))
	}))
	t.Cleanup(upstream.Close)

	mr := miniredis.RunT(t)
	kv := store.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	cfg := &config.WeatherConfig{
		BaseURL:  upstream.URL,
		APIKey:   "test",
		Lat:      "14.3169",
		Lng:      "120.7598",
		CacheTTL: 10 * time.Minute,
	}
	return NewWeatherService(cfg, kv, zap.NewNop()), &calls
}

func TestWeatherGetCurrent_FetchesAndCaches(t *testing.T) {
	svc, calls := setupWeather(t)
	ctx := context.Background()

	snap, err := svc.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rain", snap.Condition)
	assert.InDelta(t, 29.4, snap.TempC, 0.01)
	assert.Equal(t, 88, snap.Humidity)
	assert.InDelta(t, 7.2*3.6, snap.WindKph, 0.01)

	// Second read is served from cache.
	_, err = svc.GetCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load())
}

func TestWeatherGetCurrent_ConcurrentReadersSingleFetch(t *testing.T) {
	svc, calls := setupWeather(t)
	ctx := context.Background()

	// Warm the cache, then hammer it: no reader should trigger a refetch.
	_, err := svc.GetCurrent(ctx)
	require.NoError(t, err)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = svc.GetCurrent(ctx)
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	assert.Equal(t, int64(1), calls.Load())
}

func TestWeatherGetCurrent_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(upstream.Close)

	mr := miniredis.RunT(t)
	kv := store.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	cfg := &config.WeatherConfig{BaseURL: upstream.URL, CacheTTL: time.Minute}
	svc := NewWeatherService(cfg, kv, zap.NewNop())

	_, err := svc.GetCurrent(context.Background())
	assert.Error(t, err)
}
