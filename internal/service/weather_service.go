package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/config"
	"github.com/kuyajp123/Rescuenect-sub003/internal/domain"
	"github.com/kuyajp123/Rescuenect-sub003/internal/store"
)

const weatherCacheKey = "weather:current"

// openWeatherResponse is the subset of the upstream payload we keep.
type openWeatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// WeatherService serves the barangay weather snapshot. At most one upstream
// fetch runs at a time: the fetch mutex is held for the duration of the call
// and concurrent readers fall back to the cached snapshot.
type WeatherService struct {
	httpClient *resty.Client
	kv         store.KV
	cfg        *config.WeatherConfig
	logger     *zap.Logger
	now        func() time.Time

	fetchMu sync.Mutex
}

func NewWeatherService(cfg *config.WeatherConfig, kv store.KV, logger *zap.Logger) *WeatherService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetHeader("Accept", "application/json")

	return &WeatherService{
		httpClient: client,
		kv:         kv,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// GetCurrent returns the cached snapshot when fresh, otherwise fetches from
// the upstream API. If another fetch is already in flight the caller gets
// whatever the cache holds rather than piling a second request onto the API.
func (s *WeatherService) GetCurrent(ctx context.Context) (*domain.WeatherSnapshot, error) {
	if snap, err := s.readCache(ctx); err == nil {
		return snap, nil
	}

	if !s.fetchMu.TryLock() {
		// A fetch is in flight; serve the cache even if it just expired.
		if snap, err := s.readCache(ctx); err == nil {
			return snap, nil
		}
		return nil, errors.New("weather fetch in progress, no cached snapshot")
	}
	defer s.fetchMu.Unlock()

	// Re-check after winning the lock; the previous holder may have
	// refreshed the cache already.
	if snap, err := s.readCache(ctx); err == nil {
		return snap, nil
	}

	snap, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, snap)
	return snap, nil
}

func (s *WeatherService) readCache(ctx context.Context) (*domain.WeatherSnapshot, error) {
	raw, err := s.kv.Get(ctx, weatherCacheKey)
	if err != nil {
		return nil, err
	}
	snap := &domain.WeatherSnapshot{}
	if err := json.Unmarshal([]byte(raw), snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *WeatherService) writeCache(ctx context.Context, snap *domain.WeatherSnapshot) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.kv.Set(ctx, weatherCacheKey, string(raw), s.cfg.CacheTTL); err != nil {
		s.logger.Warn("weather cache write failed", zap.Error(err))
	}
}

func (s *WeatherService) fetch(ctx context.Context) (*domain.WeatherSnapshot, error) {
	var out openWeatherResponse
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":   s.cfg.Lat,
			"lon":   s.cfg.Lng,
			"appid": s.cfg.APIKey,
			"units": "metric",
		}).
		SetResult(&out).
		Get("/weather")
	if err != nil {
		return nil, fmt.Errorf("weather fetch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode())
	}

	snap := &domain.WeatherSnapshot{
		TempC:      out.Main.Temp,
		Humidity:   out.Main.Humidity,
		WindKph:    out.Wind.Speed * 3.6,
		HeatIndexC: out.Main.FeelsLike,
		FetchedAt:  s.now(),
	}
	if len(out.Weather) > 0 {
		snap.Condition = out.Weather[0].Main
		snap.Description = out.Weather[0].Description
	}

	s.logger.Info("weather snapshot refreshed",
		zap.String("condition", snap.Condition),
		zap.Float64("temp_c", snap.TempC),
	)
	return snap, nil
}
