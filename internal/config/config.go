package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN builds the lib/pq connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// WeatherConfig configures the external weather API client.
type WeatherConfig struct {
	BaseURL  string
	APIKey   string
	Lat      string
	Lng      string
	CacheTTL time.Duration
}

// FCMConfig configures the push sender.
type FCMConfig struct {
	Endpoint  string
	ServerKey string
	Enabled   bool
}

// Config is the full rescuenect configuration, loaded from env vars.
type Config struct {
	HTTP struct {
		Addr string
		// Per-request deadline applied by the router; a hung store call
		// fails the request instead of blocking it forever.
		RequestTimeout time.Duration
	}
	Database DatabaseConfig
	Redis    struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Weather WeatherConfig
	FCM     FCMConfig
	Sweep   struct {
		Interval time.Duration
	}
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.HTTP.RequestTimeout = parseDuration(getEnv("HTTP_REQUEST_TIMEOUT", "15s"), 15*time.Second)

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "rescuenect")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Weather.BaseURL = getEnv("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")
	cfg.Weather.APIKey = getEnv("WEATHER_API_KEY", "")
	// Barangay coordinates; defaults point at Naic, Cavite.
	cfg.Weather.Lat = getEnv("WEATHER_LAT", "14.3169")
	cfg.Weather.Lng = getEnv("WEATHER_LNG", "120.7598")
	cfg.Weather.CacheTTL = parseDuration(getEnv("WEATHER_CACHE_TTL", "10m"), 10*time.Minute)

	cfg.FCM.Endpoint = getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send")
	cfg.FCM.ServerKey = getEnv("FCM_SERVER_KEY", "")
	cfg.FCM.Enabled = getEnv("FCM_ENABLED", "true") == "true"

	cfg.Sweep.Interval = parseDuration(getEnv("SWEEP_INTERVAL", "1h"), time.Hour)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
