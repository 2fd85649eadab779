package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server       ServerConfig
	Worker       WorkerConfig
	Feed         FeedConfig
	Weather      WeatherConfig
	Directions   DirectionsConfig
	TextAnalysis TextAnalysisConfig
	Risk         RiskConfig
	DB           DatabaseConfig
	Logging      LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type FeedConfig struct {
	Enabled      bool
	URLs         []string
	PollInterval time.Duration
}

type WeatherConfig struct {
	BaseURL string
	APIKey  string
}

type DirectionsConfig struct {
	BaseURL string
	APIKey  string
}

type TextAnalysisConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
}

type RiskConfig struct {
	SampleTarget        int
	RouteThresholdMiles float64
	NearbyRadiusMiles   float64
	LookbackDays        int
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		Feed: FeedConfig{
			Enabled:      getEnvBool("FEED_ENABLED", true),
			URLs:         getEnvList("FEED_URLS", "https://mdotjboss.state.mi.us/MiDrive/api/events"),
			PollInterval: getEnvDuration("FEED_POLL_INTERVAL", 5*time.Minute),
		},
		Weather: WeatherConfig{
			BaseURL: getEnv("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
			APIKey:  getEnv("WEATHER_API_KEY", ""),
		},
		Directions: DirectionsConfig{
			BaseURL: getEnv("DIRECTIONS_BASE_URL", "https://maps.googleapis.com"),
			APIKey:  getEnv("DIRECTIONS_API_KEY", ""),
		},
		TextAnalysis: TextAnalysisConfig{
			Enabled: getEnvBool("TEXT_ANALYSIS_ENABLED", false),
			BaseURL: getEnv("TEXT_ANALYSIS_BASE_URL", ""),
			APIKey:  getEnv("TEXT_ANALYSIS_API_KEY", ""),
		},
		Risk: RiskConfig{
			SampleTarget:        getEnvInt("RISK_SAMPLE_TARGET", 5),
			RouteThresholdMiles: getEnvFloat("RISK_ROUTE_THRESHOLD_MILES", 2),
			NearbyRadiusMiles:   getEnvFloat("RISK_NEARBY_RADIUS_MILES", 10),
			LookbackDays:        getEnvInt("RISK_LOOKBACK_DAYS", 7),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/road-risk.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Feed.Enabled && len(c.Feed.URLs) == 0 {
		return fmt.Errorf("feed enabled but no feed URLs configured")
	}
	if c.Feed.PollInterval < time.Minute {
		return fmt.Errorf("feed poll interval must be at least 1 minute")
	}

	if c.Risk.SampleTarget < 1 {
		return fmt.Errorf("risk sample target must be at least 1")
	}
	if c.Risk.RouteThresholdMiles <= 0 || c.Risk.NearbyRadiusMiles <= 0 {
		return fmt.Errorf("risk distance thresholds must be positive")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
