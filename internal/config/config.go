package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Dataset  DatasetConfig
	Pipeline PipelineConfig
	Logger   LoggerConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatasetConfig struct {
	Path  string
	Azure AzureConfig
}

// AzureConfig configures the one-shot blob download used when the local
// dataset file is missing. All three values come from the environment.
type AzureConfig struct {
	ConnectionString string
	Container        string
	Blob             string
}

func (a AzureConfig) Complete() bool {
	return a.ConnectionString != "" && a.Container != "" && a.Blob != ""
}

type PipelineConfig struct {
	SampleFraction     float64
	SampleSeed         int64
	CityPartitions     int
	TopSegments        int
	HorizonDays        int
	MaxForecastWorkers int
	DropTrailingWeek   bool
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

func Load() (*Config, error) {
	// A local .env is a convenience for development; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Dataset: DatasetConfig{
			Path: getEnvString("DATASET_FILE", "truck_data.parquet"),
			Azure: AzureConfig{
				ConnectionString: getEnvString("AZURE_CONNECTION_STRING", ""),
				Container:        getEnvString("AZURE_CONTAINER_NAME", ""),
				Blob:             getEnvString("AZURE_BLOB_NAME", ""),
			},
		},
		Pipeline: PipelineConfig{
			SampleFraction:     getEnvFloat("PIPELINE_SAMPLE_FRACTION", 0.1),
			SampleSeed:         int64(getEnvInt("PIPELINE_SAMPLE_SEED", 17)),
			CityPartitions:     getEnvInt("PIPELINE_CITY_PARTITIONS", 2),
			TopSegments:        getEnvInt("PIPELINE_TOP_SEGMENTS", 3),
			HorizonDays:        getEnvInt("PIPELINE_HORIZON_DAYS", 365),
			MaxForecastWorkers: getEnvInt("PIPELINE_MAX_FORECAST_WORKERS", 4),
			DropTrailingWeek:   getEnvBool("PIPELINE_DROP_TRAILING_WEEK", true),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 10),
			AllowedOrigins:  getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8084"}),
			TrustedProxies:  getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Dataset.Path == "" {
		return fmt.Errorf("dataset file path cannot be empty")
	}

	if c.Pipeline.SampleFraction <= 0 || c.Pipeline.SampleFraction > 1 {
		return fmt.Errorf("sample fraction must be in (0, 1], got %g", c.Pipeline.SampleFraction)
	}

	if c.Pipeline.CityPartitions < 1 {
		return fmt.Errorf("city partitions must be at least 1, got %d", c.Pipeline.CityPartitions)
	}

	if c.Pipeline.TopSegments < 1 {
		return fmt.Errorf("top segments must be at least 1, got %d", c.Pipeline.TopSegments)
	}

	if c.Pipeline.HorizonDays < 1 {
		return fmt.Errorf("forecast horizon must be at least 1 day, got %d", c.Pipeline.HorizonDays)
	}

	if c.Pipeline.MaxForecastWorkers < 1 {
		return fmt.Errorf("max forecast workers must be at least 1, got %d", c.Pipeline.MaxForecastWorkers)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
