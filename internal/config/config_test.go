package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear anything the host environment might carry.
	for _, key := range []string{
		"SERVER_HOST", "SERVER_PORT", "DATASET_FILE",
		"PIPELINE_SAMPLE_FRACTION", "PIPELINE_SAMPLE_SEED",
		"PIPELINE_CITY_PARTITIONS", "PIPELINE_TOP_SEGMENTS",
		"PIPELINE_HORIZON_DAYS", "PIPELINE_MAX_FORECAST_WORKERS",
		"PIPELINE_DROP_TRAILING_WEEK", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8084 {
		t.Errorf("default port = %d, want 8084", cfg.Server.Port)
	}
	if cfg.Dataset.Path != "truck_data.parquet" {
		t.Errorf("default dataset path = %q", cfg.Dataset.Path)
	}
	if cfg.Pipeline.SampleFraction != 0.1 {
		t.Errorf("default sample fraction = %g, want 0.1", cfg.Pipeline.SampleFraction)
	}
	if cfg.Pipeline.SampleSeed != 17 {
		t.Errorf("default sample seed = %d, want 17", cfg.Pipeline.SampleSeed)
	}
	if cfg.Pipeline.CityPartitions != 2 {
		t.Errorf("default city partitions = %d, want 2", cfg.Pipeline.CityPartitions)
	}
	if cfg.Pipeline.TopSegments != 3 {
		t.Errorf("default top segments = %d, want 3", cfg.Pipeline.TopSegments)
	}
	if cfg.Pipeline.HorizonDays != 365 {
		t.Errorf("default horizon = %d, want 365", cfg.Pipeline.HorizonDays)
	}
	if !cfg.Pipeline.DropTrailingWeek {
		t.Error("trailing week drop should default to true")
	}
	if cfg.Logger.Level != "info" || cfg.Logger.Format != "json" {
		t.Errorf("default logger = %+v", cfg.Logger)
	}
	if cfg.Dataset.Azure.Complete() {
		t.Error("azure config should be incomplete without environment values")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("DATASET_FILE", "/data/sales.parquet")
	t.Setenv("PIPELINE_SAMPLE_FRACTION", "0.25")
	t.Setenv("PIPELINE_HORIZON_DAYS", "90")
	t.Setenv("PIPELINE_DROP_TRAILING_WEEK", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("read timeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Dataset.Path != "/data/sales.parquet" {
		t.Errorf("dataset path = %q", cfg.Dataset.Path)
	}
	if cfg.Pipeline.SampleFraction != 0.25 {
		t.Errorf("sample fraction = %g, want 0.25", cfg.Pipeline.SampleFraction)
	}
	if cfg.Pipeline.HorizonDays != 90 {
		t.Errorf("horizon = %d, want 90", cfg.Pipeline.HorizonDays)
	}
	if cfg.Pipeline.DropTrailingWeek {
		t.Error("trailing week drop should be disabled")
	}
	if cfg.Logger.Level != "debug" || cfg.Logger.Format != "text" {
		t.Errorf("logger = %+v", cfg.Logger)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"port too high", "SERVER_PORT", "70000", "server port"},
		{"port zero", "SERVER_PORT", "0", "server port"},
		{"sample fraction above one", "PIPELINE_SAMPLE_FRACTION", "1.5", "sample fraction"},
		{"sample fraction negative", "PIPELINE_SAMPLE_FRACTION", "-0.1", "sample fraction"},
		{"zero partitions", "PIPELINE_CITY_PARTITIONS", "0", "city partitions"},
		{"zero top segments", "PIPELINE_TOP_SEGMENTS", "0", "top segments"},
		{"zero horizon", "PIPELINE_HORIZON_DAYS", "0", "forecast horizon"},
		{"zero workers", "PIPELINE_MAX_FORECAST_WORKERS", "0", "forecast workers"},
		{"bad log level", "LOG_LEVEL", "verbose", "log level"},
		{"bad log format", "LOG_FORMAT", "xml", "log format"},
		{"negative rate limit", "SECURITY_RATE_LIMIT_RPS", "-5", "rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() should reject %s=%s", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("PIPELINE_SAMPLE_FRACTION", "lots")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8084 {
		t.Errorf("unparsable port should fall back to 8084, got %d", cfg.Server.Port)
	}
	if cfg.Pipeline.SampleFraction != 0.1 {
		t.Errorf("unparsable fraction should fall back to 0.1, got %g", cfg.Pipeline.SampleFraction)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("unparsable duration should fall back to 10s, got %v", cfg.Server.ReadTimeout)
	}
}

func TestAzureConfig_Complete(t *testing.T) {
	tests := []struct {
		name string
		cfg  AzureConfig
		want bool
	}{
		{"all set", AzureConfig{ConnectionString: "cs", Container: "c", Blob: "b"}, true},
		{"missing connection string", AzureConfig{Container: "c", Blob: "b"}, false},
		{"missing container", AzureConfig{ConnectionString: "cs", Blob: "b"}, false},
		{"missing blob", AzureConfig{ConnectionString: "cs", Container: "c"}, false},
		{"empty", AzureConfig{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_Address(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "localhost", Port: 8084}}
	if got := cfg.Address(); got != "localhost:8084" {
		t.Errorf("Address() = %q, want localhost:8084", got)
	}
}
