// Package config loads the application configuration from file and
// environment.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	Data           DataConfig           `yaml:"data" mapstructure:"data"`
	GeoAdmin       GeoAdminConfig       `yaml:"geoadmin" mapstructure:"geoadmin"`
	OpenWeatherMap OpenWeatherMapConfig `yaml:"openweathermap" mapstructure:"openweathermap"`
	Report         ReportConfig         `yaml:"report" mapstructure:"report"`
	Server         ServerConfig         `yaml:"server" mapstructure:"server"`
	Telemetry      TelemetryConfig      `yaml:"telemetry" mapstructure:"telemetry"`
	Log            LogConfig            `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the local data files.
type DataConfig struct {
	// StationsFile is the raw NABEL station CSV (LV95 coordinates).
	StationsFile string `yaml:"stations_file" mapstructure:"stations_file"`

	// EnrichedStationsFile is the station CSV with WGS84 coordinates and
	// yearly pollutant values.
	EnrichedStationsFile string `yaml:"enriched_stations_file" mapstructure:"enriched_stations_file"`

	// PremiumsFile is the BAG premium filing CSV.
	PremiumsFile string `yaml:"premiums_file" mapstructure:"premiums_file"`

	// RegionsWorkbook is the EDI fee-region xlsx.
	RegionsWorkbook string `yaml:"regions_workbook" mapstructure:"regions_workbook"`

	// InsurersWorkbook is the BAG insurer registry xlsx.
	InsurersWorkbook string `yaml:"insurers_workbook" mapstructure:"insurers_workbook"`
}

// GeoAdminConfig configures the geo.admin.ch clients.
type GeoAdminConfig struct {
	ReframeBaseURL string `yaml:"reframe_base_url" mapstructure:"reframe_base_url"`
	SearchBaseURL  string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// OpenWeatherMapConfig configures the OpenWeatherMap client.
type OpenWeatherMapConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// ReportConfig configures report computation.
type ReportConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	OTLPEndpoint string `yaml:"otlp_endpoint" mapstructure:"otlp_endpoint"`
	Environment  string `yaml:"environment" mapstructure:"environment"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LUFTPRAEMIE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.stations_file", "data/stations.csv")
	v.SetDefault("data.enriched_stations_file", "data/stations_enriched.csv")
	v.SetDefault("data.premiums_file", "data/praemien.csv")
	v.SetDefault("data.regions_workbook", "data/praemienregionen.xlsx")
	v.SetDefault("data.insurers_workbook", "data/versicherer.xlsx")
	v.SetDefault("report.concurrency", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.environment", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &cfg, nil
}

// NewLogger builds a zerolog logger from the log configuration.
func NewLogger(cfg LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
