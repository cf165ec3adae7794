package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SourceOpenLibrary = "openlibrary"
	SourceOPDS        = "opds"
)

type Config struct {
	LogLevel string `env:"LR_LOG_LEVEL" envDefault:"info" mapstructure:"log_level"`

	CatalogSourceType  string `env:"LR_CATALOG_SOURCE_TYPE" envDefault:"openlibrary" mapstructure:"catalog_source_type"`
	OpenLibraryBaseURL string `env:"LR_OPENLIBRARY_BASE_URL" envDefault:"https://openlibrary.org" mapstructure:"openlibrary_base_url"`

	// OPDSSearchURL may contain {subject}, {offset} and {count} placeholders.
	OPDSSearchURL string `env:"LR_OPDS_SEARCH_URL" mapstructure:"opds_search_url"`
	OPDSUsername  string `env:"LR_OPDS_USERNAME" mapstructure:"opds_username"`
	OPDSPassword  string `env:"LR_OPDS_PASSWORD" mapstructure:"opds_password"`

	GoogleBooksBaseURL string `env:"LR_GOOGLE_BOOKS_BASE_URL" envDefault:"https://www.googleapis.com/books/v1" mapstructure:"google_books_base_url"`
	GoogleBooksAPIKey  string `env:"LR_GOOGLE_BOOKS_API_KEY" mapstructure:"google_books_api_key"`

	PageSize     int    `env:"LR_PAGE_SIZE" envDefault:"12" mapstructure:"page_size"`
	DefaultGenre string `env:"LR_DEFAULT_GENRE" envDefault:"fiction" mapstructure:"default_genre"`

	HTTPTimeout       time.Duration `env:"LR_HTTP_TIMEOUT" envDefault:"30s" mapstructure:"http_timeout"`
	RequestsPerSecond float64       `env:"LR_REQUESTS_PER_SECOND" envDefault:"0" mapstructure:"requests_per_second"`
	UserAgent         string        `env:"LR_USER_AGENT" envDefault:"litroulette/0.1 (+https://github.com/lukejcollins/litroulette)" mapstructure:"user_agent"`

	// HistoryPath is the sqlite file picks are logged to. Empty disables the log.
	HistoryPath string `env:"LR_HISTORY_PATH" mapstructure:"history_path"`
}

func (c *Config) Validate() error {
	switch c.CatalogSourceType {
	case SourceOpenLibrary:
		if c.OpenLibraryBaseURL == "" {
			return fmt.Errorf("LR_OPENLIBRARY_BASE_URL is required when LR_CATALOG_SOURCE_TYPE is openlibrary")
		}
	case SourceOPDS:
		if c.OPDSSearchURL == "" {
			return fmt.Errorf("LR_OPDS_SEARCH_URL is required when LR_CATALOG_SOURCE_TYPE is opds")
		}
	default:
		return fmt.Errorf("LR_CATALOG_SOURCE_TYPE must be %q or %q, got %q", SourceOpenLibrary, SourceOPDS, c.CatalogSourceType)
	}

	if c.GoogleBooksBaseURL == "" {
		return fmt.Errorf("LR_GOOGLE_BOOKS_BASE_URL is required")
	}

	if c.PageSize < 1 {
		return fmt.Errorf("LR_PAGE_SIZE must be at least 1")
	}

	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("LR_REQUESTS_PER_SECOND cannot be negative")
	}

	if c.HTTPTimeout < 0 {
		return fmt.Errorf("LR_HTTP_TIMEOUT cannot be negative")
	}

	if strings.TrimSpace(c.DefaultGenre) == "" {
		return fmt.Errorf("LR_DEFAULT_GENRE cannot be blank")
	}

	return nil
}

// Load builds the configuration from the environment (and a .env file if present), then
// overlays the keys set in the config file. cfgFile may be empty, in which case
// ./litroulette.yaml and $HOME/.litroulette/litroulette.yaml are tried and a missing file
// is not an error.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := overlayFile(cfg, cfgFile); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func overlayFile(cfg *Config, cfgFile string) error {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("litroulette")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.litroulette")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config file %s: %w", v.ConfigFileUsed(), err)
	}
	return nil
}
