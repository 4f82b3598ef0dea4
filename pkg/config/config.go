package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Config holds all application configuration for the pagination pipeline.
// Configure via YAML file (/config/pageflow.yaml) or environment variables.
// Environment variables use uppercase with underscores (e.g., CACHE_ROOT_DIR).
type Config struct {
	// Extraction cache settings
	CacheRootDir string `koanf:"cache_root_dir" json:"cache_root_dir" validate:"required"`
	CacheVersion int    `koanf:"cache_version" json:"cache_version" default:"1"`

	// Windowing settings
	XMLWindowSize  int `koanf:"xml_window_size" json:"xml_window_size" default:"8192"`
	WordWindowSize int `koanf:"word_window_size" json:"word_window_size" default:"4096"`
	ZipChunkSize   int `koanf:"zip_chunk_size" json:"zip_chunk_size" default:"2048"`

	// Hyphenation language setting. pkg/book does not read it: a book's
	// hyphenation language is mapped from its dc:language alone, with
	// Basic for any other or missing value.
	DefaultLanguage string `koanf:"default_language" json:"default_language" default:"basic" validate:"oneof=none basic english german"`

	// Layout defaults, used when a host doesn't supply its own, sized for
	// a 480x800 monochrome e-reader display.
	PageWidth     int `koanf:"page_width" json:"page_width" default:"480"`
	PageHeight    int `koanf:"page_height" json:"page_height" default:"800"`
	MarginTop     int `koanf:"margin_top" json:"margin_top" default:"16"`
	MarginBottom  int `koanf:"margin_bottom" json:"margin_bottom" default:"16"`
	MarginLeft    int `koanf:"margin_left" json:"margin_left" default:"12"`
	MarginRight   int `koanf:"margin_right" json:"margin_right" default:"12"`
	LineHeight    int `koanf:"line_height" json:"line_height" default:"30"`
	MinSpaceWidth int `koanf:"min_space_width" json:"min_space_width" default:"4"`

	// Internal settings (computed, not from config file)
	Hostname string `koanf:"-" json:"-"`
}

// newDefaults returns a Config populated from the `default:"..."` struct
// tags above via creasty/defaults.
func newDefaults() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic(errors.Wrap(err, "failed to set config defaults"))
	}
	return cfg
}

// New creates a new Config by loading from file and environment variables.
// Load order (later sources override earlier):
// 1. Defaults
// 2. Config file (/config/pageflow.yaml or CONFIG_FILE env var)
// 3. Environment variables
func New() (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	cfg := newDefaults()

	// 2. Load from config file (if exists)
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "/config/pageflow.yaml"
	}
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		// File not existing is fine - we'll use defaults and env vars
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to load config file %s", configPath)
		}
	}

	// 3. Load environment variables (CACHE_ROOT_DIR -> cache_root_dir)
	err := k.Load(env.Provider("", ".", strings.ToLower), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load environment variables")
	}

	// Unmarshal into config struct
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	// Get hostname
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get hostname")
	}
	cfg.Hostname = hostname

	// Validate required fields
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest creates a Config for testing with minimal required fields.
func NewForTest() *Config {
	cfg := newDefaults()
	cfg.CacheRootDir = os.TempDir()
	cfg.Hostname = "test-host"
	return cfg
}

// validateConfig validates the config and returns user-friendly error messages.
func validateConfig(cfg *Config) error {
	validate := validator.New()
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, "config validation failed")
	}

	var msgs []string
	for _, e := range validationErrors {
		field := e.StructField()
		tag := e.Tag()

		switch tag {
		case "required":
			envVar := strings.ToUpper(toSnakeCase(field))
			yamlKey := toSnakeCase(field)
			msgs = append(msgs, fmt.Sprintf(
				"missing required config: %s\n Set via environment variable: %s\n Or in config file: %s",
				field, envVar, yamlKey,
			))
		default:
			msgs = append(msgs, fmt.Sprintf("invalid config %s: %s", field, tag))
		}
	}

	return errors.New("configuration validation failed:\n\n" + strings.Join(msgs, "\n\n"))
}

// toSnakeCase converts PascalCase to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
