// Package config contains utilities for loading configs.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

const configFilePath = "/data/recipebot.yaml"

const (
	BackendAPI      = "api"
	BackendDatabase = "database"
)

type Database struct {
	Port     uint16 `yaml:"port"`
	Host     string `yaml:"host" validate:"omitempty,hostname_rfc1123"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// URL builds the connection string for the direct-storage backend.
// Credentials are escaped so that reserved characters in a password do not
// corrupt the DSN.
func (d Database) URL() string {
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Database,
	}
	return u.String()
}

type Config struct {
	// Backend picks the deployment variant: "api" submits through the
	// site's HTTP API, "database" writes straight into the relational
	// store.
	Backend string `yaml:"backend" validate:"oneof=api database"`

	APIBase  string `yaml:"api_base" validate:"omitempty,url"`
	PageSize int    `yaml:"page_size" validate:"gte=1"`

	// StrictIngredients requires at least one ingredient before the
	// ingredient loop can be left.
	StrictIngredients bool `yaml:"strict_ingredients"`

	// SessionTTLMinutes expires idle conversations. Unset defaults to 30;
	// -1 disables expiry.
	SessionTTLMinutes int `yaml:"session_ttl_minutes" validate:"gte=-1"`

	ListenAddr      string   `yaml:"listen_addr" validate:"required"`
	CredentialsPath string   `yaml:"credentials_path" validate:"required"`
	Database        Database `yaml:"database"`
	Env             string   `yaml:"env" validate:"omitempty,oneof=DEV PROD"`
}

func validateConfig(config *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return err
	}

	if config.Backend == BackendAPI && config.APIBase == "" {
		return fmt.Errorf("api_base must be set when backend is %q", BackendAPI)
	}
	if config.Backend == BackendDatabase && config.Database.Database == "" {
		return fmt.Errorf("database settings must be set when backend is %q", BackendDatabase)
	}
	return nil
}

func applyDefaults(config *Config) {
	if config.Backend == "" {
		config.Backend = BackendAPI
	}
	if config.PageSize == 0 {
		config.PageSize = 10
	}
	if config.SessionTTLMinutes == 0 {
		config.SessionTTLMinutes = 30
	}
	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}
	if config.CredentialsPath == "" {
		config.CredentialsPath = "/data/credentials.db"
	}
	if config.Env == "" {
		config.Env = "DEV"
	}
	if config.Database.Host == "" {
		config.Database.Host = "localhost"
	}
	if config.Database.Port == 0 {
		config.Database.Port = 5432
	}
}

func loadWithDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loadConfigFromEnv() (Config, error) {
	conf := Config{
		Backend:         loadWithDefault("BACKEND", ""),
		APIBase:         loadWithDefault("SITE_API_BASE", ""),
		ListenAddr:      loadWithDefault("LISTEN_ADDR", ""),
		CredentialsPath: loadWithDefault("CREDENTIALS_PATH", ""),
		Env:             loadWithDefault("ENV", ""),
	}

	if v := loadWithDefault("API_PAGE_SIZE", ""); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return conf, fmt.Errorf("invalid API_PAGE_SIZE (%q): %w", v, err)
		}
		conf.PageSize = size
	}

	if v := loadWithDefault("STRICT_INGREDIENTS", ""); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return conf, fmt.Errorf("invalid STRICT_INGREDIENTS (%q): %w", v, err)
		}
		conf.StrictIngredients = strict
	}

	if v := loadWithDefault("SESSION_TTL_MINUTES", ""); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return conf, fmt.Errorf("invalid SESSION_TTL_MINUTES (%q): %w", v, err)
		}
		conf.SessionTTLMinutes = ttl
	}

	conf.Database = Database{
		Host:     loadWithDefault("DATABASE_HOST", ""),
		Database: loadWithDefault("DATABASE", ""),
		User:     loadWithDefault("DATABASE_USER", ""),
		Password: loadWithDefault("DATABASE_PASSWORD", ""),
	}
	if v := loadWithDefault("DATABASE_PORT", ""); v != "" {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return conf, fmt.Errorf("invalid DATABASE_PORT (%q): %w", v, err)
		}
		conf.Database.Port = uint16(port)
	}

	applyDefaults(&conf)
	if err := validateConfig(&conf); err != nil {
		return conf, err
	}
	return conf, nil
}

func loadConfigFromFile(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(contents, &config); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&config)
	if err := validateConfig(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

func configFileExists(path string) bool {
	f, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return !f.IsDir()
}

func LoadConfig() (Config, error) {
	if configFileExists(configFilePath) {
		return loadConfigFromFile(configFilePath)
	}
	return loadConfigFromEnv()
}
