package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	League        LeagueConfig        `yaml:"league"`
	HTTP          HTTPConfig          `yaml:"http"`
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Admin         AdminConfig         `yaml:"admin"`
	Putting       PuttingConfig       `yaml:"putting"`
	Store         StoreConfig         `yaml:"store"`
	Queue         QueueConfig         `yaml:"queue"`
	Archive       ArchiveConfig       `yaml:"archive"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// LeagueConfig names the single league this process serves.
type LeagueConfig struct {
	ID string `yaml:"id"`
}

// HTTPConfig holds the API listener configuration.
type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// PostgresConfig holds Postgres configuration. An empty DSN keeps the league in memory.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL uses an in-process bus.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// AdminConfig holds the shared admin secret and token settings.
type AdminConfig struct {
	PasswordHash   string        `yaml:"password_hash"`
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	LoginRateLimit float64       `yaml:"login_rate_limit"`
	LoginBurst     int           `yaml:"login_burst"`
}

// PuttingConfig holds putting league policy.
type PuttingConfig struct {
	FinalizeRequiresAdmin bool `yaml:"finalize_requires_admin"`
}

// StoreConfig tunes the document store.
type StoreConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// QueueConfig controls the river defend-expiry sweep. Requires Postgres.
type QueueConfig struct {
	Enabled       bool          `yaml:"enabled"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// ArchiveConfig points at the S3 bucket for finalized standings. Empty bucket disables it.
type ArchiveConfig struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Prefix          string `yaml:"prefix"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	ServiceName    string `yaml:"service_name"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// LoadConfig loads the configuration from a YAML file, then applies environment
// overrides. A .env file in the working directory is loaded first when present.
func LoadConfig(filename string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, load from environment variables only
		if err := applyEnv(&cfg); err != nil {
			return nil, err
		}
		cfg.applyDefaults()
		return &cfg, nil
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnv overrides cfg with environment variables that are set.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("LEAGUE_ID"); v != "" {
		cfg.League.ID = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("ADMIN_PASSWORD_HASH"); v != "" {
		cfg.Admin.PasswordHash = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Admin.JWTSecret = v
	}
	if v := os.Getenv("ADMIN_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ADMIN_TOKEN_TTL value: %w", err)
		}
		cfg.Admin.TokenTTL = d
	}
	if v := os.Getenv("FINALIZE_REQUIRES_ADMIN"); v != "" {
		cfg.Putting.FinalizeRequiresAdmin = v == "true"
	}
	if v := os.Getenv("STORE_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid STORE_MAX_ATTEMPTS value: %w", err)
		}
		cfg.Store.MaxAttempts = n
	}
	if v := os.Getenv("QUEUE_ENABLED"); v != "" {
		cfg.Queue.Enabled = v == "true"
	}
	if v := os.Getenv("QUEUE_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid QUEUE_SWEEP_INTERVAL value: %w", err)
		}
		cfg.Queue.SweepInterval = d
	}
	if v := os.Getenv("ARCHIVE_BUCKET"); v != "" {
		cfg.Archive.Bucket = v
	}
	if v := os.Getenv("ARCHIVE_REGION"); v != "" {
		cfg.Archive.Region = v
	}
	if v := os.Getenv("ARCHIVE_ENDPOINT"); v != "" {
		cfg.Archive.Endpoint = v
	}
	if v := os.Getenv("ARCHIVE_ACCESS_KEY_ID"); v != "" {
		cfg.Archive.AccessKeyID = v
	}
	if v := os.Getenv("ARCHIVE_SECRET_ACCESS_KEY"); v != "" {
		cfg.Archive.SecretAccessKey = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Observability.MetricsEnabled = v == "true"
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.League.ID == "" {
		c.League.ID = "default-league"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Admin.TokenTTL == 0 {
		c.Admin.TokenTTL = 12 * time.Hour
	}
	if c.Admin.LoginRateLimit == 0 {
		c.Admin.LoginRateLimit = 0.2
	}
	if c.Admin.LoginBurst == 0 {
		c.Admin.LoginBurst = 5
	}
	if c.Queue.SweepInterval == 0 {
		c.Queue.SweepInterval = time.Minute
	}
	if c.Archive.Prefix == "" {
		c.Archive.Prefix = "putting-archives"
	}
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "frolf-club"
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
}
