package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	NATS     NATSConfig
	Draft    DraftConfig
	Seed     SeedConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration
}

// Addr is the listen address for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the Postgres connection URL.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

type StoreConfig struct {
	Driver string
}

type NATSConfig struct {
	Enabled bool
	URL     string
	Stream  string
	Subject string
}

type DraftConfig struct {
	DefaultTurnTimeSec int
	DefaultTotalRounds int
	NotifyTimeout      time.Duration
}

type SeedConfig struct {
	// PlayerPoolFile is an optional YAML pool; the built-in pool is used when empty.
	PlayerPoolFile string
}

// Load reads the environment. Unparseable numbers fall back to defaults.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:            getEnvAsInt("PORT", 8080),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "draftroom"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", StorePostgres)),
		},
		NATS: NATSConfig{
			Enabled: getEnvAsBool("NATS_ENABLED", false),
			URL:     getEnv("NATS_URL", "nats://127.0.0.1:4222"),
			Stream:  getEnv("RESULTS_STREAM", "DRAFT_RESULTS"),
			Subject: getEnv("RESULTS_SUBJECT", "draft.results.complete"),
		},
		Draft: DraftConfig{
			DefaultTurnTimeSec: getEnvAsInt("DEFAULT_TURN_TIME_SEC", 30),
			DefaultTotalRounds: getEnvAsInt("DEFAULT_TOTAL_ROUNDS", 3),
			NotifyTimeout:      getEnvAsDuration("NOTIFY_TIMEOUT", 10*time.Second),
		},
		Seed: SeedConfig{
			PlayerPoolFile: getEnv("PLAYER_POOL_FILE", ""),
		},
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		errs = append(errs, errors.New("HTTP timeouts must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	switch c.Store.Driver {
	case StorePostgres:
		if c.Database.Port <= 0 {
			errs = append(errs, fmt.Errorf("DB_PORT must be positive, got %d", c.Database.Port))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store.Driver))
	}
	if c.NATS.Enabled && (c.NATS.Stream == "" || c.NATS.Subject == "") {
		errs = append(errs, errors.New("RESULTS_STREAM and RESULTS_SUBJECT are required when NATS is enabled"))
	}
	if c.Draft.DefaultTurnTimeSec <= 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_TURN_TIME_SEC must be positive, got %d", c.Draft.DefaultTurnTimeSec))
	}
	if c.Draft.DefaultTotalRounds <= 0 {
		errs = append(errs, fmt.Errorf("DEFAULT_TOTAL_ROUNDS must be positive, got %d", c.Draft.DefaultTotalRounds))
	}
	if c.Draft.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("NOTIFY_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
