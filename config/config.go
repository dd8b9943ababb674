package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/guttosm/tradenorm/internal/logger"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
//	POSTGRES_USER=admin
//	POSTGRES_PASSWORD=secret
//	POSTGRES_DB=tradenorm
//	POSTGRES_SSLMODE=disable
//	LOG_LEVEL=info
//	NORMALIZE_CACHE_TTL=10m
//	MAX_UPLOAD_BYTES=33554432
//	RATE_LIMIT_RPS=5
//	RATE_LIMIT_BURST=10
//	INGEST_PARALLEL=0
type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Log       LogConfig
	Normalize NormalizeConfig
	Ingest    IngestConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string  // TCP port the HTTP server listens on (e.g., "8080")
	MaxUploadBytes int64   // request body cap for upload endpoints
	RateLimitRPS   float64 // sustained requests per second per client IP
	RateLimitBurst int
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// NormalizeConfig tunes the in-memory cache of normalize results.
type NormalizeConfig struct {
	CacheTTL time.Duration
}

// IngestConfig controls file fan-out; 0 means min(8, NumCPU).
type IngestConfig struct {
	Parallel int
}

// AppConfig is the globally accessible configuration instance, populated once
// via LoadConfig().
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or invalid, validateConfig() terminates
//     the app with a descriptive log message.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("MAX_UPLOAD_BYTES", 32<<20)
	viper.SetDefault("RATE_LIMIT_RPS", 5.0)
	viper.SetDefault("RATE_LIMIT_BURST", 10)

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "tradenorm")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_PRETTY", false)
	viper.SetDefault("NORMALIZE_CACHE_TTL", 10*time.Minute)
	viper.SetDefault("INGEST_PARALLEL", 0)

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			MaxUploadBytes: viper.GetInt64("MAX_UPLOAD_BYTES"),
			RateLimitRPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			RateLimitBurst: viper.GetInt("RATE_LIMIT_BURST"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Pretty: viper.GetBool("LOG_PRETTY"),
		},
		Normalize: NormalizeConfig{
			CacheTTL: viper.GetDuration("NORMALIZE_CACHE_TTL"),
		},
		Ingest: IngestConfig{
			Parallel: viper.GetInt("INGEST_PARALLEL"),
		},
	}

	AppConfig.Postgres.URL = AppConfig.Postgres.DSN()

	validateConfig()
}

// DSN renders the postgres:// connection string used by database/sql.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

// problems lists every missing or invalid setting of cfg.
func problems(cfg Config) []string {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		missing = append(missing, "MAX_UPLOAD_BYTES")
	}
	if cfg.Server.RateLimitRPS <= 0 {
		missing = append(missing, "RATE_LIMIT_RPS")
	}
	if cfg.Server.RateLimitBurst <= 0 {
		missing = append(missing, "RATE_LIMIT_BURST")
	}
	if cfg.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if cfg.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if cfg.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if cfg.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if cfg.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if cfg.Normalize.CacheTTL < 0 {
		missing = append(missing, "NORMALIZE_CACHE_TTL")
	}
	if cfg.Ingest.Parallel < 0 {
		missing = append(missing, "INGEST_PARALLEL")
	}
	return missing
}

// validateConfig terminates the application when AppConfig is incomplete.
func validateConfig() {
	if missing := problems(AppConfig); len(missing) > 0 {
		logger.L().Fatal().Strs("keys", missing).Msg("missing or invalid configuration")
	}
}
