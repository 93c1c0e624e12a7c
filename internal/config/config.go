package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-me-in-production"

// EnvFiles are loaded in order when present; variables already set in the process win.
var EnvFiles = []string{".env.server", ".env"}

type Config struct {
	Server      ServerConfig
	Log         LogConfig
	Database    DatabaseConfig
	CRMDatabase DatabaseConfig
	Pool        PoolConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Admin       AdminConfig
	DevSeed     DevSeedConfig
}

type ServerConfig struct {
	Port        string
	Environment string
	CORSOrigins []string
	RateLimit   RateLimitConfig
}

type LogConfig struct {
	Level string
}

// DatabaseConfig describes one logical database. Driver is only honoured for the app
// database; the CRM database is always PostgreSQL.
type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SQLitePath  string
	AutoMigrate bool
}

type PoolConfig struct {
	MaxConns       int
	IdleTimeout    time.Duration
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret              string
	AdminExpiration     time.Duration
	DeveloperExpiration time.Duration
}

type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

type AdminConfig struct {
	PasswordScheme string
}

type DevSeedConfig struct {
	Username    string
	Password    string
	DisplayName string
}

func Load() (*Config, error) {
	for _, file := range EnvFiles {
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "4000"),
			Environment: getEnv("ENVIRONMENT", "development"),
			CORSOrigins: splitList(getEnv("CORS_ORIGIN", "http://localhost:5173,http://127.0.0.1:5173")),
			RateLimit: RateLimitConfig{
				Enabled: getEnvBool("RATE_LIMIT_ENABLED", true),
				Limit:   getEnvInt("RATE_LIMIT", 10),
				Window:  time.Duration(getEnvInt("RATE_LIMIT_WINDOW", 60)) * time.Second,
			},
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			DBName:     getEnv("DB_NAME", "edu_flow"),
			SSLMode:    getEnv("DB_SSL_MODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "edu_flow.db"),
		},
		CRMDatabase: DatabaseConfig{
			Driver:      "postgres",
			Host:        getEnv("CRM_DB_HOST", getEnv("DB_HOST", "localhost")),
			Port:        getEnv("CRM_DB_PORT", getEnv("DB_PORT", "5432")),
			User:        getEnv("CRM_DB_USER", getEnv("DB_USER", "postgres")),
			Password:    getEnv("CRM_DB_PASSWORD", getEnv("DB_PASSWORD", "")),
			DBName:      getEnv("CRM_DB_NAME", "crm_db"),
			SSLMode:     getEnv("CRM_DB_SSL_MODE", getEnv("DB_SSL_MODE", "disable")),
			AutoMigrate: getEnvBool("CRM_AUTO_MIGRATE", false),
		},
		Pool: PoolConfig{
			MaxConns:       getEnvInt("DB_MAX_CONNS", 10),
			IdleTimeout:    time.Duration(getEnvInt("DB_IDLE_TIMEOUT_SECONDS", 30)) * time.Second,
			ConnectTimeout: time.Duration(getEnvInt("DB_CONNECT_TIMEOUT_SECONDS", 5)) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:              getEnv("JWT_SECRET", defaultJWTSecret),
			AdminExpiration:     time.Duration(getEnvInt("JWT_ADMIN_EXPIRATION_HOURS", 8)) * time.Hour,
			DeveloperExpiration: time.Duration(getEnvInt("JWT_DEVELOPER_EXPIRATION_HOURS", 12)) * time.Hour,
		},
		Admin: AdminConfig{
			PasswordScheme: getEnv("ADMIN_PASSWORD_SCHEME", "sha256"),
		},
		DevSeed: DevSeedConfig{
			Username:    getEnv("DEV_SEED_USERNAME", ""),
			Password:    getEnv("DEV_SEED_PASSWORD", ""),
			DisplayName: getEnv("DEV_SEED_DISPLAY_NAME", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if c.Server.Environment == "production" && c.JWT.Secret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Admin.PasswordScheme {
	case "sha256", "bcrypt":
	default:
		return fmt.Errorf("unsupported ADMIN_PASSWORD_SCHEME %q", c.Admin.PasswordScheme)
	}
	if c.Pool.MaxConns < 1 {
		return errors.New("DB_MAX_CONNS must be at least 1")
	}
	return nil
}

// Addr returns host:port for the redis client.
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
