// Package config loads baselayer's configuration from environment
// variables, following the gatewayops teacher's getEnv/getIntEnv
// pattern, with an optional .env file read via godotenv for local
// development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every recognized option from spec.md §6's configuration
// table, plus the domain-stack additions SPEC_FULL.md §2.1 layers on
// top (Redis, OAuth, OTel, ClickHouse, bcrypt cost).
type Config struct {
	Database   DatabaseConfig
	Security   SecurityConfig
	App        AppConfig
	Ports      PortsConfig
	Services   ServicesConfig
	Logging    LoggingConfig
	Redis      RedisConfig
	Auth       AuthConfig
	OAuth      OAuthConfig
	OTel       OTelConfig
	ClickHouse ClickHouseConfig
}

// DatabaseConfig is the Postgres connection and pool shape.
type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	PoolSize    int
	MaxOverflow int
	PoolRecycle time.Duration
}

// SecurityConfig is the leak policy and its webhook.
type SecurityConfig struct {
	Strict      bool
	SlackURL    string
	SlackEnable bool
}

// AppConfig carries process-wide secrets.
type AppConfig struct {
	SecretKey string
}

// PortsConfig is every coordination/listening address baselayer's
// process topology needs.
type PortsConfig struct {
	WebsocketPathIn   string
	WebsocketPathOut  string
	Websocket         int
	AppInternal       int
	MigrationManager  int
	Status            int
}

// ServicesConfig drives the supervisor's fragment aggregation
// (internal/supervisor).
type ServicesConfig struct {
	Paths    []string
	Enabled  []string
	Disabled []string
}

// LoggingConfig is the ambient zerolog sink shape, not part of
// spec.md's core table but needed by every process.
type LoggingConfig struct {
	Level  string
	Format string
}

// RedisConfig is the fan-out plane's message-broker transport,
// substituting for the original's ZeroMQ PUSH/PULL and PUB/SUB
// sockets (SPEC_FULL.md §3). Shaped like the teacher's
// internal/config.RedisConfig.
type RedisConfig struct {
	URL          string
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
}

// AuthConfig holds the bcrypt work factor for hashing Token secrets,
// the same knob as the teacher's Auth.BcryptCost (there applied to API
// keys via sha256; here to Token secrets via bcrypt per SPEC_FULL.md
// §3's Token-hashing enrichment).
type AuthConfig struct {
	BcryptCost int
}

// OAuthConfig configures the OIDC relying-party flow in internal/oauth
// (SPEC_FULL.md §5, "OAuth2 as external collaborator").
type OAuthConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OTelConfig configures the OTLP trace exporter in internal/otelsetup.
type OTelConfig struct {
	Enabled        bool
	ServiceName    string
	ExporterOTLP   string // "grpc" or "http"
	Endpoint       string
	Insecure       bool
}

// ClickHouseConfig is the audit-trail sink's connection (internal/audit).
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

// Load reads configuration from the environment, optionally seeded by
// a .env file in the working directory (ignored if absent).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:        getEnv("DATABASE_HOST", "localhost"),
			Port:        getIntEnv("DATABASE_PORT", 5432),
			User:        getEnv("DATABASE_USER", "baselayer"),
			Password:    getEnv("DATABASE_PASSWORD", ""),
			Database:    getEnv("DATABASE_DATABASE", "baselayer"),
			PoolSize:    getIntEnv("DATABASE_POOL_SIZE", 5),
			MaxOverflow: getIntEnv("DATABASE_MAX_OVERFLOW", 10),
			PoolRecycle: getDurationEnv("DATABASE_POOL_RECYCLE", 3600*time.Second),
		},
		Security: SecurityConfig{
			Strict:      getBoolEnv("SECURITY_STRICT", true),
			SlackEnable: getBoolEnv("SECURITY_SLACK_ENABLED", false),
			SlackURL:    getEnv("SECURITY_SLACK_URL", ""),
		},
		App: AppConfig{
			SecretKey: getEnv("APP_SECRET_KEY", ""),
		},
		Ports: PortsConfig{
			WebsocketPathIn:  getEnv("PORTS_WEBSOCKET_PATH_IN", "tcp://127.0.0.1:5555"),
			WebsocketPathOut: getEnv("PORTS_WEBSOCKET_PATH_OUT", "tcp://127.0.0.1:5556"),
			Websocket:        getIntEnv("PORTS_WEBSOCKET", 64000),
			AppInternal:      getIntEnv("PORTS_APP_INTERNAL", 65000),
			MigrationManager: getIntEnv("PORTS_MIGRATION_MANAGER", 65432),
			Status:           getIntEnv("PORTS_STATUS", 65010),
		},
		Services: ServicesConfig{
			Paths:    getListEnv("SERVICES_PATHS", nil),
			Enabled:  getListEnv("SERVICES_ENABLED", nil),
			Disabled: getListEnv("SERVICES_DISABLED", nil),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
			MaxRetries:   getIntEnv("REDIS_MAX_RETRIES", 3),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 5),
		},
		Auth: AuthConfig{
			BcryptCost: getIntEnv("AUTH_BCRYPT_COST", 12),
		},
		OAuth: OAuthConfig{
			IssuerURL:    getEnv("OAUTH_ISSUER_URL", ""),
			ClientID:     getEnv("OAUTH_CLIENT_ID", ""),
			ClientSecret: getEnv("OAUTH_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("OAUTH_REDIRECT_URL", ""),
		},
		OTel: OTelConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "baselayer"),
			ExporterOTLP: getEnv("OTEL_EXPORTER_PROTOCOL", "grpc"),
			Endpoint:     getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			Insecure:     getBoolEnv("OTEL_EXPORTER_INSECURE", true),
		},
		ClickHouse: ClickHouseConfig{
			Addr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
			Database: getEnv("CLICKHOUSE_DATABASE", "baselayer"),
			Username: getEnv("CLICKHOUSE_USERNAME", "default"),
			Password: getEnv("CLICKHOUSE_PASSWORD", ""),
		},
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.ToLower(v) == "true" || v == "1"
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
