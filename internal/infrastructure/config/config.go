// Package config loads settings from config.toml and FLOREX_-prefixed
// environment variables, with sane defaults for local development.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	SMTP      SMTPConfig
	DocStore  DocStoreConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret          string
	TokenExpiration time.Duration
	Issuer          string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// SMTPConfig holds outgoing mail settings for invoice delivery
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// DocStoreConfig holds document archive settings for generated PDFs
type DocStoreConfig struct {
	Driver    string // s3, filesystem
	Bucket    string
	Region    string
	Endpoint  string // custom endpoint for S3-compatible stores (MinIO)
	AccessKey string // static credentials; default AWS chain when empty
	SecretKey string
	BasePath  string // filesystem driver root
	PathStyle bool   // force path-style addressing (MinIO)
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTLP gRPC endpoint (e.g. "localhost:4317")
	SamplingRatio     float64 // 0.0-1.0, 1.0 = 100%
	ServiceName       string
	Insecure          bool // non-TLS connection (development only)
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with FLOREX_ prefix (e.g. FLOREX_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("FLOREX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("jwt.secret"),
			TokenExpiration: v.GetDuration("jwt.token_expiration"),
			Issuer:          v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			Username: v.GetString("smtp.username"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
		},
		DocStore: DocStoreConfig{
			Driver:    v.GetString("docstore.driver"),
			Bucket:    v.GetString("docstore.bucket"),
			Region:    v.GetString("docstore.region"),
			Endpoint:  v.GetString("docstore.endpoint"),
			AccessKey: v.GetString("docstore.access_key"),
			SecretKey: v.GetString("docstore.secret_key"),
			BasePath:  v.GetString("docstore.base_path"),
			PathStyle: v.GetBool("docstore.path_style"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setStr(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

func setDur(dst *time.Duration, def time.Duration) {
	if *dst == 0 {
		*dst = def
	}
}

// applyDefaults fills every field the file and environment left unset.
func applyDefaults(cfg *Config) {
	setStr(&cfg.App.Name, "florexport-backend")
	setStr(&cfg.App.Env, "development")
	setStr(&cfg.App.Port, "8080")

	setStr(&cfg.Database.Host, "localhost")
	setInt(&cfg.Database.Port, 5432)
	setStr(&cfg.Database.User, "postgres")
	setStr(&cfg.Database.DBName, "florexport")
	setStr(&cfg.Database.SSLMode, "disable")
	setInt(&cfg.Database.MaxOpenConns, 25)
	setInt(&cfg.Database.MaxIdleConns, 5)
	setInt(&cfg.Database.ConnMaxLifetime, 60)
	setInt(&cfg.Database.ConnMaxIdleTime, 30)

	// Redis host stays empty by default; an empty host means the server
	// falls back to the in-process idempotency store.
	setInt(&cfg.Redis.Port, 6379)

	setDur(&cfg.JWT.TokenExpiration, 24*time.Hour)
	setStr(&cfg.JWT.Issuer, "florexport-backend")

	setStr(&cfg.Log.Level, "info")
	setStr(&cfg.Log.Format, "console")
	setStr(&cfg.Log.Output, "stdout")

	setDur(&cfg.HTTP.ReadTimeout, 15*time.Second)
	setDur(&cfg.HTTP.WriteTimeout, 15*time.Second)
	setDur(&cfg.HTTP.IdleTimeout, 60*time.Second)
	setInt(&cfg.HTTP.MaxHeaderBytes, 1<<20)
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}

	setInt(&cfg.SMTP.Port, 587)

	setStr(&cfg.DocStore.Driver, "filesystem")
	setStr(&cfg.DocStore.BasePath, "./documents")

	setStr(&cfg.Telemetry.CollectorEndpoint, "localhost:4317")
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	setStr(&cfg.Telemetry.ServiceName, "florexport-backend")
}

// validate rejects settings that would misbehave at runtime. Production
// tightens the rules: secrets become mandatory and plaintext transports are
// refused.
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.DocStore.Driver == "s3" && c.DocStore.Bucket == "" {
			return fmt.Errorf("docstore.bucket is required for the s3 driver")
		}
	}

	switch c.DocStore.Driver {
	case "s3", "filesystem":
	default:
		return fmt.Errorf("docstore.driver must be 's3' or 'filesystem', got %q", c.DocStore.Driver)
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN builds the postgres connection URL. url.URL handles escaping, so
// passwords with special characters survive intact.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns host:port for the Redis connection
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
