// Package config loads the service configuration from config.toml and
// SEWLINE_-prefixed environment variables, applies defaults, and
// validates the result.
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
	Log       LogConfig
	HTTP      HTTPConfig
	Cache     CacheConfig
	Telemetry TelemetryConfig
	Profiling ProfilingConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name         string
	Env          string
	Port         string
	BaseCurrency string // company base currency for all P&L figures
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
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// CacheConfig holds report cache configuration
type CacheConfig struct {
	Enabled   bool
	Backend   string        // "redis" or "memory"
	ReportTTL time.Duration // how long computed P&L reports stay cached
}

// TelemetryConfig holds OpenTelemetry configuration. Metrics, traces and
// the zap log bridge all export to the same collector endpoint.
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string // OTEL Collector endpoint (e.g., "localhost:4317")
	ServiceName       string
	Insecure          bool // use insecure (non-TLS) connection, development only

	LogsEnabled        bool          // mirror zap output to the collector as OTLP logs
	SlowQueryThreshold time.Duration // DB statements slower than this are flagged on spans and counted
}

// ProfilingConfig holds continuous profiling (Pyroscope) settings
type ProfilingConfig struct {
	Enabled       bool
	ServerAddress string // Pyroscope server URL, e.g. "http://localhost:4040"
	AuthUser      string
	AuthPassword  string
}

// Load reads configuration with the following priority, highest first:
// SEWLINE_-prefixed environment variables, config.toml, built-in
// defaults. A missing config file is fine; missing env vars are fine;
// an invalid combination is not.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("SEWLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App:       loadApp(v),
		Database:  loadDatabase(v),
		Redis:     loadRedis(v),
		Log:       loadLog(v),
		HTTP:      loadHTTP(v),
		Cache:     loadCache(v),
		Telemetry: loadTelemetry(v),
		Profiling: loadProfiling(v),
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadApp(v *viper.Viper) AppConfig {
	return AppConfig{
		Name:         v.GetString("app.name"),
		Env:          v.GetString("app.env"),
		Port:         v.GetString("app.port"),
		BaseCurrency: v.GetString("app.base_currency"),
	}
}

func loadDatabase(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
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
	}
}

func loadRedis(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Host:     v.GetString("redis.host"),
		Port:     v.GetInt("redis.port"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
}

func loadLog(v *viper.Viper) LogConfig {
	return LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		Output: v.GetString("log.output"),
	}
}

func loadHTTP(v *viper.Viper) HTTPConfig {
	return HTTPConfig{
		ReadTimeout:      v.GetDuration("http.read_timeout"),
		WriteTimeout:     v.GetDuration("http.write_timeout"),
		IdleTimeout:      v.GetDuration("http.idle_timeout"),
		MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
		MaxBodySize:      v.GetInt64("http.max_body_size"),
		CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
		CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
		TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),

		RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
		RateLimitRequests: v.GetInt("http.rate_limit_requests"),
		RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
	}
}

func loadCache(v *viper.Viper) CacheConfig {
	return CacheConfig{
		Enabled:   v.GetBool("cache.enabled"),
		Backend:   v.GetString("cache.backend"),
		ReportTTL: v.GetDuration("cache.report_ttl"),
	}
}

func loadTelemetry(v *viper.Viper) TelemetryConfig {
	return TelemetryConfig{
		Enabled:            v.GetBool("telemetry.enabled"),
		CollectorEndpoint:  v.GetString("telemetry.collector_endpoint"),
		ServiceName:        v.GetString("telemetry.service_name"),
		Insecure:           v.GetBool("telemetry.insecure"),
		LogsEnabled:        v.GetBool("telemetry.logs_enabled"),
		SlowQueryThreshold: v.GetDuration("telemetry.slow_query_threshold"),
	}
}

func loadProfiling(v *viper.Viper) ProfilingConfig {
	return ProfilingConfig{
		Enabled:       v.GetBool("profiling.enabled"),
		ServerAddress: v.GetString("profiling.server_address"),
		AuthUser:      v.GetString("profiling.auth_user"),
		AuthPassword:  v.GetString("profiling.auth_password"),
	}
}

// fallback replaces a zero value with its default. A deliberate zero in
// config therefore means "use the default", which validate relies on
// for the pool sizes.
func fallback[T comparable](field *T, def T) {
	var zero T
	if *field == zero {
		*field = def
	}
}

func (c *Config) applyDefaults() {
	fallback(&c.App.Name, "sewline-backend")
	fallback(&c.App.Env, "development")
	fallback(&c.App.Port, "8080")
	fallback(&c.App.BaseCurrency, "CNY")

	fallback(&c.Database.Host, "localhost")
	fallback(&c.Database.Port, 5432)
	fallback(&c.Database.User, "postgres")
	fallback(&c.Database.DBName, "sewline")
	fallback(&c.Database.SSLMode, "disable")
	fallback(&c.Database.MaxOpenConns, 25)
	fallback(&c.Database.MaxIdleConns, 5)
	fallback(&c.Database.ConnMaxLifetime, 60)
	fallback(&c.Database.ConnMaxIdleTime, 30)

	fallback(&c.Redis.Host, "localhost")
	fallback(&c.Redis.Port, 6379)

	fallback(&c.Log.Level, "info")
	fallback(&c.Log.Format, "console")
	fallback(&c.Log.Output, "stdout")

	fallback(&c.HTTP.ReadTimeout, 15*time.Second)
	fallback(&c.HTTP.WriteTimeout, 15*time.Second)
	fallback(&c.HTTP.IdleTimeout, 60*time.Second)
	fallback(&c.HTTP.MaxHeaderBytes, 1<<20)
	fallback(&c.HTTP.MaxBodySize, 10<<20)
	fallback(&c.HTTP.RateLimitRequests, 300)
	fallback(&c.HTTP.RateLimitWindow, time.Minute)

	// CORS origins intentionally have no "*" fallback: an empty list means
	// no cross-origin requests until explicitly configured.
	if len(c.HTTP.CORSAllowMethods) == 0 {
		c.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(c.HTTP.CORSAllowHeaders) == 0 {
		c.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}

	fallback(&c.Cache.Backend, "memory")
	fallback(&c.Cache.ReportTTL, 10*time.Minute)

	fallback(&c.Telemetry.CollectorEndpoint, "localhost:4317")
	fallback(&c.Telemetry.ServiceName, "sewline-backend")
	fallback(&c.Telemetry.SlowQueryThreshold, 200*time.Millisecond)

	fallback(&c.Profiling.ServerAddress, "http://localhost:4040")
}

// validate performs validation on the configuration
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

	if len(c.App.BaseCurrency) != 3 {
		return fmt.Errorf("app.base_currency must be a 3-letter ISO code, got %q", c.App.BaseCurrency)
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got %q", c.Cache.Backend)
	}

	if c.App.Env == "production" {
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
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
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

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
