package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"support-lookup/internal/apperr"
)

// Config holds all configuration required by the API process.
// All values come from env (or an env-file loaded by the process runner).
type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Deadline  DeadlineConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Env  string
	Port int

	// TimeZone is the civil zone for display timestamps.
	TimeZone string
}

type DBConfig struct {
	// URL takes precedence over the discrete fields when set.
	URL string

	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string

	AutoMigrate bool
}

// RedisConfig is optional; an empty Host disables the in-flight limiter.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	PoolSize int
}

type DeadlineConfig struct {
	WindowHours int
}

type RateLimitConfig struct {
	MaxInFlight int
	TTL         time.Duration
}

const (
	defaultPort        = 3000
	defaultTimeZone    = "America/Sao_Paulo"
	defaultWindowHours = 48
	maxWindowHours     = 24 * 366 * 10
	defaultRedisPort   = 6379
	defaultRedisPool   = 10
	defaultMaxInFlight = 20
	defaultRateTTL     = 30 * time.Second
)

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		// PORT is accepted for platforms that inject it.
		key := "APP_PORT"
		if strings.TrimSpace(os.Getenv(key)) == "" {
			key = "PORT"
		}
		n, err := optionalInt(key, defaultPort)
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}
	c.App.TimeZone = strings.TrimSpace(os.Getenv("APP_TIMEZONE"))

	c.DB.URL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := optionalInt("DB_PORT", 5432)
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))
	{
		b, err := optionalBool("DB_AUTO_MIGRATE")
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.DB.AutoMigrate = b
	}

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := optionalInt("REDIS_PORT", defaultRedisPort)
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}
	c.Redis.Password = os.Getenv("REDIS_PASSWORD")
	{
		n, err := optionalInt("REDIS_POOL_SIZE", defaultRedisPool)
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.PoolSize = n
	}

	{
		n, err := optionalInt("DEADLINE_WINDOW_HOURS", defaultWindowHours)
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Deadline.WindowHours = n
	}

	{
		n, err := optionalInt("RATE_LIMIT_MAX_INFLIGHT", defaultMaxInFlight)
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.RateLimit.MaxInFlight = n
	}
	{
		d, err := optionalDuration("RATE_LIMIT_TTL")
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.RateLimit.TTL = d
	}

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks c and fills defaults in place.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		c.App.Env = "local"
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	if c.App.TimeZone == "" {
		c.App.TimeZone = defaultTimeZone
	}

	if c.DB.URL != "" {
		if _, err := pgx.ParseConfig(c.DB.URL); err != nil {
			// pgx error text may echo the URL; keep secrets out of the message.
			errs = append(errs, apperr.Configuration("DATABASE_URL", errors.New("not a valid connection string")))
		}
	} else {
		if c.DB.Host == "" {
			errs = append(errs, errors.New("DATABASE_URL or DB_HOST is required"))
		}
		if c.DB.Port <= 0 || c.DB.Port > 65535 {
			errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
		}
		if c.DB.User == "" {
			errs = append(errs, errors.New("DB_USER is required"))
		}
		if c.DB.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required"))
		}
		if c.DB.SSLMode == "" {
			if c.IsProduction() {
				errs = append(errs, errors.New("DB_SSLMODE is required in production"))
			} else {
				c.DB.SSLMode = "disable"
			}
		}
		if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
			errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
		}
	}

	if c.Redis.Host != "" && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}
	if c.Redis.Host != "" && c.Redis.PoolSize <= 0 {
		errs = append(errs, fmt.Errorf("REDIS_POOL_SIZE must be > 0, got %d", c.Redis.PoolSize))
	}

	if c.Deadline.WindowHours <= 0 || c.Deadline.WindowHours > maxWindowHours {
		errs = append(errs, apperr.Configuration("DEADLINE_WINDOW_HOURS",
			fmt.Errorf("must be between 1 and %d, got %d", maxWindowHours, c.Deadline.WindowHours)))
	}

	if c.RateLimit.MaxInFlight <= 0 {
		c.RateLimit.MaxInFlight = defaultMaxInFlight
	}
	if c.RateLimit.TTL <= 0 {
		c.RateLimit.TTL = defaultRateTTL
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// PostgresDSN returns the connection string. Avoid logging it; it contains secrets.
func (c Config) PostgresDSN() string {
	if c.DB.URL != "" {
		return c.DB.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func optionalInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optionalBool(key string) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

// optionalDuration returns 0 when key is unset; Validate applies the default.
func optionalDuration(key string) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration, got %q", key, v)
	}
	return d, nil
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	// errors.Join keeps each cause reachable through errors.Is/As.
	return fmt.Errorf("config errors:\n%w", errors.Join(errs...))
}
