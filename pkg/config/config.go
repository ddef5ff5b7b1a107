package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Env  string
	Port int

	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Session   SessionConfig
	Timetable TimetableConfig
	Metrics   MetricsConfig
	Docs      DocsConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SessionConfig controls where entry lists live and how the session cookie is signed.
type SessionConfig struct {
	Store        string
	CookieName   string
	Secret       string
	TTL          time.Duration
	SecureCookie bool
}

// TimetableConfig describes the weekly grid the generator fills.
type TimetableConfig struct {
	Days            []string
	PeriodsPerDay   int
	StrictConflicts bool
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// DocsConfig toggles the swagger UI. It is never served in production.
type DocsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Session = SessionConfig{
		Store:        strings.ToLower(strings.TrimSpace(v.GetString("SESSION_STORE"))),
		CookieName:   v.GetString("SESSION_COOKIE_NAME"),
		Secret:       v.GetString("SESSION_SECRET"),
		TTL:          parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		SecureCookie: v.GetBool("SESSION_SECURE_COOKIE"),
	}

	cfg.Timetable = TimetableConfig{
		Days:            splitAndTrim(v.GetString("TIMETABLE_DAYS")),
		PeriodsPerDay:   v.GetInt("TIMETABLE_PERIODS_PER_DAY"),
		StrictConflicts: v.GetBool("TIMETABLE_STRICT_CONFLICTS"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}
	cfg.Docs = DocsConfig{Enabled: v.GetBool("ENABLE_DOCS") && cfg.Env != EnvProduction}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Session.Store)
	}
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET must not be empty")
	}
	if c.Session.CookieName == "" {
		return errors.New("SESSION_COOKIE_NAME must not be empty")
	}
	return c.Timetable.Validate()
}

// Validate checks the day set is non-empty and duplicate free and that periods are positive.
func (t TimetableConfig) Validate() error {
	if len(t.Days) == 0 {
		return errors.New("TIMETABLE_DAYS must list at least one day")
	}
	seen := make(map[string]struct{}, len(t.Days))
	for _, day := range t.Days {
		key := strings.ToLower(day)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("TIMETABLE_DAYS contains %q more than once", day)
		}
		seen[key] = struct{}{}
	}
	if t.PeriodsPerDay <= 0 {
		return fmt.Errorf("TIMETABLE_PERIODS_PER_DAY must be positive, got %d", t.PeriodsPerDay)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_COOKIE_NAME", "timetable_session")
	v.SetDefault("SESSION_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_SECURE_COOKIE", false)

	v.SetDefault("TIMETABLE_DAYS", "Monday,Tuesday,Wednesday,Thursday,Friday")
	v.SetDefault("TIMETABLE_PERIODS_PER_DAY", 4)
	v.SetDefault("TIMETABLE_STRICT_CONFLICTS", false)

	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("ENABLE_DOCS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
