package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application runtime configuration.
type Config struct {
	Env                string
	HTTPPort           string
	APIPrefix          string
	DatabaseURL        string
	JWTSecret          string
	JWTExpiresIn       time.Duration
	CORSOrigins        []string
	RateLimitPerMinute int
	LogLevel           string
	LogFormat          string
	AutoMigrate        bool
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutdownTimeout    time.Duration
}

// IsProduction reports whether internal error details must be hidden.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads environment variables and .env (if present).
func Load() (Config, error) {
	cfg, err := LoadDatabase()
	if err != nil {
		return cfg, err
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

// LoadDatabase is Load without the HTTP-only requirements; the admin CLI uses it.
func LoadDatabase() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPPort:           getEnv("HTTP_PORT", "3000"),
		APIPrefix:          strings.TrimRight(getEnv("API_PREFIX", "/api/v1"), "/"),
		DatabaseURL:        databaseURL(),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTExpiresIn:       getDuration("JWT_EXPIRES_IN", 24*time.Hour),
		CORSOrigins:        getList("CORS_ORIGIN", []string{"*"}),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 200),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		AutoMigrate:        getBool("AUTO_MIGRATE", false),
		ReadTimeout:        getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:       getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:        getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:    getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL or DB_HOST/DB_NAME is required")
	}
	return cfg, nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles one from DB_* parts.
func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	host := os.Getenv("DB_HOST")
	name := os.Getenv("DB_NAME")
	if host == "" || name == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%s", host, getEnv("DB_PORT", "5432")),
		Path:     "/" + name,
		RawQuery: "sslmode=" + getEnv("DB_SSLMODE", "disable"),
	}
	if user := os.Getenv("DB_USERNAME"); user != "" {
		u.User = url.UserPassword(user, os.Getenv("DB_PASSWORD"))
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// getDuration accepts Go durations, bare seconds, and day shorthand such as "1d".
func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		if secs, convErr := strconv.Atoi(val); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		if days, ok := strings.CutSuffix(val, "d"); ok {
			if n, convErr := strconv.Atoi(days); convErr == nil {
				return time.Duration(n) * 24 * time.Hour
			}
		}
		return fallback
	}
	return d
}
