package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env     string
	AppPort string

	DBDSN          string
	DBMaxOpenConns int

	JWTSecret string
	JWTIssuer string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowOrigins       string
	LogLevel           string
	SeedCatalog        bool
	RateLimitPerMinute int
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == "local"
}

// Load reads the process environment. Call godotenv.Load first to pick up .env.
func Load() (Config, error) {
	cfg := Config{
		Env:           get("APP_ENV", "development"),
		AppPort:       get("APP_PORT", "8080"),
		DBDSN:         os.Getenv("DB_DSN"),
		JWTSecret:     os.Getenv("AUTH_JWT_SECRET"),
		JWTIssuer:     get("AUTH_JWT_ISSUER", ""),
		RedisAddr:     get("REDIS_ADDR", ""),
		RedisPassword: get("REDIS_PASSWORD", ""),
		AllowOrigins:  lookup("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
		LogLevel:      get("LOG_LEVEL", "info"),
	}

	var missing []string
	if cfg.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "AUTH_JWT_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing env: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.DBMaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", 20); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return Config{}, err
	}
	if cfg.SeedCatalog, err = getBool("SEED_CATALOG", false); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

// lookup returns def only when k is unset. An empty value is kept.
func lookup(k, def string) string {
	v, ok := os.LookupEnv(k)
	if !ok {
		return def
	}
	return strings.TrimSpace(v)
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return n, nil
}

func getBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", k, err)
	}
	return b, nil
}
