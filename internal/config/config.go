package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	AllowedOrigin           string
	DatabaseURL             string
	RunMigrations           bool
	RedisAddr               string
	RedisPassword           string
	RedisDB                 int
	SettingsCacheTTLSeconds int
	AuthSecret              string
	AccessTokenTTLMinutes   int
	LogLevel                string
	LogFormat               string
	MetricsEnabled          bool
	SeedAdminPassword       string
	SeedManagerPassword     string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first without overriding variables already set.
func Load() Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	cacheTTL, err := strconv.Atoi(getEnv("SETTINGS_CACHE_TTL_SECONDS", "30"))
	if err != nil || cacheTTL < 1 {
		cacheTTL = 30
	}
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}

	return Config{
		Port:                    getEnv("PORT", "8080"),
		AllowedOrigin:           getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		RunMigrations:           getBool("RUN_MIGRATIONS", true),
		RedisAddr:               os.Getenv("REDIS_ADDR"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 redisDB,
		SettingsCacheTTLSeconds: cacheTTL,
		AuthSecret:              strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes:   tokenTTL,
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "console"),
		MetricsEnabled:          getBool("METRICS_ENABLED", true),
		SeedAdminPassword:       os.Getenv("SEED_ADMIN_PASSWORD"),
		SeedManagerPassword:     os.Getenv("SEED_MANAGER_PASSWORD"),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getBool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
