package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	OutputDir    string
	CacheDBPath  string
	CacheEnabled bool

	PerseusBaseURL      string
	PerseusRateLimitRPS int
	PerseusTimeoutMs    int

	DefaultLang  string
	StartMarker  string
	LineLimit    int
	HTMLCorpusID string

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		OutputDir:    getEnv("OUTPUT_DIR", ""),
		CacheDBPath:  getEnv("CACHE_DB_PATH", filepath.Join(cwd, "data", "morph.db")),
		CacheEnabled: getEnvBool("CACHE_ENABLED", false),

		PerseusBaseURL:      getEnv("PERSEUS_BASE_URL", "http://www.perseus.tufts.edu/hopper/xmlmorph"),
		PerseusRateLimitRPS: getEnvInt("PERSEUS_RATE_LIMIT_RPS", 20),
		PerseusTimeoutMs:    getEnvInt("PERSEUS_TIMEOUT_MS", 0),

		DefaultLang:  getEnv("DEFAULT_LANG", "la"),
		StartMarker:  getEnv("START_MARKER", ""),
		LineLimit:    getEnvInt("LINE_LIMIT", 0),
		HTMLCorpusID: getEnv("HTML_CORPUS_ID", "Matthew"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
