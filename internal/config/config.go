package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	FAQSourceFile     = "file"
	FAQSourcePostgres = "postgres"
)

type Config struct {
	Port             string
	GinMode          string
	LogLevel         string
	DatabaseURL      string
	EnableDB         bool
	FAQSource        string
	FAQPath          string
	ModelPath        string
	StaticRoot       string
	CORSOrigins      []string
	MaxMessageLength int
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "release"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		EnableDB:    strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		FAQSource:   strings.ToLower(getEnv("FAQ_SOURCE", FAQSourceFile)),
		FAQPath:     getEnv("FAQ_PATH", "data/faq.json"),
		ModelPath:   getEnv("MODEL_PATH", "data/model.yaml"),
		StaticRoot:  os.Getenv("STATIC_ROOT"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	maxLen, err := strconv.Atoi(getEnv("MAX_MESSAGE_LENGTH", "500"))
	if err != nil || maxLen <= 0 {
		return nil, fmt.Errorf("MAX_MESSAGE_LENGTH must be a positive integer")
	}
	cfg.MaxMessageLength = maxLen

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	switch cfg.FAQSource {
	case FAQSourceFile:
	case FAQSourcePostgres:
		if !cfg.EnableDB {
			return nil, fmt.Errorf("FAQ_SOURCE=postgres requires ENABLE_DB=true")
		}
	default:
		return nil, fmt.Errorf("unknown FAQ_SOURCE %q", cfg.FAQSource)
	}

	if cfg.StaticRoot == "" {
		cfg.StaticRoot = detectStaticRoot()
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// detectStaticRoot looks for index.html in the working directory and up to
// two parents.
func detectStaticRoot() string {
	startDir, err := os.Getwd()
	if err != nil {
		return "."
	}

	candidates := []string{
		startDir,
		filepath.Join(startDir, "web"),
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}

	for _, dir := range candidates {
		if fileExists(filepath.Join(dir, "index.html")) {
			return dir
		}
	}

	return startDir
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
