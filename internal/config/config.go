package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Catalog validation limits. Enforced on manual entry, edits and bulk import.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MinPrice             = 0.01
	MaxPrice             = 1000000
)

// PageSize is the fixed page size for paginated bot listings.
const PageSize = 10

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	BotToken      string
	AdminPassword string
	WebAppURL     string

	DatabasePath string
	ExcelPath    string
	PhotosPath   string
	StaticPath   string
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "5000"),
		Env:  getEnv("ENV", "development"),

		BotToken:      getEnv("BOT_TOKEN", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		WebAppURL:     getEnv("WEBAPP_URL", "https://localhost:5000"),

		DatabasePath: getEnv("DATABASE_PATH", "data/shop.db"),
		ExcelPath:    getEnv("EXCEL_PATH", "exports/orders.xlsx"),
		PhotosPath:   getEnv("PHOTOS_PATH", "web/static/assets/photos"),
		StaticPath:   getEnv("STATIC_PATH", "web/static"),
	}

	if cfg.BotToken == "" {
		return nil, errors.New("BOT_TOKEN is not set")
	}

	// Make sure writable directories exist before anything opens files in them.
	for _, dir := range []string{
		filepath.Dir(cfg.DatabasePath),
		filepath.Dir(cfg.ExcelPath),
		cfg.PhotosPath,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
