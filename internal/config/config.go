package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	JWTSecret      string
	MenuPath       string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
}

// Load reads configuration from the environment, with a .env file as
// fallback for local development.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:      getEnv("PORT", "8081"),
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		MenuPath:  getEnv("MENU_PATH", "menu.json"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS",
			"http://localhost:5173")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
