package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string

	OpenAIAPIKey string
	OpenAIModel  string
	OCREnabled   bool

	BackfillLimit  int
	AllowedOrigins []string
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, channel monitoring and bot commands will be disabled")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, signal mirroring will be disabled")
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, chart image analysis will fall back to OCR only")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.OCREnabled = true
	if v := strings.TrimSpace(os.Getenv("OCR_ENABLED")); v != "" {
		if strings.EqualFold(v, "false") {
			cfg.OCREnabled = false
		}
	}

	cfg.BackfillLimit = 10
	if v := strings.TrimSpace(os.Getenv("BACKFILL_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.BackfillLimit = n
		}
	}

	cfg.AllowedOrigins = parseOrigins(os.Getenv("ALLOWED_ORIGINS"))

	return cfg
}

func parseOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{"http://localhost:3000", "http://localhost:5173"}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		out = append(out, origin)
	}
	if len(out) == 0 {
		return []string{"http://localhost:3000", "http://localhost:5173"}
	}
	return out
}
