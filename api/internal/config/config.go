package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	// Per-engine toggle for the JSON repair stage. Groq is prompted for
	// JSON-only output so repair is on by default; Gemini returns free text.
	GeminiJSON bool
	GroqJSON   bool

	TelegramBotToken string
	WebhookURL       string
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8000"),

		GeminiAPIKey: mustEnv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GroqAPIKey:   mustEnv("GROQ_API_KEY"),
		GroqModel:    getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),

		GeminiJSON: getBool("GEMINI_JSON", false),
		GroqJSON:   getBool("GROQ_JSON", true),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),
	}
}

// RepairJSON returns the per-engine repair toggles keyed by engine name.
func (c *Config) RepairJSON() map[string]bool {
	return map[string]bool{
		"gemini": c.GeminiJSON,
		"groq":   c.GroqJSON,
	}
}
