package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"chat-proxy/api/internal/config"
	"chat-proxy/api/internal/handle"
	"chat-proxy/api/internal/llm"
	"chat-proxy/api/internal/llm/gemini"
	"chat-proxy/api/internal/llm/groq"
)

func main() {
	cfg := config.Load()

	// Prefer platform PORT env var; fallback to cfg.Port; then to 8000
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	} else if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8000"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	engines := &llm.Engines{
		Gemini: gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel),
		Groq:   groq.New(cfg.GroqAPIKey, cfg.GroqModel),
	}
	h := handle.New(engines, cfg.RepairJSON())

	mux.HandleFunc("/v1/chat/gemini", h.Chat("gemini"))
	mux.HandleFunc("/v1/chat/groq", h.Chat("groq"))

	addr := ":" + cfg.Port
	log.Printf("chat-proxy listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
