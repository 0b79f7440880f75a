package handle

import (
	"encoding/json"
	"net/http"

	"chat-proxy/api/internal/llm"
)

type Handle struct {
	engs *llm.Engines
	// repairJSON gates the repair pipeline per engine name; the pipeline
	// itself is vendor-agnostic.
	repairJSON map[string]bool
}

func New(engs *llm.Engines, repairJSON map[string]bool) *Handle {
	return &Handle{
		engs:       engs,
		repairJSON: repairJSON,
	}
}

// setCORS is applied to every response, including errors and preflight.
func setCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err any) {
	writeJSON(w, code, map[string]any{"error": err})
}
