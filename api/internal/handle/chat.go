package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"chat-proxy/api/internal/llm"
	"chat-proxy/api/internal/repair"
	"chat-proxy/api/internal/util"
)

// Chat builds the handler for one vendor endpoint. Whatever happens, the
// response is well-formed JSON with CORS headers: vendor-reported errors
// map to 400, everything else that goes wrong maps to 500, and a failed
// repair is not an error at all — it degrades to the text envelope.
func (h *Handle) Chat(engineName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORS(w)

		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
			return
		case http.MethodPost:
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var in llm.ChatInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusInternalServerError, "bad json: "+err.Error())
			return
		}

		engine, err := h.engs.GetEngine(engineName)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), requestDeadline(r))
		defer cancel()

		text, err := engine.Chat(ctx, in)
		if err != nil {
			var ve *llm.VendorError
			if errors.As(err, &ve) {
				writeError(w, http.StatusBadRequest, ve.Payload)
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		if h.repairJSON[engine.Name()] {
			if v, ok := repair.Repair(util.StripCodeFences(text)); ok {
				writeJSON(w, http.StatusOK, v)
				return
			}
		}
		writeJSON(w, http.StatusOK, llm.TextEnvelope(text))
	}
}

func requestDeadline(r *http.Request) time.Duration {
	deadline := 180 * time.Second
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	return deadline
}
