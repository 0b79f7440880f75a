package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chat-proxy/api/internal/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

type Engine struct {
	APIKey  string
	Model   string
	BaseURL string
	httpc   *http.Client
}

func New(key, model string) *Engine {
	return &Engine{
		APIKey:  key,
		Model:   model,
		BaseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *Engine) Name() string { return "gemini" }

func (e *Engine) GetModel() string { return e.Model }

// WithHTTPClient overrides the internal HTTP client (e.g., for custom timeouts).
func (e *Engine) WithHTTPClient(c *http.Client) *Engine {
	if c != nil {
		e.httpc = c
	}
	return e
}

// Chat calls the generateContent endpoint. The API key travels as a query
// parameter, which is how this endpoint authenticates. The returned text
// is the concatenation of all parts of the first candidate, in order.
func (e *Engine) Chat(ctx context.Context, in llm.ChatInput) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY is empty")
	}

	contents := make([]map[string]any, 0, len(in.Messages))
	for _, m := range in.Messages {
		role := "user"
		if m.Role == "assistant" || m.Role == "model" {
			role = "model"
		}
		contents = append(contents, map[string]any{
			"role":  role,
			"parts": []any{map[string]any{"text": m.Content}},
		})
	}

	body := map[string]any{"contents": contents}
	if s := strings.TrimSpace(in.System); s != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []any{map[string]any{"text": s}},
		}
	}
	payload, _ := json.Marshal(body)

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		e.BaseURL, e.Model, url.QueryEscape(e.APIKey))
	req, _ := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out struct {
		Error      json.RawMessage `json:"error"`
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("gemini %d: %s", resp.StatusCode, truncateBytes(raw, 512))
	}
	if len(out.Error) > 0 && string(out.Error) != "null" {
		return "", &llm.VendorError{Payload: out.Error}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini %d: %s", resp.StatusCode, truncateBytes(raw, 512))
	}
	if len(out.Candidates) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}

	var b strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

func truncateBytes(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
