package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chat-proxy/api/internal/llm"
)

const defaultBaseURL = "https://api.groq.com/openai"

// finalOutputRequirements is appended to every conversation. Groq replies
// feed the JSON repair pipeline, so the model is told up front to emit
// nothing but a parseable object.
const finalOutputRequirements = `FINAL OUTPUT REQUIREMENTS:
- Respond with ONLY a valid JSON object, no text before or after it and no markdown fences.
- Inside JSON string values use single quotes for quoted speech, never unescaped double quotes.
- Do not use trailing commas.`

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

func (e *Engine) Name() string { return "groq" }

func (e *Engine) GetModel() string { return e.Model }

// WithHTTPClient overrides the internal HTTP client (e.g., for custom timeouts).
func (e *Engine) WithHTTPClient(c *http.Client) *Engine {
	if c != nil {
		e.httpc = c
	}
	return e
}

// Chat calls the OpenAI-compatible chat completions endpoint with a bearer
// token and returns the first choice's message content.
func (e *Engine) Chat(ctx context.Context, in llm.ChatInput) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("GROQ_API_KEY is empty")
	}

	messages := make([]llm.Message, 0, len(in.Messages)+2)
	if s := strings.TrimSpace(in.System); s != "" {
		messages = append(messages, llm.Message{Role: "system", Content: s})
	}
	messages = append(messages, in.Messages...)
	messages = append(messages, llm.Message{Role: "system", Content: finalOutputRequirements})

	body := map[string]any{
		"model":       e.Model,
		"messages":    messages,
		"temperature": 0,
	}
	payload, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", e.BaseURL+"/v1/chat/completions", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

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
		Error   json.RawMessage `json:"error"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("groq %d: %s", resp.StatusCode, truncateBytes(raw, 512))
	}
	if len(out.Error) > 0 && string(out.Error) != "null" {
		return "", &llm.VendorError{Payload: out.Error}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq %d: %s", resp.StatusCode, truncateBytes(raw, 512))
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("groq: empty response")
	}
	return out.Choices[0].Message.Content, nil
}

func truncateBytes(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
