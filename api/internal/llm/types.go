package llm

import "encoding/json"

// Message is one turn of a chat conversation as the frontend sends it.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatInput is the request body accepted by every chat endpoint.
type ChatInput struct {
	System   string    `json:"system,omitempty"`
	Messages []Message `json:"messages"`
}

// ContentBlock is one element of the canonical envelope.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Envelope is the canonical response shape the frontend expects when the
// upstream text is returned as-is (no structured payload recovered).
type Envelope struct {
	Content []ContentBlock `json:"content"`
}

// TextEnvelope wraps raw model text in the canonical fallback envelope.
func TextEnvelope(text string) Envelope {
	return Envelope{Content: []ContentBlock{{Type: "text", Text: text}}}
}

// VendorError is a structured error reported by the upstream API itself
// (an "error" member in the response body), as opposed to a transport or
// decode failure. Handlers surface it verbatim with HTTP 400.
type VendorError struct {
	Payload json.RawMessage
}

func (e *VendorError) Error() string {
	return "vendor error: " + string(e.Payload)
}
