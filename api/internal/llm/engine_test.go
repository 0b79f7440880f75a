package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct{ name string }

func (f *fakeEngine) Name() string                                    { return f.name }
func (f *fakeEngine) GetModel() string                                { return "fake" }
func (f *fakeEngine) Chat(context.Context, ChatInput) (string, error) { return "", nil }

func TestGetEngine(t *testing.T) {
	gem := &fakeEngine{name: "gemini"}
	grq := &fakeEngine{name: "groq"}
	engs := &Engines{Gemini: gem, Groq: grq}

	tests := []struct {
		in      string
		want    Engine
		wantErr bool
	}{
		{in: "gemini", want: gem},
		{in: "groq", want: grq},
		{in: " Groq ", want: grq},
		{in: "", want: gem}, // default
		{in: "claude", wantErr: true},
	}
	for _, tt := range tests {
		got, err := engs.GetEngine(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Same(t, tt.want, got, tt.in)
	}
}

func TestManagerPerChatSelection(t *testing.T) {
	def := &fakeEngine{name: "gemini"}
	other := &fakeEngine{name: "groq"}
	m := NewManager(def)

	assert.Same(t, def, m.Get(1))
	m.Set(1, other)
	assert.Same(t, other, m.Get(1))
	assert.Same(t, def, m.Get(2))
}

func TestTextEnvelope(t *testing.T) {
	js, err := json.Marshal(TextEnvelope("hello\nworld"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"hello\nworld"}]}`, string(js))
}

func TestVendorErrorMessage(t *testing.T) {
	err := &VendorError{Payload: json.RawMessage(`{"message":"nope"}`)}
	assert.Contains(t, err.Error(), `"nope"`)
}
