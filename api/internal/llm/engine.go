package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Engine is a single upstream LLM integration. Chat returns the raw
// completion text; normalization and JSON repair happen in the caller so
// every vendor goes through the same post-processing stage.
type Engine interface {
	Name() string
	GetModel() string
	Chat(ctx context.Context, in ChatInput) (string, error)
}

// Engines holds the configured integrations.
type Engines struct {
	Gemini Engine
	Groq   Engine
}

func (e *Engines) GetEngine(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gemini":
		return e.Gemini, nil
	case "groq":
		return e.Groq, nil
	}
	return nil, fmt.Errorf("unknown engine: %s", name)
}

// Manager keeps a per-chat engine selection (used by the Telegram bot).
type Manager struct {
	def Engine
	m   sync.Map // chatID -> Engine
}

func NewManager(defaultEngine Engine) *Manager {
	return &Manager{def: defaultEngine}
}

func (m *Manager) Get(chatID int64) Engine {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Engine)
	}
	return m.def
}

func (m *Manager) Set(chatID int64, e Engine) {
	m.m.Store(chatID, e)
}
