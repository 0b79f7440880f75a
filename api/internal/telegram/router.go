// Package telegram is a thin bot front over the same engines the HTTP
// proxy serves. One text message becomes one single-turn chat request.
package telegram

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chat-proxy/api/internal/llm"
	"chat-proxy/api/internal/repair"
	"chat-proxy/api/internal/store"
	"chat-proxy/api/internal/util"
)

type Router struct {
	Bot        *tgbotapi.BotAPI
	Engines    *llm.Engines
	EngManager *llm.Manager
	RepairJSON map[string]bool

	// ChatRepo is optional; without it every message hits the upstream API.
	ChatRepo *store.ChatRepo
	CacheAge time.Duration
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	cid := upd.Message.Chat.ID

	if upd.Message.IsCommand() {
		r.handleCommand(cid, upd.Message)
		return
	}

	text := strings.TrimSpace(upd.Message.Text)
	if text == "" {
		return
	}
	r.handleChat(cid, text)
}

func (r *Router) handleCommand(cid int64, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		r.send(cid, "Send me a message and I will forward it to the current LLM engine.\nCommands: /engine gemini|groq, /health")
	case "engine":
		name := strings.TrimSpace(msg.CommandArguments())
		eng, err := r.Engines.GetEngine(name)
		if err != nil {
			r.send(cid, "Unknown engine. Use: /engine gemini|groq")
			return
		}
		r.EngManager.Set(cid, eng)
		r.send(cid, "Engine switched to "+eng.Name()+" ("+eng.GetModel()+")")
	case "health":
		eng := r.EngManager.Get(cid)
		r.send(cid, "OK: engine="+eng.Name()+" model="+eng.GetModel())
	default:
		r.send(cid, "Unknown command")
	}
}

func (r *Router) handleChat(cid int64, text string) {
	eng := r.EngManager.Get(cid)
	in := llm.ChatInput{Messages: []llm.Message{{Role: "user", Content: text}}}

	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
	defer cancel()

	hash := store.RequestHash(eng.Name(), eng.GetModel(), in)
	if r.ChatRepo != nil {
		if js, err := r.ChatRepo.Find(ctx, hash, r.CacheAge); err == nil {
			r.send(cid, renderEnvelope(js))
			return
		}
	}

	out, err := eng.Chat(ctx, in)
	if err != nil {
		r.send(cid, "Engine error: "+err.Error())
		return
	}

	var envelope any = llm.TextEnvelope(out)
	if r.RepairJSON[eng.Name()] {
		if v, ok := repair.Repair(util.StripCodeFences(out)); ok {
			envelope = v
		}
	}
	js, err := json.Marshal(envelope)
	if err != nil {
		r.send(cid, out)
		return
	}

	if r.ChatRepo != nil {
		if err := r.ChatRepo.Upsert(ctx, hash, eng.Name(), eng.GetModel(), js); err != nil {
			log.Printf("chat cache upsert: %v", err)
		}
	}
	r.send(cid, renderEnvelope(js))
}

// renderEnvelope turns a cached/normalized response into reply text: the
// plain text of a fallback envelope, or pretty-printed JSON otherwise.
func renderEnvelope(js json.RawMessage) string {
	var env llm.Envelope
	if err := json.Unmarshal(js, &env); err == nil && len(env.Content) > 0 && env.Content[0].Type == "text" {
		var b strings.Builder
		for _, c := range env.Content {
			b.WriteString(c.Text)
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			return s
		}
	}
	var pretty any
	if err := json.Unmarshal(js, &pretty); err == nil {
		if out, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			return string(out)
		}
	}
	return string(js)
}

func (r *Router) send(cid int64, text string) {
	if len(text) > 3900 {
		text = text[:3900] + "…"
	}
	if _, err := r.Bot.Send(tgbotapi.NewMessage(cid, text)); err != nil {
		log.Printf("telegram send: %v", err)
	}
}
