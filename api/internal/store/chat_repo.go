package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"io"
	"time"

	"chat-proxy/api/internal/llm"
)

var ErrNotFound = sql.ErrNoRows

// ChatRepo caches normalized completions keyed by a hash of the request,
// so repeated identical questions skip the upstream call.
type ChatRepo struct{ DB *sql.DB }

func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{DB: db} }

// RequestHash derives the cache key from everything that influences the
// completion: engine, model and the full conversation. NUL separators keep
// field boundaries unambiguous.
func RequestHash(engine, model string, in llm.ChatInput) string {
	h := sha256.New()
	_, _ = io.WriteString(h, engine)
	h.Write([]byte{0})
	_, _ = io.WriteString(h, model)
	h.Write([]byte{0})
	_, _ = io.WriteString(h, in.System)
	for _, m := range in.Messages {
		h.Write([]byte{0})
		_, _ = io.WriteString(h, m.Role)
		h.Write([]byte{0})
		_, _ = io.WriteString(h, m.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Init creates the cache table when it does not exist yet.
func (r *ChatRepo) Init(ctx context.Context) error {
	const q = `
create table if not exists chat_cache (
  request_hash  text primary key,
  engine        text not null,
  model         text not null,
  response_json jsonb not null,
  created_at    timestamptz not null default now()
)`
	_, err := r.DB.ExecContext(ctx, q)
	return err
}

// Find returns the cached envelope for hash. If maxAge > 0 and the row is
// older, it reports ErrNotFound so the caller asks the LLM again.
func (r *ChatRepo) Find(ctx context.Context, hash string, maxAge time.Duration) (json.RawMessage, error) {
	const q = `select response_json, created_at
	           from chat_cache
	           where request_hash=$1`
	var (
		js []byte
		ts time.Time
	)
	if err := r.DB.QueryRowContext(ctx, q, hash).Scan(&js, &ts); err != nil {
		return nil, err
	}
	if maxAge > 0 && time.Since(ts) > maxAge {
		return nil, ErrNotFound
	}
	if !json.Valid(js) {
		// broken cache row, treat as a miss
		return nil, ErrNotFound
	}
	return js, nil
}

// Upsert stores or refreshes the cached envelope for hash.
func (r *ChatRepo) Upsert(ctx context.Context, hash, engine, model string, response json.RawMessage) error {
	const q = `
insert into chat_cache (request_hash, engine, model, response_json)
values ($1,$2,$3,$4)
on conflict (request_hash)
do update set engine=excluded.engine, model=excluded.model,
              response_json=excluded.response_json, created_at=now()`
	_, err := r.DB.ExecContext(ctx, q, hash, engine, model, []byte(response))
	return err
}
