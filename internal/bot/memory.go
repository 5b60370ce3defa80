package bot

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"copyshop-bot/pkg/llm"
)

// CONVERSATION MEMORY

// SessionStore is the slice of the redis client the bot needs. Keeping it
// an interface lets tests run without a redis server.
type SessionStore interface {
	AppendHistory(ctx context.Context, key string, turn []byte, maxLen int) error
	GetHistory(ctx context.Context, key string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
}

// Memory is a bounded FIFO of past turns per session, held in redis with a
// TTL. It only feeds context to the LLM fallback; pricing never depends on
// it. All operations are best-effort: a redis failure is logged and the
// conversation continues without history.
type Memory struct {
	store    SessionStore
	maxTurns int
	logger   *zap.Logger
}

func NewMemory(store SessionStore, maxTurns int, logger *zap.Logger) *Memory {
	return &Memory{
		store:    store,
		maxTurns: maxTurns,
		logger:   logger,
	}
}

func historyKey(session string) string {
	return "chat:history:" + session
}

func (m *Memory) Append(ctx context.Context, session, role, content string) {
	turn, err := json.Marshal(llm.Message{Role: role, Content: content})
	if err != nil {
		m.logger.Error("Failed to marshal turn", zap.Error(err))
		return
	}
	if err := m.store.AppendHistory(ctx, historyKey(session), turn, m.maxTurns); err != nil {
		m.logger.Warn("Failed to append conversation turn",
			zap.String("session", session),
			zap.Error(err))
	}
}

func (m *Memory) History(ctx context.Context, session string) []llm.Message {
	raw, err := m.store.GetHistory(ctx, historyKey(session))
	if err != nil {
		m.logger.Warn("Failed to load conversation history",
			zap.String("session", session),
			zap.Error(err))
		return nil
	}
	history := make([]llm.Message, 0, len(raw))
	for _, data := range raw {
		var msg llm.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		history = append(history, msg)
	}
	return history
}

func (m *Memory) Clear(ctx context.Context, session string) {
	if err := m.store.Del(ctx, historyKey(session)); err != nil {
		m.logger.Warn("Failed to clear conversation history",
			zap.String("session", session),
			zap.Error(err))
	}
}
