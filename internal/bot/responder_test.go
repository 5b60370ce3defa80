package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"copyshop-bot/internal/pricing"
	"copyshop-bot/pkg/llm"
)

// In-memory SessionStore so responder tests run without redis.
type fakeStore struct {
	history map[string][][]byte
	counts  map[string]int64
	failing bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		history: make(map[string][][]byte),
		counts:  make(map[string]int64),
	}
}

var errStoreDown = errors.New("store down")

func (f *fakeStore) AppendHistory(_ context.Context, key string, turn []byte, maxLen int) error {
	if f.failing {
		return errStoreDown
	}
	f.history[key] = append(f.history[key], turn)
	if len(f.history[key]) > maxLen {
		f.history[key] = f.history[key][len(f.history[key])-maxLen:]
	}
	return nil
}

func (f *fakeStore) GetHistory(_ context.Context, key string) ([][]byte, error) {
	if f.failing {
		return nil, errStoreDown
	}
	return f.history[key], nil
}

func (f *fakeStore) Del(_ context.Context, key string) error {
	if f.failing {
		return errStoreDown
	}
	delete(f.history, key)
	return nil
}

func (f *fakeStore) Incr(_ context.Context, key string) (int64, error) {
	if f.failing {
		return 0, errStoreDown
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeStore) Expire(_ context.Context, _ string, _ time.Duration) (bool, error) {
	if f.failing {
		return false, errStoreDown
	}
	return true, nil
}

type fakeCompleter struct {
	reply       string
	err         error
	gotHistory  []llm.Message
	gotUserText string
}

func (f *fakeCompleter) Complete(_ context.Context, _ string, history []llm.Message, userText string) (string, error) {
	f.gotHistory = history
	f.gotUserText = userText
	return f.reply, f.err
}

type fakeRecorder struct {
	quotes []pricing.Quote
}

func (f *fakeRecorder) RecordQuote(_ context.Context, _ string, q pricing.Quote) error {
	f.quotes = append(f.quotes, q)
	return nil
}

func newTestResponder(t *testing.T, cfg ResponderConfig) *Responder {
	t.Helper()
	if cfg.Tables == nil {
		cfg.Tables = pricing.NewStore(pricing.DefaultTable())
	}
	if cfg.Policy.MaxQuantity == 0 {
		cfg.Policy = pricing.DefaultPolicy()
	}
	cfg.Logger = zap.NewNop()
	return NewResponder(cfg)
}

func TestRespond_Greeting(t *testing.T) {
	r := newTestResponder(t, ResponderConfig{})
	reply := r.Respond(context.Background(), "s1", "สวัสดีครับ")
	assert.Equal(t, GreetingMessage(), reply)
}

func TestRespond_Quote(t *testing.T) {
	recorder := &fakeRecorder{}
	r := newTestResponder(t, ResponderConfig{Quotes: recorder})

	reply := r.Respond(context.Background(), "s1", "A4 ขาวดำ หน้าเดียว 50 หน้า")
	assert.Contains(t, reply, "ราคาสุทธิ: 25.00 บาท")

	require.Len(t, recorder.quotes, 1)
	assert.Equal(t, 50, recorder.quotes[0].Request.Quantity)
}

func TestRespond_QuoteFailure(t *testing.T) {
	r := newTestResponder(t, ResponderConfig{})
	reply := r.Respond(context.Background(), "s1", "A4 ขาวดำ หน้าเดียว 20000 หน้า")
	assert.Contains(t, reply, "จำนวนหน้ามากเกินไป")
}

func TestRespond_PriceNotFoundListsOptions(t *testing.T) {
	r := newTestResponder(t, ResponderConfig{})
	reply := r.Respond(context.Background(), "s1", "A5 สี หน้าเดียว 10 หน้า")
	assert.Contains(t, reply, "ไม่พบข้อมูลราคา")
	assert.Contains(t, reply, "A4 ขาวดำ หน้าเดียว: 0.5 บาท/หน้า")
}

func TestRespond_PriceTableIntent(t *testing.T) {
	r := newTestResponder(t, ResponderConfig{})
	reply := r.Respond(context.Background(), "s1", "ขอดูตารางราคา")
	assert.Equal(t, FormatPriceTable(pricing.DefaultTable()), reply)
}

func TestRespond_FallbackWithoutLLM(t *testing.T) {
	r := newTestResponder(t, ResponderConfig{})
	reply := r.Respond(context.Background(), "s1", "ร้านเปิดกี่โมง")
	assert.Equal(t, HelpMessage(pricing.DefaultTable()), reply)
}

func TestRespond_FallbackWithLLM(t *testing.T) {
	completer := &fakeCompleter{reply: "เปิด 8 โมงเช้าค่ะ"}
	store := newFakeStore()
	r := newTestResponder(t, ResponderConfig{
		LLM:    completer,
		Memory: NewMemory(store, 10, zap.NewNop()),
	})

	reply := r.Respond(context.Background(), "s1", "ร้านเปิดกี่โมง")
	assert.Equal(t, "เปิด 8 โมงเช้าค่ะ", reply)
	assert.Equal(t, "ร้านเปิดกี่โมง", completer.gotUserText)

	// Both turns were remembered and flow into the next completion.
	reply = r.Respond(context.Background(), "s1", "มีบริการส่งไหม")
	assert.Equal(t, "เปิด 8 โมงเช้าค่ะ", reply)
	require.Len(t, completer.gotHistory, 2)
	assert.Equal(t, "user", completer.gotHistory[0].Role)
	assert.Equal(t, "ร้านเปิดกี่โมง", completer.gotHistory[0].Content)
	assert.Equal(t, "assistant", completer.gotHistory[1].Role)
}

func TestRespond_LLMErrorFallsBackToHelp(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("api down")}
	r := newTestResponder(t, ResponderConfig{LLM: completer})

	reply := r.Respond(context.Background(), "s1", "ร้านเปิดกี่โมง")
	assert.Equal(t, HelpMessage(pricing.DefaultTable()), reply)
}

func TestRespond_ResetClearsMemory(t *testing.T) {
	store := newFakeStore()
	memory := NewMemory(store, 10, zap.NewNop())
	r := newTestResponder(t, ResponderConfig{Memory: memory})

	r.Respond(context.Background(), "s1", "A4 50")
	require.NotEmpty(t, store.history[historyKey("s1")])

	reply := r.Respond(context.Background(), "s1", "เริ่มใหม่")
	assert.Equal(t, ResetMessage(), reply)
	// The reset exchange itself is the only remaining history.
	require.Len(t, store.history[historyKey("s1")], 2)
}

func TestRespond_RateLimited(t *testing.T) {
	store := newFakeStore()
	limiter := NewLimiter(store, 1, time.Minute, zap.NewNop())
	r := newTestResponder(t, ResponderConfig{Limiter: limiter})

	first := r.Respond(context.Background(), "s1", "A4 50")
	assert.Contains(t, first, "ราคาสุทธิ")

	second := r.Respond(context.Background(), "s1", "A4 50")
	assert.Equal(t, RateLimitMessage(), second)

	// Other sessions are unaffected.
	other := r.Respond(context.Background(), "s2", "A4 50")
	assert.Contains(t, other, "ราคาสุทธิ")
}

func TestRespond_RedisDownStillQuotes(t *testing.T) {
	store := newFakeStore()
	store.failing = true
	r := newTestResponder(t, ResponderConfig{
		Memory:  NewMemory(store, 10, zap.NewNop()),
		Limiter: NewLimiter(store, 1, time.Minute, zap.NewNop()),
	})

	// Memory and limiter degrade; the quote still goes out.
	reply := r.Respond(context.Background(), "s1", "A4 ขาวดำ หน้าเดียว 50 หน้า")
	assert.Contains(t, reply, "ราคาสุทธิ: 25.00 บาท")
}

func TestRespond_EmptyMessage(t *testing.T) {
	r := newTestResponder(t, ResponderConfig{})
	reply := r.Respond(context.Background(), "s1", "   ")
	assert.Equal(t, HelpMessage(pricing.DefaultTable()), reply)
}

func TestMemory_BoundedFIFO(t *testing.T) {
	store := newFakeStore()
	memory := NewMemory(store, 4, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		memory.Append(ctx, "s1", "user", "ข้อความ")
	}
	history := memory.History(ctx, "s1")
	assert.Len(t, history, 4)
}
