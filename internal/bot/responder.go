// Package bot holds the chat pipeline: classify the message, try to
// extract and price a print request, otherwise fall back to the LLM or a
// static help text.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"copyshop-bot/internal/extract"
	"copyshop-bot/internal/pricing"
	"copyshop-bot/pkg/llm"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// Completer is the freeform text-generation fallback. pkg/llm implements it.
type Completer interface {
	Complete(ctx context.Context, system string, history []llm.Message, userText string) (string, error)
}

// QuoteRecorder persists successful quotes for the shop owner. Recording is
// best-effort and never delays or fails a reply.
type QuoteRecorder interface {
	RecordQuote(ctx context.Context, session string, q pricing.Quote) error
}

// ResponderConfig wires the pipeline. Tables, Policy and Logger are
// required; everything else may be nil and the corresponding feature is
// simply off.
type ResponderConfig struct {
	Tables  *pricing.Store
	Policy  pricing.Policy
	LLM     Completer
	Memory  *Memory
	Limiter *Limiter
	Quotes  QuoteRecorder
	Logger  *zap.Logger
}

type Responder struct {
	tables  *pricing.Store
	policy  pricing.Policy
	llm     Completer
	memory  *Memory
	limiter *Limiter
	quotes  QuoteRecorder
	logger  *zap.Logger
}

func NewResponder(cfg ResponderConfig) *Responder {
	return &Responder{
		tables:  cfg.Tables,
		policy:  cfg.Policy,
		llm:     cfg.LLM,
		memory:  cfg.Memory,
		limiter: cfg.Limiter,
		quotes:  cfg.Quotes,
		logger:  cfg.Logger,
	}
}

// Respond produces the reply for one inbound message. It always returns
// something to say; internal failures degrade to the help text.
func (r *Responder) Respond(ctx context.Context, session, message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return HelpMessage(r.tables.Load())
	}

	if r.limiter != nil && !r.limiter.Allow(ctx, session) {
		r.logger.Debug("Rate limited", zap.String("session", session))
		return RateLimitMessage()
	}

	reply := r.respond(ctx, session, message)

	if r.memory != nil {
		r.memory.Append(ctx, session, roleUser, message)
		r.memory.Append(ctx, session, roleAssistant, reply)
	}
	return reply
}

func (r *Responder) respond(ctx context.Context, session, message string) string {
	table := r.tables.Load()

	switch Classify(message) {
	case IntentGreeting:
		return GreetingMessage()
	case IntentReset:
		if r.memory != nil {
			r.memory.Clear(ctx, session)
		}
		return ResetMessage()
	case IntentPriceTable:
		return FormatPriceTable(table)
	}

	if req, ok := extract.Extract(message); ok {
		return r.answerQuote(ctx, session, req, table)
	}

	return r.fallback(ctx, session, message, table)
}

func (r *Responder) answerQuote(ctx context.Context, session string, req pricing.PriceRequest, table *pricing.Table) string {
	quote, err := pricing.ComputeQuote(req, table, r.policy)
	if err != nil {
		var qerr *pricing.QuoteError
		if errors.As(err, &qerr) {
			r.logger.Debug("Quote failed",
				zap.String("session", session),
				zap.String("kind", qerr.Kind.String()))
			return FormatQuoteError(qerr, r.policy.MaxQuantity)
		}
		r.logger.Error("Quote failed with unexpected error", zap.Error(err))
		return HelpMessage(table)
	}

	r.logger.Info("Quoted price",
		zap.String("session", session),
		zap.String("size", string(req.Size)),
		zap.String("color", string(req.Color)),
		zap.String("duplex", string(req.Duplex)),
		zap.Int("quantity", req.Quantity),
		zap.String("final_price", quote.FinalPrice.StringFixed(2)))

	if r.quotes != nil {
		if err := r.quotes.RecordQuote(ctx, session, quote); err != nil {
			r.logger.Warn("Failed to record quote", zap.Error(err))
		}
	}
	return FormatQuote(quote)
}

func (r *Responder) fallback(ctx context.Context, session, message string, table *pricing.Table) string {
	if r.llm == nil {
		return HelpMessage(table)
	}

	var history []llm.Message
	if r.memory != nil {
		history = r.memory.History(ctx, session)
	}

	reply, err := r.llm.Complete(ctx, systemPrompt(table), history, message)
	if err != nil {
		r.logger.Warn("LLM fallback failed",
			zap.String("session", session),
			zap.Error(err))
		return HelpMessage(table)
	}
	return reply
}

// systemPrompt anchors the LLM on the shop context and the current prices
// so freeform answers do not contradict the calculator.
func systemPrompt(table *pricing.Table) string {
	return fmt.Sprintf(
		"คุณคือผู้ช่วยของร้านถ่ายเอกสาร ตอบลูกค้าเป็นภาษาไทยอย่างสุภาพและกระชับ "+
			"ห้ามแต่งราคาเอง ใช้ตารางราคานี้เท่านั้น:\n%s\n"+
			"ถ้าลูกค้าถามราคา ให้แนะนำรูปแบบคำถาม เช่น \"A4 ขาวดำ หน้าเดียว 50 หน้า\"",
		FormatPriceTable(table))
}
