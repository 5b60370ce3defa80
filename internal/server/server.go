// Package server exposes the bot over HTTP: the web chat widget, the LINE
// webhook and a couple of owner-only admin endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"copyshop-bot/internal/bot"
	"copyshop-bot/internal/pricing"
	"copyshop-bot/pkg/line"
)

// QuoteExporter is the optional admin report hook; the postgres quote log
// implements it.
type QuoteExporter interface {
	ExportQuotesToExcel(ctx context.Context, limit int) (string, error)
}

type Config struct {
	Responder      *bot.Responder
	Tables         *pricing.Store
	Line           *line.Client // nil disables webhook replies
	ChannelSecret  string
	AdminToken     string
	PriceTablePath string
	Quotes         QuoteExporter // nil disables the quote export endpoint
	Logger         *zap.Logger
}

type Server struct {
	app            *fiber.App
	responder      *bot.Responder
	tables         *pricing.Store
	line           *line.Client
	channelSecret  string
	adminToken     string
	priceTablePath string
	quotes         QuoteExporter
	logger         *zap.Logger
}

func New(cfg Config) *Server {
	s := &Server{
		app:            fiber.New(fiber.Config{DisableStartupMessage: true}),
		responder:      cfg.Responder,
		tables:         cfg.Tables,
		line:           cfg.Line,
		channelSecret:  cfg.ChannelSecret,
		adminToken:     cfg.AdminToken,
		priceTablePath: cfg.PriceTablePath,
		quotes:         cfg.Quotes,
		logger:         cfg.Logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/", s.handleWidget)
	s.app.Get("/healthz", s.handleHealth)
	s.app.Post("/chat", s.handleChat)
	s.app.Post("/webhook", s.handleWebhook)
	s.app.Post("/admin/reload", s.requireAdmin(s.handleReload))
	s.app.Post("/admin/quotes/export", s.requireAdmin(s.handleQuoteExport))
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleWidget(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.SendString(widgetHTML)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	session := req.SessionID
	if session == "" {
		session = "web-" + c.IP()
	}

	reply := s.responder.Respond(c.Context(), session, req.Message)
	return c.JSON(chatResponse{Reply: reply})
}

// LINE webhook payload, the fields we use.
type lineWebhook struct {
	Events []lineEvent `json:"events"`
}

type lineEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

func (s *Server) handleWebhook(c *fiber.Ctx) error {
	body := c.Body()

	if s.channelSecret != "" {
		if !ValidateSignature(s.channelSecret, body, c.Get("X-Line-Signature")) {
			s.logger.Warn("Invalid webhook signature")
			return c.SendStatus(fiber.StatusBadRequest)
		}
	}

	var payload lineWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	for _, event := range payload.Events {
		if event.Type != "message" || event.Message.Type != "text" {
			continue
		}

		session := "line-" + event.Source.UserID
		reply := s.responder.Respond(c.Context(), session, event.Message.Text)

		if s.line == nil {
			s.logger.Debug("LINE client not configured, dropping reply",
				zap.String("session", session))
			continue
		}
		if err := s.line.Reply(c.Context(), event.ReplyToken, reply); err != nil {
			s.logger.Error("Failed to reply to LINE",
				zap.String("session", session),
				zap.Error(err))
		}
	}

	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) requireAdmin(handler fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s.adminToken == "" {
			return c.SendStatus(fiber.StatusNotFound)
		}
		if c.Get("Authorization") != "Bearer "+s.adminToken {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return handler(c)
	}
}

// handleReload re-reads the price spreadsheet and swaps the table snapshot
// atomically; in-flight quotes keep the snapshot they already loaded.
func (s *Server) handleReload(c *fiber.Ctx) error {
	if s.priceTablePath == "" {
		return c.Status(fiber.StatusConflict).
			JSON(fiber.Map{"error": "no price table path configured"})
	}

	table, err := pricing.LoadTableXLSX(s.priceTablePath, s.logger)
	if err != nil {
		s.logger.Error("Price table reload failed", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"error": fmt.Sprintf("reload failed: %v", err)})
	}

	s.tables.Swap(table)
	s.logger.Info("Price table reloaded", zap.Int("entries", table.Len()))
	return c.JSON(fiber.Map{"entries": table.Len()})
}

func (s *Server) handleQuoteExport(c *fiber.Ctx) error {
	if s.quotes == nil {
		return c.Status(fiber.StatusConflict).
			JSON(fiber.Map{"error": "quote log not configured"})
	}

	path, err := s.quotes.ExportQuotesToExcel(c.Context(), 1000)
	if err != nil {
		s.logger.Error("Quote export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "export failed"})
	}
	return c.JSON(fiber.Map{"path": path})
}
