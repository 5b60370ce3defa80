package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"copyshop-bot/internal/bot"
	"copyshop-bot/internal/config"
	"copyshop-bot/internal/pricing"
	"copyshop-bot/internal/server"
	"copyshop-bot/internal/storage"
	"copyshop-bot/pkg/line"
	"copyshop-bot/pkg/llm"
	"copyshop-bot/pkg/logger"
	"copyshop-bot/pkg/redis"
)

// ENTRY POINT

func main() {
	// .env is for local development only; in production the environment is set
	// by the deployment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	// Price table: spreadsheet when configured, built-in defaults otherwise.
	table := pricing.DefaultTable()
	if cfg.PriceTablePath != "" {
		table, err = pricing.LoadTableXLSX(cfg.PriceTablePath, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to load price table", zap.Error(err))
		}
	} else {
		zapLogger.Info("Using default price table", zap.Int("entries", table.Len()))
	}
	tables := pricing.NewStore(table)

	policy, err := cfg.PricingPolicy()
	if err != nil {
		zapLogger.Fatal("Invalid pricing policy", zap.Error(err))
	}

	// Redis is optional: without it there is no conversation memory and no
	// rate limiting, but quotes still work.
	var memory *bot.Memory
	var limiter *bot.Limiter
	if cfg.RedisAddr != "" {
		redisClient := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx); err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		memory = bot.NewMemory(redisClient, cfg.MemoryMaxTurns, zapLogger)
		limiter = bot.NewLimiter(redisClient, cfg.RateLimit, cfg.RateLimitWindow, zapLogger)
	} else {
		zapLogger.Warn("REDIS_ADDR not set, conversation memory and rate limiting disabled")
	}

	// The quote log is optional as well.
	var quoteStorage *storage.QuoteStorage
	if cfg.DBHost != "" {
		quoteStorage, err = storage.NewQuoteStorage(ctx, storage.Config{
			Host:            cfg.DBHost,
			Port:            cfg.DBPort,
			User:            cfg.DBUser,
			Password:        cfg.DBPassword,
			Name:            cfg.DBName,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to init quote storage", zap.Error(err))
		}
		defer quoteStorage.Close()
	} else {
		zapLogger.Warn("DB_HOST not set, quote log disabled")
	}

	var completer bot.Completer
	if cfg.OpenAIAPIKey != "" {
		completer = llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, zapLogger)
	} else {
		zapLogger.Warn("OPENAI_API_KEY not set, LLM fallback disabled")
	}

	var lineClient *line.Client
	if cfg.LineChannelToken != "" {
		lineClient = line.NewClient(cfg.LineChannelToken, zapLogger)
	} else {
		zapLogger.Warn("LINE_CHANNEL_ACCESS_TOKEN not set, webhook replies disabled")
	}

	responderCfg := bot.ResponderConfig{
		Tables:  tables,
		Policy:  policy,
		LLM:     completer,
		Memory:  memory,
		Limiter: limiter,
		Logger:  zapLogger,
	}
	if quoteStorage != nil {
		responderCfg.Quotes = quoteStorage
	}
	responder := bot.NewResponder(responderCfg)

	srvCfg := server.Config{
		Responder:      responder,
		Tables:         tables,
		Line:           lineClient,
		ChannelSecret:  cfg.LineChannelSecret,
		AdminToken:     cfg.AdminToken,
		PriceTablePath: cfg.PriceTablePath,
		Logger:         zapLogger,
	}
	if quoteStorage != nil {
		srvCfg.Quotes = quoteStorage
	}
	srv := server.New(srvCfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(fmt.Sprintf(":%d", cfg.Port))
	}()

	select {
	case <-ctx.Done():
		zapLogger.Info("Shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("Server shutdown failed", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil {
			zapLogger.Fatal("Server stopped with error", zap.Error(err))
		}
	}

	zapLogger.Info("Shutdown complete")
}
