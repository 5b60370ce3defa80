package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"copyshop-bot/internal/pricing"
	"copyshop-bot/internal/storage/migrations"
)

// QUOTE LOG (POSTGRES)

type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type QuoteStorage struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// QuoteRecord is one saved quote. The breakdown is stored so the owner can
// audit what the bot promised a customer.
type QuoteRecord struct {
	ID             int64           `db:"id"`
	Session        string          `db:"session"`
	PaperSize      string          `db:"paper_size"`
	ColorMode      string          `db:"color_mode"`
	DuplexMode     string          `db:"duplex_mode"`
	Quantity       int             `db:"quantity"`
	UnitPrice      decimal.Decimal `db:"unit_price"`
	Subtotal       decimal.Decimal `db:"subtotal"`
	DiscountRate   decimal.Decimal `db:"discount_rate"`
	DiscountAmount decimal.Decimal `db:"discount_amount"`
	FinalPrice     decimal.Decimal `db:"final_price"`
	CreatedAt      time.Time       `db:"created_at"`
}

// NewQuoteStorage connects with exponential backoff (the database may still
// be starting alongside the bot) and runs pending migrations.
func NewQuoteStorage(ctx context.Context, cfg Config, logger *zap.Logger) (*QuoteStorage, error) {
	const operation = "storage.NewQuoteStorage"

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
	)

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", connStr)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}

			if err = db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)

	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := migrations.RunMigrations(ctx, db.DB, "postgres"); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	logger.Info("Successfully connected to PostgreSQL")
	return &QuoteStorage{
		db:     db,
		logger: logger,
	}, nil
}

func (s *QuoteStorage) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database", zap.Error(err))
	}
}

// RecordQuote inserts one successful quote.
func (s *QuoteStorage) RecordQuote(ctx context.Context, session string, q pricing.Quote) error {
	const query = `
        INSERT INTO quotes (
            session, paper_size, color_mode, duplex_mode, quantity,
            unit_price, subtotal, discount_rate, discount_amount, final_price
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `

	_, err := s.db.ExecContext(ctx, query,
		session,
		string(q.Request.Size),
		string(q.Request.Color),
		string(q.Request.Duplex),
		q.Request.Quantity,
		q.UnitPrice,
		q.Subtotal,
		q.DiscountRate,
		q.DiscountAmount,
		q.FinalPrice,
	)
	if err != nil {
		return fmt.Errorf("failed to save quote: %w", err)
	}
	return nil
}

// RecentQuotes returns the newest quotes, newest first.
func (s *QuoteStorage) RecentQuotes(ctx context.Context, limit int) ([]QuoteRecord, error) {
	const query = `
        SELECT id, session, paper_size, color_mode, duplex_mode, quantity,
               unit_price, subtotal, discount_rate, discount_amount,
               final_price, created_at
        FROM quotes
        ORDER BY created_at DESC
        LIMIT $1
    `

	var quotes []QuoteRecord
	if err := s.db.SelectContext(ctx, &quotes, query, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	return quotes, nil
}

// ExportQuotesToExcel writes the recent quotes to an xlsx report and
// returns the file path.
func (s *QuoteStorage) ExportQuotesToExcel(ctx context.Context, limit int) (string, error) {
	quotes, err := s.RecentQuotes(ctx, limit)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet("Quotes")
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}

	headers := []string{
		"ID", "Session", "Size", "Color", "Duplex", "Quantity",
		"Unit Price", "Subtotal", "Discount Rate", "Discount", "Final Price",
		"Created At",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue("Quotes", cell, header)
	}

	for row, q := range quotes {
		data := []interface{}{
			q.ID,
			q.Session,
			q.PaperSize,
			q.ColorMode,
			q.DuplexMode,
			q.Quantity,
			q.UnitPrice.InexactFloat64(),
			q.Subtotal.InexactFloat64(),
			q.DiscountRate.InexactFloat64(),
			q.DiscountAmount.InexactFloat64(),
			q.FinalPrice.InexactFloat64(),
			q.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue("Quotes", cell, value)
		}
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle("Quotes", "A1", "L1", style)

	f.SetActiveSheet(index)

	if err := os.MkdirAll("reports", 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := fmt.Sprintf("reports/quotes_%s.xlsx", time.Now().Format("20060102_1504"))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	return path, nil
}
