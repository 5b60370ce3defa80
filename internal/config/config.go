package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/shopspring/decimal"

	"copyshop-bot/internal/pricing"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LINE channel; empty token disables the webhook reply path so the web
	// widget still works locally without credentials.
	LineChannelSecret string `env:"LINE_CHANNEL_SECRET"`
	LineChannelToken  string `env:"LINE_CHANNEL_ACCESS_TOKEN"`

	// LLM fallback; empty key disables it (static help text instead).
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	AdminToken     string `env:"ADMIN_TOKEN"`
	PriceTablePath string `env:"PRICE_TABLE_PATH"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	MemoryMaxTurns  int           `env:"MEMORY_MAX_TURNS" envDefault:"10"`
	RateLimit       int           `env:"RATE_LIMIT" envDefault:"20"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	DBHost            string        `env:"DB_HOST"`
	DBPort            int           `env:"DB_PORT" envDefault:"5432"`
	DBUser            string        `env:"DB_USER"`
	DBPassword        string        `env:"DB_PASSWORD"`
	DBName            string        `env:"DB_NAME"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	DBConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"2m"`

	// Pricing policy. The discount schedule is "minQty:rate" pairs; the
	// small-job override is off unless both values are set.
	MaxQuantity       int    `env:"MAX_QUANTITY" envDefault:"10000"`
	DiscountSchedule  string `env:"DISCOUNT_SCHEDULE" envDefault:"100:0.10,500:0.15,1000:0.20"`
	SmallJobMaxQty    int    `env:"SMALL_JOB_MAX_QUANTITY"`
	SmallJobUnitPrice string `env:"SMALL_JOB_UNIT_PRICE"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if _, err := cfg.PricingPolicy(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// PricingPolicy builds the engine policy from the configured schedule.
func (c *Config) PricingPolicy() (pricing.Policy, error) {
	tiers, err := ParseSchedule(c.DiscountSchedule)
	if err != nil {
		return pricing.Policy{}, fmt.Errorf("invalid DISCOUNT_SCHEDULE: %w", err)
	}

	policy := pricing.Policy{
		Tiers:       tiers,
		MaxQuantity: c.MaxQuantity,
	}

	if c.SmallJobMaxQty > 0 && c.SmallJobUnitPrice != "" {
		price, err := decimal.NewFromString(c.SmallJobUnitPrice)
		if err != nil {
			return pricing.Policy{}, fmt.Errorf("invalid SMALL_JOB_UNIT_PRICE: %w", err)
		}
		policy.SmallJob = &pricing.SmallJobOverride{
			MaxQuantity:   c.SmallJobMaxQty,
			FlatUnitPrice: price,
		}
	}

	return policy, nil
}

// ParseSchedule parses a "minQty:rate,minQty:rate" discount schedule into
// tiers sorted by threshold descending.
func ParseSchedule(schedule string) ([]pricing.DiscountTier, error) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return nil, nil
	}

	var tiers []pricing.DiscountTier
	for _, part := range strings.Split(schedule, ",") {
		fields := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed tier %q", part)
		}
		minQty, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil || minQty <= 0 {
			return nil, fmt.Errorf("malformed tier threshold %q", fields[0])
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("malformed tier rate %q: %w", fields[1], err)
		}
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("tier rate %s out of range [0, 1]", rate)
		}
		tiers = append(tiers, pricing.DiscountTier{MinQuantity: minQty, Rate: rate})
	}

	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MinQuantity > tiers[j].MinQuantity
	})
	return tiers, nil
}
