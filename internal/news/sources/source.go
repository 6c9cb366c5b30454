// Package sources defines the News Collector's source capability set (spec
// §4.2: fetch/source_name/source_tier/rate_limit) and the concrete REST,
// RSS 2.0, and paginated-search variants, grounded on the teacher's
// services/historical-data-service/internal/client/binance_client.go REST
// client shape.
package sources

import (
	"context"
	"time"

	"github.com/TradingApplication/catalyst-trading-system/internal/model"
	"github.com/TradingApplication/catalyst-trading-system/internal/ratelimit"
)

// Source is the polymorphic capability set spec §4.2 requires of every news
// origin. Adding a source means adding a new implementation of this
// interface, nothing else.
type Source interface {
	Name() string
	Tier() int
	RateSpec() ratelimit.RateSpec
	Fetch(ctx context.Context, since time.Time, limit int) ([]model.RawArticle, error)
}

// Config is the shared connection/credential shape for a configured source,
// matching internal/config.SourceCredential.
type Config struct {
	Name              string
	Tier              int
	BaseURL           string
	APIKey            string
	RequestsPerMinute int
	Burst             int
	Kind              string // "rest", "rss", "paginated"
}

func (c Config) rateSpec() ratelimit.RateSpec {
	return ratelimit.RateSpec{RequestsPerMinute: c.RequestsPerMinute, Burst: c.Burst}
}

// Build constructs the concrete Source implementation for cfg.Kind.
func Build(cfg Config) Source {
	switch cfg.Kind {
	case "rss":
		return NewRSSSource(cfg)
	case "paginated":
		return NewPaginatedSource(cfg)
	default:
		return NewRESTSource(cfg)
	}
}
