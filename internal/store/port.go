// Package store defines the Persistence Port (spec §4.4) consumed by the
// core, plus concrete Postgres/Redis and in-memory implementations of it.
package store

import (
	"context"
	"time"

	"github.com/TradingApplication/catalyst-trading-system/internal/model"
)

// NewsFilter bounds a readNewsRange query (spec §4.2 search()).
type NewsFilter struct {
	Symbol  string
	Since   time.Time
	Until   time.Time
	MinTier int
	Limit   int
}

// Port is the abstract interface over the OLTP store and its cache that the
// Cycle Coordinator, News Collector and Catalyst Scanner are built against.
// Implementations must provide read-committed transactions for multi-row
// writes and idempotency for the two upserts (spec §4.4, §5).
type Port interface {
	// News
	UpsertNewsItem(ctx context.Context, item *model.NewsItem) (created bool, err error)
	UpdateNewsOutcome(ctx context.Context, update model.OutcomeUpdate) error
	ReadNewsRange(ctx context.Context, filter NewsFilter) ([]model.NewsItem, error)
	GetNewsByFingerprint(ctx context.Context, fingerprint string) (*model.NewsItem, error)
	MarkNewsConfirmed(ctx context.Context, fingerprint, confirmedBy string, delayMinutes int) error
	InsertCollectionStats(ctx context.Context, source string, report model.CollectionReport) error

	// Source metrics
	GetSourceMetrics(ctx context.Context, source string) (*model.SourceMetrics, error)
	ListSourceMetrics(ctx context.Context) ([]model.SourceMetrics, error)
	SeedSourceMetrics(ctx context.Context, source string, tier int) error
	IncrementSourceMetrics(ctx context.Context, source string, delta SourceMetricsDelta) error

	// Narrative clusters
	InsertNarrativeCluster(ctx context.Context, cluster model.NarrativeCluster) error
	ListNarrativeClusters(ctx context.Context, since time.Time) ([]model.NarrativeCluster, error)

	// Scanner
	InsertCandidates(ctx context.Context, scanID string, candidates []model.TradingCandidate) error
	GetCandidates(ctx context.Context, scanID string) ([]model.TradingCandidate, error)
	MarkCandidateStatus(ctx context.Context, scanID, symbol, status string) error

	// Coordinator
	InsertCycle(ctx context.Context, cycle model.TradingCycle) error
	UpdateCycleStage(ctx context.Context, cycleID string, entry model.WorkflowLogEntry) error
	FinalizeCycle(ctx context.Context, cycleID string, status model.CycleStatus, counters model.StageCounters, pnl float64, failureReason string) error
	GetCycle(ctx context.Context, cycleID string) (*model.TradingCycle, error)
	GetWorkflowLog(ctx context.Context, cycleID string) ([]model.WorkflowLogEntry, error)
	ListClosedTradesSince(ctx context.Context, since time.Time) ([]TradeClosure, error)

	// Configuration
	ReadConfig(ctx context.Context, key string) (string, bool, error)
	WriteConfig(ctx context.Context, key, value, modifier string) error

	// Cache
	CacheGet(ctx context.Context, key string) (string, bool, error)
	CacheSet(ctx context.Context, key, value string, ttl time.Duration) error
	CacheInvalidatePattern(ctx context.Context, pattern string) error

	Close() error
}

// SourceMetricsDelta is the transactional increment applied to a
// SourceMetrics row when a trade closes against one of its articles
// (spec §4.1 outcome feedback).
type SourceMetricsDelta struct {
	Articles       int
	Confirmed      int
	Accurate       int
	False          int
	EarlyMinutes   *float64
	Beneficiary    string
}

// TradeClosure is the minimal projection of a closed trade_record the
// outcome-feedback sweep needs (spec §4.1).
type TradeClosure struct {
	TradeID         string
	NewsFingerprint string
	Symbol          string
	ClosedAt        time.Time
	RealizedPnL     float64
	PriceMove1h     float64
	PriceMove24h    float64
	VolumeSurgeRatio float64
	WasAccurate     bool
}
