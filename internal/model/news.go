// Package model holds the shared data types persisted and exchanged by the
// Cycle Coordinator, News Collector and Catalyst Scanner.
package model

import "time"

// MarketState classifies the trading session a news item was published in.
type MarketState string

const (
	MarketPreMarket  MarketState = "pre-market"
	MarketRegular    MarketState = "regular"
	MarketAfterHours MarketState = "after-hours"
	MarketWeekend    MarketState = "weekend"
)

// ConfirmationStatus tracks whether a lower-tier article has since been
// corroborated by a higher-tier source.
type ConfirmationStatus string

const (
	ConfirmationUnconfirmed ConfirmationStatus = "unconfirmed"
	ConfirmationConfirmed   ConfirmationStatus = "confirmed"
)

// KeywordCategory is one of the recognized catalyst categories extracted
// from a headline (spec §4.2 step 5).
type KeywordCategory string

const (
	CategoryEarnings     KeywordCategory = "earnings"
	CategoryFDA          KeywordCategory = "fda"
	CategoryMerger       KeywordCategory = "merger"
	CategoryGuidance     KeywordCategory = "guidance"
	CategoryLawsuit      KeywordCategory = "lawsuit"
	CategoryBankruptcy   KeywordCategory = "bankruptcy"
	CategoryInsider      KeywordCategory = "insider"
	CategoryShort        KeywordCategory = "short"
	CategoryPump         KeywordCategory = "pump"
	CategoryDump         KeywordCategory = "dump"
	CategoryBreakthrough KeywordCategory = "breakthrough"
	CategoryConcerns     KeywordCategory = "concerns"
)

// RawArticle is what a Source implementation hands back from fetch(); it is
// not yet normalized, deduplicated or tiered.
type RawArticle struct {
	Symbol      string
	Headline    string
	Source      string
	SourceURL   string
	PublishedAt time.Time
	Content     string
	Metadata    map[string]any
}

// NewsItem is the immutable-after-insertion record described in spec §3.
// Mutable outcome fields are only ever appended, never rewritten once set.
type NewsItem struct {
	Fingerprint string `json:"fingerprint" db:"fingerprint"`

	PrimarySymbol     *string             `json:"primary_symbol,omitempty" db:"primary_symbol"`
	Headline          string              `json:"headline" db:"headline"`
	Source            string              `json:"source" db:"source"`
	SourceURL         string              `json:"source_url" db:"source_url"`
	PublishedAt       time.Time           `json:"published_at" db:"published_at"`
	CollectedAt       time.Time           `json:"collected_at" db:"collected_at"`
	ContentSnippet    string              `json:"content_snippet" db:"content_snippet"`
	Keywords          []KeywordCategory   `json:"keywords" db:"keywords"`
	MentionedTickers  []string            `json:"mentioned_tickers" db:"mentioned_tickers"`
	MarketState       MarketState         `json:"market_state" db:"market_state"`
	IsBreakingNews    bool                `json:"is_breaking_news" db:"is_breaking_news"`
	SourceTier        int                 `json:"source_tier" db:"source_tier"`
	NarrativeCluster  *string             `json:"narrative_cluster_id,omitempty" db:"narrative_cluster_id"`
	SentimentKeywords []string            `json:"sentiment_keywords" db:"sentiment_keywords"`
	Metadata          map[string]any      `json:"metadata,omitempty" db:"metadata"`

	// Mutable, append-only outcome fields.
	PriceMove1h            *float64            `json:"price_move_1h,omitempty" db:"price_move_1h"`
	PriceMove24h           *float64            `json:"price_move_24h,omitempty" db:"price_move_24h"`
	VolumeSurgeRatio       *float64            `json:"volume_surge_ratio,omitempty" db:"volume_surge_ratio"`
	WasAccurate            *bool               `json:"was_accurate,omitempty" db:"was_accurate"`
	ConfirmationStatus     ConfirmationStatus  `json:"confirmation_status" db:"confirmation_status"`
	ConfirmedBy            *string             `json:"confirmed_by,omitempty" db:"confirmed_by"`
	ConfirmationDelayMins  *int                `json:"confirmation_delay_minutes,omitempty" db:"confirmation_delay_minutes"`

	UpdateCount int       `json:"update_count" db:"update_count"`
	LastSeen    time.Time `json:"last_seen" db:"last_seen"`
}

// AgeHours returns the article's age at the given instant, in hours.
func (n *NewsItem) AgeHours(at time.Time) float64 {
	return at.Sub(n.PublishedAt).Hours()
}

// HasCategory reports whether the item was tagged with the given keyword
// category.
func (n *NewsItem) HasCategory(cat KeywordCategory) bool {
	for _, k := range n.Keywords {
		if k == cat {
			return true
		}
	}
	return false
}

// SourceMetrics is the one-row-per-source aggregate described in spec §3.
type SourceMetrics struct {
	Source            string    `json:"source" db:"source"`
	Tier               int       `json:"tier" db:"tier"`
	TotalArticles      int       `json:"total_articles" db:"total_articles"`
	Confirmed          int       `json:"confirmed" db:"confirmed"`
	Accurate           int       `json:"accurate" db:"accurate"`
	False              int       `json:"false" db:"false"`
	AccuracyRate       float64   `json:"accuracy_rate" db:"accuracy_rate"`
	AvgEarlyMinutes    float64   `json:"avg_early_minutes" db:"avg_early_minutes"`
	NarrativeClusters  int       `json:"narrative_cluster_count" db:"narrative_cluster_count"`
	FrequentBeneficiaries []string `json:"frequent_beneficiaries" db:"frequent_beneficiaries"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// OutcomeUpdate is the payload for News Collector's updateOutcome (§4.2).
type OutcomeUpdate struct {
	NewsFingerprint  string   `json:"news_id"`
	PriceMove1h      *float64 `json:"price_move_1h,omitempty"`
	PriceMove24h     *float64 `json:"price_move_24h,omitempty"`
	VolumeSurgeRatio *float64 `json:"volume_surge_ratio,omitempty"`
	WasAccurate      *bool    `json:"was_accurate,omitempty"`
}

// CollectionReport is the return value of collect(mode) (§4.2).
type CollectionReport struct {
	Articles        int            `json:"articles"`
	New             int            `json:"new"`
	Duplicate       int            `json:"duplicate"`
	PerSourceCounts map[string]int `json:"per_source_counts"`
	Errors          []string       `json:"errors"`
	DurationMS      int64          `json:"duration_ms"`
}

// NarrativeCluster is a surfaced coordinated-narrative grouping (§4.2).
type NarrativeCluster struct {
	ClusterID        string    `json:"cluster_id" db:"cluster_id"`
	Symbol           string    `json:"symbol" db:"symbol"`
	Date             string    `json:"date" db:"date"`
	Categories       []string  `json:"keyword_categories" db:"keyword_categories"`
	ArticleCount     int       `json:"article_count" db:"article_count"`
	DistinctSources  int       `json:"distinct_sources" db:"distinct_sources"`
	TimeSpreadHours  float64   `json:"time_spread_hours" db:"time_spread_hours"`
	CoordinationScore float64  `json:"coordination_score" db:"coordination_score"`
	DetectedAt       time.Time `json:"detected_at" db:"detected_at"`
	OperatorClusterID *string  `json:"operator_cluster_id,omitempty" db:"operator_cluster_id"`
}
