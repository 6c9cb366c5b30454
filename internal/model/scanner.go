package model

import "time"

// PrimaryCatalyst classifies the dominant catalyst driving a candidate's
// selection (spec §3).
type PrimaryCatalyst string

const (
	CatalystEarnings PrimaryCatalyst = "earnings"
	CatalystFDA      PrimaryCatalyst = "fda"
	CatalystMerger   PrimaryCatalyst = "merger"
	CatalystGeneric  PrimaryCatalyst = "generic"
)

// MarketSnapshot is the technical-validation data fetched from the
// market-data collaborator (spec §4.3 stage 3).
type MarketSnapshot struct {
	Symbol            string  `json:"symbol"`
	Price             float64 `json:"price"`
	Volume            int64   `json:"volume"`
	RelativeVolume    float64 `json:"relative_volume"`
	PriceChangePct    float64 `json:"price_change_pct"`
	PreMarketVolume   int64   `json:"pre_market_volume"`
	PreMarketChangePct float64 `json:"pre_market_change_pct"`
	HasPreMarketNews  bool    `json:"has_pre_market_news"`
}

// TradingCandidate is a per-scan ranked selection (spec §3).
type TradingCandidate struct {
	ScanID            string          `json:"scan_id" db:"scan_id"`
	Symbol            string          `json:"symbol" db:"symbol"`
	SelectedAt        time.Time       `json:"selected_at" db:"selected_at"`
	CatalystScore     float64         `json:"catalyst_score" db:"catalyst_score"`
	NewsCount         int             `json:"news_count" db:"news_count"`
	PrimaryCatalyst   PrimaryCatalyst `json:"primary_catalyst" db:"primary_catalyst"`
	CatalystKeywords  []string        `json:"catalyst_keywords" db:"catalyst_keywords"`
	Price             float64         `json:"current_price" db:"current_price"`
	Volume            int64           `json:"current_volume" db:"current_volume"`
	RelativeVolume    float64         `json:"relative_volume" db:"relative_volume"`
	PriceChangePct    float64         `json:"price_change_pct" db:"price_change_pct"`
	PreMarketVolume   int64           `json:"pre_market_volume" db:"pre_market_volume"`
	PreMarketChangePct float64        `json:"pre_market_change_pct" db:"pre_market_change_pct"`
	TechnicalScore    float64         `json:"technical_score" db:"technical_score"`
	CombinedScore     float64         `json:"combined_score" db:"combined_score"`
	SelectionRank     int             `json:"selection_rank" db:"selection_rank"`
	TechnicalValidated bool           `json:"technical_validated" db:"technical_validated"`
	Status            string          `json:"status" db:"status"` // selected, analyzed, traded
}

// ScanResult is the return value of scan/scanSymbols/getScanResults (§4.3).
type ScanResult struct {
	ScanID           string             `json:"scan_id"`
	Mode             string             `json:"mode"`
	Candidates       []TradingCandidate `json:"candidates"`
	UniverseSize     int                `json:"universe_size"`
	CatalystFiltered int                `json:"catalyst_filtered"`
	DurationMS       int64              `json:"duration_ms"`
	TechnicalValidated bool             `json:"technical_validated"`
	CreatedAt        time.Time          `json:"created_at"`
}
