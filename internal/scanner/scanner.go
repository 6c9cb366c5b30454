// Package scanner implements the Catalyst Scanner (spec §4.3): multi-stage
// candidate filtering driven by news catalyst scoring and validated against
// market-data technicals.
package scanner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/config"
	"github.com/TradingApplication/catalyst-trading-system/internal/eventbus"
	"github.com/TradingApplication/catalyst-trading-system/internal/model"
	"github.com/TradingApplication/catalyst-trading-system/internal/runtimeconfig"
	"github.com/TradingApplication/catalyst-trading-system/internal/store"
)

const scanWallClockBudget = 30 * time.Second

// Scanner is the Catalyst Scanner core.
type Scanner struct {
	port          store.Port
	marketData    *MarketDataClient
	thresholds    config.ScannerThresholds
	runtimeConfig *runtimeconfig.Store
	publisher     *eventbus.Publisher
	logger        *zap.Logger
}

// New builds a Scanner. Operator-tunable thresholds (min_catalyst_score,
// top_k) are read through a runtimeconfig.Store backed by port, falling
// back to thresholds' static values when no operator override is on file
// (spec §4.1 "updateConfig").
func New(port store.Port, marketData *MarketDataClient, thresholds config.ScannerThresholds, publisher *eventbus.Publisher, logger *zap.Logger) *Scanner {
	return &Scanner{port: port, marketData: marketData, thresholds: thresholds, runtimeConfig: runtimeconfig.New(port), publisher: publisher, logger: logger}
}

// itemScoreThreshold is the per-item catalyst contribution floor for a
// symbol to enter the universe on the strength of its news alone (spec
// §4.3 stage 1). It is deliberately lower than MinCatalystScore, since a
// single strong item, not the aggregate, is enough to nominate a symbol.
const itemScoreThreshold = 5.0

// Scan runs a full universe-discovery scan for mode (spec §4.3 "scan").
func (s *Scanner) Scan(ctx context.Context, mode model.Mode) (model.ScanResult, error) {
	ctx, cancel := context.WithTimeout(ctx, scanWallClockBudget)
	defer cancel()

	started := time.Now()
	thresholds := s.thresholdsFor(ctx, mode)

	universe, err := s.buildUniverse(ctx, thresholds)
	if err != nil {
		return model.ScanResult{}, err
	}

	return s.scanUniverse(ctx, mode, universe, len(universe), thresholds, started)
}

// ScanSymbols runs a scan constrained to the given symbols, skipping
// universe discovery (spec §4.3 "scanSymbols").
func (s *Scanner) ScanSymbols(ctx context.Context, mode model.Mode, symbols []string) (model.ScanResult, error) {
	ctx, cancel := context.WithTimeout(ctx, scanWallClockBudget)
	defer cancel()

	started := time.Now()
	thresholds := s.thresholdsFor(ctx, mode)
	return s.scanUniverse(ctx, mode, symbols, 0, thresholds, started)
}

// GetScanResults is an idempotent read of a prior scan (spec §4.3
// "getScanResults").
func (s *Scanner) GetScanResults(ctx context.Context, scanID string) (model.ScanResult, error) {
	candidates, err := s.port.GetCandidates(ctx, scanID)
	if err != nil {
		return model.ScanResult{}, err
	}
	result := model.ScanResult{
		ScanID:     scanID,
		Candidates: candidates,
	}
	if len(candidates) > 0 {
		result.CreatedAt = candidates[0].SelectedAt
	}
	return result, nil
}

type effectiveThresholds struct {
	minCatalystScore float64
	minVolume        int64
	topK             int
}

// thresholdsFor resolves the mode-scoped thresholds, letting an operator
// override min_catalyst_score and top_k at runtime via updateConfig
// without a restart (spec §4.1).
func (s *Scanner) thresholdsFor(ctx context.Context, mode model.Mode) effectiveThresholds {
	t := effectiveThresholds{
		minCatalystScore: s.thresholds.MinCatalystScore,
		minVolume:        s.thresholds.MinVolume,
		topK:             s.thresholds.TopK,
	}
	if mode == model.ModeAggressive {
		t.minCatalystScore = s.thresholds.AggressiveMinCatalystScore
		t.minVolume = s.thresholds.AggressiveMinVolume
	}
	if s.runtimeConfig != nil {
		t.minCatalystScore = s.runtimeConfig.GetFloat(ctx, "min_catalyst_score", t.minCatalystScore)
		t.topK = s.runtimeConfig.GetInt(ctx, "top_k", t.topK)
	}
	return t
}

// buildUniverse implements stage 1 (spec §4.3): the union of symbols with
// strong recent news and a most-active baseline.
func (s *Scanner) buildUniverse(ctx context.Context, thresholds effectiveThresholds) ([]string, error) {
	now := time.Now()
	items, err := s.port.ReadNewsRange(ctx, store.NewsFilter{Since: now.Add(-24 * time.Hour), Until: now, Limit: 0})
	if err != nil {
		return nil, fmt.Errorf("read news range for universe: %w", err)
	}

	bySymbol := groupBySymbol(items)

	seen := make(map[string]bool)
	var universe []string
	for symbol, news := range bySymbol {
		strong := false
		for _, n := range news {
			if ItemScore(n, now) >= itemScoreThreshold {
				strong = true
				break
			}
		}
		if strong && !seen[symbol] {
			seen[symbol] = true
			universe = append(universe, symbol)
		}
	}

	if s.marketData != nil {
		baseline, err := s.marketData.MostActive(ctx, s.thresholds.MostActiveBaseline)
		if err != nil {
			s.logger.Warn("most-active baseline unavailable, universe is news-only", zap.Error(err))
		}
		for _, sym := range baseline {
			if !seen[sym] {
				seen[sym] = true
				universe = append(universe, sym)
			}
		}
	}

	return universe, nil
}

func groupBySymbol(items []model.NewsItem) map[string][]model.NewsItem {
	out := make(map[string][]model.NewsItem)
	for _, item := range items {
		if item.PrimarySymbol == nil {
			continue
		}
		out[*item.PrimarySymbol] = append(out[*item.PrimarySymbol], item)
	}
	return out
}

// scanUniverse runs stages 2-4 over the given candidate symbol set.
// universeSize is the stage 1 universe size reported in the result.
func (s *Scanner) scanUniverse(ctx context.Context, mode model.Mode, universe []string, universeSize int, thresholds effectiveThresholds, started time.Time) (model.ScanResult, error) {
	now := time.Now()
	scanID := uuid.NewString()

	// Stage 2: catalyst filter.
	type scored struct {
		symbol        string
		catalystScore float64
		news          []model.NewsItem
	}
	var filtered []scored

	newsBySymbol := make(map[string][]model.NewsItem, len(universe))
	for _, sym := range universe {
		items, err := s.port.ReadNewsRange(ctx, store.NewsFilter{
			Symbol: sym,
			Since:  now.Add(-24 * time.Hour),
			Until:  now,
			Limit:  200,
		})
		if err != nil {
			s.logger.Warn("read news for symbol failed", zap.String("symbol", sym), zap.Error(err))
			continue
		}
		newsBySymbol[sym] = items

		score := CatalystScore(items, now)
		if score >= thresholds.minCatalystScore {
			filtered = append(filtered, scored{symbol: sym, catalystScore: score, news: items})
		}
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].catalystScore > filtered[j].catalystScore })
	if len(filtered) > s.thresholds.CatalystFilterCap {
		filtered = filtered[:s.thresholds.CatalystFilterCap]
	}

	// Stage 3: technical validation.
	symbols := make([]string, len(filtered))
	for i, f := range filtered {
		symbols[i] = f.symbol
	}

	var snapshots map[string]model.MarketSnapshot
	technicalOutage := s.marketData == nil
	if s.marketData != nil {
		snapshots = s.marketData.SnapshotBatch(ctx, symbols, 8)
		if len(snapshots) == 0 && len(symbols) > 0 {
			technicalOutage = true
		}
	}

	var candidates []model.TradingCandidate
	for _, f := range filtered {
		snap, ok := snapshots[f.symbol]
		validated := ok
		if validated {
			if snap.Price < s.thresholds.MinPrice || snap.Price > s.thresholds.MaxPrice {
				continue
			}
			if snap.Volume < thresholds.minVolume {
				continue
			}
			if snap.RelativeVolume < s.thresholds.MinRelativeVolume {
				continue
			}
		} else if !technicalOutage {
			// Partial failure: this symbol's snapshot alone failed, drop it.
			continue
		}

		technicalScore := 0.0
		if validated {
			technicalScore = TechnicalScore(snap)
		}
		combined := CombinedScore(f.catalystScore, technicalScore)
		if !validated {
			combined = f.catalystScore
		}

		candidates = append(candidates, model.TradingCandidate{
			ScanID:             scanID,
			Symbol:             f.symbol,
			SelectedAt:         now,
			CatalystScore:      f.catalystScore,
			NewsCount:          len(f.news),
			PrimaryCatalyst:    primaryCatalystOf(f.news),
			CatalystKeywords:   keywordStrings(f.news),
			Price:              snap.Price,
			Volume:             snap.Volume,
			RelativeVolume:     snap.RelativeVolume,
			PriceChangePct:     snap.PriceChangePct,
			PreMarketVolume:    snap.PreMarketVolume,
			PreMarketChangePct: snap.PreMarketChangePct,
			TechnicalScore:     technicalScore,
			CombinedScore:      combined,
			TechnicalValidated: validated,
			Status:             "selected",
		})
	}

	// Stage 4: final ranking.
	hasPreMarketNews := make(map[string]bool, len(candidates))
	maxTier := make(map[string]int, len(candidates))
	for _, f := range filtered {
		for _, n := range f.news {
			if n.MarketState == model.MarketPreMarket {
				hasPreMarketNews[f.symbol] = true
			}
			if best, ok := maxTier[f.symbol]; !ok || n.SourceTier < best {
				maxTier[f.symbol] = n.SourceTier
			}
		}
	}

	aggressivePromote := mode == model.ModeAggressive

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if aggressivePromote && hasPreMarketNews[a.Symbol] != hasPreMarketNews[b.Symbol] {
			return hasPreMarketNews[a.Symbol]
		}
		if a.CombinedScore != b.CombinedScore {
			return a.CombinedScore > b.CombinedScore
		}
		if hasPreMarketNews[a.Symbol] != hasPreMarketNews[b.Symbol] {
			return hasPreMarketNews[a.Symbol]
		}
		if maxTier[a.Symbol] != maxTier[b.Symbol] {
			return maxTier[a.Symbol] < maxTier[b.Symbol]
		}
		return a.Symbol < b.Symbol
	})

	topK := thresholds.topK
	if topK <= 0 {
		topK = 5
	}
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	for i := range candidates {
		candidates[i].SelectionRank = i + 1
	}

	result := model.ScanResult{
		ScanID:             scanID,
		Mode:               string(mode),
		Candidates:         candidates,
		UniverseSize:       universeSize,
		CatalystFiltered:   len(filtered),
		DurationMS:         time.Since(started).Milliseconds(),
		TechnicalValidated: !technicalOutage,
		CreatedAt:          now,
	}

	if err := s.port.InsertCandidates(ctx, scanID, candidates); err != nil {
		return model.ScanResult{}, fmt.Errorf("persist scan candidates: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, eventbus.TopicScanCompleted, eventbus.Event{Key: scanID, Value: result}); err != nil {
			s.logger.Warn("publish scan completed event failed", zap.Error(err))
		}
	}

	return result, nil
}

func primaryCatalystOf(news []model.NewsItem) model.PrimaryCatalyst {
	for _, n := range news {
		if n.HasCategory(model.CategoryEarnings) {
			return model.CatalystEarnings
		}
	}
	for _, n := range news {
		if n.HasCategory(model.CategoryFDA) {
			return model.CatalystFDA
		}
	}
	for _, n := range news {
		if n.HasCategory(model.CategoryMerger) {
			return model.CatalystMerger
		}
	}
	return model.CatalystGeneric
}

func keywordStrings(news []model.NewsItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range news {
		for _, k := range n.Keywords {
			if !seen[string(k)] {
				seen[string(k)] = true
				out = append(out, string(k))
			}
		}
	}
	return out
}
