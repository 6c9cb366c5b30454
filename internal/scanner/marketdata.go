package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/apperr"
	"github.com/TradingApplication/catalyst-trading-system/internal/config"
	"github.com/TradingApplication/catalyst-trading-system/internal/model"
	"github.com/TradingApplication/catalyst-trading-system/internal/retry"
)

// MarketDataClient fetches the current technical-validation snapshot for a
// symbol from the out-of-scope market-data collaborator (spec §4.3 stage 3),
// grounded on the teacher's BinanceClient REST-call shape.
type MarketDataClient struct {
	cfg        config.ServiceConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewMarketDataClient(cfg config.ServiceConfig, logger *zap.Logger) *MarketDataClient {
	return &MarketDataClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Snapshot fetches one symbol's market snapshot, retrying transient
// failures per the standard retry policy.
func (m *MarketDataClient) Snapshot(ctx context.Context, symbol string) (model.MarketSnapshot, error) {
	var snap model.MarketSnapshot
	err := retry.Do(ctx, func() error {
		var fetchErr error
		snap, fetchErr = m.fetch(ctx, symbol)
		return fetchErr
	})
	if err != nil {
		return model.MarketSnapshot{}, apperr.NewDependencyDown("market-data snapshot fetch failed for "+symbol, err)
	}
	return snap, nil
}

func (m *MarketDataClient) fetch(ctx context.Context, symbol string) (model.MarketSnapshot, error) {
	reqURL := fmt.Sprintf("%s/snapshot?symbol=%s", m.cfg.URL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.MarketSnapshot{}, fmt.Errorf("build market-data request: %w", err)
	}
	if m.cfg.ServiceKey != "" {
		req.Header.Set("X-Service-Key", m.cfg.ServiceKey)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return model.MarketSnapshot{}, fmt.Errorf("fetch market-data snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return model.MarketSnapshot{}, fmt.Errorf("market-data returned status %d: %s", resp.StatusCode, string(body))
	}

	var snap model.MarketSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return model.MarketSnapshot{}, fmt.Errorf("decode market-data snapshot: %w", err)
	}
	return snap, nil
}

// MostActive fetches the market-data collaborator's most-active-symbols
// baseline used to seed the scan universe (spec §4.3 stage 1). A failure is
// non-fatal: the universe simply falls back to news-derived symbols alone.
func (m *MarketDataClient) MostActive(ctx context.Context, limit int) ([]string, error) {
	reqURL := fmt.Sprintf("%s/most_active?limit=%d", m.cfg.URL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build most-active request: %w", err)
	}
	if m.cfg.ServiceKey != "" {
		req.Header.Set("X-Service-Key", m.cfg.ServiceKey)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch most-active symbols: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("most-active returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Symbols []string `json:"symbols"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode most-active response: %w", err)
	}
	return payload.Symbols, nil
}

// SnapshotBatch fetches snapshots for every symbol concurrently, returning a
// map of only the symbols that succeeded; failed symbols are simply absent
// so the caller can apply the spec's partial-failure semantics (drop the
// affected symbol, keep scanning).
func (m *MarketDataClient) SnapshotBatch(ctx context.Context, symbols []string, concurrency int) map[string]model.MarketSnapshot {
	if concurrency <= 0 {
		concurrency = 8
	}
	type result struct {
		symbol string
		snap   model.MarketSnapshot
		err    error
	}

	results := make(chan result, len(symbols))
	sem := make(chan struct{}, concurrency)

	for _, sym := range symbols {
		sym := sym
		go func() {
			sem <- struct{}{}
			defer func() { <-sem }()
			snap, err := m.Snapshot(ctx, sym)
			results <- result{symbol: sym, snap: snap, err: err}
		}()
	}

	out := make(map[string]model.MarketSnapshot, len(symbols))
	for i := 0; i < len(symbols); i++ {
		r := <-results
		if r.err != nil {
			m.logger.Warn("market-data snapshot failed", zap.String("symbol", r.symbol), zap.Error(r.err))
			continue
		}
		out[r.symbol] = r.snap
	}
	return out
}
