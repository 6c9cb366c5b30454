// Package news implements the News Collector (spec §4.2): multi-source
// collection, normalization, deduplication, confirmation tracking, and
// coordinated-narrative detection.
package news

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/config"
	"github.com/TradingApplication/catalyst-trading-system/internal/eventbus"
	"github.com/TradingApplication/catalyst-trading-system/internal/lexicon"
	"github.com/TradingApplication/catalyst-trading-system/internal/model"
	"github.com/TradingApplication/catalyst-trading-system/internal/news/sources"
	"github.com/TradingApplication/catalyst-trading-system/internal/ratelimit"
	"github.com/TradingApplication/catalyst-trading-system/internal/retry"
	"github.com/TradingApplication/catalyst-trading-system/internal/store"
)

// sourceHealth is the per-source rolling failure state surfaced by
// source_analysis (spec §4.2 concurrency note).
type sourceHealth struct {
	ConsecutiveFailures int
	LastError           string
	LastSuccess         time.Time
}

// Collector is the News Collector core.
type Collector struct {
	registry    *sources.Registry
	port        store.Port
	lex         *lexicon.Lexicon
	clock       *sessionClock
	concurrency int
	logger      *zap.Logger
	publisher   *eventbus.Publisher

	limiters map[string]*ratelimit.Limiter

	mu     sync.Mutex
	health map[string]*sourceHealth
}

// New builds a Collector from static configuration. publisher may be nil,
// in which case collection events are simply not emitted.
func New(cfg *config.Config, lex *lexicon.Lexicon, port store.Port, publisher *eventbus.Publisher, logger *zap.Logger) (*Collector, error) {
	clock, err := newSessionClock(cfg.Market)
	if err != nil {
		return nil, fmt.Errorf("build session clock: %w", err)
	}

	srcCfgs := make([]sources.Config, 0, len(cfg.Sources.Configured))
	for _, sc := range cfg.Sources.Configured {
		srcCfgs = append(srcCfgs, sources.Config{
			Name:              sc.Name,
			Tier:              sc.Tier,
			BaseURL:           sc.BaseURL,
			APIKey:            sc.APIKey,
			RequestsPerMinute: sc.RatePerMin,
			Burst:             sc.BurstSize,
			Kind:              sc.Kind,
		})
	}
	registry := sources.NewRegistry(srcCfgs)

	concurrency := cfg.Sources.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	limiters := make(map[string]*ratelimit.Limiter, len(registry.All()))
	for _, s := range registry.All() {
		limiters[s.Name()] = ratelimit.New(s.RateSpec())
	}

	for _, sc := range cfg.Sources.Configured {
		if err := port.SeedSourceMetrics(context.Background(), sc.Name, sc.Tier); err != nil {
			logger.Warn("seed source metrics failed", zap.String("source", sc.Name), zap.Error(err))
		}
	}

	return &Collector{
		registry:    registry,
		port:        port,
		lex:         lex,
		clock:       clock,
		concurrency: concurrency,
		logger:      logger,
		publisher:   publisher,
		limiters:    limiters,
		health:      make(map[string]*sourceHealth),
	}, nil
}

// Collect runs one collection pass for mode, fanning out across the
// selected sources with bounded concurrency (spec §4.2 "Concurrency").
func (c *Collector) Collect(ctx context.Context, mode model.Mode) (model.CollectionReport, error) {
	params := paramsFor(mode)
	ctx, cancel := context.WithTimeout(ctx, params.Budget)
	defer cancel()

	selected := c.registry.WithMaxTier(params.MaxTier)
	norm := newNormalizer(c.lex, c.clock)

	type fetchResult struct {
		source  string
		raws    []model.RawArticle
		err     error
	}

	results := make(chan fetchResult, len(selected))
	sem := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup

	since := time.Now().Add(-24 * time.Hour)

	for _, src := range selected {
		src := src
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			limiter := c.limiters[src.Name()]
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					results <- fetchResult{source: src.Name(), err: err}
					return
				}
			}

			var raws []model.RawArticle
			err := retry.Do(ctx, func() error {
				var fetchErr error
				raws, fetchErr = src.Fetch(ctx, since, params.PerSourceCap)
				return fetchErr
			})
			results <- fetchResult{source: src.Name(), raws: raws, err: err}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	report := model.CollectionReport{PerSourceCounts: make(map[string]int)}
	started := time.Now()

	for res := range results {
		if res.err != nil {
			c.recordFailure(res.source, res.err)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", res.source, res.err))
			continue
		}
		c.recordSuccess(res.source)

		count := 0
		for _, raw := range res.raws {
			item := norm.Normalize(raw, time.Now())
			created, err := upsertAndConfirm(ctx, c.port, item, c.logger)
			if err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: upsert %s: %v", res.source, item.Fingerprint, err))
				continue
			}
			report.Articles++
			if created {
				report.New++
			} else {
				report.Duplicate++
			}
			count++
		}
		report.PerSourceCounts[res.source] = count
	}

	report.DurationMS = time.Since(started).Milliseconds()

	if err := c.port.InsertCollectionStats(ctx, "all", report); err != nil {
		c.logger.Warn("insert collection stats failed", zap.Error(err))
	}

	if c.publisher != nil {
		if err := c.publisher.Publish(ctx, eventbus.TopicNewsCollected, eventbus.Event{
			Key:   string(mode),
			Value: report,
		}); err != nil {
			c.logger.Warn("publish news collected event failed", zap.Error(err))
		}
	}

	return report, nil
}

func (c *Collector) recordFailure(source string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.health[source]
	if !ok {
		h = &sourceHealth{}
		c.health[source] = h
	}
	h.ConsecutiveFailures++
	h.LastError = err.Error()
	c.logger.Warn("source fetch failed", zap.String("source", source),
		zap.Int("consecutive_failures", h.ConsecutiveFailures), zap.Error(err))
}

func (c *Collector) recordSuccess(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.health[source]
	if !ok {
		h = &sourceHealth{}
		c.health[source] = h
	}
	h.ConsecutiveFailures = 0
	h.LastSuccess = time.Now()
}

// SourceHealthSnapshot returns a copy of the current per-source failure
// state, consumed by source_analysis.
func (c *Collector) SourceHealthSnapshot() map[string]sourceHealth {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]sourceHealth, len(c.health))
	for k, v := range c.health {
		out[k] = *v
	}
	return out
}

// Search implements search() (spec §4.2 public contract).
func (c *Collector) Search(ctx context.Context, filter store.NewsFilter) ([]model.NewsItem, error) {
	return c.port.ReadNewsRange(ctx, filter)
}

// UpdateOutcome implements updateOutcome() (spec §4.2 public contract):
// single-writer, idempotent — repeated calls with the same values are
// harmless since the port applies a plain field-level update.
func (c *Collector) UpdateOutcome(ctx context.Context, update model.OutcomeUpdate) error {
	if err := c.port.UpdateNewsOutcome(ctx, update); err != nil {
		return err
	}
	if c.publisher != nil {
		if err := c.publisher.Publish(ctx, eventbus.TopicOutcomeUpdated, eventbus.Event{
			Key:   update.NewsFingerprint,
			Value: update,
		}); err != nil {
			c.logger.Warn("publish outcome updated event failed", zap.Error(err))
		}
	}
	return nil
}

// SourceMetrics returns the aggregate accuracy/volume stats per source.
func (c *Collector) SourceMetrics(ctx context.Context) ([]model.SourceMetrics, error) {
	return c.port.ListSourceMetrics(ctx)
}

// TrendingNews surfaces the highest-activity narrative clusters detected in
// the lookback window (SPEC_FULL.md supplemented feature #2).
func (c *Collector) TrendingNews(ctx context.Context, lookback time.Duration) ([]model.NarrativeCluster, error) {
	return c.port.ListNarrativeClusters(ctx, time.Now().Add(-lookback))
}
