package news

import (
	"context"
	"math"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/eventbus"
	"github.com/TradingApplication/catalyst-trading-system/internal/model"
	"github.com/TradingApplication/catalyst-trading-system/internal/store"
)

const (
	minClusterArticles = 4
	minClusterSources  = 3
	maxClusterSpread    = 2 * time.Hour
)

// StartNarrativeSweep schedules the hourly coordinated-narrative detection
// sweep (spec §4.2), grounded on easyweb3tools-easy-paas's robfig/cron
// runner for periodic backend jobs.
func StartNarrativeSweep(port store.Port, publisher *eventbus.Publisher, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := DetectCoordinatedNarratives(ctx, port, publisher, time.Now()); err != nil {
			logger.Error("coordinated-narrative sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// DetectCoordinatedNarratives groups the last 24h of news by cluster_id and
// persists a narrative_clusters row for every cluster meeting the spec's
// coordination threshold (>= 4 articles, >= 3 distinct sources, < 2h spread).
func DetectCoordinatedNarratives(ctx context.Context, port store.Port, publisher *eventbus.Publisher, now time.Time) error {
	items, err := port.ReadNewsRange(ctx, store.NewsFilter{Since: now.Add(-24 * time.Hour), Until: now, Limit: 0})
	if err != nil {
		return err
	}

	type bucket struct {
		symbol     string
		categories map[model.KeywordCategory]bool
		sources    map[string]bool
		earliest   time.Time
		latest     time.Time
		count      int
	}
	clusters := make(map[string]*bucket)

	for _, item := range items {
		if item.NarrativeCluster == nil {
			continue
		}
		id := *item.NarrativeCluster
		b, ok := clusters[id]
		if !ok {
			b = &bucket{
				categories: make(map[model.KeywordCategory]bool),
				sources:    make(map[string]bool),
				earliest:   item.PublishedAt,
				latest:     item.PublishedAt,
			}
			if item.PrimarySymbol != nil {
				b.symbol = *item.PrimarySymbol
			}
			clusters[id] = b
		}
		b.count++
		b.sources[item.Source] = true
		for _, k := range item.Keywords {
			b.categories[k] = true
		}
		if item.PublishedAt.Before(b.earliest) {
			b.earliest = item.PublishedAt
		}
		if item.PublishedAt.After(b.latest) {
			b.latest = item.PublishedAt
		}
	}

	for id, b := range clusters {
		if b.count < minClusterArticles || len(b.sources) < minClusterSources {
			continue
		}
		spread := b.latest.Sub(b.earliest)
		if spread >= maxClusterSpread {
			continue
		}

		spreadHours := spread.Hours()
		score := math.Min(100, 20*float64(len(b.sources))+10*float64(b.count)-5*spreadHours)

		categories := make([]string, 0, len(b.categories))
		for c := range b.categories {
			categories = append(categories, string(c))
		}

		cluster := model.NarrativeCluster{
			ClusterID:         id,
			Symbol:            b.symbol,
			Date:              now.UTC().Format("2006-01-02"),
			Categories:        categories,
			ArticleCount:      b.count,
			DistinctSources:   len(b.sources),
			TimeSpreadHours:   spreadHours,
			CoordinationScore: score,
			DetectedAt:        now,
		}
		if err := port.InsertNarrativeCluster(ctx, cluster); err != nil {
			return err
		}

		if publisher != nil {
			_ = publisher.Publish(ctx, eventbus.TopicNarrativeDetected, eventbus.Event{Key: id, Value: cluster})
		}
	}

	return nil
}
