package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/TradingApplication/catalyst-trading-system/internal/model"
)

func TestCatalystScoreWorkedExample(t *testing.T) {
	now := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	item := model.NewsItem{
		SourceTier:  1,
		PublishedAt: now.Add(-1 * time.Hour),
		MarketState: model.MarketRegular,
		Keywords:    []model.KeywordCategory{model.CategoryEarnings},
	}

	score := CatalystScore([]model.NewsItem{item}, now)
	assert.InDelta(t, 93.4, score, 0.5)
}

func TestTechnicalScoreWorkedExample(t *testing.T) {
	snap := model.MarketSnapshot{Price: 50, Volume: 2_000_000, RelativeVolume: 2.0, PriceChangePct: 3.0}
	score := TechnicalScore(snap)
	assert.InDelta(t, 59.0, score, 0.5)
}

func TestCombinedScoreWorkedExample(t *testing.T) {
	combined := CombinedScore(93.4, 59.0)
	assert.InDelta(t, 83.1, combined, 0.5)
}

func TestCatalystScoreCapsAt100(t *testing.T) {
	now := time.Now()
	var items []model.NewsItem
	for i := 0; i < 10; i++ {
		items = append(items, model.NewsItem{
			SourceTier:  1,
			PublishedAt: now,
			MarketState: model.MarketPreMarket,
			Keywords:    []model.KeywordCategory{model.CategoryFDA, model.CategoryMerger},
		})
	}
	score := CatalystScore(items, now)
	assert.Equal(t, 100.0, score)
}

func TestCatalystScoreZeroNews(t *testing.T) {
	score := CatalystScore(nil, time.Now())
	assert.Equal(t, 0.0, score)
}

func TestTechnicalScoreClippedToRange(t *testing.T) {
	low := TechnicalScore(model.MarketSnapshot{RelativeVolume: 0.0001, PriceChangePct: -50})
	assert.Equal(t, 0.0, low)

	high := TechnicalScore(model.MarketSnapshot{RelativeVolume: 1000, PriceChangePct: 50})
	assert.Equal(t, 100.0, high)
}

func TestWKeywordCapsMultiplicativeComposition(t *testing.T) {
	w := wKeyword([]model.KeywordCategory{model.CategoryFDA, model.CategoryMerger, model.CategoryEarnings})
	assert.LessOrEqual(t, w, maxKeywordWeight)
}

func TestWKeywordUnknownCategoryDefaultsToOne(t *testing.T) {
	w := wKeyword([]model.KeywordCategory{"unknown-category"})
	assert.Equal(t, 1.0, w)
}
