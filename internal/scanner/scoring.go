package scanner

import (
	"math"
	"time"

	"github.com/TradingApplication/catalyst-trading-system/internal/model"
)

// tierWeight is W_tier from spec §4.3.
var tierWeight = map[int]float64{1: 1.0, 2: 0.8, 3: 0.6, 4: 0.4, 5: 0.2}

// marketWeight is W_market from spec §4.3.
var marketWeight = map[model.MarketState]float64{
	model.MarketPreMarket:  2.0,
	model.MarketRegular:    1.0,
	model.MarketAfterHours: 0.8,
	model.MarketWeekend:    0.5,
}

// keywordWeight is the per-category multiplier in W_keyword; any category
// not listed defaults to 1.0 (spec §4.3).
var keywordWeight = map[model.KeywordCategory]float64{
	model.CategoryEarnings:   1.2,
	model.CategoryFDA:        1.5,
	model.CategoryMerger:     1.3,
	model.CategoryBankruptcy: 1.3,
	model.CategoryGuidance:   1.15,
}

const maxKeywordWeight = 2.0

// wKeyword composes the multiplicative per-category weight across
// categories, capped at 2.0.
func wKeyword(categories []model.KeywordCategory) float64 {
	w := 1.0
	for _, cat := range categories {
		cw, ok := keywordWeight[cat]
		if !ok {
			cw = 1.0
		}
		w *= cw
	}
	if w > maxKeywordWeight {
		w = maxKeywordWeight
	}
	return w
}

// ItemScore computes item_score(n) on the same 0-100 scale catalyst_score
// is capped at (spec §4.3 worked example: tier=1, age=1h, earnings,
// regular yields item_score ≈ 93.4, not 0.934 — the raw product of the
// weights is scaled by 100 before summation).
func ItemScore(n model.NewsItem, now time.Time) float64 {
	tw, ok := tierWeight[n.SourceTier]
	if !ok {
		tw = tierWeight[5]
	}
	mw, ok := marketWeight[n.MarketState]
	if !ok {
		mw = 1.0
	}
	ageHours := n.AgeHours(now)
	return 100 * tw * math.Exp(-ageHours/4.0) * wKeyword(n.Keywords) * mw
}

// CatalystScore computes catalyst_score(sym) over the given recent news
// items for one symbol (spec §4.3), capped at 100. now is the reference
// instant item ages are measured against, so tests can fix it.
func CatalystScore(items []model.NewsItem, now time.Time) float64 {
	sum := 0.0
	for _, n := range items {
		sum += ItemScore(n, now)
	}
	if sum > 100 {
		return 100
	}
	return sum
}

// TechnicalScore computes technical_score from a market snapshot (spec
// §4.3 stage 4), clipped to [0, 100].
func TechnicalScore(snap model.MarketSnapshot) float64 {
	relVol := snap.RelativeVolume
	if relVol <= 0 {
		relVol = 0.0001
	}
	score := 50 + 10*math.Log10(relVol) + 2*snap.PriceChangePct
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// CombinedScore is combined_score from spec §4.3's final-ranking stage.
func CombinedScore(catalystScore, technicalScore float64) float64 {
	return 0.70*catalystScore + 0.30*technicalScore
}
