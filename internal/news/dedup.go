package news

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/model"
	"github.com/TradingApplication/catalyst-trading-system/internal/store"
)

const confirmationWindow = 4 * time.Hour

// upsertAndConfirm inserts or merges item via the Persistence Port, then, if
// item is tier-1/2, looks for an earlier unconfirmed tier-3-5 article on the
// same symbol and keyword-category set within the ±4h confirmation window
// and marks it confirmed (spec §4.2 "Confirmation tracking").
func upsertAndConfirm(ctx context.Context, port store.Port, item model.NewsItem, logger *zap.Logger) (created bool, err error) {
	created, err = port.UpsertNewsItem(ctx, &item)
	if err != nil {
		return false, err
	}

	if item.SourceTier > 2 || item.PrimarySymbol == nil {
		return created, nil
	}

	since := item.PublishedAt.Add(-confirmationWindow)
	until := item.PublishedAt.Add(confirmationWindow)
	candidates, err := port.ReadNewsRange(ctx, store.NewsFilter{
		Symbol: *item.PrimarySymbol,
		Since:  since,
		Until:  until,
		Limit:  200,
	})
	if err != nil {
		logger.Warn("confirmation lookup failed", zap.Error(err))
		return created, nil
	}

	for _, candidate := range candidates {
		if candidate.Fingerprint == item.Fingerprint {
			continue
		}
		if candidate.SourceTier < 3 {
			continue
		}
		if candidate.ConfirmationStatus == model.ConfirmationConfirmed {
			continue
		}
		if !sameCategories(candidate.Keywords, item.Keywords) {
			continue
		}

		delay := int(item.PublishedAt.Sub(candidate.PublishedAt).Minutes())
		if delay < 0 {
			continue
		}
		if err := port.MarkNewsConfirmed(ctx, candidate.Fingerprint, item.Source, delay); err != nil {
			logger.Warn("mark news confirmed failed",
				zap.String("fingerprint", candidate.Fingerprint), zap.Error(err))
		}
	}

	return created, nil
}

func sameCategories(a, b []model.KeywordCategory) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[model.KeywordCategory]bool, len(a))
	for _, c := range a {
		set[c] = true
	}
	for _, c := range b {
		if set[c] {
			return true
		}
	}
	return false
}
