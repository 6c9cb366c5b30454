package coordinator

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/model"
	"github.com/TradingApplication/catalyst-trading-system/internal/store"
)

// StartOutcomeFeedback schedules the 15-minute trade-closure sweep (spec
// §4.1 "Outcome feedback"), grounded on easyweb3tools-easy-paas's
// robfig/cron runner for periodic backend jobs.
func StartOutcomeFeedback(port store.Port, logger *zap.Logger) (*cron.Cron, error) {
	lastRun := time.Now()
	c := cron.New()
	_, err := c.AddFunc("*/15 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		since := lastRun
		now := time.Now()
		if err := RunOutcomeFeedback(ctx, port, since, logger); err != nil {
			logger.Error("outcome feedback sweep failed", zap.Error(err))
			return
		}
		lastRun = now
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// RunOutcomeFeedback scans for trade closures since the last run, and for
// each one updates the originating NewsItem's outcome fields (was_accurate,
// price moves, volume surge) and then the corresponding SourceMetrics
// counters. The two updates are separate port calls, not one transaction:
// if the SourceMetrics update fails, the NewsItem update stays in place and
// the failure is only logged.
func RunOutcomeFeedback(ctx context.Context, port store.Port, since time.Time, logger *zap.Logger) error {
	closures, err := port.ListClosedTradesSince(ctx, since)
	if err != nil {
		return err
	}

	for _, closure := range closures {
		wasAccurate := closure.RealizedPnL > 0

		if err := port.UpdateNewsOutcome(ctx, model.OutcomeUpdate{
			NewsFingerprint:  closure.NewsFingerprint,
			PriceMove1h:      &closure.PriceMove1h,
			PriceMove24h:     &closure.PriceMove24h,
			VolumeSurgeRatio: &closure.VolumeSurgeRatio,
			WasAccurate:      &wasAccurate,
		}); err != nil {
			logger.Warn("update news outcome failed",
				zap.String("trade_id", closure.TradeID), zap.Error(err))
			continue
		}

		item, err := port.GetNewsByFingerprint(ctx, closure.NewsFingerprint)
		if err != nil {
			logger.Warn("lookup news for outcome feedback failed",
				zap.String("fingerprint", closure.NewsFingerprint), zap.Error(err))
			continue
		}

		delta := store.SourceMetricsDelta{Articles: 0, Confirmed: 0}
		if wasAccurate {
			delta.Accurate = 1
		} else {
			delta.False = 1
		}
		delta.Beneficiary = closure.Symbol

		if err := port.IncrementSourceMetrics(ctx, item.Source, delta); err != nil {
			logger.Warn("increment source metrics failed",
				zap.String("source", item.Source), zap.Error(err))
		}
	}

	return nil
}
