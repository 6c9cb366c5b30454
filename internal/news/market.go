package news

import (
	"time"

	"github.com/TradingApplication/catalyst-trading-system/internal/config"
	"github.com/TradingApplication/catalyst-trading-system/internal/model"
)

// sessionClock classifies a timestamp's market state against the
// configured session windows (spec §4.2 step 4).
type sessionClock struct {
	loc            *time.Location
	preMarketStart string
	regularStart   string
	regularEnd     string
	afterHoursEnd  string
}

func newSessionClock(cfg config.MarketHoursConfig) (*sessionClock, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &sessionClock{
		loc:            loc,
		preMarketStart: cfg.PreMarketStart,
		regularStart:   cfg.RegularStart,
		regularEnd:     cfg.RegularEnd,
		afterHoursEnd:  cfg.AfterHoursEnd,
	}, nil
}

func clockMinutes(hhmm string) int {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0
	}
	h := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	m := int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
	return h*60 + m
}

// Classify returns the MarketState for at, per spec §4.2 step 4: weekend
// takes priority, then pre-market/regular/after-hours by clock time, with
// any time outside the configured windows falling back to after-hours.
func (s *sessionClock) Classify(at time.Time) model.MarketState {
	local := at.In(s.loc)
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return model.MarketWeekend
	}

	minutes := local.Hour()*60 + local.Minute()
	pre := clockMinutes(s.preMarketStart)
	regStart := clockMinutes(s.regularStart)
	regEnd := clockMinutes(s.regularEnd)
	afterEnd := clockMinutes(s.afterHoursEnd)

	switch {
	case minutes >= pre && minutes < regStart:
		return model.MarketPreMarket
	case minutes >= regStart && minutes < regEnd:
		return model.MarketRegular
	case minutes >= regEnd && minutes < afterEnd:
		return model.MarketAfterHours
	default:
		return model.MarketAfterHours
	}
}
