package coordinator

import (
	"time"

	"github.com/TradingApplication/catalyst-trading-system/internal/model"
)

// scheduleWindow is one row of the mode-selection table (spec §4.1).
type scheduleWindow struct {
	StartMinute int
	EndMinute   int
	Weekdays    bool
	Mode        model.Mode
	Interval    time.Duration
}

// defaultSchedule is the fixed spec §4.1 mode-selection table. Unlike the
// scanner's min_catalyst_score/top_k, it is not exposed through
// runtimeconfig.Store: the window boundaries are a fixed trading-calendar
// fact, not an operator-tunable threshold, so this table never changes at
// runtime.
var defaultSchedule = []scheduleWindow{
	{StartMinute: 4 * 60, EndMinute: 9*60 + 30, Weekdays: true, Mode: model.ModeAggressive, Interval: 5 * time.Minute},
	{StartMinute: 9*60 + 30, EndMinute: 16 * 60, Weekdays: true, Mode: model.ModeNormal, Interval: 30 * time.Minute},
	{StartMinute: 16 * 60, EndMinute: 20 * 60, Weekdays: true, Mode: model.ModeLight, Interval: 60 * time.Minute},
}

const minimalInterval = 240 * time.Minute

// scheduler resolves the current mode and tick interval from wall-clock
// time in the configured market timezone.
type scheduler struct {
	loc      *time.Location
	windows  []scheduleWindow
}

func newScheduler(loc *time.Location) *scheduler {
	return &scheduler{loc: loc, windows: defaultSchedule}
}

// ModeAt resolves the mode and tick interval in effect at t, falling back
// to "minimal" with a 240-minute interval outside every configured window
// (spec §4.1: "all other hours").
func (s *scheduler) ModeAt(t time.Time) (model.Mode, time.Duration) {
	local := t.In(s.loc)
	isWeekday := local.Weekday() >= time.Monday && local.Weekday() <= time.Friday
	minutes := local.Hour()*60 + local.Minute()

	for _, w := range s.windows {
		if w.Weekdays && !isWeekday {
			continue
		}
		if minutes >= w.StartMinute && minutes < w.EndMinute {
			return w.Mode, w.Interval
		}
	}
	return model.ModeMinimal, minimalInterval
}
