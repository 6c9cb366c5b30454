package news

import (
	"time"

	"github.com/TradingApplication/catalyst-trading-system/internal/model"
)

// modeParams is the collection mode contract table of spec §4.2.
type modeParams struct {
	MaxTier       int // 0 means no restriction
	PerSourceCap  int
	Budget        time.Duration
}

var modeTable = map[model.Mode]modeParams{
	model.ModeAggressive: {MaxTier: 0, PerSourceCap: 100, Budget: 120 * time.Second},
	model.ModeNormal:     {MaxTier: 0, PerSourceCap: 50, Budget: 180 * time.Second},
	model.ModeLight:      {MaxTier: 3, PerSourceCap: 30, Budget: 180 * time.Second},
	model.ModeMinimal:    {MaxTier: 2, PerSourceCap: 20, Budget: 300 * time.Second},
}

func paramsFor(mode model.Mode) modeParams {
	if p, ok := modeTable[mode]; ok {
		return p
	}
	return modeTable[model.ModeNormal]
}
