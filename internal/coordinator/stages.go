package coordinator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/model"
	"github.com/TradingApplication/catalyst-trading-system/internal/retry"
)

const (
	patternTimeout   = 30 * time.Second
	technicalTimeout = 30 * time.Second
	tradingTimeout   = 10 * time.Second

	signalConfidenceFloor = 0.6
)

// patternRecord, technicalSignal and tradeResult are the minimal shapes the
// pattern/technical/trading collaborators are expected to return. These
// collaborators are out of scope per spec §1; the core only needs their
// wire contract.
type patternRecord struct {
	Symbol    string   `json:"symbol"`
	Patterns  []string `json:"patterns"`
	Timeframe string   `json:"timeframe"`
}

type technicalSignal struct {
	Symbol     string  `json:"symbol"`
	Signal     string  `json:"signal"`
	Confidence float64 `json:"confidence"`
}

type tradeResult struct {
	Symbol  string  `json:"symbol"`
	TradeID string  `json:"trade_id"`
	PnL     float64 `json:"pnl"`
}

// envelope mirrors the {"status":"ok","data": ...} shape every HTTP handler
// in this module emits, letting a collaborator response decode straight
// into the caller's typed pointer via Data.
type envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// stageOutcome is the per-stage result fed into the workflow_log entry and
// the cycle's StageCounters.
type stageOutcome struct {
	status model.StageStatus
	count  int
	detail string
}

func (co *Coordinator) runCollectStage(ctx context.Context, mode model.Mode) (model.CollectionReport, stageOutcome) {
	var report model.CollectionReport
	env := envelope{Data: &report}
	err := retry.Do(ctx, func() error {
		return co.collaborators.News.PostJSON(ctx, "/collect_news", map[string]string{"mode": string(mode)}, &env)
	})
	if err != nil {
		co.logger.Error("collect stage failed", zap.Error(err))
		return report, stageOutcome{status: model.StageStatusFatal, detail: err.Error()}
	}
	return report, stageOutcome{status: model.StageStatusOK, count: report.Articles}
}

func (co *Coordinator) runScanStage(ctx context.Context, mode model.Mode) (model.ScanResult, stageOutcome) {
	var result model.ScanResult
	env := envelope{Data: &result}
	err := retry.Do(ctx, func() error {
		return co.collaborators.Scanner.PostJSON(ctx, "/scan", map[string]string{"mode": string(mode)}, &env)
	})
	if err != nil {
		co.logger.Error("scan stage failed", zap.Error(err))
		return result, stageOutcome{status: model.StageStatusFatal, detail: err.Error()}
	}
	return result, stageOutcome{status: model.StageStatusOK, count: len(result.Candidates)}
}

func (co *Coordinator) runAnalyzeStage(parent context.Context, candidates []model.TradingCandidate) (map[string]patternRecord, stageOutcome) {
	ctx, cancel := context.WithTimeout(parent, patternTimeout)
	defer cancel()

	patterns := make(map[string]patternRecord)
	failures := 0
	for _, cand := range candidates {
		var rec patternRecord
		env := envelope{Data: &rec}
		err := retry.Do(ctx, func() error {
			return co.collaborators.Pattern.PostJSON(ctx, "/analyze", map[string]string{"symbol": cand.Symbol}, &env)
		})
		if err != nil {
			co.logger.Warn("pattern analysis failed", zap.String("symbol", cand.Symbol), zap.Error(err))
			failures++
			continue
		}
		patterns[cand.Symbol] = rec
	}

	status := model.StageStatusOK
	if failures > 0 {
		status = model.StageStatusPartial
	}
	return patterns, stageOutcome{status: status, count: len(patterns)}
}

func (co *Coordinator) runSignalStage(parent context.Context, candidates []model.TradingCandidate, patterns map[string]patternRecord) ([]technicalSignal, stageOutcome) {
	ctx, cancel := context.WithTimeout(parent, technicalTimeout)
	defer cancel()

	var signals []technicalSignal
	failures := 0
	for _, cand := range candidates {
		if _, ok := patterns[cand.Symbol]; !ok {
			continue
		}
		var sig technicalSignal
		env := envelope{Data: &sig}
		err := retry.Do(ctx, func() error {
			return co.collaborators.Technical.PostJSON(ctx, "/signal", map[string]string{"symbol": cand.Symbol}, &env)
		})
		if err != nil {
			co.logger.Warn("technical signal failed", zap.String("symbol", cand.Symbol), zap.Error(err))
			failures++
			continue
		}
		if sig.Confidence >= signalConfidenceFloor {
			signals = append(signals, sig)
		}
	}

	status := model.StageStatusOK
	if failures > 0 {
		status = model.StageStatusPartial
	}
	return signals, stageOutcome{status: status, count: len(signals)}
}

func (co *Coordinator) runExecuteStage(parent context.Context, signals []technicalSignal) ([]tradeResult, stageOutcome) {
	ctx, cancel := context.WithTimeout(parent, tradingTimeout)
	defer cancel()

	var trades []tradeResult
	failures := 0
	for _, sig := range signals {
		var trade tradeResult
		env := envelope{Data: &trade}
		err := retry.Do(ctx, func() error {
			return co.collaborators.Trading.PostJSON(ctx, "/execute", map[string]string{"symbol": sig.Symbol, "signal": sig.Signal}, &env)
		})
		if err != nil {
			co.logger.Warn("trade execution failed", zap.String("symbol", sig.Symbol), zap.Error(err))
			failures++
			continue
		}
		trades = append(trades, trade)
	}

	status := model.StageStatusOK
	if failures > 0 {
		status = model.StageStatusPartial
	}
	return trades, stageOutcome{status: status, count: len(trades)}
}
