package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TradingApplication/catalyst-trading-system/internal/apperr"
	"github.com/TradingApplication/catalyst-trading-system/internal/model"
)

func TestInsertAndGetCandidatesRoundTrips(t *testing.T) {
	m := NewMemory()
	cands := []model.TradingCandidate{{Symbol: "AAPL", CombinedScore: 90}, {Symbol: "MSFT", CombinedScore: 80}}

	require.NoError(t, m.InsertCandidates(context.Background(), "scan-1", cands))

	got, err := m.GetCandidates(context.Background(), "scan-1")
	require.NoError(t, err)
	assert.Equal(t, cands, got)
}

func TestGetCandidatesReturnsNotFoundForUnknownScan(t *testing.T) {
	m := NewMemory()
	_, err := m.GetCandidates(context.Background(), "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestMarkCandidateStatusUpdatesMatchingSymbolOnly(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.InsertCandidates(context.Background(), "scan-1", []model.TradingCandidate{
		{Symbol: "AAPL", Status: "pending"},
		{Symbol: "MSFT", Status: "pending"},
	}))

	require.NoError(t, m.MarkCandidateStatus(context.Background(), "scan-1", "AAPL", "executed"))

	got, err := m.GetCandidates(context.Background(), "scan-1")
	require.NoError(t, err)
	assert.Equal(t, "executed", got[0].Status)
	assert.Equal(t, "pending", got[1].Status)
}

func TestReadConfigReturnsFalseWhenKeyNeverWritten(t *testing.T) {
	m := NewMemory()
	_, ok, err := m.ReadConfig(context.Background(), "scanner.top_k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteConfigThenReadConfigReturnsStoredValue(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.WriteConfig(context.Background(), "scanner.top_k", "8", "operator"))

	v, ok, err := m.ReadConfig(context.Background(), "scanner.top_k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "8", v)
}

func TestCacheSetThenGetReturnsValueBeforeExpiry(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.CacheSet(context.Background(), "k1", "v1", time.Minute))

	v, ok, err := m.CacheGet(context.Background(), "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", v)
}

func TestCacheGetReturnsFalseAfterExpiry(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.CacheSet(context.Background(), "k1", "v1", -time.Second))

	_, ok, err := m.CacheGet(context.Background(), "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheInvalidatePatternRemovesMatchingPrefix(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.CacheSet(context.Background(), "config:scanner.top_k", "8", time.Minute))
	require.NoError(t, m.CacheSet(context.Background(), "config:scanner.min_price", "1", time.Minute))
	require.NoError(t, m.CacheSet(context.Background(), "other:key", "x", time.Minute))

	require.NoError(t, m.CacheInvalidatePattern(context.Background(), "config:*"))

	_, ok, _ := m.CacheGet(context.Background(), "config:scanner.top_k")
	assert.False(t, ok)
	_, ok, _ = m.CacheGet(context.Background(), "other:key")
	assert.True(t, ok)
}

func TestIncrementSourceMetricsAccumulatesAcrossCalls(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.SeedSourceMetrics(context.Background(), "reuters", 1))

	early := 30.0
	require.NoError(t, m.IncrementSourceMetrics(context.Background(), "reuters", SourceMetricsDelta{
		Confirmed: 1, Accurate: 1, EarlyMinutes: &early, Beneficiary: "AAPL",
	}))
	require.NoError(t, m.IncrementSourceMetrics(context.Background(), "reuters", SourceMetricsDelta{
		Confirmed: 1, False: 1, Beneficiary: "MSFT",
	}))

	sm, err := m.GetSourceMetrics(context.Background(), "reuters")
	require.NoError(t, err)
	assert.Equal(t, 2, sm.Confirmed)
	assert.Equal(t, 1, sm.Accurate)
	assert.Equal(t, 1, sm.False)
	assert.InDelta(t, 0.5, sm.AccuracyRate, 0.001)
	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, sm.FrequentBeneficiaries)
}

func TestIncrementSourceMetricsSeedsUnknownSourceAtTierFive(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.IncrementSourceMetrics(context.Background(), "unknown-blog", SourceMetricsDelta{Articles: 1}))

	sm, err := m.GetSourceMetrics(context.Background(), "unknown-blog")
	require.NoError(t, err)
	assert.Equal(t, 5, sm.Tier)
}

func TestCycleLifecycleInsertUpdateFinalizeAndGet(t *testing.T) {
	m := NewMemory()
	cycle := model.TradingCycle{CycleID: "cycle-1", Mode: model.ModeNormal, Status: model.CycleRunning, StartedAt: time.Now()}
	require.NoError(t, m.InsertCycle(context.Background(), cycle))

	require.NoError(t, m.UpdateCycleStage(context.Background(), "cycle-1", model.WorkflowLogEntry{Stage: "collect"}))
	require.NoError(t, m.UpdateCycleStage(context.Background(), "cycle-1", model.WorkflowLogEntry{Stage: "scan"}))

	log, err := m.GetWorkflowLog(context.Background(), "cycle-1")
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, model.Stage("scan"), log[1].Stage)

	require.NoError(t, m.FinalizeCycle(context.Background(), "cycle-1", model.CycleCompleted,
		model.StageCounters{CandidatesSelected: 4, TradesExecuted: 2}, 42.5, ""))

	got, err := m.GetCycle(context.Background(), "cycle-1")
	require.NoError(t, err)
	assert.Equal(t, model.CycleCompleted, got.Status)
	assert.Equal(t, 42.5, got.CyclePnL)
	assert.InDelta(t, 0.5, got.SuccessRate, 0.001)
	assert.NotNil(t, got.EndedAt)
	assert.Equal(t, model.Stage("scan"), got.CurrentStage, "current stage tracks the last recorded workflow entry")
}

func TestUpdateCycleStageReturnsNotFoundForUnknownCycle(t *testing.T) {
	m := NewMemory()
	err := m.UpdateCycleStage(context.Background(), "missing", model.WorkflowLogEntry{Stage: "collect"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListClosedTradesSinceFiltersByClosedAt(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.RecordTradeClosure(TradeClosure{Symbol: "AAPL", ClosedAt: now.Add(-2 * time.Hour)})
	m.RecordTradeClosure(TradeClosure{Symbol: "MSFT", ClosedAt: now})

	out, err := m.ListClosedTradesSince(context.Background(), now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "MSFT", out[0].Symbol)
}
