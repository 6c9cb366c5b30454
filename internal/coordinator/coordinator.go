// Package coordinator implements the Cycle Coordinator (spec §4.1): the
// mode-aware scheduler, the stage-orchestrated trading cycle state machine,
// and the outcome-feedback sweep.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/apperr"
	"github.com/TradingApplication/catalyst-trading-system/internal/authtoken"
	"github.com/TradingApplication/catalyst-trading-system/internal/config"
	"github.com/TradingApplication/catalyst-trading-system/internal/eventbus"
	"github.com/TradingApplication/catalyst-trading-system/internal/model"
	"github.com/TradingApplication/catalyst-trading-system/internal/runtimeconfig"
	"github.com/TradingApplication/catalyst-trading-system/internal/store"
)

// Coordinator drives the end-to-end workflow and enforces that at most one
// cycle is active at a time, the way spec §5 requires.
type Coordinator struct {
	port          store.Port
	collaborators *collaboratorRegistry
	scheduler     *scheduler
	runtimeConfig *runtimeconfig.Store
	publisher     *eventbus.Publisher
	logger        *zap.Logger

	mu      sync.Mutex
	current *runningCycle
}

// runningCycle is the Coordinator's in-memory view of the active cycle,
// mutated only while mu is held.
type runningCycle struct {
	cycleID      string
	mode         model.Mode
	startedAt    time.Time
	stage        model.Stage
	counters     model.StageCounters
	stageLog     []model.WorkflowLogEntry
	cancel       context.CancelFunc
	finalized    bool
}

// New builds a Coordinator. issuer signs the service-to-service tokens
// attached to outbound pattern/technical/trading collaborator calls; it may
// be nil (tests), in which case those calls carry only the static
// X-Service-Key header.
func New(cfg *config.Config, port store.Port, issuer *authtoken.Issuer, publisher *eventbus.Publisher, logger *zap.Logger) (*Coordinator, error) {
	loc, err := time.LoadLocation(cfg.Market.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Coordinator{
		port:          port,
		collaborators: newCollaboratorRegistry(cfg.Collaborators, issuer, logger),
		scheduler:     newScheduler(loc),
		runtimeConfig: runtimeconfig.New(port),
		publisher:     publisher,
		logger:        logger,
	}, nil
}

// StartCycle begins a cycle in mode, failing with a BusyError if one is
// already active (spec §4.1 "startCycle").
func (co *Coordinator) StartCycle(parent context.Context, mode model.Mode) (string, error) {
	co.mu.Lock()
	if co.current != nil {
		co.mu.Unlock()
		return "", apperr.NewBusy("a cycle is already running: " + co.current.cycleID)
	}

	cycleID := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	rc := &runningCycle{
		cycleID:   cycleID,
		mode:      mode,
		startedAt: time.Now(),
		stage:     model.StageCollect,
		cancel:    cancel,
	}
	co.current = rc
	co.mu.Unlock()

	if err := co.port.InsertCycle(ctx, model.TradingCycle{
		CycleID:      cycleID,
		StartedAt:    rc.startedAt,
		Status:       model.CycleRunning,
		Mode:         mode,
		CurrentStage: model.StageCollect,
	}); err != nil {
		co.mu.Lock()
		co.current = nil
		co.mu.Unlock()
		return "", fmt.Errorf("insert cycle: %w", err)
	}

	go co.runCycle(ctx, rc)

	return cycleID, nil
}

// runCycle executes the stage pipeline (spec §4.1 "Stage orchestration").
func (co *Coordinator) runCycle(ctx context.Context, rc *runningCycle) {
	fail := func(reason string) {
		co.finalize(ctx, rc, model.CycleFailed, reason)
	}

	co.enterStage(rc, model.StageCollect)
	report, outcome := co.runCollectStage(ctx, rc.mode)
	co.logStage(ctx, rc, model.StageCollect, outcome)
	if outcome.status == model.StageStatusFatal {
		fail("collect stage failed: " + outcome.detail)
		return
	}
	rc.counters.NewsCollected = report.Articles

	co.enterStage(rc, model.StageScan)
	scanResult, outcome := co.runScanStage(ctx, rc.mode)
	co.logStage(ctx, rc, model.StageScan, outcome)
	if outcome.status == model.StageStatusFatal {
		fail("scan stage failed: " + outcome.detail)
		return
	}
	rc.counters.CandidatesSelected = len(scanResult.Candidates)

	if len(scanResult.Candidates) == 0 {
		co.finalize(ctx, rc, model.CycleCompleted, "")
		return
	}

	co.enterStage(rc, model.StageAnalyze)
	patterns, outcome := co.runAnalyzeStage(ctx, scanResult.Candidates)
	co.logStage(ctx, rc, model.StageAnalyze, outcome)
	rc.counters.PatternsAnalyzed = outcome.count

	co.enterStage(rc, model.StageSignal)
	signals, outcome := co.runSignalStage(ctx, scanResult.Candidates, patterns)
	co.logStage(ctx, rc, model.StageSignal, outcome)
	rc.counters.SignalsGenerated = outcome.count

	co.enterStage(rc, model.StageExecute)
	trades, outcome := co.runExecuteStage(ctx, signals)
	co.logStage(ctx, rc, model.StageExecute, outcome)
	rc.counters.TradesExecuted = outcome.count

	co.enterStage(rc, model.StageFinalize)
	pnl := 0.0
	for _, t := range trades {
		pnl += t.PnL
	}

	// At least one candidate made it through scan, so per spec §7's
	// propagation policy the cycle completes even if later stages degraded
	// to partial.
	co.finalizeWithPnL(ctx, rc, model.CycleCompleted, "", pnl)
}

func (co *Coordinator) enterStage(rc *runningCycle, stage model.Stage) {
	co.mu.Lock()
	rc.stage = stage
	co.mu.Unlock()
}

func (co *Coordinator) logStage(ctx context.Context, rc *runningCycle, stage model.Stage, outcome stageOutcome) {
	now := time.Now()
	entry := model.WorkflowLogEntry{
		CycleID:     rc.cycleID,
		Stage:       stage,
		StartedAt:   now,
		EndedAt:     &now,
		RecordCount: outcome.count,
		Status:      outcome.status,
		Detail:      outcome.detail,
	}
	co.mu.Lock()
	rc.stageLog = append(rc.stageLog, entry)
	co.mu.Unlock()

	if err := co.port.UpdateCycleStage(ctx, rc.cycleID, entry); err != nil {
		co.logger.Warn("update cycle stage failed", zap.String("cycle_id", rc.cycleID), zap.Error(err))
	}
}

func (co *Coordinator) finalize(ctx context.Context, rc *runningCycle, status model.CycleStatus, reason string) {
	co.finalizeWithPnL(ctx, rc, status, reason, 0)
}

func (co *Coordinator) finalizeWithPnL(ctx context.Context, rc *runningCycle, status model.CycleStatus, reason string, pnl float64) {
	co.mu.Lock()
	if rc.finalized {
		co.mu.Unlock()
		return
	}
	rc.finalized = true
	co.mu.Unlock()
	if ctx.Err() != nil {
		// Only Cancel cancels the cycle context.
		status, reason = model.CycleFailed, "cancelled"
	}

	counters := rc.counters

	if err := co.port.FinalizeCycle(context.Background(), rc.cycleID, status, counters, pnl, reason); err != nil {
		co.logger.Error("finalize cycle failed", zap.String("cycle_id", rc.cycleID), zap.Error(err))
	}

	if co.publisher != nil {
		_ = co.publisher.Publish(context.Background(), eventbus.TopicCycleFinalized, eventbus.Event{
			Key:   rc.cycleID,
			Value: map[string]interface{}{"cycle_id": rc.cycleID, "status": status, "counters": counters},
		})
	}

	co.mu.Lock()
	co.current = nil
	co.mu.Unlock()
}

// Cancel aborts the active cycle (spec §8 Scenario F): in-flight
// collaborator calls are cancelled and the cycle is finalized as failed
// with reason "cancelled", preserving whatever partial counters exist.
func (co *Coordinator) Cancel(ctx context.Context) error {
	co.mu.Lock()
	rc := co.current
	co.mu.Unlock()

	if rc == nil {
		return apperr.NewNotFound("no active cycle to cancel")
	}
	rc.cancel()
	co.finalize(context.Background(), rc, model.CycleFailed, "cancelled")
	return nil
}

// GetCurrentCycle returns the live cycle's view, or nil if idle (spec §4.1
// "getCurrentCycle").
func (co *Coordinator) GetCurrentCycle() *model.CycleView {
	co.mu.Lock()
	defer co.mu.Unlock()

	if co.current == nil {
		return nil
	}
	rc := co.current
	return &model.CycleView{
		CycleID:      rc.cycleID,
		Mode:         rc.mode,
		Status:       model.CycleRunning,
		CurrentStage: rc.stage,
		StartedAt:    rc.startedAt,
		ElapsedMS:    time.Since(rc.startedAt).Milliseconds(),
		Counters:     rc.counters,
		StageLog:     append([]model.WorkflowLogEntry(nil), rc.stageLog...),
	}
}

// ServiceHealth probes every registered collaborator's health endpoint with
// a 5s timeout (spec §4.1 "serviceHealth").
func (co *Coordinator) ServiceHealth(ctx context.Context) map[string]model.ServiceStatus {
	result := make(map[string]model.ServiceStatus)
	var mu sync.Mutex
	var wg sync.WaitGroup

	check := func(name string, client *CollaboratorClient, downStatus model.ServiceStatus) {
		defer wg.Done()
		status := model.ServiceHealthy
		if err := client.HealthCheck(ctx); err != nil {
			status = downStatus
			co.logger.Warn("collaborator health check failed", zap.String("service", name), zap.Error(err))
		}
		mu.Lock()
		result[name] = status
		mu.Unlock()
	}

	for name, client := range co.collaborators.required() {
		wg.Add(1)
		go check(name, client, model.ServiceDown)
	}
	for name, client := range co.collaborators.optional() {
		wg.Add(1)
		go check(name, client, model.ServiceDegraded)
	}
	wg.Wait()

	return result
}

// UpdateConfig transactionally updates a configuration entry and
// invalidates any cached copy (spec §4.1 "updateConfig").
func (co *Coordinator) UpdateConfig(ctx context.Context, key, value, modifiedBy string) error {
	return co.runtimeConfig.Set(ctx, key, value, modifiedBy)
}

// ModeNow resolves the scheduler's current mode and tick interval.
func (co *Coordinator) ModeNow() (model.Mode, time.Duration) {
	return co.scheduler.ModeAt(time.Now())
}

// IsIdle reports whether no cycle is currently active, used by the
// scheduler to decide whether to skip a tick (spec §4.1 "must skip a tick
// if the previous cycle has not reached a terminal state").
func (co *Coordinator) IsIdle() bool {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.current == nil
}
