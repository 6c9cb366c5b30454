package model

import "time"

// Mode is the scheduler mode selected from time-of-day (spec §4.1).
type Mode string

const (
	ModeAggressive Mode = "aggressive"
	ModeNormal     Mode = "normal"
	ModeLight      Mode = "light"
	ModeMinimal    Mode = "minimal"
)

// CycleStatus is the TradingCycle status (spec §3).
type CycleStatus string

const (
	CycleRunning   CycleStatus = "running"
	CycleCompleted CycleStatus = "completed"
	CycleFailed    CycleStatus = "failed"
)

// Stage is one step of the cycle pipeline (spec §4.1).
type Stage string

const (
	StageCollect  Stage = "collect"
	StageScan     Stage = "scan"
	StageAnalyze  Stage = "analyze"
	StageSignal   Stage = "signal"
	StageExecute  Stage = "execute"
	StageFinalize Stage = "finalize"
)

// StageStatus records how a stage concluded.
type StageStatus string

const (
	StageStatusOK      StageStatus = "ok"
	StageStatusPartial StageStatus = "partial"
	StageStatusFatal   StageStatus = "fatal"
)

// WorkflowLogEntry is one audit row per stage transition within a cycle
// (SPEC_FULL.md supplemented feature #3).
type WorkflowLogEntry struct {
	CycleID     string      `json:"cycle_id" db:"cycle_id"`
	Stage       Stage       `json:"stage" db:"stage"`
	StartedAt   time.Time   `json:"started_at" db:"started_at"`
	EndedAt     *time.Time  `json:"ended_at,omitempty" db:"ended_at"`
	RecordCount int         `json:"record_count" db:"record_count"`
	Status      StageStatus `json:"status" db:"status"`
	Detail      string      `json:"detail,omitempty" db:"detail"`
}

// StageCounters accumulates the per-stage record counts for a cycle.
type StageCounters struct {
	NewsCollected     int `json:"news_collected"`
	CandidatesSelected int `json:"candidates_selected"`
	PatternsAnalyzed  int `json:"patterns_analyzed"`
	SignalsGenerated  int `json:"signals_generated"`
	TradesExecuted    int `json:"trades_executed"`
}

// TradingCycle is one row per coordinator run (spec §3).
type TradingCycle struct {
	CycleID     string        `json:"cycle_id" db:"cycle_id"`
	StartedAt   time.Time     `json:"started_at" db:"started_at"`
	EndedAt     *time.Time    `json:"ended_at,omitempty" db:"ended_at"`
	Status      CycleStatus   `json:"status" db:"status"`
	Mode        Mode          `json:"mode" db:"mode"`
	CurrentStage Stage        `json:"current_stage,omitempty" db:"current_stage"`
	Counters    StageCounters `json:"counters" db:"-"`
	CyclePnL    float64       `json:"cycle_pnl" db:"cycle_pnl"`
	SuccessRate float64       `json:"success_rate" db:"success_rate"`
	FailureReason string      `json:"failure_reason,omitempty" db:"failure_reason"`
}

// CycleView is the projection returned by getCurrentCycle() (spec §4.1).
type CycleView struct {
	CycleID      string        `json:"cycle_id"`
	Mode         Mode          `json:"mode"`
	Status       CycleStatus   `json:"status"`
	CurrentStage Stage         `json:"current_stage"`
	StartedAt    time.Time     `json:"started_at"`
	ElapsedMS    int64         `json:"elapsed_ms"`
	Counters     StageCounters `json:"counters"`
	StageLog     []WorkflowLogEntry `json:"stage_log"`
}

// ServiceStatus is one entry of serviceHealth()'s map (spec §4.1).
type ServiceStatus string

const (
	ServiceHealthy  ServiceStatus = "healthy"
	ServiceDegraded ServiceStatus = "degraded"
	ServiceDown     ServiceStatus = "unhealthy"
)
