package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/TradingApplication/catalyst-trading-system/internal/apperr"
	"github.com/TradingApplication/catalyst-trading-system/internal/model"
)

// Memory is an in-process implementation of Port. It backs local/dev runs
// without Postgres or Redis and is what the coordinator/news/scanner unit
// tests are built against, the way the pack's own adapters (e.g.
// RajChodisetti-Trading-app's mock.go/sim.go) fake an external dependency
// behind the same interface the real client implements.
type Memory struct {
	mu sync.Mutex

	news          map[string]*model.NewsItem
	sourceMetrics map[string]*model.SourceMetrics
	clusters      []model.NarrativeCluster
	candidates    map[string][]model.TradingCandidate
	cycles        map[string]*model.TradingCycle
	workflowLog   map[string][]model.WorkflowLogEntry
	tradeClosures []TradeClosure
	config        map[string]string
	cache         map[string]cacheEntry
	collectStats  []collectStat
}

type cacheEntry struct {
	value   string
	expires time.Time
}

type collectStat struct {
	source string
	report model.CollectionReport
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		news:          make(map[string]*model.NewsItem),
		sourceMetrics: make(map[string]*model.SourceMetrics),
		candidates:    make(map[string][]model.TradingCandidate),
		cycles:        make(map[string]*model.TradingCycle),
		workflowLog:   make(map[string][]model.WorkflowLogEntry),
		config:        make(map[string]string),
		cache:         make(map[string]cacheEntry),
	}
}

func (m *Memory) Close() error { return nil }

// --- News ---

func (m *Memory) UpsertNewsItem(ctx context.Context, item *model.NewsItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.news[item.Fingerprint]
	if !ok {
		cp := *item
		cp.UpdateCount = 0
		cp.LastSeen = item.CollectedAt
		cp.ConfirmationStatus = model.ConfirmationUnconfirmed
		m.news[item.Fingerprint] = &cp
		return true, nil
	}

	// Idempotent merge: never overwrite original fields, union set-valued
	// attributes, bump update_count and last_seen (spec §3, §4.2).
	existing.UpdateCount++
	existing.LastSeen = item.CollectedAt
	existing.MentionedTickers = unionStrings(existing.MentionedTickers, item.MentionedTickers)
	existing.Keywords = unionCategories(existing.Keywords, item.Keywords)
	return false, nil
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := make([]string, 0, len(a)+len(b))
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func unionCategories(a, b []model.KeywordCategory) []model.KeywordCategory {
	seen := make(map[model.KeywordCategory]bool, len(a))
	out := make([]model.KeywordCategory, 0, len(a)+len(b))
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func (m *Memory) UpdateNewsOutcome(ctx context.Context, u model.OutcomeUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.news[u.NewsFingerprint]
	if !ok {
		return apperr.NewNotFound("news item not found: " + u.NewsFingerprint)
	}
	if u.PriceMove1h != nil {
		item.PriceMove1h = u.PriceMove1h
	}
	if u.PriceMove24h != nil {
		item.PriceMove24h = u.PriceMove24h
	}
	if u.VolumeSurgeRatio != nil {
		item.VolumeSurgeRatio = u.VolumeSurgeRatio
	}
	if u.WasAccurate != nil {
		item.WasAccurate = u.WasAccurate
	}
	return nil
}

func (m *Memory) ReadNewsRange(ctx context.Context, f NewsFilter) ([]model.NewsItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit := f.Limit
	if limit <= 0 {
		limit = 1000
	}

	var out []model.NewsItem
	for _, item := range m.news {
		if f.Symbol != "" && (item.PrimarySymbol == nil || !strings.EqualFold(*item.PrimarySymbol, f.Symbol)) {
			continue
		}
		if !f.Since.IsZero() && item.PublishedAt.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && item.PublishedAt.After(f.Until) {
			continue
		}
		if f.MinTier > 0 && item.SourceTier > f.MinTier {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) GetNewsByFingerprint(ctx context.Context, fp string) (*model.NewsItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.news[fp]
	if !ok {
		return nil, apperr.NewNotFound("news item not found: " + fp)
	}
	cp := *item
	return &cp, nil
}

func (m *Memory) MarkNewsConfirmed(ctx context.Context, fingerprint, confirmedBy string, delayMinutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.news[fingerprint]
	if !ok {
		return apperr.NewNotFound("news item not found: " + fingerprint)
	}
	item.ConfirmationStatus = model.ConfirmationConfirmed
	item.ConfirmedBy = &confirmedBy
	item.ConfirmationDelayMins = &delayMinutes
	return nil
}

func (m *Memory) InsertCollectionStats(ctx context.Context, source string, report model.CollectionReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collectStats = append(m.collectStats, collectStat{source: source, report: report})
	return nil
}

// --- Source metrics ---

func (m *Memory) SeedSourceMetrics(ctx context.Context, source string, tier int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sourceMetrics[source]; ok {
		return nil
	}
	m.sourceMetrics[source] = &model.SourceMetrics{Source: source, Tier: tier, UpdatedAt: time.Now()}
	return nil
}

func (m *Memory) GetSourceMetrics(ctx context.Context, source string) (*model.SourceMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm, ok := m.sourceMetrics[source]
	if !ok {
		return nil, apperr.NewNotFound("source metrics not found: " + source)
	}
	cp := *sm
	return &cp, nil
}

func (m *Memory) ListSourceMetrics(ctx context.Context) ([]model.SourceMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.SourceMetrics, 0, len(m.sourceMetrics))
	for _, sm := range m.sourceMetrics {
		out = append(out, *sm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out, nil
}

func (m *Memory) IncrementSourceMetrics(ctx context.Context, source string, delta SourceMetricsDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm, ok := m.sourceMetrics[source]
	if !ok {
		sm = &model.SourceMetrics{Source: source, Tier: 5}
		m.sourceMetrics[source] = sm
	}
	sm.TotalArticles += delta.Articles
	sm.Confirmed += delta.Confirmed
	sm.Accurate += delta.Accurate
	sm.False += delta.False
	if delta.EarlyMinutes != nil {
		// running average
		n := float64(sm.Confirmed)
		if n <= 0 {
			n = 1
		}
		sm.AvgEarlyMinutes = ((sm.AvgEarlyMinutes * (n - 1)) + *delta.EarlyMinutes) / n
	}
	if delta.Beneficiary != "" {
		sm.FrequentBeneficiaries = unionStrings(sm.FrequentBeneficiaries, []string{delta.Beneficiary})
	}
	if sm.Confirmed > 0 {
		sm.AccuracyRate = float64(sm.Accurate) / float64(sm.Confirmed)
	}
	sm.UpdatedAt = time.Now()
	return nil
}

// --- Narrative clusters ---

func (m *Memory) InsertNarrativeCluster(ctx context.Context, c model.NarrativeCluster) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clusters = append(m.clusters, c)
	return nil
}

func (m *Memory) ListNarrativeClusters(ctx context.Context, since time.Time) ([]model.NarrativeCluster, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.NarrativeCluster
	for _, c := range m.clusters {
		if c.DetectedAt.After(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- Scanner ---

func (m *Memory) InsertCandidates(ctx context.Context, scanID string, candidates []model.TradingCandidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]model.TradingCandidate, len(candidates))
	copy(cp, candidates)
	m.candidates[scanID] = cp
	return nil
}

func (m *Memory) GetCandidates(ctx context.Context, scanID string) ([]model.TradingCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cands, ok := m.candidates[scanID]
	if !ok {
		return nil, apperr.NewNotFound("scan not found: " + scanID)
	}
	cp := make([]model.TradingCandidate, len(cands))
	copy(cp, cands)
	return cp, nil
}

func (m *Memory) MarkCandidateStatus(ctx context.Context, scanID, symbol, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cands, ok := m.candidates[scanID]
	if !ok {
		return apperr.NewNotFound("scan not found: " + scanID)
	}
	for i := range cands {
		if cands[i].Symbol == symbol {
			cands[i].Status = status
		}
	}
	m.candidates[scanID] = cands
	return nil
}

// --- Coordinator ---

func (m *Memory) InsertCycle(ctx context.Context, cycle model.TradingCycle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := cycle
	m.cycles[cycle.CycleID] = &cp
	return nil
}

func (m *Memory) UpdateCycleStage(ctx context.Context, cycleID string, entry model.WorkflowLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cycles[cycleID]; !ok {
		return apperr.NewNotFound("cycle not found: " + cycleID)
	}
	m.workflowLog[cycleID] = append(m.workflowLog[cycleID], entry)
	m.cycles[cycleID].CurrentStage = entry.Stage
	return nil
}

func (m *Memory) FinalizeCycle(ctx context.Context, cycleID string, status model.CycleStatus, counters model.StageCounters, pnl float64, failureReason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cycle, ok := m.cycles[cycleID]
	if !ok {
		return apperr.NewNotFound("cycle not found: " + cycleID)
	}
	now := time.Now()
	cycle.EndedAt = &now
	cycle.Status = status
	cycle.Counters = counters
	cycle.CyclePnL = pnl
	cycle.FailureReason = failureReason
	if counters.CandidatesSelected > 0 {
		cycle.SuccessRate = float64(counters.TradesExecuted) / float64(counters.CandidatesSelected)
	}
	return nil
}

func (m *Memory) GetCycle(ctx context.Context, cycleID string) (*model.TradingCycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cycle, ok := m.cycles[cycleID]
	if !ok {
		return nil, apperr.NewNotFound("cycle not found: " + cycleID)
	}
	cp := *cycle
	return &cp, nil
}

func (m *Memory) GetWorkflowLog(ctx context.Context, cycleID string) ([]model.WorkflowLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	log := m.workflowLog[cycleID]
	cp := make([]model.WorkflowLogEntry, len(log))
	copy(cp, log)
	return cp, nil
}

func (m *Memory) ListClosedTradesSince(ctx context.Context, since time.Time) ([]TradeClosure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []TradeClosure
	for _, t := range m.tradeClosures {
		if t.ClosedAt.After(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

// RecordTradeClosure is a test/dev seam: the real store's equivalent rows
// come from the external paper-trading service's writes to trade_records,
// which is out of scope (spec §1); this lets the in-memory store exercise
// the outcome-feedback sweep end to end.
func (m *Memory) RecordTradeClosure(t TradeClosure) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tradeClosures = append(m.tradeClosures, t)
}

// --- Configuration ---

func (m *Memory) ReadConfig(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.config[key]
	return v, ok, nil
}

func (m *Memory) WriteConfig(ctx context.Context, key, value, modifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config[key] = value
	return nil
}

// --- Cache ---

func (m *Memory) CacheGet(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.cache[key]
	if !ok || time.Now().After(entry.expires) {
		delete(m.cache, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) CacheSet(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[key] = cacheEntry{value: value, expires: time.Now().Add(ttl)}
	return nil
}

func (m *Memory) CacheInvalidatePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.cache {
		if strings.HasPrefix(k, prefix) {
			delete(m.cache, k)
		}
	}
	return nil
}

var _ Port = (*Memory)(nil)
