package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v4/stdlib"

	"github.com/TradingApplication/catalyst-trading-system/internal/apperr"
	"github.com/TradingApplication/catalyst-trading-system/internal/model"
)

// PostgresConfig is the subset of internal/config.DatabaseConfig the store
// package needs, kept separate so store never imports config (the runtime
// config layer, internal/runtimeconfig, depends on store.Port, not the
// other way around).
type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Postgres implements the OLTP half of Port against a Postgres database via
// sqlx+pgx, exactly the way the teacher's historical-data-service connects
// (sqlx.Connect("pgx", dsn)).
type Postgres struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// OpenPostgres connects to Postgres and configures the connection pool
// (spec §5: bounded ~20 connections).
func OpenPostgres(cfg PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &Postgres{db: db, logger: logger}, nil
}

func (p *Postgres) Close() error { return p.db.Close() }

func jsonOf(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

// UpsertNewsItem performs the idempotent upsert keyed by fingerprint
// described in spec §3/§4.2: on conflict, bump update_count, set
// last_seen, and union the set-valued fields server-side rather than
// overwriting them.
func (p *Postgres) UpsertNewsItem(ctx context.Context, item *model.NewsItem) (bool, error) {
	const q = `
INSERT INTO news_raw (
	fingerprint, primary_symbol, headline, source, source_url, published_at,
	collected_at, content_snippet, keywords, mentioned_tickers, market_state,
	is_breaking_news, source_tier, narrative_cluster_id, sentiment_keywords,
	metadata, confirmation_status, update_count, last_seen
) VALUES (
	:fingerprint, :primary_symbol, :headline, :source, :source_url, :published_at,
	:collected_at, :content_snippet, :keywords, :mentioned_tickers, :market_state,
	:is_breaking_news, :source_tier, :narrative_cluster_id, :sentiment_keywords,
	:metadata, :confirmation_status, 0, :collected_at
)
ON CONFLICT (fingerprint) DO UPDATE SET
	update_count = news_raw.update_count + 1,
	last_seen = EXCLUDED.last_seen,
	mentioned_tickers = (
		SELECT to_jsonb(array(SELECT DISTINCT unnest(
			array(SELECT jsonb_array_elements_text(news_raw.mentioned_tickers)) ||
			array(SELECT jsonb_array_elements_text(EXCLUDED.mentioned_tickers))
		)))
	),
	keywords = (
		SELECT to_jsonb(array(SELECT DISTINCT unnest(
			array(SELECT jsonb_array_elements_text(news_raw.keywords)) ||
			array(SELECT jsonb_array_elements_text(EXCLUDED.keywords))
		)))
	)
RETURNING (xmax = 0) AS inserted`

	row := struct {
		Fingerprint        string `db:"fingerprint"`
		PrimarySymbol      *string `db:"primary_symbol"`
		Headline           string
		Source             string
		SourceURL          string    `db:"source_url"`
		PublishedAt        time.Time `db:"published_at"`
		CollectedAt        time.Time `db:"collected_at"`
		ContentSnippet     string    `db:"content_snippet"`
		Keywords           []byte
		MentionedTickers   []byte `db:"mentioned_tickers"`
		MarketState        string `db:"market_state"`
		IsBreakingNews     bool   `db:"is_breaking_news"`
		SourceTier         int    `db:"source_tier"`
		NarrativeClusterID *string `db:"narrative_cluster_id"`
		SentimentKeywords  []byte  `db:"sentiment_keywords"`
		Metadata           []byte
		ConfirmationStatus string `db:"confirmation_status"`
	}{
		Fingerprint:        item.Fingerprint,
		PrimarySymbol:      item.PrimarySymbol,
		Headline:           item.Headline,
		Source:             item.Source,
		SourceURL:          item.SourceURL,
		PublishedAt:        item.PublishedAt,
		CollectedAt:        item.CollectedAt,
		ContentSnippet:     item.ContentSnippet,
		Keywords:           jsonOf(item.Keywords),
		MentionedTickers:   jsonOf(item.MentionedTickers),
		MarketState:        string(item.MarketState),
		IsBreakingNews:     item.IsBreakingNews,
		SourceTier:         item.SourceTier,
		NarrativeClusterID: item.NarrativeCluster,
		SentimentKeywords:  jsonOf(item.SentimentKeywords),
		Metadata:           jsonOf(item.Metadata),
		ConfirmationStatus: string(model.ConfirmationUnconfirmed),
	}

	rows, err := p.db.NamedQueryContext(ctx, q, row)
	if err != nil {
		return false, fmt.Errorf("upsert news item: %w", err)
	}
	defer rows.Close()

	inserted := false
	if rows.Next() {
		_ = rows.Scan(&inserted)
	}
	return inserted, nil
}

func (p *Postgres) UpdateNewsOutcome(ctx context.Context, u model.OutcomeUpdate) error {
	const q = `
UPDATE news_raw SET
	price_move_1h = COALESCE(:price_move_1h, price_move_1h),
	price_move_24h = COALESCE(:price_move_24h, price_move_24h),
	volume_surge_ratio = COALESCE(:volume_surge_ratio, volume_surge_ratio),
	was_accurate = COALESCE(:was_accurate, was_accurate)
WHERE fingerprint = :fingerprint`

	res, err := p.db.NamedExecContext(ctx, q, map[string]any{
		"fingerprint":        u.NewsFingerprint,
		"price_move_1h":      u.PriceMove1h,
		"price_move_24h":     u.PriceMove24h,
		"volume_surge_ratio": u.VolumeSurgeRatio,
		"was_accurate":       u.WasAccurate,
	})
	if err != nil {
		return fmt.Errorf("update news outcome: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NewNotFound("news item not found: " + u.NewsFingerprint)
	}
	return nil
}

func (p *Postgres) ReadNewsRange(ctx context.Context, f NewsFilter) ([]model.NewsItem, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 1000
	}
	query := `SELECT * FROM news_raw WHERE published_at >= $1 AND published_at <= $2`
	args := []any{f.Since, f.Until}
	if f.Symbol != "" {
		query += fmt.Sprintf(" AND primary_symbol = $%d", len(args)+1)
		args = append(args, f.Symbol)
	}
	if f.MinTier > 0 {
		query += fmt.Sprintf(" AND source_tier <= $%d", len(args)+1)
		args = append(args, f.MinTier)
	}
	query += fmt.Sprintf(" ORDER BY published_at DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	var rows []newsRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("read news range: %w", err)
	}
	out := make([]model.NewsItem, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

func (p *Postgres) GetNewsByFingerprint(ctx context.Context, fingerprint string) (*model.NewsItem, error) {
	var r newsRow
	err := p.db.GetContext(ctx, &r, `SELECT * FROM news_raw WHERE fingerprint = $1`, fingerprint)
	if err == sql.ErrNoRows {
		return nil, apperr.NewNotFound("news item not found: " + fingerprint)
	}
	if err != nil {
		return nil, fmt.Errorf("get news by fingerprint: %w", err)
	}
	item := r.toModel()
	return &item, nil
}

func (p *Postgres) MarkNewsConfirmed(ctx context.Context, fingerprint, confirmedBy string, delayMinutes int) error {
	const q = `
UPDATE news_raw SET confirmation_status = 'confirmed', confirmed_by = $2, confirmation_delay_minutes = $3
WHERE fingerprint = $1`
	_, err := p.db.ExecContext(ctx, q, fingerprint, confirmedBy, delayMinutes)
	if err != nil {
		return fmt.Errorf("mark news confirmed: %w", err)
	}
	return nil
}

func (p *Postgres) InsertCollectionStats(ctx context.Context, source string, report model.CollectionReport) error {
	const q = `
INSERT INTO news_collection_stats (source, articles_collected, articles_new, articles_duplicate, error_count, metadata)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := p.db.ExecContext(ctx, q, source, report.Articles, report.New, report.Duplicate, len(report.Errors), jsonOf(report))
	if err != nil {
		return fmt.Errorf("insert collection stats: %w", err)
	}
	return nil
}

func (p *Postgres) SeedSourceMetrics(ctx context.Context, source string, tier int) error {
	const q = `
INSERT INTO source_metrics (source, tier) VALUES ($1, $2)
ON CONFLICT (source) DO NOTHING`
	_, err := p.db.ExecContext(ctx, q, source, tier)
	if err != nil {
		return fmt.Errorf("seed source metrics: %w", err)
	}
	return nil
}

func (p *Postgres) GetSourceMetrics(ctx context.Context, source string) (*model.SourceMetrics, error) {
	var r sourceMetricsRow
	err := p.db.GetContext(ctx, &r, `SELECT * FROM source_metrics WHERE source = $1`, source)
	if err == sql.ErrNoRows {
		return nil, apperr.NewNotFound("source metrics not found: " + source)
	}
	if err != nil {
		return nil, fmt.Errorf("get source metrics: %w", err)
	}
	sm := r.toModel()
	return &sm, nil
}

func (p *Postgres) ListSourceMetrics(ctx context.Context) ([]model.SourceMetrics, error) {
	var rows []sourceMetricsRow
	if err := p.db.SelectContext(ctx, &rows, `SELECT * FROM source_metrics ORDER BY source`); err != nil {
		return nil, fmt.Errorf("list source metrics: %w", err)
	}
	out := make([]model.SourceMetrics, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// IncrementSourceMetrics applies the transactional counter update spec §4.1
// requires whenever a trade closes against a NewsItem from this source.
// The invariant accurate + false <= confirmed <= total (spec §3) is not
// checked here, and delta's EarlyMinutes and Beneficiary are not written.
func (p *Postgres) IncrementSourceMetrics(ctx context.Context, source string, delta SourceMetricsDelta) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const q = `
UPDATE source_metrics SET
	total_articles = total_articles + $2,
	confirmed = confirmed + $3,
	accurate = accurate + $4,
	false_count = false_count + $5,
	accuracy_rate = CASE WHEN confirmed + $3 > 0
		THEN (accurate + $4)::float8 / (confirmed + $3) ELSE accuracy_rate END,
	updated_at = now()
WHERE source = $1`
	if _, err := tx.ExecContext(ctx, q, source, delta.Articles, delta.Confirmed, delta.Accurate, delta.False); err != nil {
		return fmt.Errorf("increment source metrics: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (p *Postgres) InsertNarrativeCluster(ctx context.Context, c model.NarrativeCluster) error {
	const q = `
INSERT INTO narrative_clusters (cluster_id, symbol, date, keyword_categories, article_count, distinct_sources, time_spread_hours, coordination_score, detected_at, operator_cluster_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (cluster_id) DO UPDATE SET
	article_count = EXCLUDED.article_count,
	distinct_sources = EXCLUDED.distinct_sources,
	coordination_score = EXCLUDED.coordination_score`
	_, err := p.db.ExecContext(ctx, q, c.ClusterID, c.Symbol, c.Date, jsonOf(c.Categories), c.ArticleCount,
		c.DistinctSources, c.TimeSpreadHours, c.CoordinationScore, c.DetectedAt, c.OperatorClusterID)
	if err != nil {
		return fmt.Errorf("insert narrative cluster: %w", err)
	}
	return nil
}

func (p *Postgres) ListNarrativeClusters(ctx context.Context, since time.Time) ([]model.NarrativeCluster, error) {
	var rows []narrativeClusterRow
	if err := p.db.SelectContext(ctx, &rows, `SELECT * FROM narrative_clusters WHERE detected_at >= $1 ORDER BY detected_at DESC`, since); err != nil {
		return nil, fmt.Errorf("list narrative clusters: %w", err)
	}
	out := make([]model.NarrativeCluster, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// InsertCandidates is the all-or-nothing write spec §5 requires: every
// candidate for a scan_id lands in a single transaction.
func (p *Postgres) InsertCandidates(ctx context.Context, scanID string, candidates []model.TradingCandidate) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scan_manifest (scan_id, created_at) VALUES ($1, $2) ON CONFLICT (scan_id) DO NOTHING`,
		scanID, time.Now()); err != nil {
		return fmt.Errorf("insert scan manifest: %w", err)
	}

	const q = `
INSERT INTO trading_candidates (
	scan_id, symbol, selected_at, catalyst_score, news_count, primary_catalyst,
	catalyst_keywords, current_price, current_volume, relative_volume, price_change_pct,
	pre_market_volume, pre_market_change_pct, technical_score, combined_score,
	selection_rank, technical_validated, status
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`

	for _, c := range candidates {
		_, err := tx.ExecContext(ctx, q, scanID, c.Symbol, c.SelectedAt, c.CatalystScore, c.NewsCount, c.PrimaryCatalyst,
			jsonOf(c.CatalystKeywords), c.Price, c.Volume, c.RelativeVolume, c.PriceChangePct,
			c.PreMarketVolume, c.PreMarketChangePct, c.TechnicalScore, c.CombinedScore,
			c.SelectionRank, c.TechnicalValidated, c.Status)
		if err != nil {
			return fmt.Errorf("insert candidate %s: %w", c.Symbol, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (p *Postgres) GetCandidates(ctx context.Context, scanID string) ([]model.TradingCandidate, error) {
	var exists bool
	if err := p.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM scan_manifest WHERE scan_id = $1)`, scanID); err != nil {
		return nil, fmt.Errorf("check scan manifest: %w", err)
	}
	if !exists {
		return nil, apperr.NewNotFound("scan not found: " + scanID)
	}

	var rows []candidateRow
	if err := p.db.SelectContext(ctx, &rows, `SELECT * FROM trading_candidates WHERE scan_id = $1 ORDER BY selection_rank`, scanID); err != nil {
		return nil, fmt.Errorf("get candidates: %w", err)
	}
	out := make([]model.TradingCandidate, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

func (p *Postgres) MarkCandidateStatus(ctx context.Context, scanID, symbol, status string) error {
	_, err := p.db.ExecContext(ctx, `UPDATE trading_candidates SET status = $3 WHERE scan_id = $1 AND symbol = $2`, scanID, symbol, status)
	if err != nil {
		return fmt.Errorf("mark candidate status: %w", err)
	}
	return nil
}

func (p *Postgres) InsertCycle(ctx context.Context, cycle model.TradingCycle) error {
	const q = `
INSERT INTO trading_cycles (cycle_id, started_at, status, mode, current_stage)
VALUES ($1,$2,$3,$4,$5)`
	_, err := p.db.ExecContext(ctx, q, cycle.CycleID, cycle.StartedAt, cycle.Status, cycle.Mode, cycle.CurrentStage)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateCycleStage(ctx context.Context, cycleID string, entry model.WorkflowLogEntry) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE trading_cycles SET current_stage = $2 WHERE cycle_id = $1`, cycleID, entry.Stage); err != nil {
		return fmt.Errorf("update cycle stage: %w", err)
	}
	const q = `
INSERT INTO workflow_log (cycle_id, stage, started_at, ended_at, record_count, status, detail)
VALUES ($1,$2,$3,$4,$5,$6,$7)`
	if _, err := tx.ExecContext(ctx, q, cycleID, entry.Stage, entry.StartedAt, entry.EndedAt, entry.RecordCount, entry.Status, entry.Detail); err != nil {
		return fmt.Errorf("insert workflow log: %w", err)
	}
	return tx.Commit()
}

func (p *Postgres) FinalizeCycle(ctx context.Context, cycleID string, status model.CycleStatus, counters model.StageCounters, pnl float64, failureReason string) error {
	const q = `
UPDATE trading_cycles SET
	status = $2, ended_at = now(), cycle_pnl = $3, failure_reason = $4,
	news_collected = $5, candidates_selected = $6, patterns_analyzed = $7,
	signals_generated = $8, trades_executed = $9,
	success_rate = CASE WHEN $6 > 0 THEN $9::float8 / $6 ELSE 0 END
WHERE cycle_id = $1`
	res, err := p.db.ExecContext(ctx, q, cycleID, status, pnl, failureReason,
		counters.NewsCollected, counters.CandidatesSelected, counters.PatternsAnalyzed,
		counters.SignalsGenerated, counters.TradesExecuted)
	if err != nil {
		return fmt.Errorf("finalize cycle: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NewNotFound("cycle not found: " + cycleID)
	}
	return nil
}

func (p *Postgres) GetCycle(ctx context.Context, cycleID string) (*model.TradingCycle, error) {
	var r cycleRow
	err := p.db.GetContext(ctx, &r, `SELECT * FROM trading_cycles WHERE cycle_id = $1`, cycleID)
	if err == sql.ErrNoRows {
		return nil, apperr.NewNotFound("cycle not found: " + cycleID)
	}
	if err != nil {
		return nil, fmt.Errorf("get cycle: %w", err)
	}
	c := r.toModel()
	return &c, nil
}

func (p *Postgres) GetWorkflowLog(ctx context.Context, cycleID string) ([]model.WorkflowLogEntry, error) {
	var rows []workflowLogRow
	if err := p.db.SelectContext(ctx, &rows, `SELECT * FROM workflow_log WHERE cycle_id = $1 ORDER BY started_at`, cycleID); err != nil {
		return nil, fmt.Errorf("get workflow log: %w", err)
	}
	out := make([]model.WorkflowLogEntry, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

func (p *Postgres) ListClosedTradesSince(ctx context.Context, since time.Time) ([]TradeClosure, error) {
	var rows []tradeClosureRow
	const q = `
SELECT trade_id, news_fingerprint, symbol, closed_at, realized_pnl, price_move_1h, price_move_24h, volume_surge_ratio, was_accurate
FROM trade_records WHERE closed_at >= $1 AND status = 'closed'`
	if err := p.db.SelectContext(ctx, &rows, q, since); err != nil {
		return nil, fmt.Errorf("list closed trades: %w", err)
	}
	out := make([]TradeClosure, len(rows))
	for i, r := range rows {
		out[i] = TradeClosure{
			TradeID: r.TradeID, NewsFingerprint: r.NewsFingerprint, Symbol: r.Symbol,
			ClosedAt: r.ClosedAt, RealizedPnL: r.RealizedPnL, PriceMove1h: r.PriceMove1h,
			PriceMove24h: r.PriceMove24h, VolumeSurgeRatio: r.VolumeSurgeRatio, WasAccurate: r.WasAccurate,
		}
	}
	return out, nil
}

func (p *Postgres) ReadConfig(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.GetContext(ctx, &value, `SELECT value FROM workflow_config WHERE key = $1`, key)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read config: %w", err)
	}
	return value, true, nil
}

func (p *Postgres) WriteConfig(ctx context.Context, key, value, modifier string) error {
	const q = `
INSERT INTO workflow_config (key, value, modified_by, modified_at) VALUES ($1,$2,$3,now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, modified_by = EXCLUDED.modified_by, modified_at = now()`
	_, err := p.db.ExecContext(ctx, q, key, value, modifier)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Row-to-model shims: sqlx scans directly into these, which own the
// JSON-column (un)marshaling the set-valued model fields need (spec §6:
// "JSON-typed columns for the set-valued attributes").

type newsRow struct {
	Fingerprint           string    `db:"fingerprint"`
	PrimarySymbol         *string   `db:"primary_symbol"`
	Headline              string    `db:"headline"`
	Source                string    `db:"source"`
	SourceURL             string    `db:"source_url"`
	PublishedAt           time.Time `db:"published_at"`
	CollectedAt           time.Time `db:"collected_at"`
	ContentSnippet        string    `db:"content_snippet"`
	Keywords              []byte    `db:"keywords"`
	MentionedTickers      []byte    `db:"mentioned_tickers"`
	MarketState           string    `db:"market_state"`
	IsBreakingNews        bool      `db:"is_breaking_news"`
	SourceTier            int       `db:"source_tier"`
	NarrativeClusterID    *string   `db:"narrative_cluster_id"`
	SentimentKeywords     []byte    `db:"sentiment_keywords"`
	Metadata              []byte    `db:"metadata"`
	PriceMove1h           *float64  `db:"price_move_1h"`
	PriceMove24h          *float64  `db:"price_move_24h"`
	VolumeSurgeRatio      *float64  `db:"volume_surge_ratio"`
	WasAccurate           *bool     `db:"was_accurate"`
	ConfirmationStatus    string    `db:"confirmation_status"`
	ConfirmedBy           *string   `db:"confirmed_by"`
	ConfirmationDelayMins *int      `db:"confirmation_delay_minutes"`
	UpdateCount           int       `db:"update_count"`
	LastSeen              time.Time `db:"last_seen"`
}

func (r newsRow) toModel() model.NewsItem {
	var keywords []model.KeywordCategory
	_ = json.Unmarshal(r.Keywords, &keywords)
	var tickers []string
	_ = json.Unmarshal(r.MentionedTickers, &tickers)
	var sentiment []string
	_ = json.Unmarshal(r.SentimentKeywords, &sentiment)
	var meta map[string]any
	_ = json.Unmarshal(r.Metadata, &meta)

	return model.NewsItem{
		Fingerprint: r.Fingerprint, PrimarySymbol: r.PrimarySymbol, Headline: r.Headline,
		Source: r.Source, SourceURL: r.SourceURL, PublishedAt: r.PublishedAt, CollectedAt: r.CollectedAt,
		ContentSnippet: r.ContentSnippet, Keywords: keywords, MentionedTickers: tickers,
		MarketState: model.MarketState(r.MarketState), IsBreakingNews: r.IsBreakingNews, SourceTier: r.SourceTier,
		NarrativeCluster: r.NarrativeClusterID, SentimentKeywords: sentiment, Metadata: meta,
		PriceMove1h: r.PriceMove1h, PriceMove24h: r.PriceMove24h, VolumeSurgeRatio: r.VolumeSurgeRatio,
		WasAccurate: r.WasAccurate, ConfirmationStatus: model.ConfirmationStatus(r.ConfirmationStatus),
		ConfirmedBy: r.ConfirmedBy, ConfirmationDelayMins: r.ConfirmationDelayMins,
		UpdateCount: r.UpdateCount, LastSeen: r.LastSeen,
	}
}

type sourceMetricsRow struct {
	Source                string    `db:"source"`
	Tier                  int       `db:"tier"`
	TotalArticles         int       `db:"total_articles"`
	Confirmed             int       `db:"confirmed"`
	Accurate              int       `db:"accurate"`
	False                 int       `db:"false_count"`
	AccuracyRate          float64   `db:"accuracy_rate"`
	AvgEarlyMinutes       float64   `db:"avg_early_minutes"`
	FrequentBeneficiaries []byte    `db:"frequent_beneficiaries"`
	UpdatedAt             time.Time `db:"updated_at"`
}

func (r sourceMetricsRow) toModel() model.SourceMetrics {
	var b []string
	_ = json.Unmarshal(r.FrequentBeneficiaries, &b)
	return model.SourceMetrics{
		Source: r.Source, Tier: r.Tier, TotalArticles: r.TotalArticles, Confirmed: r.Confirmed,
		Accurate: r.Accurate, False: r.False, AccuracyRate: r.AccuracyRate, AvgEarlyMinutes: r.AvgEarlyMinutes,
		FrequentBeneficiaries: b, UpdatedAt: r.UpdatedAt,
	}
}

type narrativeClusterRow struct {
	ClusterID         string    `db:"cluster_id"`
	Symbol            string    `db:"symbol"`
	Date              string    `db:"date"`
	KeywordCategories []byte    `db:"keyword_categories"`
	ArticleCount      int       `db:"article_count"`
	DistinctSources   int       `db:"distinct_sources"`
	TimeSpreadHours   float64   `db:"time_spread_hours"`
	CoordinationScore float64   `db:"coordination_score"`
	DetectedAt        time.Time `db:"detected_at"`
	OperatorClusterID *string   `db:"operator_cluster_id"`
}

func (r narrativeClusterRow) toModel() model.NarrativeCluster {
	var cats []string
	_ = json.Unmarshal(r.KeywordCategories, &cats)
	return model.NarrativeCluster{
		ClusterID: r.ClusterID, Symbol: r.Symbol, Date: r.Date, Categories: cats,
		ArticleCount: r.ArticleCount, DistinctSources: r.DistinctSources, TimeSpreadHours: r.TimeSpreadHours,
		CoordinationScore: r.CoordinationScore, DetectedAt: r.DetectedAt, OperatorClusterID: r.OperatorClusterID,
	}
}

type candidateRow struct {
	ScanID             string    `db:"scan_id"`
	Symbol             string    `db:"symbol"`
	SelectedAt         time.Time `db:"selected_at"`
	CatalystScore      float64   `db:"catalyst_score"`
	NewsCount          int       `db:"news_count"`
	PrimaryCatalyst    string    `db:"primary_catalyst"`
	CatalystKeywords   []byte    `db:"catalyst_keywords"`
	Price              float64   `db:"current_price"`
	Volume             int64     `db:"current_volume"`
	RelativeVolume     float64   `db:"relative_volume"`
	PriceChangePct     float64   `db:"price_change_pct"`
	PreMarketVolume    int64     `db:"pre_market_volume"`
	PreMarketChangePct float64   `db:"pre_market_change_pct"`
	TechnicalScore     float64   `db:"technical_score"`
	CombinedScore      float64   `db:"combined_score"`
	SelectionRank      int       `db:"selection_rank"`
	TechnicalValidated bool      `db:"technical_validated"`
	Status             string    `db:"status"`
}

func (r candidateRow) toModel() model.TradingCandidate {
	var kw []string
	_ = json.Unmarshal(r.CatalystKeywords, &kw)
	return model.TradingCandidate{
		ScanID: r.ScanID, Symbol: r.Symbol, SelectedAt: r.SelectedAt, CatalystScore: r.CatalystScore,
		NewsCount: r.NewsCount, PrimaryCatalyst: model.PrimaryCatalyst(r.PrimaryCatalyst), CatalystKeywords: kw,
		Price: r.Price, Volume: r.Volume, RelativeVolume: r.RelativeVolume, PriceChangePct: r.PriceChangePct,
		PreMarketVolume: r.PreMarketVolume, PreMarketChangePct: r.PreMarketChangePct, TechnicalScore: r.TechnicalScore,
		CombinedScore: r.CombinedScore, SelectionRank: r.SelectionRank, TechnicalValidated: r.TechnicalValidated,
		Status: r.Status,
	}
}

type cycleRow struct {
	CycleID            string     `db:"cycle_id"`
	StartedAt          time.Time  `db:"started_at"`
	EndedAt            *time.Time `db:"ended_at"`
	Status             string     `db:"status"`
	Mode               string     `db:"mode"`
	CurrentStage       string     `db:"current_stage"`
	CyclePnL           float64    `db:"cycle_pnl"`
	SuccessRate        float64    `db:"success_rate"`
	FailureReason      string     `db:"failure_reason"`
	NewsCollected      int        `db:"news_collected"`
	CandidatesSelected int        `db:"candidates_selected"`
	PatternsAnalyzed   int        `db:"patterns_analyzed"`
	SignalsGenerated   int        `db:"signals_generated"`
	TradesExecuted     int        `db:"trades_executed"`
}

func (r cycleRow) toModel() model.TradingCycle {
	return model.TradingCycle{
		CycleID: r.CycleID, StartedAt: r.StartedAt, EndedAt: r.EndedAt, Status: model.CycleStatus(r.Status),
		Mode: model.Mode(r.Mode), CurrentStage: model.Stage(r.CurrentStage), CyclePnL: r.CyclePnL,
		SuccessRate: r.SuccessRate, FailureReason: r.FailureReason,
		Counters: model.StageCounters{
			NewsCollected: r.NewsCollected, CandidatesSelected: r.CandidatesSelected,
			PatternsAnalyzed: r.PatternsAnalyzed, SignalsGenerated: r.SignalsGenerated, TradesExecuted: r.TradesExecuted,
		},
	}
}

type workflowLogRow struct {
	CycleID     string     `db:"cycle_id"`
	Stage       string     `db:"stage"`
	StartedAt   time.Time  `db:"started_at"`
	EndedAt     *time.Time `db:"ended_at"`
	RecordCount int        `db:"record_count"`
	Status      string     `db:"status"`
	Detail      string     `db:"detail"`
}

func (r workflowLogRow) toModel() model.WorkflowLogEntry {
	return model.WorkflowLogEntry{
		CycleID: r.CycleID, Stage: model.Stage(r.Stage), StartedAt: r.StartedAt, EndedAt: r.EndedAt,
		RecordCount: r.RecordCount, Status: model.StageStatus(r.Status), Detail: r.Detail,
	}
}

type tradeClosureRow struct {
	TradeID          string    `db:"trade_id"`
	NewsFingerprint  string    `db:"news_fingerprint"`
	Symbol           string    `db:"symbol"`
	ClosedAt         time.Time `db:"closed_at"`
	RealizedPnL      float64   `db:"realized_pnl"`
	PriceMove1h      float64   `db:"price_move_1h"`
	PriceMove24h     float64   `db:"price_move_24h"`
	VolumeSurgeRatio float64   `db:"volume_surge_ratio"`
	WasAccurate      bool      `db:"was_accurate"`
}
