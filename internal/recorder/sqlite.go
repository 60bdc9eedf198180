package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"TrendRadar/internal/model"
)

// SQLiteRecorder persists verdict history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	now    func() time.Time
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read history while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{
		db:     db,
		now:    time.Now,
		logger: log.With().Str("component", "recorder").Logger(),
	}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS regime_verdicts (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			as_of        INTEGER,
			regime       TEXT NOT NULL,
			price        REAL,
			ma20         REAL,
			bias20       REAL,
			j_cur        REAL,
			volume_ratio REAL,
			supporting   TEXT,
			risks        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_verdict_symbol_ts ON regime_verdicts(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS scan_runs (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at    INTEGER NOT NULL,
			finished_at   INTEGER,
			scanned       INTEGER,
			classified    INTEGER,
			opportunities INTEGER,
			failures      INTEGER,
			summary       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_ts ON scan_runs(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordVerdict(v *Verdict) error {
	supporting, err := json.Marshal(nonNil(v.Supporting))
	if err != nil {
		return fmt.Errorf("encode supporting: %w", err)
	}
	risks, err := json.Marshal(nonNil(v.Risks))
	if err != nil {
		return fmt.Errorf("encode risks: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO regime_verdicts
		(timestamp, symbol, as_of, regime, price, ma20, bias20, j_cur, volume_ratio, supporting, risks)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		r.now().UnixNano(), v.Symbol, v.AsOf.Unix(), v.Kind.String(),
		v.Price, v.MA20, v.Bias20, v.JCur, v.VolumeRatio,
		string(supporting), string(risks),
	)
	return err
}

// scanSummary is the JSON stored alongside each scan run.
type scanSummary struct {
	Opportunities []string            `json:"opportunities"`
	Failures      []model.ScanFailure `json:"failures"`
}

func (r *SQLiteRecorder) RecordScan(report *model.ScanReport) error {
	sum := scanSummary{Opportunities: []string{}, Failures: report.Failures}
	for _, o := range report.Opportunities {
		sum.Opportunities = append(sum.Opportunities, o.Symbol)
	}
	data, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("encode scan summary: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO scan_runs
		(started_at, finished_at, scanned, classified, opportunities, failures, summary)
		VALUES (?,?,?,?,?,?,?)`,
		report.StartedAt.Unix(), report.FinishedAt.Unix(), report.Scanned,
		len(report.Results), len(report.Opportunities), len(report.Failures), string(data),
	)
	return err
}

func (r *SQLiteRecorder) RecentVerdicts(symbol string, limit int) ([]Verdict, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT id, timestamp, symbol, as_of, regime, price, ma20, bias20,
		j_cur, volume_ratio, supporting, risks
		FROM regime_verdicts WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query verdicts: %w", err)
	}
	defer rows.Close()

	var out []Verdict
	for rows.Next() {
		var (
			v                 Verdict
			ts, asOf          int64
			regime            string
			supporting, risks string
		)
		if err := rows.Scan(&v.ID, &ts, &v.Symbol, &asOf, &regime, &v.Price, &v.MA20, &v.Bias20,
			&v.JCur, &v.VolumeRatio, &supporting, &risks); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		v.RecordedAt = time.Unix(0, ts).UTC()
		v.AsOf = time.Unix(asOf, 0).UTC()
		if err := v.Kind.UnmarshalText([]byte(regime)); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(supporting), &v.Supporting); err != nil {
			return nil, fmt.Errorf("decode supporting: %w", err)
		}
		if err := json.Unmarshal([]byte(risks), &v.Risks); err != nil {
			return nil, fmt.Errorf("decode risks: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
