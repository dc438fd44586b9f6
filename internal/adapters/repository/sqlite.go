package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/ironsys/internal/domain/dedupe"
	"github.com/okian/ironsys/internal/domain/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLiteStore implements Archive on a single SQLite file. It only ever
// inserts and selects.
type SQLiteStore struct {
	db           *sql.DB
	busyTimeout  time.Duration
	maxOpenConns int
}

var _ Archive = (*SQLiteStore)(nil)

// Open opens or creates the SQLite database and applies migrations.
func Open(path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		busyTimeout:  5 * time.Second,
		maxOpenConns: 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	s.db = db

	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates the archive schema. It is idempotent.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`PRAGMA busy_timeout = %d;`, s.busyTimeout.Milliseconds()),
		`CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY,
			date TEXT NOT NULL,
			tournament TEXT NOT NULL,
			name TEXT NOT NULL,
			age REAL,
			bodyweight REAL,
			age_class TEXT NOT NULL,
			weight_class TEXT NOT NULL,
			team TEXT NOT NULL,
			best_sq REAL NOT NULL,
			best_bp REAL NOT NULL,
			best_dl REAL NOT NULL,
			total REAL NOT NULL,
			dots REAL,
			wilks REAL
		);`,
		`CREATE TABLE IF NOT EXISTS alerts (
			seq INTEGER PRIMARY KEY,
			id TEXT NOT NULL,
			run_id TEXT NOT NULL,
			date TEXT NOT NULL,
			athlete_id TEXT NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			metric TEXT NOT NULL,
			value TEXT NOT NULL,
			threshold TEXT NOT NULL,
			recommendation TEXT NOT NULL,
			notify_target TEXT NOT NULL,
			note TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_name ON history(name);`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_athlete ON alerts(athlete_id, kind, metric);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// AppendHistory stores records in one transaction.
func (s *SQLiteStore) AppendHistory(ctx context.Context, records []model.HistoricalRecord) (n int, err error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO history (date, tournament, name, age, bodyweight, age_class, weight_class, team, best_sq, best_bp, best_dl, total, dots, wilks)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err = stmt.ExecContext(ctx,
			r.Date.Format(time.RFC3339Nano),
			r.Tournament,
			r.Name,
			nullable(r.Age),
			nullable(r.Bodyweight),
			r.AgeClass,
			r.WeightClass,
			r.Team,
			r.BestSquat,
			r.BestBench,
			r.BestDeadlift,
			r.Total,
			nullable(r.DOTS),
			nullable(r.Wilks),
		); err != nil {
			return 0, err
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}

// PriorTotals returns every archived total grouped by athlete name.
func (s *SQLiteStore) PriorTotals(ctx context.Context) (map[string][]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, total FROM history ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string][]float64)
	for rows.Next() {
		var (
			name  string
			total float64
		)
		if err := rows.Scan(&name, &total); err != nil {
			return nil, err
		}
		out[name] = append(out[name], total)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListHistory returns archived records in insertion order.
func (s *SQLiteStore) ListHistory(ctx context.Context, name string) ([]model.HistoricalRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, tournament, name, age, bodyweight, age_class, weight_class, team, best_sq, best_bp, best_dl, total, dots, wilks
		 FROM history
		 WHERE (? = '' OR name = ?)
		 ORDER BY id`, name, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.HistoricalRecord
	for rows.Next() {
		var (
			r                    model.HistoricalRecord
			date                 string
			age, bw, dots, wilks sql.NullFloat64
		)
		if err := rows.Scan(&date, &r.Tournament, &r.Name, &age, &bw, &r.AgeClass, &r.WeightClass, &r.Team,
			&r.BestSquat, &r.BestBench, &r.BestDeadlift, &r.Total, &dots, &wilks); err != nil {
			return nil, err
		}
		if r.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
			return nil, fmt.Errorf("history date %q: %w", date, err)
		}
		r.Age, r.Bodyweight = ptr(age), ptr(bw)
		r.DOTS, r.Wilks = ptr(dots), ptr(wilks)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendAlerts stores alerts in one transaction.
func (s *SQLiteStore) AppendAlerts(ctx context.Context, alerts []model.Alert) (n int, err error) {
	if len(alerts) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO alerts (id, run_id, date, athlete_id, name, kind, metric, value, threshold, recommendation, notify_target, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	for _, a := range alerts {
		if _, err = stmt.ExecContext(ctx,
			a.ID, a.RunID, a.Date.Format(time.RFC3339Nano), a.AthleteID, a.Name, string(a.Kind),
			a.Metric, a.Value, a.Threshold, a.Recommendation, a.NotifyTarget, a.Note,
		); err != nil {
			return 0, err
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return len(alerts), nil
}

// ListAlerts returns the newest alerts first.
func (s *SQLiteStore) ListAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, date, athlete_id, name, kind, metric, value, threshold, recommendation, notify_target, note
		 FROM alerts
		 ORDER BY seq DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanAlerts(rows)
}

// AlertKeys returns the dedupe key of every stored alert.
func (s *SQLiteStore) AlertKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, date, athlete_id, name, kind, metric, value, threshold, recommendation, notify_target, note
		 FROM alerts
		 ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	alerts, err := scanAlerts(rows)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(alerts))
	for _, a := range alerts {
		keys = append(keys, dedupe.AlertKey(a))
	}
	return keys, nil
}

func scanAlerts(rows *sql.Rows) ([]model.Alert, error) {
	var out []model.Alert
	for rows.Next() {
		var (
			a          model.Alert
			date, kind string
		)
		if err := rows.Scan(&a.ID, &a.RunID, &date, &a.AthleteID, &a.Name, &kind, &a.Metric,
			&a.Value, &a.Threshold, &a.Recommendation, &a.NotifyTarget, &a.Note); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, date)
		if err != nil {
			return nil, fmt.Errorf("alert date %q: %w", date, err)
		}
		a.Date = t
		a.Kind = model.AlertKind(kind)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
