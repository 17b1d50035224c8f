package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
)

// SQLiteRecorder persists forecasts to a local SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." && !strings.HasPrefix(dbPath, "file:") && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forecasts (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			generated_at INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			period       TEXT,
			steps        INTEGER,
			prediction   REAL,
			reason       TEXT,
			detail       TEXT,
			stage        TEXT,
			observed     INTEGER,
			last_close   REAL,
			as_of        INTEGER,
			source       TEXT,
			model        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecasts_symbol_ts ON forecasts(symbol, generated_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) Name() string { return "sqlite" }

func (r *SQLiteRecorder) Record(ctx context.Context, f *models.Forecast) error {
	row := toRow(f)
	_, err := r.db.ExecContext(ctx, `INSERT INTO forecasts
		(generated_at, symbol, period, steps, prediction, reason, detail, stage, observed, last_close, as_of, source, model)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.GeneratedAt.UnixMilli(), row.Symbol, row.Period, row.Steps, row.Prediction,
		row.Reason, row.Detail, row.Stage, row.Observed, row.LastClose, nullMilli(row.AsOf),
		row.Source, row.Model,
	)
	if err != nil {
		return fmt.Errorf("insert forecast: %w", err)
	}
	return nil
}

// Recent returns the newest forecasts for symbol, newest first.
func (r *SQLiteRecorder) Recent(ctx context.Context, symbol string, limit int) ([]*models.Forecast, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT
		generated_at, symbol, period, steps, prediction, reason, detail, stage, observed, last_close, as_of, source, model
		FROM forecasts WHERE symbol = ? ORDER BY generated_at DESC, id DESC LIMIT ?`,
		strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("query forecasts: %w", err)
	}
	defer rows.Close()

	var out []*models.Forecast
	for rows.Next() {
		var (
			row    forecastRow
			genMs  int64
			asOfMs sql.NullInt64
			period sql.NullString
			reason sql.NullString
			detail sql.NullString
			stage  sql.NullString
			source sql.NullString
			model  sql.NullString
		)
		if err := rows.Scan(&genMs, &row.Symbol, &period, &row.Steps, &row.Prediction, &reason, &detail,
			&stage, &row.Observed, &row.LastClose, &asOfMs, &source, &model); err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		row.GeneratedAt = time.UnixMilli(genMs)
		if asOfMs.Valid && asOfMs.Int64 != 0 {
			row.AsOf = sql.NullTime{Time: time.UnixMilli(asOfMs.Int64), Valid: true}
		}
		row.Period, row.Reason, row.Detail = period.String, reason.String, detail.String
		row.Stage, row.Source, row.Model = stage.String, source.String, model.String
		out = append(out, row.toForecast())
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

func nullMilli(t sql.NullTime) any {
	if !t.Valid {
		return nil
	}
	return t.Time.UnixMilli()
}

var _ domrepo.ForecastRecorder = (*SQLiteRecorder)(nil)
