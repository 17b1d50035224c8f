package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
	pkgch "PriceCast/pkg/clickhouse"
)

// ClickHouseRecorder appends forecasts to a MergeTree table.
type ClickHouseRecorder struct {
	client *pkgch.Client
	table  string
}

// ClickHouseSchema returns the DDL for the forecasts table in database.
func ClickHouseSchema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.forecasts (
			generated_at DateTime64(3, 'UTC'),
			symbol       LowCardinality(String),
			period       LowCardinality(String),
			steps        UInt16,
			prediction   Nullable(Float64),
			reason       LowCardinality(String),
			detail       String,
			stage        LowCardinality(String),
			observed     UInt32,
			last_close   Float64,
			as_of        Nullable(DateTime64(3, 'UTC')),
			source       LowCardinality(String),
			model        LowCardinality(String)
		) ENGINE = MergeTree
		ORDER BY (symbol, generated_at)`, database),
	}
}

// NewClickHouseRecorder ensures the schema exists.
func NewClickHouseRecorder(ctx context.Context, client *pkgch.Client) (*ClickHouseRecorder, error) {
	if err := client.InitSchema(ctx, ClickHouseSchema(client.Database())); err != nil {
		return nil, err
	}
	return &ClickHouseRecorder{client: client, table: client.Database() + ".forecasts"}, nil
}

func (r *ClickHouseRecorder) Name() string { return "clickhouse" }

const clickhouseColumns = "generated_at, symbol, period, steps, prediction, reason, detail, stage, observed, last_close, as_of, source, model"

func clickhouseInsertSQL(table string) string {
	n := len(strings.Split(clickhouseColumns, ","))
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, clickhouseColumns, strings.TrimSuffix(strings.Repeat("?, ", n), ", "))
}

func clickhouseRecentSQL(table string) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE symbol = ? ORDER BY generated_at DESC LIMIT ?", clickhouseColumns, table)
}

// clickhouseArgs orders row to match clickhouseColumns. Absent values bind
// as NULL.
func clickhouseArgs(row forecastRow) []any {
	var prediction, asOf any
	if row.Prediction.Valid {
		prediction = row.Prediction.Float64
	}
	if row.AsOf.Valid {
		asOf = row.AsOf.Time
	}
	return []any{
		row.GeneratedAt, row.Symbol, row.Period, uint16(row.Steps), prediction,
		row.Reason, row.Detail, row.Stage, uint32(row.Observed), row.LastClose, asOf,
		row.Source, row.Model,
	}
}

func (r *ClickHouseRecorder) Record(ctx context.Context, f *models.Forecast) error {
	_, err := r.client.DB().ExecContext(ctx, clickhouseInsertSQL(r.table), clickhouseArgs(toRow(f))...)
	if err != nil {
		return fmt.Errorf("clickhouse insert forecast: %w", err)
	}
	return nil
}

func (r *ClickHouseRecorder) Recent(ctx context.Context, symbol string, limit int) ([]*models.Forecast, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.client.DB().QueryContext(ctx, clickhouseRecentSQL(r.table), strings.ToUpper(symbol), limit)
	if err != nil {
		return nil, fmt.Errorf("clickhouse query forecasts: %w", err)
	}
	defer rows.Close()

	var out []*models.Forecast
	for rows.Next() {
		var (
			row      forecastRow
			steps    uint16
			observed uint32
			pred     sql.NullFloat64
		)
		if err := rows.Scan(&row.GeneratedAt, &row.Symbol, &row.Period, &steps, &pred, &row.Reason, &row.Detail,
			&row.Stage, &observed, &row.LastClose, &row.AsOf, &row.Source, &row.Model); err != nil {
			return nil, fmt.Errorf("clickhouse scan forecast: %w", err)
		}
		row.Steps, row.Observed, row.Prediction = int(steps), int(observed), pred
		out = append(out, row.toForecast())
	}
	return out, rows.Err()
}

// Close is a no-op; the client is owned and closed by the caller.
func (r *ClickHouseRecorder) Close() error { return nil }

var _ domrepo.ForecastRecorder = (*ClickHouseRecorder)(nil)
