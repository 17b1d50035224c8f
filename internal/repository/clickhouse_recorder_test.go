package repository

import (
	"strings"
	"testing"
	"time"

	"PriceCast/internal/domain/models"
)

func TestClickHouseSchema(t *testing.T) {
	stmts := ClickHouseSchema("pricecast")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	if stmts[0] != "CREATE DATABASE IF NOT EXISTS pricecast" {
		t.Fatalf("database stmt = %q", stmts[0])
	}

	table := stmts[1]
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS pricecast.forecasts",
		"prediction   Nullable(Float64)",
		"as_of        Nullable(DateTime64(3, 'UTC'))",
		"ENGINE = MergeTree",
		"ORDER BY (symbol, generated_at)",
	} {
		if !strings.Contains(table, want) {
			t.Fatalf("table stmt missing %q:\n%s", want, table)
		}
	}
	for _, col := range strings.Split(clickhouseColumns, ",") {
		if !strings.Contains(table, strings.TrimSpace(col)+" ") {
			t.Fatalf("table stmt missing column %q", col)
		}
	}
}

func TestClickHouseStatements(t *testing.T) {
	cols := len(strings.Split(clickhouseColumns, ","))

	insert := clickhouseInsertSQL("pricecast.forecasts")
	if !strings.HasPrefix(insert, "INSERT INTO pricecast.forecasts (generated_at, ") {
		t.Fatalf("insert = %q", insert)
	}
	if got := strings.Count(insert, "?"); got != cols {
		t.Fatalf("insert has %d placeholders, want %d", got, cols)
	}

	recent := clickhouseRecentSQL("pricecast.forecasts")
	if !strings.Contains(recent, "FROM pricecast.forecasts WHERE symbol = ?") || !strings.HasSuffix(recent, "LIMIT ?") {
		t.Fatalf("recent = %q", recent)
	}
}

func TestClickHouseArgs(t *testing.T) {
	cols := len(strings.Split(clickhouseColumns, ","))
	generated := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	asOf := generated.Add(-24 * time.Hour)

	withValue := &models.Forecast{Symbol: "AAPL", Steps: 60, Stage: models.StageDone, Observed: 126, AsOf: &asOf, GeneratedAt: generated}
	withValue.SetValue(191.25)

	tests := []struct {
		name           string
		f              *models.Forecast
		wantPrediction any
		wantAsOf       any
	}{
		{
			name:           "prediction",
			f:              withValue,
			wantPrediction: 191.25,
			wantAsOf:       asOf,
		},
		{
			name:           "empty history binds nulls",
			f:              &models.Forecast{Symbol: "ZZZZ", Stage: models.StageError, Reason: models.ReasonEmptyHistory, GeneratedAt: generated},
			wantPrediction: nil,
			wantAsOf:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := clickhouseArgs(toRow(tt.f))
			if len(args) != cols {
				t.Fatalf("got %d args, want %d", len(args), cols)
			}
			if args[4] != tt.wantPrediction {
				t.Fatalf("prediction arg = %#v, want %#v", args[4], tt.wantPrediction)
			}
			if args[10] != tt.wantAsOf {
				t.Fatalf("as_of arg = %#v, want %#v", args[10], tt.wantAsOf)
			}
			if args[1] != tt.f.Symbol || args[3] != uint16(tt.f.Steps) || args[8] != uint32(tt.f.Observed) {
				t.Fatalf("args = %#v", args)
			}
		})
	}
}
