package metrics

import (
	"testing"

	"PriceCast/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWith(promauto.With(reg))

	r.RecordForecast("AAPL", "ok")
	r.RecordForecast("AAPL", "ok")
	r.RecordForecast("AAPL", "insufficient_history")
	r.RecordNegativeForecast("XYZ")
	r.RecordLastForecast("AAPL", 190.5)
	r.RecordStage(models.StageFetching, 0.2)
	r.RecordError("fetch")

	if got := testutil.ToFloat64(r.forecasts.WithLabelValues("AAPL", "ok")); got != 2 {
		t.Fatalf("expected 2 ok forecasts, got %v", got)
	}
	if got := testutil.ToFloat64(r.lastForecast.WithLabelValues("AAPL")); got != 190.5 {
		t.Fatalf("unexpected last forecast %v", got)
	}
	if got := testutil.ToFloat64(r.negatives.WithLabelValues("XYZ")); got != 1 {
		t.Fatalf("unexpected negatives %v", got)
	}
	if n := testutil.CollectAndCount(r.stage); n != 1 {
		t.Fatalf("expected 1 stage series, got %d", n)
	}
}

func TestNewIsShared(t *testing.T) {
	if New() != New() {
		t.Fatalf("expected a single default recorder")
	}
}
