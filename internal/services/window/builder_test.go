package window

import (
	"errors"
	"math"
	"testing"

	"PriceCast/internal/domain/models"
	"PriceCast/internal/services/scaling"
)

func seq(from, to float64) []float64 {
	out := make([]float64, 0, int(to-from)+1)
	for v := from; v <= to; v++ {
		out = append(out, v)
	}
	return out
}

func testScaler(t *testing.T, lo, hi float64) *scaling.MinMax {
	t.Helper()
	s, err := scaling.Fit([][]float64{{lo}, {hi}}, 0, 1)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	return s
}

func TestBuildExactLength(t *testing.T) {
	s := testScaler(t, 0, 100)
	series := seq(10, 69)
	w, err := NewBuilder(s).Build(series, 60)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(w) != 60 {
		t.Fatalf("expected 60 rows, got %d", len(w))
	}
	for i, row := range w {
		want, _ := s.TransformValue(series[i])
		if len(row) != 1 || math.Abs(row[0]-want) > 1e-12 {
			t.Fatalf("row %d: want [%v] got %v", i, want, row)
		}
	}
}

func TestBuildTakesTrailingSlice(t *testing.T) {
	s := testScaler(t, 0, 200)
	series := seq(1, 150)
	w, err := NewBuilder(s).Build(series, 60)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	first, _ := s.TransformValue(91)
	last, _ := s.TransformValue(150)
	if math.Abs(w[0][0]-first) > 1e-12 || math.Abs(w[59][0]-last) > 1e-12 {
		t.Fatalf("unexpected window bounds %v .. %v", w[0][0], w[59][0])
	}
	for i := 1; i < len(w); i++ {
		if w[i][0] <= w[i-1][0] {
			t.Fatalf("window not chronological at %d", i)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	s := testScaler(t, 0, 100)
	series := seq(20, 99)
	b := NewBuilder(s)
	a1, _ := b.Build(series, 30)
	a2, _ := b.Build(series, 30)
	for i := range a1 {
		if a1[i][0] != a2[i][0] {
			t.Fatalf("non-deterministic at %d", i)
		}
	}
}

func TestBuildInsufficient(t *testing.T) {
	s := testScaler(t, 0, 100)
	tests := []struct {
		name   string
		series []float64
	}{
		{"three points", []float64{10, 11, 12}},
		{"one short", seq(1, 59)},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder(s).Build(tt.series, 60)
			if !errors.Is(err, models.ErrInsufficientHistory) {
				t.Fatalf("expected insufficient history, got %v", err)
			}
			var ih *models.InsufficientHistoryError
			if !errors.As(err, &ih) || ih.Have != len(tt.series) || ih.Need != 60 {
				t.Fatalf("unexpected detail %+v", ih)
			}
		})
	}
}

func TestBuildDoesNotAlias(t *testing.T) {
	s := testScaler(t, 0, 100)
	series := seq(1, 10)
	w, _ := NewBuilder(s).Build(series, 5)
	w[0][0] = -1
	if series[5] != 6 {
		t.Fatalf("series mutated")
	}
}

func TestBuildRejectsBadSteps(t *testing.T) {
	s := testScaler(t, 0, 100)
	if _, err := NewBuilder(s).Build(seq(1, 10), 0); err == nil {
		t.Fatalf("expected error for zero steps")
	}
}

func TestBuildPropagatesScalerMismatch(t *testing.T) {
	s, err := scaling.New(scaling.Artifact{DataMin: []float64{0, 0}, DataMax: []float64{1, 1}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := NewBuilder(s).Build(seq(1, 10), 5); !errors.Is(err, models.ErrDimensionMismatch) {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
}
