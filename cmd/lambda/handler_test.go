package main

import (
	"context"
	"errors"
	"testing"

	"PriceCast/internal/domain/models"
)

type fakePipeline struct {
	err   error
	calls int
}

func (f *fakePipeline) Run(_ context.Context, symbol string) (*models.Forecast, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := &models.Forecast{Symbol: symbol, Stage: models.StageDone}
	out.SetValue(12.5)
	return out, nil
}

type fakeRecorder struct {
	err      error
	recorded []*models.Forecast
}

func (r *fakeRecorder) Record(_ context.Context, f *models.Forecast) error {
	r.recorded = append(r.recorded, f)
	return r.err
}

func (r *fakeRecorder) Recent(context.Context, string, int) ([]*models.Forecast, error) {
	return r.recorded, nil
}

func (r *fakeRecorder) Name() string { return "fake" }
func (r *fakeRecorder) Close() error { return nil }

func TestHandle(t *testing.T) {
	tests := []struct {
		name      string
		symbol    string
		runErr    error
		recErr    error
		wantErr   bool
		wantCalls int
		wantRecs  int
	}{
		{"ok", "AAPL", nil, nil, false, 1, 1},
		{"record failure is not fatal", "AAPL", nil, errors.New("throttled"), false, 1, 1},
		{"invalid symbol", "A B", nil, nil, true, 0, 0},
		{"empty symbol", "", nil, nil, true, 0, 0},
		{"provider failure", "AAPL", &models.ProviderError{Provider: "yahoo", Symbol: "AAPL", Err: errors.New("503")}, nil, true, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePipeline{err: tt.runErr}
			rec := &fakeRecorder{err: tt.recErr}
			h := newHandler(p, rec, nil)

			f, err := h.Handle(context.Background(), models.LambdaEvent{Symbol: tt.symbol})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if p.calls != tt.wantCalls {
				t.Fatalf("pipeline calls = %d, want %d", p.calls, tt.wantCalls)
			}
			if len(rec.recorded) != tt.wantRecs {
				t.Fatalf("recorded = %d, want %d", len(rec.recorded), tt.wantRecs)
			}
			if !tt.wantErr && (f == nil || f.Display != "12.50") {
				t.Fatalf("forecast = %+v", f)
			}
		})
	}
}
