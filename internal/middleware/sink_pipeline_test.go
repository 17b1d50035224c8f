package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"PriceCast/internal/domain/models"
)

type memRecorder struct {
	mu   sync.Mutex
	got  []*models.Forecast
	err  error
	gate chan struct{}
}

func (r *memRecorder) Record(_ context.Context, f *models.Forecast) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.got = append(r.got, f)
	return nil
}

func (r *memRecorder) Recent(context.Context, string, int) ([]*models.Forecast, error) {
	return nil, nil
}
func (r *memRecorder) Name() string { return "mem" }
func (r *memRecorder) Close() error { return nil }

func (r *memRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

type memPublisher struct {
	mu  sync.Mutex
	got []string
}

func (p *memPublisher) Publish(_ context.Context, f *models.Forecast) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, f.Symbol)
	return nil
}
func (p *memPublisher) Name() string { return "mem" }
func (p *memPublisher) Close() error { return nil }

type errCounter struct {
	mu   sync.Mutex
	errs map[string]int
}

func (m *errCounter) RecordForecast(string, string)      {}
func (m *errCounter) RecordStage(models.Stage, float64)  {}
func (m *errCounter) RecordLastForecast(string, float64) {}
func (m *errCounter) RecordNegativeForecast(string)      {}
func (m *errCounter) RecordLatency(string, float64)      {}
func (m *errCounter) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errs == nil {
		m.errs = map[string]int{}
	}
	m.errs[kind]++
}

func (m *errCounter) get(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errs[kind]
}

func TestSinkPipelineDeliversToEverySink(t *testing.T) {
	rec := &memRecorder{}
	pub := &memPublisher{}
	p := NewSinkPipeline(nil, nil, WithRecorders(rec), WithPublishers(pub))
	p.Start()

	for _, s := range []string{"AAPL", "MSFT", "GOOG"} {
		if !p.Submit(&models.Forecast{Symbol: s}) {
			t.Fatalf("submit %s dropped", s)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if rec.count() != 3 {
		t.Fatalf("recorded = %d, want 3", rec.count())
	}
	if len(pub.got) != 3 || pub.got[0] != "AAPL" || pub.got[2] != "GOOG" {
		t.Fatalf("published = %v", pub.got)
	}
	if got := p.Sinks(); len(got) != 2 || got[0] != "recorder_mem" || got[1] != "publisher_mem" {
		t.Fatalf("sinks = %v", got)
	}
}

func TestSinkPipelineDropsWhenFull(t *testing.T) {
	gate := make(chan struct{})
	rec := &memRecorder{gate: gate}
	m := &errCounter{}
	p := NewSinkPipeline(m, nil, WithRecorders(rec), WithBufferSize(1))
	p.Start()

	// first is picked up by the worker and blocks on the gate, second fills
	// the buffer, so at least one later submit must be dropped
	dropped := 0
	for i := 0; i < 5; i++ {
		if !p.Submit(&models.Forecast{Symbol: "X"}) {
			dropped++
		}
	}
	if dropped == 0 {
		t.Fatalf("expected drops with a full buffer")
	}
	if m.get("sink_buffer_full") != dropped {
		t.Fatalf("buffer_full = %d, dropped = %d", m.get("sink_buffer_full"), dropped)
	}

	close(gate)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.Submit(&models.Forecast{Symbol: "late"}) {
		t.Fatalf("submit after stop should be rejected")
	}
}

func TestSinkPipelineCountsDeliveryErrors(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	pub := &memPublisher{}
	m := &errCounter{}
	p := NewSinkPipeline(m, nil, WithRecorders(rec), WithPublishers(pub))
	p.Start()
	p.Submit(&models.Forecast{Symbol: "AAPL"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = p.Stop(ctx)

	if m.get("recorder_mem") != 1 {
		t.Fatalf("recorder errors = %d", m.get("recorder_mem"))
	}
	if len(pub.got) != 1 {
		t.Fatalf("a failing recorder must not block publishers")
	}
}

func TestSinkPipelineWithoutSinksAcceptsEverything(t *testing.T) {
	p := NewSinkPipeline(nil, nil)
	if !p.Submit(&models.Forecast{Symbol: "A"}) {
		t.Fatalf("submit should be a no-op success")
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
