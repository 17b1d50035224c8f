package middleware

import (
	"context"
	"sync"
	"time"

	"PriceCast/internal/domain/models"
	domrepo "PriceCast/internal/domain/repository"
	applogger "PriceCast/pkg/logger"
)

// sink is one delivery target: a recorder or a publisher.
type sink struct {
	name    string
	deliver func(ctx context.Context, f *models.Forecast) error
}

// SinkPipeline delivers finished forecasts to recorders and publishers in
// the background. Submit never blocks; forecasts are dropped when the buffer
// is full.
type SinkPipeline struct {
	sinks   []sink
	metrics domrepo.Metrics
	logger  *applogger.Logger
	bufSize int
	timeout time.Duration
	bufCh   chan *models.Forecast
	doneCh  chan struct{}
	mu      sync.Mutex
	started bool
	stopped bool
}

type PipelineOption func(*SinkPipeline)

// WithBufferSize sets how many forecasts may wait for delivery.
func WithBufferSize(n int) PipelineOption {
	return func(p *SinkPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithDeliveryTimeout bounds each delivery to a single sink.
func WithDeliveryTimeout(d time.Duration) PipelineOption {
	return func(p *SinkPipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithRecorders adds persistent recorders.
func WithRecorders(rs ...domrepo.ForecastRecorder) PipelineOption {
	return func(p *SinkPipeline) {
		for _, r := range rs {
			if r == nil {
				continue
			}
			p.sinks = append(p.sinks, sink{name: "recorder_" + r.Name(), deliver: r.Record})
		}
	}
}

// WithPublishers adds fan-out publishers.
func WithPublishers(ps ...domrepo.ForecastPublisher) PipelineOption {
	return func(p *SinkPipeline) {
		for _, pub := range ps {
			if pub == nil {
				continue
			}
			p.sinks = append(p.sinks, sink{name: "publisher_" + pub.Name(), deliver: pub.Publish})
		}
	}
}

// NewSinkPipeline creates a new pipeline. Call Start before Submit.
func NewSinkPipeline(metrics domrepo.Metrics, l *applogger.Logger, opts ...PipelineOption) *SinkPipeline {
	if l == nil {
		l = applogger.Nop()
	}
	p := &SinkPipeline{
		metrics: metrics,
		logger:  l,
		bufSize: 256,
		timeout: 5 * time.Second,
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.Forecast, p.bufSize)
	return p
}

// Sinks returns the names of the configured sinks.
func (p *SinkPipeline) Sinks() []string {
	names := make([]string, len(p.sinks))
	for i, s := range p.sinks {
		names[i] = s.name
	}
	return names
}

// Start launches the delivery goroutine.
func (p *SinkPipeline) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		defer close(p.doneCh)
		for f := range p.bufCh {
			p.deliver(f)
		}
	}()
}

// Submit queues f for delivery. It returns false when the forecast was
// dropped because the buffer is full or the pipeline is stopped.
func (p *SinkPipeline) Submit(f *models.Forecast) bool {
	if f == nil || len(p.sinks) == 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	select {
	case p.bufCh <- f:
		return true
	default:
		p.recordError("sink_buffer_full")
		return false
	}
}

// Stop stops accepting forecasts and waits for queued ones to be delivered
// or for ctx to end.
func (p *SinkPipeline) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	started := p.started
	close(p.bufCh)
	p.mu.Unlock()

	if !started {
		return nil
	}
	select {
	case <-p.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *SinkPipeline) deliver(f *models.Forecast) {
	for _, s := range p.sinks {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := s.deliver(ctx, f)
		cancel()
		if err != nil {
			p.recordError(s.name)
			p.logger.Warn("forecast delivery failed",
				applogger.String("sink", s.name),
				applogger.Symbol(f.Symbol),
				applogger.Error(err),
			)
			continue
		}
		if p.metrics != nil {
			p.metrics.RecordLatency("sink_"+s.name, time.Since(start).Seconds())
		}
	}
}

func (p *SinkPipeline) recordError(kind string) {
	if p.metrics != nil {
		p.metrics.RecordError(kind)
	}
}
