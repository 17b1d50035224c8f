package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PriceCast/internal/middleware"
	"PriceCast/internal/usecase"
	xhttp "PriceCast/pkg/http"
	applogger "PriceCast/pkg/logger"
)

// Resource is a dependency closed during shutdown, in registration order.
type Resource struct {
	Name   string
	Closer io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	logger          *applogger.Logger
	httpServer      *xhttp.Server
	sinks           *middleware.SinkPipeline
	scheduler       *usecase.Scheduler
	resources       []Resource
	shutdownTimeout time.Duration
}

// New creates a new App. scheduler may be nil when scheduling is disabled.
func New(
	logger *applogger.Logger,
	httpServer *xhttp.Server,
	sinks *middleware.SinkPipeline,
	scheduler *usecase.Scheduler,
	shutdownTimeout time.Duration,
	resources ...Resource,
) *App {
	if logger == nil {
		logger = applogger.Nop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &App{
		logger:          logger,
		httpServer:      httpServer,
		sinks:           sinks,
		scheduler:       scheduler,
		resources:       resources,
		shutdownTimeout: shutdownTimeout,
	}
}

// Run starts the application and blocks until interrupted or the HTTP
// server fails.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext is Run with an explicit stop context.
func (a *App) RunContext(ctx context.Context) error {
	a.sinks.Start()
	if a.scheduler != nil {
		a.scheduler.Start()
	}
	errCh := a.httpServer.Start()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err, ok := <-errCh:
		if ok && err != nil {
			a.logger.Error("http server failed", applogger.Error(err))
			runErr = err
		}
	}

	a.shutdown()
	return runErr
}

// shutdown stops in order: HTTP server, scheduler, sink pipeline, then the
// registered resources.
func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.logger.Info("shutting down...")
	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}
	if a.scheduler != nil {
		a.scheduler.Stop(ctx)
	}
	if err := a.sinks.Stop(ctx); err != nil {
		a.logger.Warn("sink pipeline stop error", applogger.Error(err))
	}
	a.closeResources()
	a.logger.Info("shutdown complete")
}

// Close releases the registered resources of an App that was never run.
func (a *App) Close() {
	a.closeResources()
}

func (a *App) closeResources() {
	for _, r := range a.resources {
		if r.Closer == nil {
			continue
		}
		if err := r.Closer.Close(); err != nil {
			a.logger.Warn("close error", applogger.String("resource", r.Name), applogger.Error(err))
		}
	}
}
