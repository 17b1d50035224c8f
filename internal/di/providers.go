package di

import (
	"context"
	"fmt"
	"time"

	"PriceCast/internal/domain/repository"
	domsvc "PriceCast/internal/domain/service"
	"PriceCast/internal/handler/api"
	"PriceCast/internal/handler/ws"
	mid "PriceCast/internal/middleware"
	internalrepo "PriceCast/internal/repository"
	"PriceCast/internal/service/market"
	"PriceCast/internal/service/ratelimit"
	"PriceCast/internal/services/scaling"
	"PriceCast/internal/services/sequence"
	"PriceCast/internal/services/window"
	"PriceCast/internal/usecase"
	"PriceCast/pkg/cache"
	pkgch "PriceCast/pkg/clickhouse"
	"PriceCast/pkg/config"
	xhttp "PriceCast/pkg/http"
	pkgkafka "PriceCast/pkg/kafka"
	applogger "PriceCast/pkg/logger"
	"PriceCast/pkg/metrics"
	"PriceCast/pkg/server"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideScaler loads the fitted scaler artifact.
func ProvideScaler(cfg *config.Config) (domsvc.Scaler, error) {
	s, err := scaling.Load(cfg.Forecast.ScalerPath)
	if err != nil {
		return nil, fmt.Errorf("scaler: %w", err)
	}
	return s, nil
}

func ProvideWindowBuilder(scaler domsvc.Scaler) domsvc.WindowBuilder {
	return window.NewBuilder(scaler)
}

// ProvideModel loads the native LSTM or connects the remote serving backend.
func ProvideModel(cfg *config.Config) (domsvc.SequenceModel, error) {
	if cfg.Model.Backend == "remote" {
		m, err := sequence.NewRemote(cfg.Model.ServingURL, cfg.Model.Name, cfg.Model.InputSteps, cfg.Model.Timeout)
		if err != nil {
			return nil, fmt.Errorf("remote model: %w", err)
		}
		return m, nil
	}
	m, err := sequence.LoadLSTM(cfg.Model.Path)
	if err != nil {
		return nil, fmt.Errorf("lstm model: %w", err)
	}
	return m, nil
}

// ProvideCache returns nil when caching is disabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	switch cfg.Cache.Backend {
	case "redis", "layered":
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if cfg.Cache.Backend == "layered" {
			return cache.NewLayeredCache(rc, cfg.Cache.MaxSize, cfg.Cache.TTL), nil
		}
		return rc, nil
	default:
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MaxSize),
			cache.WithMemoryDefaultTTL(cfg.Cache.TTL),
		), nil
	}
}

// ProvidePriceProvider selects the provider and wraps it with the cache when
// one is configured.
func ProvidePriceProvider(cfg *config.Config, c cache.Service, l *applogger.Logger) repository.PriceProvider {
	var p repository.PriceProvider
	switch cfg.Provider.Type {
	case "alpaca":
		p = market.NewAlpaca(market.AlpacaConfig{
			APIKey:    cfg.Provider.Alpaca.APIKey,
			APISecret: cfg.Provider.Alpaca.APISecret,
			BaseURL:   cfg.Provider.Alpaca.BaseURL,
			Feed:      cfg.Provider.Alpaca.Feed,
		})
	case "static":
		p = market.NewStatic(cfg.Provider.Static.Closes)
	default:
		p = market.NewYahoo(market.YahooConfig{
			BaseURL:   cfg.Provider.Yahoo.BaseURL,
			Timeout:   cfg.Provider.Yahoo.Timeout,
			RPS:       cfg.Provider.Yahoo.RPS,
			Burst:     cfg.Provider.Yahoo.Burst,
			UserAgent: cfg.Provider.Yahoo.UserAgent,
		})
	}
	if c != nil {
		p = market.NewCached(p, c, cfg.Cache.TTL, l.Component("cache"))
	}
	return p
}

// ProvideClickHouseClient returns nil unless the ClickHouse recorder is selected.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Recorder.Type != "clickhouse" {
		return nil, nil
	}
	ch := cfg.Recorder.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithAsyncInsert(ch.AsyncInsert, ch.WaitForAsync),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideRecorder creates the configured forecast recorder.
func ProvideRecorder(cfg *config.Config, ch *pkgch.Client) (repository.ForecastRecorder, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.Recorder.Type {
	case "sqlite":
		r, err := internalrepo.NewSQLiteRecorder(cfg.Recorder.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite recorder: %w", err)
		}
		return r, nil
	case "clickhouse":
		if ch == nil {
			return nil, fmt.Errorf("clickhouse recorder: client not configured")
		}
		r, err := internalrepo.NewClickHouseRecorder(ctx, ch)
		if err != nil {
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		return r, nil
	case "dynamodb":
		r, err := internalrepo.NewDynamoRecorder(ctx, cfg.Recorder.DynamoDB.Region, cfg.Recorder.DynamoDB.Table)
		if err != nil {
			return nil, fmt.Errorf("dynamodb recorder: %w", err)
		}
		return r, nil
	default:
		return internalrepo.NewNoopRecorder(), nil
	}
}

// ProvideKafkaProducer returns nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

func ProvideHub(l *applogger.Logger) *ws.Hub {
	return ws.NewHub(l.Component("ws"))
}

// ProvidePublishers collects every enabled publisher. The hub is always on.
func ProvidePublishers(producer *pkgkafka.Producer, hub *ws.Hub) []repository.ForecastPublisher {
	pubs := []repository.ForecastPublisher{hub}
	if producer != nil {
		pubs = append(pubs, internalrepo.NewKafkaPublisher(producer))
	}
	return pubs
}

// ProvideSinkPipeline builds the async delivery pipeline for finished forecasts.
func ProvideSinkPipeline(
	cfg *config.Config,
	m repository.Metrics,
	l *applogger.Logger,
	rec repository.ForecastRecorder,
	pubs []repository.ForecastPublisher,
) *mid.SinkPipeline {
	return mid.NewSinkPipeline(m, l.Component("sinks"),
		mid.WithBufferSize(cfg.Recorder.Buffer),
		mid.WithRecorders(rec),
		mid.WithPublishers(pubs...),
	)
}

// ProvidePipeline creates the forecast orchestrator.
func ProvidePipeline(
	cfg *config.Config,
	provider repository.PriceProvider,
	scaler domsvc.Scaler,
	builder domsvc.WindowBuilder,
	model domsvc.SequenceModel,
	m repository.Metrics,
	l *applogger.Logger,
) (*usecase.Pipeline, error) {
	p, err := usecase.NewPipeline(provider, scaler, builder, model, m, l.Component("pipeline"), cfg.Forecast.Steps, repository.Period(cfg.Forecast.Period))
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return p, nil
}

func ProvideForecastService(cfg *config.Config, p *usecase.Pipeline, sinks *mid.SinkPipeline, l *applogger.Logger) *usecase.ForecastService {
	return usecase.NewForecastService(p, sinks, cfg.Forecast.Timeout, l)
}

// ProvideScheduler returns nil when the scheduler is disabled.
func ProvideScheduler(cfg *config.Config, svc *usecase.ForecastService, l *applogger.Logger) (*usecase.Scheduler, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}
	s, err := usecase.NewScheduler(svc, cfg.Scheduler.Spec, cfg.Scheduler.Symbols, cfg.Scheduler.Timeout, l.Component("scheduler"))
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	return s, nil
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Limits.RPS, cfg.Limits.Burst)
}

// ProvideHandlers lists every route group served by the HTTP server.
func ProvideHandlers(
	l *applogger.Logger,
	svc *usecase.ForecastService,
	limiter *ratelimit.Limiter,
	hub *ws.Hub,
	rec repository.ForecastRecorder,
) []xhttp.Handler {
	limit := ratelimit.Middleware(limiter)
	p := svc.Pipeline()
	health := api.NewHealthHandler(xhttp.HealthResponse{
		Provider: p.ProviderName(),
		Model:    p.ModelName(),
		Recorder: rec.Name(),
		Steps:    p.Steps(),
		Period:   string(p.Period()),
	})
	return []xhttp.Handler{
		api.NewForecastEchoHandler(l, svc, limit),
		api.NewPageHandler(l, svc, limit),
		api.NewHistoryHandler(l, rec),
		health,
		hub,
	}
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, handlers []xhttp.Handler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(handlers,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithLogger(l.Component("http")),
	)
}

// ProvideApp creates the application server. Resources close after the sink
// pipeline drains: recorder, publishers, cache, then ClickHouse.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	sinks *mid.SinkPipeline,
	sched *usecase.Scheduler,
	rec repository.ForecastRecorder,
	pubs []repository.ForecastPublisher,
	c cache.Service,
	ch *pkgch.Client,
) *server.App {
	res := []server.Resource{{Name: "recorder_" + rec.Name(), Closer: rec}}
	for _, p := range pubs {
		res = append(res, server.Resource{Name: "publisher_" + p.Name(), Closer: p})
	}
	if c != nil {
		res = append(res, server.Resource{Name: "cache", Closer: c})
	}
	if ch != nil {
		res = append(res, server.Resource{Name: "clickhouse", Closer: ch})
	}
	return server.New(l, srv, sinks, sched, cfg.Server.ShutdownTimeout, res...)
}

// Lambda holds what the serverless entrypoint needs. Forecasts are recorded
// synchronously because the runtime may freeze between invocations.
type Lambda struct {
	Pipeline *usecase.Pipeline
	Recorder repository.ForecastRecorder
	Logger   *applogger.Logger
}

func ProvideLambda(p *usecase.Pipeline, rec repository.ForecastRecorder, l *applogger.Logger) *Lambda {
	return &Lambda{Pipeline: p, Recorder: rec, Logger: l}
}
