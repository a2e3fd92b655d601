package observability

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	promreg "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/santobu/copilot-metrics-dashboard/internal/config"
)

// Provider bundles the trace and metrics exporters plus the instruments the
// pipeline records against. A nil Provider is safe to call.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *metric.MeterProvider
	promExporter   *prometheus.Exporter
	promHandler    http.Handler
	shutdownFuncs  []func(context.Context) error

	httpRequestCounter *promreg.CounterVec
	httpRequestLatency *promreg.HistogramVec
	upstreamLatency    *promreg.HistogramVec
	ingestedRecords    *promreg.CounterVec
	seatRefreshCounter *promreg.CounterVec
}

func Setup(ctx context.Context, cfg config.ObservabilityConfig) (*Provider, error) {
	if !cfg.EnableOTLP && !cfg.EnableMetrics {
		return nil, nil
	}

	provider := &Provider{}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("copilot-metrics-dashboard"),
		),
	)
	if err != nil {
		return nil, err
	}

	if cfg.EnableOTLP {
		endpoint := strings.TrimSpace(cfg.OTLPEndpoint)
		if endpoint == "" {
			endpoint = "localhost:4317"
		}
		opts := []otlptracegrpc.Option{}
		switch {
		case strings.HasPrefix(endpoint, "http://"):
			endpoint = strings.TrimPrefix(endpoint, "http://")
			opts = append(opts, otlptracegrpc.WithInsecure())
		case strings.HasPrefix(endpoint, "https://"):
			endpoint = strings.TrimPrefix(endpoint, "https://")
		default:
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		opts = append(opts, otlptracegrpc.WithEndpoint(endpoint))

		client := otlptracegrpc.NewClient(opts...)
		exporter, err := otlptrace.New(ctx, client)
		if err != nil {
			return nil, err
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		provider.tracerProvider = tp
		provider.shutdownFuncs = append(provider.shutdownFuncs, tp.Shutdown)
	}

	if cfg.EnableMetrics {
		registry := promreg.NewRegistry()
		promExporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, err
		}
		mp := metric.NewMeterProvider(
			metric.WithReader(promExporter),
			metric.WithResource(res),
		)
		otel.SetMeterProvider(mp)
		provider.meterProvider = mp
		provider.promExporter = promExporter
		provider.promHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
		provider.shutdownFuncs = append(provider.shutdownFuncs, mp.Shutdown)

		httpRequests := promreg.NewCounterVec(
			promreg.CounterOpts{
				Namespace: "copilot_metrics",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed.",
			},
			[]string{"method", "route", "status"},
		)
		latencyBuckets := []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10}
		httpLatency := promreg.NewHistogramVec(
			promreg.HistogramOpts{
				Namespace: "copilot_metrics",
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds.",
				Buckets:   latencyBuckets,
			},
			[]string{"method", "route", "status"},
		)
		upstreamLatency := promreg.NewHistogramVec(
			promreg.HistogramOpts{
				Namespace: "copilot_metrics",
				Name:      "upstream_request_duration_seconds",
				Help:      "Duration of GitHub API fetches in seconds.",
				Buckets:   latencyBuckets,
			},
			[]string{"scope", "operation", "outcome"},
		)
		ingested := promreg.NewCounterVec(
			promreg.CounterOpts{
				Namespace: "copilot_metrics",
				Name:      "ingested_usage_records_total",
				Help:      "Daily usage records newly written by ingestion runs.",
			},
			[]string{"scope"},
		)
		seatRefreshes := promreg.NewCounterVec(
			promreg.CounterOpts{
				Namespace: "copilot_metrics",
				Name:      "seat_refreshes_total",
				Help:      "Seat snapshot refreshes by outcome.",
			},
			[]string{"scope", "outcome"},
		)
		for _, collector := range []promreg.Collector{httpRequests, httpLatency, upstreamLatency, ingested, seatRefreshes} {
			if err := registry.Register(collector); err != nil {
				return nil, err
			}
		}
		provider.httpRequestCounter = httpRequests
		provider.httpRequestLatency = httpLatency
		provider.upstreamLatency = upstreamLatency
		provider.ingestedRecords = ingested
		provider.seatRefreshCounter = seatRefreshes
	}

	return provider, nil
}

func (p *Provider) PrometheusHandler() http.Handler {
	if p == nil || p.promHandler == nil {
		return nil
	}
	return p.promHandler
}

func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	for _, fn := range p.shutdownFuncs {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) TracerProvider() *sdktrace.TracerProvider {
	if p == nil {
		return nil
	}
	return p.tracerProvider
}

func (p *Provider) RecordHTTPRequest(_ context.Context, method, route string, status int, duration time.Duration) {
	if p == nil {
		return
	}

	statusLabel := strconv.Itoa(status)

	if p.httpRequestCounter != nil {
		p.httpRequestCounter.WithLabelValues(method, route, statusLabel).Inc()
	}
	if p.httpRequestLatency != nil {
		p.httpRequestLatency.WithLabelValues(method, route, statusLabel).Observe(duration.Seconds())
	}
}

// RecordUpstreamFetch observes one GitHub API fetch, labeled by logical
// operation (usage, seats, billing).
func (p *Provider) RecordUpstreamFetch(scope, operation string, duration time.Duration, err error) {
	if p == nil || p.upstreamLatency == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.upstreamLatency.WithLabelValues(scope, operation, outcome).Observe(duration.Seconds())
}

func (p *Provider) RecordIngestedRecords(scope string, count int) {
	if p == nil || p.ingestedRecords == nil || count <= 0 {
		return
	}
	p.ingestedRecords.WithLabelValues(scope).Add(float64(count))
}

func (p *Provider) RecordSeatRefresh(scope string, err error) {
	if p == nil || p.seatRefreshCounter == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.seatRefreshCounter.WithLabelValues(scope, outcome).Inc()
}
