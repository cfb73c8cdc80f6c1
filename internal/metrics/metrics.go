package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds the collector's instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	RecordsWritten prometheus.Counter
	ParseFailures  prometheus.Counter
	DecodeFailures prometheus.Counter
	SinkFailures   prometheus.Counter
	Reconnects     prometheus.Counter
	Connected      prometheus.Gauge
}

// New builds and registers the collector metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		RecordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collector_records_written_total",
			Help: "Records durably appended to the sink.",
		}),
		ParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collector_parse_failures_total",
			Help: "Frames dropped because they did not parse.",
		}),
		DecodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collector_decode_failures_total",
			Help: "Data lines dropped because the payload was not valid base64.",
		}),
		SinkFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collector_sink_failures_total",
			Help: "Records dropped because the sink write failed.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collector_reconnects_total",
			Help: "Sessions ended by a transport or protocol failure.",
		}),
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "collector_connected",
			Help: "1 while a subscription is streaming, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		m.RecordsWritten,
		m.ParseFailures,
		m.DecodeFailures,
		m.SinkFailures,
		m.Reconnects,
		m.Connected,
	)

	return m
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("metrics server stopped", zap.Error(err))
	}
}
