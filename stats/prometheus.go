package stats

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/portseal/portseal/events"
	"github.com/portseal/portseal/fwdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const prometheusReadHeaderTimeout = 10 * time.Second

type prometheusProcessor struct {
	streams map[string]*streamInfo
	factory *PrometheusFactory
}

func (p prometheusProcessor) EventStart(evt fwdlib.EventStart) {
	info := acquireStreamInfo(evt.Rule, evt.RemoteIP)
	p.streams[evt.StreamID()] = info

	p.factory.metricClientConnections.
		WithLabelValues(info.tags[TagRule], info.tags[TagIPFamily]).
		Inc()
}

func (p prometheusProcessor) EventConnectedToRemote(evt fwdlib.EventConnectedToRemote) {
	info, ok := p.streams[evt.StreamID()]
	if !ok {
		return
	}

	info.isConnected = true

	p.factory.metricRemoteConnections.
		WithLabelValues(info.tags[TagRule]).
		Inc()
}

func (p prometheusProcessor) EventTraffic(evt fwdlib.EventTraffic) {
	info, ok := p.streams[evt.StreamID()]
	if !ok {
		return
	}

	if info.markTraffic(evt.IsRead, evt.Traffic) {
		p.factory.metricTTFB.
			WithLabelValues(info.tags[TagRule]).
			Observe(info.firstByteTime.Sub(info.startTime).Seconds())
	}

	p.factory.metricTraffic.
		WithLabelValues(info.tags[TagRule], getDirection(evt.IsRead)).
		Add(float64(evt.Traffic))
}

func (p prometheusProcessor) EventFinish(evt fwdlib.EventFinish) {
	info, ok := p.streams[evt.StreamID()]
	if !ok {
		return
	}

	defer func() {
		delete(p.streams, evt.StreamID())
		releaseStreamInfo(info)
	}()

	p.factory.metricSessionDuration.
		WithLabelValues(info.tags[TagRule]).
		Observe(time.Since(info.startTime).Seconds())

	p.factory.metricClientConnections.
		WithLabelValues(info.tags[TagRule], info.tags[TagIPFamily]).
		Dec()

	if info.isConnected {
		p.factory.metricRemoteConnections.
			WithLabelValues(info.tags[TagRule]).
			Dec()
	}
}

func (p prometheusProcessor) EventDialFailed(evt fwdlib.EventDialFailed) {
	p.factory.metricDialFailures.WithLabelValues(evt.Rule).Inc()
}

func (p prometheusProcessor) EventFrameError(evt fwdlib.EventFrameError) {
	p.factory.metricFrameErrors.WithLabelValues(evt.Rule).Inc()
}

func (p prometheusProcessor) EventConcurrencyLimited(evt fwdlib.EventConcurrencyLimited) {
	p.factory.metricConcurrencyLimited.WithLabelValues(evt.Rule).Inc()
}

func (p prometheusProcessor) EventIPRejected(evt fwdlib.EventIPRejected) {
	p.factory.metricIPRejected.WithLabelValues(evt.Rule).Inc()
}

func (p prometheusProcessor) EventRateLimited(evt fwdlib.EventRateLimited) {
	p.factory.metricRateLimited.WithLabelValues(evt.Rule).Inc()
}

func (p prometheusProcessor) EventListenerStarted(evt fwdlib.EventListenerStarted) {
	p.factory.metricListeners.WithLabelValues(evt.Rule).Set(1)
}

func (p prometheusProcessor) EventListenerStopped(evt fwdlib.EventListenerStopped) {
	p.factory.metricListeners.WithLabelValues(evt.Rule).Set(0)

	if evt.Failed {
		p.factory.metricListenerFailures.WithLabelValues(evt.Rule).Inc()
	}
}

func (p prometheusProcessor) Shutdown() {
	for k, v := range p.streams {
		releaseStreamInfo(v)
		delete(p.streams, k)
	}
}

// PrometheusFactory is a factory of [events.Observer] which collect
// information in a format suitable for Prometheus.
//
// This factory can also serve on a given listener. In that case it starts HTTP
// server with a single endpoint - a Prometheus-compatible scrape output.
type PrometheusFactory struct {
	httpServer *http.Server

	metricClientConnections *prometheus.GaugeVec
	metricRemoteConnections *prometheus.GaugeVec
	metricListeners         *prometheus.GaugeVec

	metricTraffic            *prometheus.CounterVec
	metricDialFailures       *prometheus.CounterVec
	metricFrameErrors        *prometheus.CounterVec
	metricConcurrencyLimited *prometheus.CounterVec
	metricIPRejected         *prometheus.CounterVec
	metricRateLimited        *prometheus.CounterVec
	metricListenerFailures   *prometheus.CounterVec

	metricSessionDuration *prometheus.HistogramVec // для расчёта throughput вместе с traffic
	metricTTFB            *prometheus.HistogramVec

	metricBuildInfo *prometheus.GaugeVec
}

// Make builds a new observer.
func (p *PrometheusFactory) Make() events.Observer {
	return prometheusProcessor{
		streams: make(map[string]*streamInfo),
		factory: p,
	}
}

// Serve starts an HTTP server on a given listener.
func (p *PrometheusFactory) Serve(listener net.Listener) error {
	return p.httpServer.Serve(listener) //nolint: wrapcheck
}

// Close stops a factory. Please pay attention that underlying listener
// is not closed.
func (p *PrometheusFactory) Close() error {
	return p.httpServer.Shutdown(context.Background()) //nolint: wrapcheck
}

// NewPrometheus builds an events.ObserverFactory which can serve HTTP
// endpoint with Prometheus scrape data.
func NewPrometheus(metricPrefix, httpPath, version string) *PrometheusFactory { //nolint: funlen
	registry := prometheus.NewPedanticRegistry()
	httpHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	mux := http.NewServeMux()

	mux.Handle(httpPath, httpHandler)

	factory := &PrometheusFactory{
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: prometheusReadHeaderTimeout,
		},

		metricClientConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricPrefix,
			Name:      MetricClientConnections,
			Help:      "A number of actively processing client connections.",
		}, []string{TagRule, TagIPFamily}),
		metricRemoteConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricPrefix,
			Name:      MetricRemoteConnections,
			Help:      "A number of established connections to remote addresses.",
		}, []string{TagRule}),
		metricListeners: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricPrefix,
			Name:      MetricListeners,
			Help:      "1 if listener of the rule is serving, 0 otherwise.",
		}, []string{TagRule}),

		metricTraffic: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricTraffic,
			Help:      "Traffic which is relayed between clients and remote addresses.",
		}, []string{TagRule, TagDirection}),
		metricDialFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricDialFailures,
			Help:      "A number of failed attempts to connect to remote address.",
		}, []string{TagRule}),
		metricFrameErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricFrameErrors,
			Help:      "A number of sessions aborted because of malformed or tampered frames.",
		}, []string{TagRule}),
		metricConcurrencyLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricConcurrencyLimited,
			Help:      "A number of sessions that were rejected by concurrency limiter.",
		}, []string{TagRule}),
		metricIPRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricIPRejected,
			Help:      "A number of sessions from IP addresses out of allowed networks.",
		}, []string{TagRule}),
		metricRateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricRateLimited,
			Help:      "A number of sessions rejected by per-IP rate limiter.",
		}, []string{TagRule}),
		metricListenerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      MetricListenerFailures,
			Help:      "A number of rule listeners stopped with error.",
		}, []string{TagRule}),

		metricSessionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricPrefix,
			Name:      MetricSessionDuration + "_seconds",
			Help:      "Duration of relayed sessions in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{TagRule}),
		metricTTFB: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricPrefix,
			Name:      MetricTTFB + "_seconds",
			Help:      "Time from accepted connection to the first byte from remote address.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{TagRule}),

		metricBuildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricPrefix,
			Name:      "build_info",
			Help:      "Build information about portseal.",
		}, []string{"version"}),
	}

	registry.MustRegister(factory.metricClientConnections)
	registry.MustRegister(factory.metricRemoteConnections)
	registry.MustRegister(factory.metricListeners)

	registry.MustRegister(factory.metricTraffic)
	registry.MustRegister(factory.metricDialFailures)
	registry.MustRegister(factory.metricFrameErrors)
	registry.MustRegister(factory.metricConcurrencyLimited)
	registry.MustRegister(factory.metricIPRejected)
	registry.MustRegister(factory.metricRateLimited)
	registry.MustRegister(factory.metricListenerFailures)

	registry.MustRegister(factory.metricSessionDuration)
	registry.MustRegister(factory.metricTTFB)

	registry.MustRegister(factory.metricBuildInfo)
	factory.metricBuildInfo.WithLabelValues(version).Set(1)

	return factory
}
