// Package telemetry exposes service counters and histograms for Prometheus.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cogscreen/internal/attention"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cogscreen"

type Metrics struct {
	registry *prometheus.Registry

	sessions  *prometheus.CounterVec
	trials    *prometheus.CounterVec
	reaction  prometheus.Histogram
	indicator *prometheus.HistogramVec
	analyses  *prometheus.CounterVec
	requests  *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "test_sessions_total",
			Help:      "Test sessions by test and how they ended.",
		}, []string{"test", "outcome"}),
		trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attention_trials_total",
			Help:      "Resolved attention trials by outcome.",
		}, []string{"outcome"}),
		reaction: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attention_reaction_seconds",
			Help:      "Reaction time of attention hits.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 15),
		}),
		indicator: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "indicator",
			Help:      "Combined indicator value at test completion.",
			Buckets:   prometheus.LinearBuckets(10, 10, 9),
		}, []string{"test"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Simulated sample analyses by kind and status.",
		}, []string{"kind", "status"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sessions,
		m.trials,
		m.reaction,
		m.indicator,
		m.analyses,
		m.requests,
	)
	return m
}

// Gauge registers a gauge whose value is read from fn at scrape time.
func (m *Metrics) Gauge(name, help string, fn func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// Observer counts attention trials and sessions.
func (m *Metrics) Observer() attention.Observer {
	return func(e attention.Event) {
		switch e.Type {
		case attention.EventTargetHit:
			m.trials.WithLabelValues("hit").Inc()
			if e.Trial != nil {
				m.reaction.Observe(float64(e.Trial.ReactionTimeMs) / 1000)
			}
		case attention.EventTargetMissed:
			m.trials.WithLabelValues("miss").Inc()
		case attention.EventSessionCompleted:
			m.sessions.WithLabelValues("attention", "completed").Inc()
			if e.Result != nil {
				m.indicator.WithLabelValues("attention").Observe(e.Result.Indicator)
			}
		case attention.EventSessionStopped:
			m.sessions.WithLabelValues("attention", "stopped").Inc()
		}
	}
}

// Completed records a finished memory or problem-solving test.
func (m *Metrics) Completed(test string, indicator float64) {
	m.sessions.WithLabelValues(test, "completed").Inc()
	m.indicator.WithLabelValues(test).Observe(indicator)
}

func (m *Metrics) Analysis(kind string, err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = "cancelled"
	default:
		status = "error"
	}
	m.analyses.WithLabelValues(kind, status).Inc()
}

// Middleware observes request latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
