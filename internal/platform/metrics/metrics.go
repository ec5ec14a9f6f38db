package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "backoffice"

// Collector owns a private registry so tests and multiple servers in one
// process do not collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	planillaTransition *prometheus.CounterVec
	generationDuration prometheus.Histogram
	generatedDetails   prometheus.Counter
	jobQueueRejected   prometheus.Counter
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route pattern and status code.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		planillaTransition: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "planilla_transitions_total",
				Help:      "Planilla lifecycle transitions by target status.",
			},
			[]string{"status"},
		),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "planilla_generation_duration_seconds",
			Help:      "Time spent generating planilla details.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		generatedDetails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "planilla_details_generated_total",
			Help:      "Per-employee planilla details written by generation.",
		}),
		jobQueueRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_queue_rejected_total",
			Help:      "Background jobs dropped because the queue was full.",
		}),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests,
		c.httpDuration,
		c.planillaTransition,
		c.generationDuration,
		c.generatedDetails,
		c.jobQueueRejected,
	)
	return c
}

func (c *Collector) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) PlanillaTransition(status string) {
	if c == nil {
		return
	}
	c.planillaTransition.WithLabelValues(status).Inc()
}

func (c *Collector) PlanillaGenerated(duration time.Duration, details int) {
	if c == nil {
		return
	}
	c.generationDuration.Observe(duration.Seconds())
	c.generatedDetails.Add(float64(details))
}

func (c *Collector) JobRejected() {
	if c == nil {
		return
	}
	c.jobQueueRejected.Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
