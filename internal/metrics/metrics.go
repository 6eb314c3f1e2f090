// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"strconv"
	"time"

	"livsoul/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns every metric the service publishes.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	inFlight     prometheus.Gauge

	predictionsScored *prometheus.CounterVec
	predictionsSaved  prometheus.Counter
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livsoul",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "livsoul",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "livsoul",
			Name:      "http_requests_in_flight",
			Help:      "Number of requests currently being served.",
		}),
		predictionsScored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "livsoul",
			Name:      "predictions_scored_total",
			Help:      "Risk evaluations performed, by resulting tier.",
		}, []string{"risk_level"}),
		predictionsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "livsoul",
			Name:      "predictions_saved_total",
			Help:      "Evaluations persisted for authenticated users.",
		}),
	}

	c.registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.inFlight,
		c.predictionsScored,
		c.predictionsSaved,
	)
	return c
}

// PredictionScored counts one evaluation in the given tier.
func (c *Collector) PredictionScored(level models.RiskLevel) {
	c.predictionsScored.WithLabelValues(string(level)).Inc()
}

// PredictionSaved counts one persisted evaluation.
func (c *Collector) PredictionSaved() {
	c.predictionsSaved.Inc()
}

// Middleware instruments every request. Routes are labelled by their
// registered pattern, not the raw path, to keep cardinality bounded.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		c.inFlight.Inc()

		// Deferred so a panicking handler still releases the gauge
		// and counts the request.
		defer func() {
			c.inFlight.Dec()
			route := ctx.FullPath()
			if route == "" {
				route = "unmatched"
			}
			c.httpRequests.WithLabelValues(
				ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
			c.httpDuration.WithLabelValues(
				ctx.Request.Method, route).Observe(time.Since(start).Seconds())
		}()

		ctx.Next()
	}
}

// Handler serves the scrape endpoint for this collector's registry.
func (c *Collector) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
