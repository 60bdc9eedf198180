package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	classificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendradar_classifications_total",
			Help: "Instruments classified, by regime",
		},
		[]string{"regime"},
	)

	failuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendradar_classification_failures_total",
			Help: "Instruments that could not be classified, by reason",
		},
		[]string{"reason"},
	)

	scanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trendradar_scan_duration_seconds",
			Help:    "Duration of batch scans in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	lastOpportunities = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trendradar_last_scan_opportunities",
			Help: "Opportunities found by the most recent scan",
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendradar_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trendradar_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"route", "method"},
	)

	regOnce sync.Once
)

// Register adds all collectors to the default registry. Safe to call repeatedly.
func Register() {
	regOnce.Do(func() {
		prometheus.MustRegister(
			classificationsTotal, failuresTotal, scanDuration, lastOpportunities,
			httpRequestsTotal, httpRequestDuration,
		)
	})
}

// ObserveClassification counts a successful verdict.
func ObserveClassification(regime string) {
	classificationsTotal.WithLabelValues(regime).Inc()
}

// ObserveFailure counts an instrument that could not be classified.
func ObserveFailure(reason string) {
	failuresTotal.WithLabelValues(reason).Inc()
}

// ObserveScan records a finished batch scan.
func ObserveScan(d time.Duration, opportunities int) {
	scanDuration.Observe(d.Seconds())
	lastOpportunities.Set(float64(opportunities))
}

// EchoMiddleware records request counts and latency using the route template
// as label to keep cardinality low.
func EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)

			httpRequestsTotal.WithLabelValues(route, method, status).Inc()
			httpRequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
