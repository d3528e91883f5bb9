package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	StatusReadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_status_read_errors_total",
			Help: "Failed reads of reflector status sources",
		},
		[]string{"source"}, // "xml", "flags", "log"
	)

	GatewaysLinked = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dashboard_gateways_linked",
			Help: "Gateways found in the most recent scan of each auxiliary log",
		},
		[]string{"protocol"},
	)

	PortalEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_portal_events_total",
			Help: "Account portal outcomes",
		},
		[]string{"action", "result"},
	)
)

// RecordAPIRequest records one finished HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
