package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sdir_http_requests_total", Help: "HTTP requests by route, method and status"},
		[]string{"route", "method", "code"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "sdir_http_request_duration_seconds", Help: "HTTP request latency", Buckets: prometheus.DefBuckets},
		[]string{"route"},
	)
	SessionsJoined = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sdir_sessions_joined_total", Help: "Successful session writes from joins"},
	)
	JoinConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sdir_join_conflicts_total", Help: "Conditional writes that lost a race"},
	)
	JoinExhausted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sdir_join_exhausted_total", Help: "Joins that ran out of attempts"},
	)
	WSWatchers = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "sdir_ws_watchers", Help: "Open WebSocket session watchers"},
	)
	WSError = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sdir_ws_errors_total", Help: "WebSocket watcher errors"},
	)
)

var initOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(Requests, RequestDuration)
		prometheus.MustRegister(SessionsJoined, JoinConflicts, JoinExhausted)
		prometheus.MustRegister(WSWatchers, WSError)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
