// Package metrics exposes Prometheus collectors for the HTTP layer and the
// visit workflow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "visitdesk"

// Registry owns the service collectors. Each Registry uses its own
// prometheus.Registry so tests can create them freely.
type Registry struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	requestsSubmitted *prometheus.CounterVec
	statusChanges     *prometheus.CounterVec
	chatMessages      prometheus.Counter
}

// New registers the collectors together with the Go runtime and process collectors.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		requestsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visit_requests_submitted_total",
			Help:      "Visit requests accepted, by department.",
		}, []string{"department"}),
		statusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_changes_total",
			Help:      "Request status changes applied, by new status.",
		}, []string{"status"}),
		chatMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Chat messages appended.",
		}),
	}
}

// Handler serves the exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveHTTP records one handled request.
func (r *Registry) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	method = methodLabel(method)
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// methodLabel keeps the method label bounded; clients may send any verb.
func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace:
		return method
	}
	return "other"
}

// RequestSubmitted counts an accepted visit request.
func (r *Registry) RequestSubmitted(department string) {
	r.requestsSubmitted.WithLabelValues(department).Inc()
}

// StatusChanged counts an applied status change.
func (r *Registry) StatusChanged(status string) {
	r.statusChanges.WithLabelValues(status).Inc()
}

// MessageSent counts an appended chat message.
func (r *Registry) MessageSent() {
	r.chatMessages.Inc()
}
