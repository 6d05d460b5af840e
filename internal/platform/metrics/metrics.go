package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersRegistered  prometheus.Counter
	RequestsSent     prometheus.Counter
	RequestsAccepted prometheus.Counter
	RequestsRejected prometheus.Counter
	PostsCreated     prometheus.Counter
	MessagesSent     prometheus.Counter
	RequestLatency   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campusconnect_users_registered_total",
			Help: "Total number of users registered",
		}),
		RequestsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campusconnect_connection_requests_sent_total",
			Help: "Total number of connection requests sent",
		}),
		RequestsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campusconnect_connection_requests_accepted_total",
			Help: "Total number of connection requests accepted",
		}),
		RequestsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campusconnect_connection_requests_rejected_total",
			Help: "Total number of connection requests rejected",
		}),
		PostsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campusconnect_posts_created_total",
			Help: "Total number of feed posts created",
		}),
		MessagesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campusconnect_messages_sent_total",
			Help: "Total number of direct messages sent",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campusconnect_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

func (m *Metrics) IncrementUsersRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

func (m *Metrics) IncrementRequestsSent() {
	if m != nil {
		m.RequestsSent.Inc()
	}
}

func (m *Metrics) IncrementRequestsAccepted() {
	if m != nil {
		m.RequestsAccepted.Inc()
	}
}

func (m *Metrics) IncrementRequestsRejected() {
	if m != nil {
		m.RequestsRejected.Inc()
	}
}

func (m *Metrics) IncrementPostsCreated() {
	if m != nil {
		m.PostsCreated.Inc()
	}
}

func (m *Metrics) IncrementMessagesSent() {
	if m != nil {
		m.MessagesSent.Inc()
	}
}

// ObserveLatency records a request duration for the given route pattern.
func (m *Metrics) ObserveLatency(route, method string, seconds float64) {
	if m != nil {
		m.RequestLatency.WithLabelValues(route, method).Observe(seconds)
	}
}
