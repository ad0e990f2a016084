package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they need.
// It satisfies usecase.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	committees     prometheus.Counter
	paymentToggles *prometheus.CounterVec
	draws          *prometheus.CounterVec
	reminders      *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "komiti"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		committees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "committees_created_total",
			Help:      "Committees created.",
		}),
		paymentToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_toggles_total",
			Help:      "Payment toggles by resulting state.",
		}, []string{"state"}),
		draws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draws_recorded_total",
			Help:      "Draws recorded, labelled by whether the committee completed.",
		}, []string{"completed"}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_generated_total",
			Help:      "Reminder texts by source.",
		}, []string{"source"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.committees,
		m.paymentToggles,
		m.draws,
		m.reminders,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Metrics) CommitteeCreated() {
	m.committees.Inc()
}

func (m *Metrics) PaymentToggled(paid bool) {
	state := "unpaid"
	if paid {
		state = "paid"
	}
	m.paymentToggles.WithLabelValues(state).Inc()
}

func (m *Metrics) DrawRecorded(completed bool) {
	m.draws.WithLabelValues(strconv.FormatBool(completed)).Inc()
}

func (m *Metrics) ReminderGenerated(fallback bool) {
	source := "generated"
	if fallback {
		source = "template"
	}
	m.reminders.WithLabelValues(source).Inc()
}
