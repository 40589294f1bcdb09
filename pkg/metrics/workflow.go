package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Workflow counts membership and contribution transitions plus the
// notifications emitted for them.
type Workflow struct {
	transitions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	amount        *prometheus.CounterVec
}

// NewWorkflow registers the workflow metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewWorkflow(reg prometheus.Registerer) *Workflow {
	if reg == nil {
		return &Workflow{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pargne_workflow_transitions_total",
		Help: "Membership and contribution status transitions.",
	}, []string{"entity", "status"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pargne_notifications_total",
		Help: "Notifications emitted, by outcome.",
	}, []string{"outcome"})
	amount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pargne_contribution_amount_total",
		Help: "Sum of contribution amounts reaching a status, in MAD.",
	}, []string{"status"})
	reg.MustRegister(transitions, notifications, amount)
	return &Workflow{transitions: transitions, notifications: notifications, amount: amount}
}

// Transition records entity moving into status.
func (w *Workflow) Transition(entity, status string) {
	if w == nil || w.transitions == nil {
		return
	}
	w.transitions.WithLabelValues(normalizeLabel(entity), normalizeLabel(status)).Inc()
}

// ContributionAmount adds a contribution amount to the running total for status.
func (w *Workflow) ContributionAmount(status string, amount float64) {
	if w == nil || w.amount == nil || amount <= 0 {
		return
	}
	w.amount.WithLabelValues(normalizeLabel(status)).Add(amount)
}

// Notification records one emitted (or failed) notification.
func (w *Workflow) Notification(ok bool) {
	if w == nil || w.notifications == nil {
		return
	}
	outcome := "sent"
	if !ok {
		outcome = "failed"
	}
	w.notifications.WithLabelValues(outcome).Inc()
}

// HTTP records request latency by route pattern and status class.
type HTTP struct {
	duration *prometheus.HistogramVec
}

// NewHTTP registers the request histogram on reg.
func NewHTTP(reg prometheus.Registerer) *HTTP {
	if reg == nil {
		return &HTTP{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pargne_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration)
	return &HTTP{duration: duration}
}

// Observe records one request.
func (h *HTTP) Observe(method, route string, status int, elapsed time.Duration) {
	if h == nil || h.duration == nil {
		return
	}
	h.duration.WithLabelValues(method, normalizeLabel(route), statusClass(status)).Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
