package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the booking, notification and admin flows.
type BookingMetrics struct {
	submissionsTotal   *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	adminActionsTotal  *prometheus.CounterVec
	submitLatency      *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connectient",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking form steps by outcome",
		}, []string{"outcome"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connectient",
			Subsystem: "booking",
			Name:      "validation_failures_total",
			Help:      "Rejected booking form fields",
		}, []string{"field"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connectient",
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Notification emails by template and status",
		}, []string{"template", "status"}),
		adminActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connectient",
			Subsystem: "admin",
			Name:      "actions_total",
			Help:      "Admin portal actions by status",
		}, []string{"action", "status"}),
		submitLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "connectient",
			Subsystem: "booking",
			Name:      "confirm_latency_seconds",
			Help:      "Latency of confirmed booking submissions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.validationFailures, m.notificationsTotal, m.adminActionsTotal, m.submitLatency)
	return m
}

func (m *BookingMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveValidationFailure counts each rejected field once.
func (m *BookingMetrics) ObserveValidationFailure(fields map[string]string) {
	if m == nil {
		return
	}
	for field := range fields {
		m.validationFailures.WithLabelValues(field).Inc()
	}
}

func (m *BookingMetrics) ObserveNotification(template, status string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(template, status).Inc()
}

func (m *BookingMetrics) ObserveAdminAction(action, status string) {
	if m == nil {
		return
	}
	m.adminActionsTotal.WithLabelValues(action, status).Inc()
}

func (m *BookingMetrics) ObserveConfirmLatency(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.submitLatency.WithLabelValues(outcome).Observe(seconds)
}
