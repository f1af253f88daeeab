package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookit_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookit_bookings_total",
			Help: "Total number of booking operations",
		},
		[]string{"operation", "outcome"},
	)

	BookingConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookit_booking_conflicts_total",
			Help: "Booking attempts rejected because the slot was already taken",
		},
	)

	FollowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookit_follows_total",
			Help: "Total number of follow graph mutations",
		},
		[]string{"operation"},
	)

	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookit_notifications_sent_total",
			Help: "Total number of notification emails sent",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookit_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(operation, outcome string) {
	BookingsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordBookingConflict() {
	BookingConflictsTotal.Inc()
}

func RecordFollow(operation string) {
	FollowsTotal.WithLabelValues(operation).Inc()
}

func RecordNotification(notificationType, status string) {
	NotificationsSentTotal.WithLabelValues(notificationType, status).Inc()
}
