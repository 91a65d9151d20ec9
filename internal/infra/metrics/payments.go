package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		qrAttemptsTotal,
		webhookRequestsTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Terminal payment transitions by status (paid/failed).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "The total monetary value of confirmed payments, labeled by currency.",
		},
		[]string{"currency"},
	)

	qrAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qr_attempts_total",
			Help: "QR payment attempts created (retries included).",
		},
	)

	webhookRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Provider webhook deliveries by outcome (success/replay/invalid_signature/not_found/error).",
		},
		[]string{"outcome"},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(currency string, amount int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}

func IncQRAttempt() { qrAttemptsTotal.Inc() }

func IncWebhook(outcome string) {
	webhookRequestsTotal.WithLabelValues(norm(outcome)).Inc()
}
