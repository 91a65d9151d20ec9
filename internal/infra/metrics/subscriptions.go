package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		subscriptionsExpired,
		paymentWindowsExpired,
		renewalRemindersDue,
	)
}

var (
	subscriptionsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Subscriptions whose validity window ended and were marked expired.",
		},
	)

	paymentWindowsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_windows_expired_total",
			Help: "Pending payments failed by the expiry governor after the QR window elapsed.",
		},
	)

	renewalRemindersDue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "renewal_reminders_due",
			Help: "Paid subscriptions ending within the reminder window at last scan.",
		},
	)
)

func IncSubscriptionsExpired(n int) { subscriptionsExpired.Add(float64(n)) }

func IncPaymentWindowsExpired(n int) { paymentWindowsExpired.Add(float64(n)) }

func SetRenewalRemindersDue(n int) { renewalRemindersDue.Set(float64(n)) }
