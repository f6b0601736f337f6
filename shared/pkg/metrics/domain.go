package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OrdersPlacedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_placed_total", Help: "Order placement attempts by result"},
		[]string{"result"},
	)
	TwoFAVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "twofa_verifications_total", Help: "Second-factor code checks by result"},
		[]string{"result"},
	)
	TwoFAEnrollmentsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twofa_enrollments_total",
		Help: "Second-factor secrets issued",
	})
)

func init() {
	prometheus.MustRegister(OrdersPlacedTotal, TwoFAVerificationsTotal, TwoFAEnrollmentsTotal)
}
