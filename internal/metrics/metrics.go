package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// HTTP
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// Premium purchases
	PremiumPurchasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premium_purchases_total",
			Help: "Premium purchase attempts by outcome",
		},
		[]string{"result"},
	)
	PremiumCommissionUnits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "premium_commission_units_total",
			Help: "Currency units credited to teachers as purchase commission",
		},
	)

	// Student ledger
	LedgerDebitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_debits_total",
			Help: "Student balance debit attempts by outcome",
		},
		[]string{"result"},
	)

	// Catalog counters
	ContentCounterUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_counter_updates_total",
			Help: "Atomic counter updates on catalog items",
		},
		[]string{"resource", "field"},
	)
)

// Purchase and debit outcomes.
const (
	ResultSuccess      = "success"
	ResultInsufficient = "insufficient_balance"
	ResultRolledBack   = "rolled_back"
	ResultNotFound     = "not_found"
	ResultError        = "error"
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsInFlight)

	prometheus.MustRegister(PremiumPurchasesTotal)
	prometheus.MustRegister(PremiumCommissionUnits)
	prometheus.MustRegister(LedgerDebitsTotal)
	prometheus.MustRegister(ContentCounterUpdates)

	prometheus.MustRegister(collectors.NewGoCollector())
	prometheus.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}
