package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "dormitory_"

	resultSuccess = "success"
	resultError   = "error"

	contractResultGenerated       = "generated"
	contractResultSkippedNoRead   = "skipped_no_reading"
	contractResultSkippedExisting = "skipped_existing"
	contractResultFailed          = "failed"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec

	billingRunTotal    *prometheus.CounterVec
	billingRunLatency  *prometheus.HistogramVec
	billingContracts   *prometheus.CounterVec
	meterAnomalies     prometheus.Counter
	invoiceStatusTotal *prometheus.CounterVec
	invoiceExportTotal *prometheus.CounterVec

	loginTotal       *prometheus.CounterVec
	maintenanceTotal *prometheus.CounterVec
)

// Init registers observability metrics.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method and status class",
			},
			[]string{"method", "class"},
		)

		billingRunTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "billing_run_total",
				Help: "Total monthly billing runs by result",
			},
			[]string{"result"},
		)
		billingRunLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "billing_run_latency_seconds",
				Help:    "Monthly billing run latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		billingContracts = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "billing_contracts_total",
				Help: "Per-contract billing outcomes by result",
			},
			[]string{"result"},
		)
		meterAnomalies = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "billing_meter_anomalies_total",
				Help: "Total negative meter deltas clamped to zero",
			},
		)
		invoiceStatusTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_status_transitions_total",
				Help: "Total invoice status transitions by target status",
			},
			[]string{"status"},
		)
		invoiceExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoice_export_total",
				Help: "Total invoice exports by format and result",
			},
			[]string{"format", "result"},
		)

		loginTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "login_total",
				Help: "Total login attempts by result",
			},
			[]string{"result"},
		)
		maintenanceTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "maintenance_transitions_total",
				Help: "Total maintenance ticket transitions by target status",
			},
			[]string{"status"},
		)

		prometheus.MustRegister(
			httpRequests,
			billingRunTotal,
			billingRunLatency,
			billingContracts,
			meterAnomalies,
			invoiceStatusTotal,
			invoiceExportTotal,
			loginTotal,
			maintenanceTotal,
		)
	})
}

// IncHTTPRequest counts an HTTP request by method and status class.
func IncHTTPRequest(method, class string) {
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, class).Inc()
	}
}

// ObserveBillingRun records billing run latency and result.
func ObserveBillingRun(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if billingRunTotal != nil {
		billingRunTotal.WithLabelValues(result).Inc()
	}
	if billingRunLatency != nil {
		billingRunLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncBillingContract counts a per-contract billing outcome.
func IncBillingContract(result string) {
	if result == "" {
		result = "unknown"
	}
	if billingContracts != nil {
		billingContracts.WithLabelValues(result).Inc()
	}
}

// IncMeterAnomaly counts a clamped negative meter delta.
func IncMeterAnomaly() {
	if meterAnomalies != nil {
		meterAnomalies.Inc()
	}
}

// IncInvoiceStatus counts an invoice status transition.
func IncInvoiceStatus(status string) {
	if status == "" {
		status = "unknown"
	}
	if invoiceStatusTotal != nil {
		invoiceStatusTotal.WithLabelValues(status).Inc()
	}
}

// IncInvoiceExport counts an invoice export.
func IncInvoiceExport(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if invoiceExportTotal != nil {
		invoiceExportTotal.WithLabelValues(format, result).Inc()
	}
}

// IncLogin counts a login attempt.
func IncLogin(result string) {
	if result == "" {
		result = resultSuccess
	}
	if loginTotal != nil {
		loginTotal.WithLabelValues(result).Inc()
	}
}

// IncMaintenanceTransition counts a ticket transition.
func IncMaintenanceTransition(status string) {
	if status == "" {
		status = "unknown"
	}
	if maintenanceTotal != nil {
		maintenanceTotal.WithLabelValues(status).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	ContractResultGenerated       = contractResultGenerated
	ContractResultSkippedNoRead   = contractResultSkippedNoRead
	ContractResultSkippedExisting = contractResultSkippedExisting
	ContractResultFailed          = contractResultFailed
)
