package http

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"dormitory-cloud/internal/billing/application"
	"dormitory-cloud/internal/billing/interfaces"
	"dormitory-cloud/internal/observability/metrics"
)

// ExportHandler serves bulk invoice exports. The period query selects
// the billing month (YYYY-MM); it defaults to the current month.
type ExportHandler struct {
	service *application.InvoiceService
	clock   application.Clock
}

// NewExportHandler constructs a handler.
func NewExportHandler(service *application.InvoiceService, clock application.Clock) (*ExportHandler, error) {
	if service == nil {
		return nil, errors.New("export handler: nil service")
	}
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &ExportHandler{service: service, clock: clock}, nil
}

// ServeHTTP routes export requests.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/exports/invoices.csv":
		h.handleCSV(w, r)
	case "/api/v1/reports/billing.xlsx":
		h.handleXLSX(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ExportHandler) period(r *http.Request) (time.Time, error) {
	value := r.URL.Query().Get("period")
	if value == "" {
		return h.clock.Now(), nil
	}
	return time.Parse("2006-01", value)
}

func (h *ExportHandler) handleCSV(w http.ResponseWriter, r *http.Request) {
	period, err := h.period(r)
	if err != nil {
		http.Error(w, "period must be YYYY-MM", http.StatusBadRequest)
		return
	}
	invoices, err := h.service.ListByPeriod(r.Context(), period)
	if err != nil {
		metrics.IncInvoiceExport("csv", metrics.ResultError)
		http.Error(w, "list invoices error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices-`+period.Format("2006-01")+`.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{
		"invoice_id",
		"contract_id",
		"room_id",
		"billing_period",
		"rent_cost",
		"electricity_cost",
		"water_cost",
		"repair_cost",
		"deposit_cost",
		"total_cost",
		"status",
		"bill_date",
		"due_date",
	})
	for _, invoice := range invoices {
		_ = writer.Write([]string{
			invoice.ID,
			invoice.ContractID,
			invoice.RoomID,
			invoice.BillingPeriod.Format("2006-01"),
			formatMoney(invoice.RentCost),
			formatMoney(invoice.ElectricityCost),
			formatMoney(invoice.WaterCost),
			formatMoney(invoice.RepairCost),
			formatMoney(invoice.DepositCost),
			formatMoney(invoice.Total),
			string(invoice.Status),
			invoice.BillDate.Format(time.RFC3339),
			invoice.DueDate.Format(time.RFC3339),
		})
	}
	writer.Flush()
	metrics.IncInvoiceExport("csv", metrics.ResultSuccess)
}

func (h *ExportHandler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	period, err := h.period(r)
	if err != nil {
		http.Error(w, "period must be YYYY-MM", http.StatusBadRequest)
		return
	}
	invoices, err := h.service.ListByPeriod(r.Context(), period)
	if err != nil {
		metrics.IncInvoiceExport("xlsx", metrics.ResultError)
		http.Error(w, "list invoices error", http.StatusInternalServerError)
		return
	}

	data, err := interfaces.BuildBillingXLSX(period, invoices)
	if err != nil {
		metrics.IncInvoiceExport("xlsx", metrics.ResultError)
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	metrics.IncInvoiceExport("xlsx", metrics.ResultSuccess)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="billing-`+period.Format("2006-01")+`.xlsx"`)
	_, _ = w.Write(data)
}

func formatMoney(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
