package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"dormitory-cloud/internal/audit"
	"dormitory-cloud/internal/auth"
	"dormitory-cloud/internal/billing/application"
	billing "dormitory-cloud/internal/billing/domain"
	"dormitory-cloud/internal/billing/interfaces"
	"dormitory-cloud/internal/observability/metrics"
)

// InvoiceHandler handles invoice queries, status transitions and the
// per-invoice PDF export.
type InvoiceHandler struct {
	service     *application.InvoiceService
	auditLogger audit.Logger
}

// NewInvoiceHandler constructs a handler.
func NewInvoiceHandler(service *application.InvoiceService, auditLogger audit.Logger) (*InvoiceHandler, error) {
	if service == nil {
		return nil, errors.New("invoice handler: nil service")
	}
	return &InvoiceHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes invoice requests.
func (h *InvoiceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/invoices" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case strings.HasSuffix(path, "/status") && r.Method == http.MethodPost:
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/api/v1/invoices/"), "/status")
		h.handleStatus(w, r, id)
	case strings.HasSuffix(path, "/export.pdf") && r.Method == http.MethodGet:
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/api/v1/invoices/"), "/export.pdf")
		h.handleExportPDF(w, r, id)
	case strings.HasPrefix(path, "/api/v1/invoices/") && r.Method == http.MethodGet:
		id := strings.TrimPrefix(path, "/api/v1/invoices/")
		h.handleGet(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type invoiceResponse struct {
	ID              string  `json:"id"`
	ContractID      string  `json:"contract_id"`
	RoomID          string  `json:"room_id"`
	BillingPeriod   string  `json:"billing_period"`
	RentCost        float64 `json:"rent_cost"`
	ElectricityCost float64 `json:"electricity_cost"`
	WaterCost       float64 `json:"water_cost"`
	RepairCost      float64 `json:"repair_cost"`
	DepositCost     float64 `json:"deposit_cost"`
	Total           float64 `json:"total"`
	Type            string  `json:"type"`
	Status          string  `json:"status"`
	BillDate        string  `json:"bill_date"`
	DueDate         string  `json:"due_date"`
}

func toInvoiceResponse(invoice *billing.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:              invoice.ID,
		ContractID:      invoice.ContractID,
		RoomID:          invoice.RoomID,
		BillingPeriod:   invoice.BillingPeriod.Format("2006-01"),
		RentCost:        invoice.RentCost,
		ElectricityCost: invoice.ElectricityCost,
		WaterCost:       invoice.WaterCost,
		RepairCost:      invoice.RepairCost,
		DepositCost:     invoice.DepositCost,
		Total:           invoice.Total,
		Type:            invoice.Type,
		Status:          string(invoice.Status),
		BillDate:        invoice.BillDate.Format(time.RFC3339),
		DueDate:         invoice.DueDate.Format(time.RFC3339),
	}
}

func (h *InvoiceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	role := auth.RoleFromContext(r.Context())

	var invoices []billing.Invoice
	var err error
	switch {
	case r.URL.Query().Get("contract_id") != "":
		invoices, err = h.service.ListByContract(r.Context(), r.URL.Query().Get("contract_id"))
	case r.URL.Query().Get("period") != "" && auth.RoleAtLeast(role, auth.RoleManager):
		var period time.Time
		period, err = parsePeriod(r.URL.Query().Get("period"))
		if err != nil {
			http.Error(w, "period must be YYYY-MM", http.StatusBadRequest)
			return
		}
		invoices, err = h.service.ListByPeriod(r.Context(), period)
	default:
		http.Error(w, "contract_id is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "list invoices error", http.StatusInternalServerError)
		return
	}

	// Tenants only ever see their own invoices.
	if role == auth.RoleTenant {
		userID := auth.UserIDFromContext(r.Context())
		filtered := invoices[:0]
		for _, invoice := range invoices {
			if invoice.UserID == userID {
				filtered = append(filtered, invoice)
			}
		}
		invoices = filtered
	}

	result := make([]invoiceResponse, 0, len(invoices))
	for i := range invoices {
		result = append(result, toInvoiceResponse(&invoices[i]))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (h *InvoiceHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	invoice, ok := h.loadVisible(w, r, id)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toInvoiceResponse(invoice))
}

func (h *InvoiceHandler) handleStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	target := billing.InvoiceStatus(strings.ToLower(strings.TrimSpace(req.Status)))

	role := auth.RoleFromContext(r.Context())
	switch target {
	case billing.InvoiceStatusPending:
		// A tenant may submit payment only on their own invoice.
		if role == auth.RoleTenant {
			invoice, err := h.service.Get(r.Context(), id)
			if err != nil {
				http.Error(w, "get invoice error", http.StatusInternalServerError)
				return
			}
			if invoice == nil {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if invoice.UserID != auth.UserIDFromContext(r.Context()) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}
	case billing.InvoiceStatusPaid:
		if !auth.RoleAtLeast(role, auth.RoleManager) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	default:
		http.Error(w, "unsupported status", http.StatusBadRequest)
		return
	}

	invoice, err := h.service.Transition(r.Context(), id, target)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvoiceNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, billing.ErrInvalidTransition):
			http.Error(w, "invalid status transition", http.StatusConflict)
		default:
			http.Error(w, "update invoice error", http.StatusInternalServerError)
		}
		return
	}

	if h.auditLogger != nil {
		_ = h.auditLogger.Log(r.Context(), audit.Entry{
			Actor:        auth.UserIDFromContext(r.Context()),
			Role:         string(role),
			Action:       "invoice.status." + string(target),
			ResourceType: "invoice",
			ResourceID:   id,
			IP:           r.RemoteAddr,
			UserAgent:    r.UserAgent(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toInvoiceResponse(invoice))
}

func (h *InvoiceHandler) handleExportPDF(w http.ResponseWriter, r *http.Request, id string) {
	invoice, ok := h.loadVisible(w, r, id)
	if !ok {
		return
	}
	data, err := interfaces.BuildInvoicePDF(invoice)
	if err != nil {
		metrics.IncInvoiceExport("pdf", metrics.ResultError)
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	metrics.IncInvoiceExport("pdf", metrics.ResultSuccess)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="invoice-`+id+`.pdf"`)
	_, _ = w.Write(data)
}

func (h *InvoiceHandler) loadVisible(w http.ResponseWriter, r *http.Request, id string) (*billing.Invoice, bool) {
	invoice, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "get invoice error", http.StatusInternalServerError)
		return nil, false
	}
	if invoice == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil, false
	}
	role := auth.RoleFromContext(r.Context())
	if role == auth.RoleTenant && invoice.UserID != auth.UserIDFromContext(r.Context()) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return nil, false
	}
	return invoice, true
}

func parsePeriod(value string) (time.Time, error) {
	return time.Parse("2006-01", value)
}
