package application

import (
	"context"
	"errors"
	"time"

	billing "dormitory-cloud/internal/billing/domain"
	"dormitory-cloud/internal/observability/metrics"
)

// InvoiceService answers invoice queries and applies status
// transitions.
type InvoiceService struct {
	invoices billing.InvoiceRepository
}

// NewInvoiceService constructs a service.
func NewInvoiceService(invoices billing.InvoiceRepository) (*InvoiceService, error) {
	if invoices == nil {
		return nil, errors.New("invoice service: nil repository")
	}
	return &InvoiceService{invoices: invoices}, nil
}

// Get loads an invoice by id, nil when absent.
func (s *InvoiceService) Get(ctx context.Context, id string) (*billing.Invoice, error) {
	if id == "" {
		return nil, billing.ErrEmptyInvoiceID
	}
	return s.invoices.Get(ctx, id)
}

// ListByContract returns a contract's invoices, newest first.
func (s *InvoiceService) ListByContract(ctx context.Context, contractID string) ([]billing.Invoice, error) {
	if contractID == "" {
		return nil, billing.ErrEmptyContractID
	}
	return s.invoices.ListByContract(ctx, contractID)
}

// ListByPeriod returns every invoice billed in a month.
func (s *InvoiceService) ListByPeriod(ctx context.Context, period time.Time) ([]billing.Invoice, error) {
	return s.invoices.ListByPeriod(ctx, billing.PeriodOf(period))
}

// Transition moves an invoice to a new status when the transition is
// allowed.
func (s *InvoiceService) Transition(ctx context.Context, id string, to billing.InvoiceStatus) (*billing.Invoice, error) {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, billing.ErrInvoiceNotFound
	}
	if !billing.CanTransition(invoice.Status, to) {
		return nil, billing.ErrInvalidTransition
	}
	if err := s.invoices.SetStatus(ctx, id, to); err != nil {
		return nil, err
	}
	invoice.Status = to
	metrics.IncInvoiceStatus(string(to))
	return invoice, nil
}
