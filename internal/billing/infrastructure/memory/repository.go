package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	billing "dormitory-cloud/internal/billing/domain"
)

// InvoiceRepository is an in-memory InvoiceRepository for tests.
// Insert enforces the one-invoice-per-contract-per-period rule the
// Postgres unique constraint provides.
type InvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]billing.Invoice
}

// NewInvoiceRepository constructs an empty repository.
func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{invoices: make(map[string]billing.Invoice)}
}

func (r *InvoiceRepository) Get(_ context.Context, id string) (*billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	invoice, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	copied := invoice
	return &copied, nil
}

func (r *InvoiceRepository) ListByContract(_ context.Context, contractID string) ([]billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []billing.Invoice
	for _, invoice := range r.invoices {
		if invoice.ContractID == contractID {
			result = append(result, invoice)
		}
	}
	sortInvoices(result)
	return result, nil
}

func (r *InvoiceRepository) ListByPeriod(_ context.Context, period time.Time) ([]billing.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	period = billing.PeriodOf(period)
	var result []billing.Invoice
	for _, invoice := range r.invoices {
		if invoice.BillingPeriod.Equal(period) {
			result = append(result, invoice)
		}
	}
	sortInvoices(result)
	return result, nil
}

func (r *InvoiceRepository) ExistsForPeriod(_ context.Context, contractID string, period time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	period = billing.PeriodOf(period)
	for _, invoice := range r.invoices {
		if invoice.ContractID == contractID && invoice.BillingPeriod.Equal(period) {
			return true, nil
		}
	}
	return false, nil
}

func (r *InvoiceRepository) Insert(ctx context.Context, invoice *billing.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return err
	}
	exists, err := r.ExistsForPeriod(ctx, invoice.ContractID, invoice.BillingPeriod)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[invoice.ID] = *invoice
	return nil
}

func (r *InvoiceRepository) SetStatus(_ context.Context, id string, status billing.InvoiceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	invoice, ok := r.invoices[id]
	if !ok {
		return billing.ErrInvoiceNotFound
	}
	invoice.Status = status
	r.invoices[id] = invoice
	return nil
}

func sortInvoices(invoices []billing.Invoice) {
	sort.Slice(invoices, func(i, j int) bool {
		return invoices[i].BillDate.After(invoices[j].BillDate)
	})
}

// ContractSource is a fixed list of billable contracts.
type ContractSource struct {
	Contracts []billing.BillableContract
	Err       error
}

func (s *ContractSource) ListBillable(context.Context) ([]billing.BillableContract, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Contracts, nil
}

// ReadingSource serves latest readings from a map keyed by contract id.
type ReadingSource struct {
	Readings map[string]billing.ReadingPair
}

func (s *ReadingSource) Latest(_ context.Context, contractID string) (*billing.ReadingPair, error) {
	reading, ok := s.Readings[contractID]
	if !ok {
		return nil, nil
	}
	return &reading, nil
}
