package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	billing "dormitory-cloud/internal/billing/domain"
)

const defaultInvoicesTable = "invoices"

// InvoiceRepository is a Postgres implementation for invoices. The
// table carries a unique constraint on (contract_id, billing_period);
// Insert relies on it so concurrent or repeated runs cannot duplicate
// a month's invoice.
type InvoiceRepository struct {
	db    *sql.DB
	table string
}

// NewInvoiceRepository constructs a repository.
func NewInvoiceRepository(db *sql.DB, opts ...InvoiceOption) *InvoiceRepository {
	repo := &InvoiceRepository{db: db, table: defaultInvoicesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// InvoiceOption configures the repository.
type InvoiceOption func(*InvoiceRepository)

// WithInvoiceTable overrides the default table name.
func WithInvoiceTable(table string) InvoiceOption {
	return func(repo *InvoiceRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const invoiceColumns = `id, contract_id, room_id, user_id, billing_period,
	rent_cost, electricity_cost, water_cost, repair_cost, deposit_cost, total_cost,
	electricity_unit, water_unit, invoice_type, status, bill_date, due_date,
	created_at, updated_at`

// Get loads an invoice by id.
func (r *InvoiceRepository) Get(ctx context.Context, id string) (*billing.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	if id == "" {
		return nil, billing.ErrEmptyInvoiceID
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE id = $1
LIMIT 1`, invoiceColumns, r.table)
	return scanInvoice(r.db.QueryRowContext(ctx, query, id))
}

// ListByContract returns a contract's invoices, newest first.
func (r *InvoiceRepository) ListByContract(ctx context.Context, contractID string) ([]billing.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	if contractID == "" {
		return nil, billing.ErrEmptyContractID
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE contract_id = $1
ORDER BY bill_date DESC`, invoiceColumns, r.table)
	rows, err := r.db.QueryContext(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvoices(rows)
}

// ListByPeriod returns every invoice billed for a month.
func (r *InvoiceRepository) ListByPeriod(ctx context.Context, period time.Time) ([]billing.Invoice, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("invoice repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE billing_period = $1
ORDER BY bill_date DESC`, invoiceColumns, r.table)
	rows, err := r.db.QueryContext(ctx, query, billing.PeriodOf(period))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvoices(rows)
}

// ExistsForPeriod reports whether a contract already has an invoice for
// a billing period.
func (r *InvoiceRepository) ExistsForPeriod(ctx context.Context, contractID string, period time.Time) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("invoice repo: nil db")
	}
	if contractID == "" {
		return false, billing.ErrEmptyContractID
	}
	query := fmt.Sprintf(`
SELECT EXISTS (
	SELECT 1 FROM %s WHERE contract_id = $1 AND billing_period = $2
)`, r.table)
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, contractID, billing.PeriodOf(period)).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Insert stores a new invoice. A conflicting (contract_id,
// billing_period) row makes the insert a no-op rather than an error.
func (r *InvoiceRepository) Insert(ctx context.Context, invoice *billing.Invoice) error {
	if r == nil || r.db == nil {
		return errors.New("invoice repo: nil db")
	}
	if invoice == nil {
		return errors.New("invoice repo: nil invoice")
	}
	if err := invoice.Validate(); err != nil {
		return err
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id, contract_id, room_id, user_id, billing_period,
	rent_cost, electricity_cost, water_cost, repair_cost, deposit_cost, total_cost,
	electricity_unit, water_unit, invoice_type, status, bill_date, due_date
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
)
ON CONFLICT (contract_id, billing_period)
DO NOTHING`, r.table)

	_, err := r.db.ExecContext(ctx, query,
		invoice.ID, invoice.ContractID, invoice.RoomID, invoice.UserID,
		invoice.BillingPeriod.UTC(),
		invoice.RentCost, invoice.ElectricityCost, invoice.WaterCost,
		invoice.RepairCost, invoice.DepositCost, invoice.Total,
		invoice.ElectricityUnit, invoice.WaterUnit,
		invoice.Type, string(invoice.Status),
		invoice.BillDate.UTC(), invoice.DueDate.UTC())
	return err
}

// SetStatus updates an invoice status.
func (r *InvoiceRepository) SetStatus(ctx context.Context, id string, status billing.InvoiceStatus) error {
	if r == nil || r.db == nil {
		return errors.New("invoice repo: nil db")
	}
	if id == "" {
		return billing.ErrEmptyInvoiceID
	}
	query := fmt.Sprintf(`UPDATE %s SET status = $2, updated_at = NOW() WHERE id = $1`, r.table)
	result, err := r.db.ExecContext(ctx, query, id, string(status))
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return billing.ErrInvoiceNotFound
	}
	return nil
}

func scanInvoice(row interface{ Scan(dest ...any) error }) (*billing.Invoice, error) {
	var invoice billing.Invoice
	var status string
	if err := row.Scan(
		&invoice.ID,
		&invoice.ContractID,
		&invoice.RoomID,
		&invoice.UserID,
		&invoice.BillingPeriod,
		&invoice.RentCost,
		&invoice.ElectricityCost,
		&invoice.WaterCost,
		&invoice.RepairCost,
		&invoice.DepositCost,
		&invoice.Total,
		&invoice.ElectricityUnit,
		&invoice.WaterUnit,
		&invoice.Type,
		&status,
		&invoice.BillDate,
		&invoice.DueDate,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	invoice.Status = billing.InvoiceStatus(status)
	invoice.BillingPeriod = invoice.BillingPeriod.UTC()
	invoice.BillDate = invoice.BillDate.UTC()
	invoice.DueDate = invoice.DueDate.UTC()
	invoice.CreatedAt = invoice.CreatedAt.UTC()
	invoice.UpdatedAt = invoice.UpdatedAt.UTC()
	return &invoice, nil
}

func collectInvoices(rows *sql.Rows) ([]billing.Invoice, error) {
	var result []billing.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *invoice)
	}
	return result, rows.Err()
}
