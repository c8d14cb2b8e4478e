package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	tenancy "dormitory-cloud/internal/tenancy/domain"
)

const defaultContractsTable = "contracts"

// ContractRepository is a Postgres implementation for contracts.
// Statuses are normalized to the canonical lowercase enum at this boundary,
// so legacy cased rows keep working.
type ContractRepository struct {
	db    *sql.DB
	table string
}

// NewContractRepository constructs a repository.
func NewContractRepository(db *sql.DB, opts ...ContractOption) *ContractRepository {
	repo := &ContractRepository{db: db, table: defaultContractsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ContractOption configures the repository.
type ContractOption func(*ContractRepository)

// WithContractTable overrides the default table name.
func WithContractTable(table string) ContractOption {
	return func(repo *ContractRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const contractColumns = `id, room_id, user_id, status, water_config_type, water_fixed_price,
	start_date, end_date, created_at, updated_at`

// Get loads a contract by id.
func (r *ContractRepository) Get(ctx context.Context, id string) (*tenancy.Contract, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("contract repo: nil db")
	}
	if id == "" {
		return nil, tenancy.ErrEmptyContractID
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE id = $1
LIMIT 1`, contractColumns, r.table)
	contract, err := scanContract(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// ListByUser returns contracts for a user, newest first.
func (r *ContractRepository) ListByUser(ctx context.Context, userID string) ([]tenancy.Contract, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("contract repo: nil db")
	}
	if userID == "" {
		return nil, tenancy.ErrEmptyUserID
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE user_id = $1
ORDER BY created_at DESC`, contractColumns, r.table)
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContracts(rows)
}

// ListByStatuses returns contracts whose status (case-insensitively) matches
// one of the given canonical statuses.
func (r *ContractRepository) ListByStatuses(ctx context.Context, statuses []tenancy.ContractStatus) ([]tenancy.Contract, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("contract repo: nil db")
	}
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := make([]string, 0, len(statuses))
	args := make([]any, 0, len(statuses))
	for i, status := range statuses {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, string(status))
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE LOWER(status) IN (%s)
ORDER BY created_at ASC`, contractColumns, r.table, strings.Join(placeholders, ","))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContracts(rows)
}

// Save upserts a contract. The status is stored in canonical form.
func (r *ContractRepository) Save(ctx context.Context, contract *tenancy.Contract) error {
	if r == nil || r.db == nil {
		return errors.New("contract repo: nil db")
	}
	if contract == nil {
		return errors.New("contract repo: nil contract")
	}
	if err := contract.Validate(); err != nil {
		return err
	}
	status, _ := tenancy.NormalizeContractStatus(string(contract.Status))

	var fixedPrice sql.NullFloat64
	if contract.WaterFixedPrice != nil {
		fixedPrice = sql.NullFloat64{Float64: *contract.WaterFixedPrice, Valid: true}
	}
	var endDate sql.NullTime
	if !contract.EndDate.IsZero() {
		endDate = sql.NullTime{Time: contract.EndDate.UTC(), Valid: true}
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, room_id, user_id, status, water_config_type, water_fixed_price, start_date, end_date
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)
ON CONFLICT (id)
DO UPDATE SET
	room_id = EXCLUDED.room_id,
	user_id = EXCLUDED.user_id,
	status = EXCLUDED.status,
	water_config_type = EXCLUDED.water_config_type,
	water_fixed_price = EXCLUDED.water_fixed_price,
	start_date = EXCLUDED.start_date,
	end_date = EXCLUDED.end_date,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(ctx, query,
		contract.ID, contract.RoomID, contract.UserID, string(status),
		contract.WaterConfigType, fixedPrice, contract.StartDate.UTC(), endDate)
	return err
}

// SetStatus updates a contract status to a canonical value.
func (r *ContractRepository) SetStatus(ctx context.Context, id string, status tenancy.ContractStatus) error {
	if r == nil || r.db == nil {
		return errors.New("contract repo: nil db")
	}
	if id == "" {
		return tenancy.ErrEmptyContractID
	}
	normalized, ok := tenancy.NormalizeContractStatus(string(status))
	if !ok {
		return tenancy.ErrInvalidStatus
	}
	query := fmt.Sprintf(`UPDATE %s SET status = $2, updated_at = NOW() WHERE id = $1`, r.table)
	result, err := r.db.ExecContext(ctx, query, id, string(normalized))
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return tenancy.ErrContractNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*tenancy.Contract, error) {
	var contract tenancy.Contract
	var rawStatus string
	var fixedPrice sql.NullFloat64
	var endDate sql.NullTime
	if err := row.Scan(
		&contract.ID,
		&contract.RoomID,
		&contract.UserID,
		&rawStatus,
		&contract.WaterConfigType,
		&fixedPrice,
		&contract.StartDate,
		&endDate,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	status, ok := tenancy.NormalizeContractStatus(rawStatus)
	if !ok {
		status = tenancy.ContractStatusIncomplete
	}
	contract.Status = status
	if fixedPrice.Valid {
		price := fixedPrice.Float64
		contract.WaterFixedPrice = &price
	}
	if endDate.Valid {
		contract.EndDate = endDate.Time.UTC()
	}
	contract.StartDate = contract.StartDate.UTC()
	contract.CreatedAt = contract.CreatedAt.UTC()
	contract.UpdatedAt = contract.UpdatedAt.UTC()
	return &contract, nil
}

func collectContracts(rows *sql.Rows) ([]tenancy.Contract, error) {
	var result []tenancy.Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *contract)
	}
	return result, rows.Err()
}
