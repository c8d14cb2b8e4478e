package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	billing "dormitory-cloud/internal/billing/domain"
)

// ContractReadModel lists billing-eligible contracts joined with their
// room for the rent price. Status matching is case-insensitive so
// legacy cased rows stay billable.
type ContractReadModel struct {
	db             *sql.DB
	contractsTable string
	roomsTable     string
	statuses       []string
}

// NewContractReadModel constructs the read model. Statuses default to
// the billable set.
func NewContractReadModel(db *sql.DB, opts ...ReadModelOption) *ContractReadModel {
	model := &ContractReadModel{
		db:             db,
		contractsTable: "contracts",
		roomsTable:     "rooms",
		statuses:       []string{"active", "complete"},
	}
	for _, opt := range opts {
		opt(model)
	}
	return model
}

// ReadModelOption configures the read model.
type ReadModelOption func(*ContractReadModel)

// WithReadModelTables overrides the joined table names.
func WithReadModelTables(contracts, rooms string) ReadModelOption {
	return func(model *ContractReadModel) {
		if contracts != "" {
			model.contractsTable = contracts
		}
		if rooms != "" {
			model.roomsTable = rooms
		}
	}
}

// WithBillableStatuses overrides the eligible status set.
func WithBillableStatuses(statuses []string) ReadModelOption {
	return func(model *ContractReadModel) {
		if len(statuses) > 0 {
			model.statuses = statuses
		}
	}
}

// ListBillable returns eligible contracts with room rent. A contract
// whose room row is missing bills zero rent rather than failing.
func (m *ContractReadModel) ListBillable(ctx context.Context) ([]billing.BillableContract, error) {
	if m == nil || m.db == nil {
		return nil, errors.New("contract read model: nil db")
	}
	placeholders := make([]string, 0, len(m.statuses))
	args := make([]any, 0, len(m.statuses))
	for i, status := range m.statuses {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, strings.ToLower(status))
	}
	query := fmt.Sprintf(`
SELECT c.id, c.room_id, c.user_id, COALESCE(r.rent_price, 0),
	c.water_config_type, c.water_fixed_price
FROM %s c
LEFT JOIN %s r ON r.id = c.room_id
WHERE LOWER(c.status) IN (%s)
ORDER BY c.created_at ASC`, m.contractsTable, m.roomsTable, strings.Join(placeholders, ","))

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []billing.BillableContract
	for rows.Next() {
		var contract billing.BillableContract
		var configType sql.NullString
		var fixedPrice sql.NullFloat64
		if err := rows.Scan(
			&contract.ContractID,
			&contract.RoomID,
			&contract.UserID,
			&contract.RentPrice,
			&configType,
			&fixedPrice,
		); err != nil {
			return nil, err
		}
		if configType.Valid {
			contract.WaterConfigType = configType.String
		}
		if fixedPrice.Valid {
			price := fixedPrice.Float64
			contract.WaterFixedPrice = &price
		}
		result = append(result, contract)
	}
	return result, rows.Err()
}

// ReadingReadModel serves the latest meter snapshot per contract for
// the billing run.
type ReadingReadModel struct {
	db    *sql.DB
	table string
}

// NewReadingReadModel constructs the read model.
func NewReadingReadModel(db *sql.DB, opts ...ReadingReadModelOption) *ReadingReadModel {
	model := &ReadingReadModel{db: db, table: "meter_readings"}
	for _, opt := range opts {
		opt(model)
	}
	return model
}

// ReadingReadModelOption configures the read model.
type ReadingReadModelOption func(*ReadingReadModel)

// WithReadingReadModelTable overrides the readings table name.
func WithReadingReadModelTable(table string) ReadingReadModelOption {
	return func(model *ReadingReadModel) {
		if table != "" {
			model.table = table
		}
	}
}

// Latest returns a contract's most recent reading, nil when none.
func (m *ReadingReadModel) Latest(ctx context.Context, contractID string) (*billing.ReadingPair, error) {
	if m == nil || m.db == nil {
		return nil, errors.New("reading read model: nil db")
	}
	if contractID == "" {
		return nil, billing.ErrEmptyContractID
	}
	query := fmt.Sprintf(`
SELECT prev_water, current_water, prev_electricity, current_electricity
FROM %s
WHERE contract_id = $1
ORDER BY reading_date DESC
LIMIT 1`, m.table)

	var pair billing.ReadingPair
	err := m.db.QueryRowContext(ctx, query, contractID).Scan(
		&pair.PrevWater,
		&pair.CurrentWater,
		&pair.PrevElectricity,
		&pair.CurrentElectricity,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &pair, nil
}
