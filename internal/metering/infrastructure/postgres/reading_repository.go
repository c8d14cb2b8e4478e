package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	metering "dormitory-cloud/internal/metering/domain"
)

const defaultReadingsTable = "meter_readings"

// ReadingRepository is a Postgres implementation for meter readings.
type ReadingRepository struct {
	db    *sql.DB
	table string
}

// NewReadingRepository constructs a repository.
func NewReadingRepository(db *sql.DB, opts ...ReadingOption) *ReadingRepository {
	repo := &ReadingRepository{db: db, table: defaultReadingsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ReadingOption configures the repository.
type ReadingOption func(*ReadingRepository)

// WithReadingTable overrides the default table name.
func WithReadingTable(table string) ReadingOption {
	return func(repo *ReadingRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const readingColumns = `id, contract_id, reading_date, prev_water, current_water,
	prev_electricity, current_electricity, created_at`

// Get loads a reading by id.
func (r *ReadingRepository) Get(ctx context.Context, id string) (*metering.MeterReading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	if id == "" {
		return nil, metering.ErrEmptyReadingID
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE id = $1
LIMIT 1`, readingColumns, r.table)
	return scanReading(r.db.QueryRowContext(ctx, query, id))
}

// ListByContract returns a contract's readings, newest first.
func (r *ReadingRepository) ListByContract(ctx context.Context, contractID string) ([]metering.MeterReading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	if contractID == "" {
		return nil, metering.ErrEmptyContractID
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE contract_id = $1
ORDER BY reading_date DESC`, readingColumns, r.table)
	rows, err := r.db.QueryContext(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []metering.MeterReading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *reading)
	}
	return result, rows.Err()
}

// LatestByContract returns the most recent reading for a contract,
// nil when the contract has no readings yet.
func (r *ReadingRepository) LatestByContract(ctx context.Context, contractID string) (*metering.MeterReading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	if contractID == "" {
		return nil, metering.ErrEmptyContractID
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE contract_id = $1
ORDER BY reading_date DESC
LIMIT 1`, readingColumns, r.table)
	return scanReading(r.db.QueryRowContext(ctx, query, contractID))
}

// Save upserts a reading.
func (r *ReadingRepository) Save(ctx context.Context, reading *metering.MeterReading) error {
	if r == nil || r.db == nil {
		return errors.New("reading repo: nil db")
	}
	if reading == nil {
		return errors.New("reading repo: nil reading")
	}
	if err := reading.Validate(); err != nil {
		return err
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id, contract_id, reading_date, prev_water, current_water, prev_electricity, current_electricity
) VALUES (
	$1, $2, $3, $4, $5, $6, $7
)
ON CONFLICT (id)
DO UPDATE SET
	reading_date = EXCLUDED.reading_date,
	prev_water = EXCLUDED.prev_water,
	current_water = EXCLUDED.current_water,
	prev_electricity = EXCLUDED.prev_electricity,
	current_electricity = EXCLUDED.current_electricity`, r.table)

	_, err := r.db.ExecContext(ctx, query,
		reading.ID, reading.ContractID, reading.ReadingDate.UTC(),
		reading.PrevWater, reading.CurrentWater,
		reading.PrevElectricity, reading.CurrentElectricity)
	return err
}

func scanReading(row interface{ Scan(dest ...any) error }) (*metering.MeterReading, error) {
	var reading metering.MeterReading
	if err := row.Scan(
		&reading.ID,
		&reading.ContractID,
		&reading.ReadingDate,
		&reading.PrevWater,
		&reading.CurrentWater,
		&reading.PrevElectricity,
		&reading.CurrentElectricity,
		&reading.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	reading.ReadingDate = reading.ReadingDate.UTC()
	reading.CreatedAt = reading.CreatedAt.UTC()
	return &reading, nil
}
