package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	masterdata "dormitory-cloud/internal/masterdata/domain"
)

const defaultEquipmentTable = "equipment"

// EquipmentRepository is a Postgres implementation for room equipment.
type EquipmentRepository struct {
	db    *sql.DB
	table string
}

// NewEquipmentRepository constructs a repository.
func NewEquipmentRepository(db *sql.DB, opts ...EquipmentOption) *EquipmentRepository {
	repo := &EquipmentRepository{db: db, table: defaultEquipmentTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// EquipmentOption configures the repository.
type EquipmentOption func(*EquipmentRepository)

// WithEquipmentTable overrides the default table name.
func WithEquipmentTable(table string) EquipmentOption {
	return func(repo *EquipmentRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads equipment by id.
func (r *EquipmentRepository) Get(ctx context.Context, id string) (*masterdata.Equipment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("equipment repo: nil db")
	}
	if id == "" {
		return nil, errors.New("equipment repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT id, room_id, name, condition, created_at, updated_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var item masterdata.Equipment
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.RoomID,
		&item.Name,
		&item.Condition,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return &item, nil
}

// ListByRoom returns equipment for a room.
func (r *EquipmentRepository) ListByRoom(ctx context.Context, roomID string) ([]masterdata.Equipment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("equipment repo: nil db")
	}
	if roomID == "" {
		return nil, errors.New("equipment repo: empty room id")
	}

	query := fmt.Sprintf(`
SELECT id, room_id, name, condition, created_at, updated_at
FROM %s
WHERE room_id = $1
ORDER BY name ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []masterdata.Equipment
	for rows.Next() {
		var item masterdata.Equipment
		if err := rows.Scan(
			&item.ID,
			&item.RoomID,
			&item.Name,
			&item.Condition,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		item.CreatedAt = item.CreatedAt.UTC()
		item.UpdatedAt = item.UpdatedAt.UTC()
		result = append(result, item)
	}
	return result, rows.Err()
}

// Save upserts equipment.
func (r *EquipmentRepository) Save(ctx context.Context, item *masterdata.Equipment) error {
	if r == nil || r.db == nil {
		return errors.New("equipment repo: nil db")
	}
	if item == nil {
		return errors.New("equipment repo: nil equipment")
	}
	if item.Condition == "" {
		item.Condition = masterdata.EquipmentConditionGood
	}
	if err := item.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, room_id, name, condition
) VALUES (
	$1, $2, $3, $4
)
ON CONFLICT (id)
DO UPDATE SET
	room_id = EXCLUDED.room_id,
	name = EXCLUDED.name,
	condition = EXCLUDED.condition,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(ctx, query, item.ID, item.RoomID, item.Name, item.Condition)
	return err
}

// Delete removes equipment.
func (r *EquipmentRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("equipment repo: nil db")
	}
	if id == "" {
		return errors.New("equipment repo: empty id")
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
