package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	masterdata "dormitory-cloud/internal/masterdata/domain"
)

const defaultRoomsTable = "rooms"

// RoomRepository is a Postgres implementation for rooms.
type RoomRepository struct {
	db    *sql.DB
	table string
}

// NewRoomRepository constructs a repository.
func NewRoomRepository(db *sql.DB, opts ...RoomOption) *RoomRepository {
	repo := &RoomRepository{db: db, table: defaultRoomsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// RoomOption configures the repository.
type RoomOption func(*RoomRepository)

// WithRoomTable overrides the default table name.
func WithRoomTable(table string) RoomOption {
	return func(repo *RoomRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads a room by id.
func (r *RoomRepository) Get(ctx context.Context, id string) (*masterdata.Room, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("room repo: nil db")
	}
	if id == "" {
		return nil, errors.New("room repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT id, building_id, room_number, rent_price, status, created_at, updated_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var room masterdata.Room
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&room.ID,
		&room.BuildingID,
		&room.RoomNumber,
		&room.RentPrice,
		&room.Status,
		&room.CreatedAt,
		&room.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	room.CreatedAt = room.CreatedAt.UTC()
	room.UpdatedAt = room.UpdatedAt.UTC()
	return &room, nil
}

// ListByBuilding returns rooms for a building.
func (r *RoomRepository) ListByBuilding(ctx context.Context, buildingID string) ([]masterdata.Room, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("room repo: nil db")
	}
	if buildingID == "" {
		return nil, errors.New("room repo: empty building id")
	}

	query := fmt.Sprintf(`
SELECT id, building_id, room_number, rent_price, status, created_at, updated_at
FROM %s
WHERE building_id = $1
ORDER BY room_number ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []masterdata.Room
	for rows.Next() {
		var room masterdata.Room
		if err := rows.Scan(
			&room.ID,
			&room.BuildingID,
			&room.RoomNumber,
			&room.RentPrice,
			&room.Status,
			&room.CreatedAt,
			&room.UpdatedAt,
		); err != nil {
			return nil, err
		}
		room.CreatedAt = room.CreatedAt.UTC()
		room.UpdatedAt = room.UpdatedAt.UTC()
		result = append(result, room)
	}
	return result, rows.Err()
}

// Save upserts a room.
func (r *RoomRepository) Save(ctx context.Context, room *masterdata.Room) error {
	if r == nil || r.db == nil {
		return errors.New("room repo: nil db")
	}
	if room == nil {
		return errors.New("room repo: nil room")
	}
	if room.Status == "" {
		room.Status = masterdata.RoomStatusVacant
	}
	if err := room.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, building_id, room_number, rent_price, status
) VALUES (
	$1, $2, $3, $4, $5
)
ON CONFLICT (id)
DO UPDATE SET
	building_id = EXCLUDED.building_id,
	room_number = EXCLUDED.room_number,
	rent_price = EXCLUDED.rent_price,
	status = EXCLUDED.status,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(ctx, query, room.ID, room.BuildingID, room.RoomNumber, room.RentPrice, room.Status)
	return err
}

// SetStatus updates occupancy status only.
func (r *RoomRepository) SetStatus(ctx context.Context, id, status string) error {
	if r == nil || r.db == nil {
		return errors.New("room repo: nil db")
	}
	if id == "" {
		return errors.New("room repo: empty id")
	}
	switch status {
	case masterdata.RoomStatusVacant, masterdata.RoomStatusOccupied:
	default:
		return errors.New("room repo: invalid status")
	}
	query := fmt.Sprintf(`UPDATE %s SET status = $2, updated_at = NOW() WHERE id = $1`, r.table)
	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}

// Delete removes a room.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("room repo: nil db")
	}
	if id == "" {
		return errors.New("room repo: empty id")
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
