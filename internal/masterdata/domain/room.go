package masterdata

import (
	"context"
	"errors"
	"time"
)

const (
	RoomStatusVacant   = "vacant"
	RoomStatusOccupied = "occupied"
)

// Room represents a rentable room in a building.
type Room struct {
	ID         string
	BuildingID string
	RoomNumber string
	RentPrice  float64
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks room invariants.
func (r Room) Validate() error {
	if r.ID == "" {
		return errors.New("room: empty id")
	}
	if r.BuildingID == "" {
		return errors.New("room: empty building id")
	}
	if r.RoomNumber == "" {
		return errors.New("room: empty room number")
	}
	if r.RentPrice < 0 {
		return errors.New("room: negative rent price")
	}
	switch r.Status {
	case RoomStatusVacant, RoomStatusOccupied:
	default:
		return errors.New("room: invalid status")
	}
	return nil
}

// RoomRepository manages room persistence.
type RoomRepository interface {
	Get(ctx context.Context, id string) (*Room, error)
	ListByBuilding(ctx context.Context, buildingID string) ([]Room, error)
	Save(ctx context.Context, room *Room) error
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}
