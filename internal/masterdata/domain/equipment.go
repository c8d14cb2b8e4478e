package masterdata

import (
	"context"
	"errors"
	"time"
)

const (
	EquipmentConditionGood   = "good"
	EquipmentConditionWorn   = "worn"
	EquipmentConditionBroken = "broken"
)

// Equipment represents a fitted item tracked per room.
type Equipment struct {
	ID        string
	RoomID    string
	Name      string
	Condition string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks equipment invariants.
func (e Equipment) Validate() error {
	if e.ID == "" {
		return errors.New("equipment: empty id")
	}
	if e.RoomID == "" {
		return errors.New("equipment: empty room id")
	}
	if e.Name == "" {
		return errors.New("equipment: empty name")
	}
	switch e.Condition {
	case EquipmentConditionGood, EquipmentConditionWorn, EquipmentConditionBroken:
	default:
		return errors.New("equipment: invalid condition")
	}
	return nil
}

// EquipmentRepository manages equipment persistence.
type EquipmentRepository interface {
	Get(ctx context.Context, id string) (*Equipment, error)
	ListByRoom(ctx context.Context, roomID string) ([]Equipment, error)
	Save(ctx context.Context, equipment *Equipment) error
	Delete(ctx context.Context, id string) error
}
