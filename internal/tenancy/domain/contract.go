package tenancy

import (
	"context"
	"strings"
	"time"
)

// ContractStatus is the canonical lifecycle state of a tenancy contract.
type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "active"
	ContractStatusComplete   ContractStatus = "complete"
	ContractStatusIncomplete ContractStatus = "incomplete"
	ContractStatusTerminated ContractStatus = "terminated"
)

// NormalizeContractStatus maps legacy cased variants onto the canonical
// lowercase set. Unknown values are rejected.
func NormalizeContractStatus(value string) (ContractStatus, bool) {
	switch ContractStatus(strings.ToLower(strings.TrimSpace(value))) {
	case ContractStatusActive:
		return ContractStatusActive, true
	case ContractStatusComplete:
		return ContractStatusComplete, true
	case ContractStatusIncomplete:
		return ContractStatusIncomplete, true
	case ContractStatusTerminated:
		return ContractStatusTerminated, true
	default:
		return "", false
	}
}

// Billable reports whether the status qualifies for monthly billing.
func (s ContractStatus) Billable() bool {
	return s == ContractStatusActive || s == ContractStatusComplete
}

// Water billing configuration per contract.
const (
	WaterConfigUnit  = "unit"
	WaterConfigFixed = "fixed"
)

// Contract links a tenant user to a room for a period.
type Contract struct {
	ID              string
	RoomID          string
	UserID          string
	Status          ContractStatus
	WaterConfigType string
	WaterFixedPrice *float64
	StartDate       time.Time
	EndDate         time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks contract invariants.
func (c Contract) Validate() error {
	if c.ID == "" {
		return ErrEmptyContractID
	}
	if c.RoomID == "" {
		return ErrEmptyRoomID
	}
	if c.UserID == "" {
		return ErrEmptyUserID
	}
	if _, ok := NormalizeContractStatus(string(c.Status)); !ok {
		return ErrInvalidStatus
	}
	switch c.WaterConfigType {
	case "", WaterConfigUnit, WaterConfigFixed:
	default:
		return ErrInvalidWaterConfig
	}
	if c.WaterFixedPrice != nil && *c.WaterFixedPrice < 0 {
		return ErrNegativeValue
	}
	return nil
}

// ContractRepository manages contract persistence.
type ContractRepository interface {
	Get(ctx context.Context, id string) (*Contract, error)
	ListByUser(ctx context.Context, userID string) ([]Contract, error)
	ListByStatuses(ctx context.Context, statuses []ContractStatus) ([]Contract, error)
	Save(ctx context.Context, contract *Contract) error
	SetStatus(ctx context.Context, id string, status ContractStatus) error
}
