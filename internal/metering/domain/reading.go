package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmptyReadingID  = errors.New("metering: reading id is empty")
	ErrEmptyContractID = errors.New("metering: contract id is empty")
	ErrNegativeReading = errors.New("metering: meter value is negative")
	ErrZeroReadingDate = errors.New("metering: reading date is zero")
)

// MeterReading is a monthly snapshot of a room's water and electricity
// meters. Previous values are carried on the row so a billing run never
// has to look at more than one reading. Monotonicity is not enforced
// here; the billing engine clamps negative deltas.
type MeterReading struct {
	ID                 string
	ContractID         string
	ReadingDate        time.Time
	PrevWater          float64
	CurrentWater       float64
	PrevElectricity    float64
	CurrentElectricity float64
	CreatedAt          time.Time
}

// Validate checks structural integrity.
func (r *MeterReading) Validate() error {
	if r.ID == "" {
		return ErrEmptyReadingID
	}
	if r.ContractID == "" {
		return ErrEmptyContractID
	}
	if r.ReadingDate.IsZero() {
		return ErrZeroReadingDate
	}
	if r.PrevWater < 0 || r.CurrentWater < 0 || r.PrevElectricity < 0 || r.CurrentElectricity < 0 {
		return ErrNegativeReading
	}
	return nil
}

// ReadingRepository persists meter readings.
type ReadingRepository interface {
	Get(ctx context.Context, id string) (*MeterReading, error)
	ListByContract(ctx context.Context, contractID string) ([]MeterReading, error)
	LatestByContract(ctx context.Context, contractID string) (*MeterReading, error)
	Save(ctx context.Context, reading *MeterReading) error
}
