package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	metering "dormitory-cloud/internal/metering/domain"
)

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

// SystemClock uses wall clock time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ReadingService records and queries meter readings.
type ReadingService struct {
	readings metering.ReadingRepository
	clock    Clock
}

// NewReadingService constructs a service.
func NewReadingService(readings metering.ReadingRepository, clock Clock) (*ReadingService, error) {
	if readings == nil {
		return nil, errors.New("reading service: nil repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReadingService{readings: readings, clock: clock}, nil
}

// RecordInput carries a new meter snapshot. Prev values are optional;
// when omitted they are filled from the latest stored reading, or zero
// for a contract's first reading.
type RecordInput struct {
	ContractID         string
	ReadingDate        time.Time
	PrevWater          *float64
	CurrentWater       float64
	PrevElectricity    *float64
	CurrentElectricity float64
}

// Record stores a reading, auto-filling previous meter values.
func (s *ReadingService) Record(ctx context.Context, input RecordInput) (*metering.MeterReading, error) {
	if input.ContractID == "" {
		return nil, metering.ErrEmptyContractID
	}

	reading := &metering.MeterReading{
		ID:                 uuid.NewString(),
		ContractID:         input.ContractID,
		ReadingDate:        input.ReadingDate,
		CurrentWater:       input.CurrentWater,
		CurrentElectricity: input.CurrentElectricity,
		CreatedAt:          s.clock.Now(),
	}
	if reading.ReadingDate.IsZero() {
		reading.ReadingDate = reading.CreatedAt
	}

	if input.PrevWater != nil && input.PrevElectricity != nil {
		reading.PrevWater = *input.PrevWater
		reading.PrevElectricity = *input.PrevElectricity
	} else {
		latest, err := s.readings.LatestByContract(ctx, input.ContractID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			reading.PrevWater = latest.CurrentWater
			reading.PrevElectricity = latest.CurrentElectricity
		}
		if input.PrevWater != nil {
			reading.PrevWater = *input.PrevWater
		}
		if input.PrevElectricity != nil {
			reading.PrevElectricity = *input.PrevElectricity
		}
	}

	if err := reading.Validate(); err != nil {
		return nil, err
	}
	if err := s.readings.Save(ctx, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

// ListByContract returns readings for a contract, newest first.
func (s *ReadingService) ListByContract(ctx context.Context, contractID string) ([]metering.MeterReading, error) {
	if contractID == "" {
		return nil, metering.ErrEmptyContractID
	}
	return s.readings.ListByContract(ctx, contractID)
}

// Latest returns the most recent reading for a contract, nil when none.
func (s *ReadingService) Latest(ctx context.Context, contractID string) (*metering.MeterReading, error) {
	if contractID == "" {
		return nil, metering.ErrEmptyContractID
	}
	return s.readings.LatestByContract(ctx, contractID)
}
