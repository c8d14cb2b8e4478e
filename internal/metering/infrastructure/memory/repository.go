package memory

import (
	"context"
	"sort"
	"sync"

	metering "dormitory-cloud/internal/metering/domain"
)

// ReadingRepository is an in-memory ReadingRepository for tests.
type ReadingRepository struct {
	mu       sync.RWMutex
	readings map[string]metering.MeterReading
}

// NewReadingRepository constructs an empty repository.
func NewReadingRepository() *ReadingRepository {
	return &ReadingRepository{readings: make(map[string]metering.MeterReading)}
}

func (r *ReadingRepository) Get(_ context.Context, id string) (*metering.MeterReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reading, ok := r.readings[id]
	if !ok {
		return nil, nil
	}
	copied := reading
	return &copied, nil
}

func (r *ReadingRepository) ListByContract(_ context.Context, contractID string) ([]metering.MeterReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []metering.MeterReading
	for _, reading := range r.readings {
		if reading.ContractID == contractID {
			result = append(result, reading)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ReadingDate.After(result[j].ReadingDate)
	})
	return result, nil
}

func (r *ReadingRepository) LatestByContract(ctx context.Context, contractID string) (*metering.MeterReading, error) {
	readings, err := r.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, nil
	}
	latest := readings[0]
	return &latest, nil
}

func (r *ReadingRepository) Save(_ context.Context, reading *metering.MeterReading) error {
	if err := reading.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readings[reading.ID] = *reading
	return nil
}
