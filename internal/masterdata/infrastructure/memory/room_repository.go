package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	masterdata "dormitory-cloud/internal/masterdata/domain"
)

// RoomRepository is an in-memory repository for rooms.
type RoomRepository struct {
	mu   sync.RWMutex
	data map[string]masterdata.Room
}

// NewRoomRepository constructs a repository.
func NewRoomRepository() *RoomRepository {
	return &RoomRepository{data: make(map[string]masterdata.Room)}
}

// Get loads a room.
func (r *RoomRepository) Get(ctx context.Context, id string) (*masterdata.Room, error) {
	_ = ctx
	r.mu.RLock()
	room, ok := r.data[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	copy := room
	return &copy, nil
}

// ListByBuilding lists rooms for a building.
func (r *RoomRepository) ListByBuilding(ctx context.Context, buildingID string) ([]masterdata.Room, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []masterdata.Room
	for _, room := range r.data {
		if room.BuildingID == buildingID {
			result = append(result, room)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RoomNumber < result[j].RoomNumber })
	return result, nil
}

// Save persists a room.
func (r *RoomRepository) Save(ctx context.Context, room *masterdata.Room) error {
	_ = ctx
	if room == nil {
		return errors.New("room repo: nil room")
	}
	if room.Status == "" {
		room.Status = masterdata.RoomStatusVacant
	}
	if err := room.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.data[room.ID] = *room
	r.mu.Unlock()
	return nil
}

// SetStatus updates occupancy status.
func (r *RoomRepository) SetStatus(ctx context.Context, id, status string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.data[id]
	if !ok {
		return errors.New("room repo: not found")
	}
	room.Status = status
	r.data[id] = room
	return nil
}

// Delete removes a room.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	_ = ctx
	r.mu.Lock()
	delete(r.data, id)
	r.mu.Unlock()
	return nil
}
