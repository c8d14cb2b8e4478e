package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	masterdata "dormitory-cloud/internal/masterdata/domain"
	tenancy "dormitory-cloud/internal/tenancy/domain"
)

// ContractService handles contract lifecycle use cases.
type ContractService struct {
	contracts tenancy.ContractRepository
	rooms     masterdata.RoomRepository
	users     tenancy.UserRepository
	clock     Clock
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// NewContractService constructs the service.
func NewContractService(
	contracts tenancy.ContractRepository,
	rooms masterdata.RoomRepository,
	users tenancy.UserRepository,
	clock Clock,
) (*ContractService, error) {
	if contracts == nil {
		return nil, errors.New("contract service: nil contract repository")
	}
	if rooms == nil {
		return nil, errors.New("contract service: nil room repository")
	}
	if users == nil {
		return nil, errors.New("contract service: nil user repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ContractService{contracts: contracts, rooms: rooms, users: users, clock: clock}, nil
}

// CreateInput carries contract creation parameters.
type CreateInput struct {
	RoomID          string
	UserID          string
	Status          string
	WaterConfigType string
	WaterFixedPrice *float64
	StartDate       time.Time
	EndDate         time.Time
}

// Create onboards a tenant onto a room. An active contract marks the room
// occupied; the room must exist and be vacant.
func (s *ContractService) Create(ctx context.Context, input CreateInput) (*tenancy.Contract, error) {
	status := tenancy.ContractStatusActive
	if input.Status != "" {
		normalized, ok := tenancy.NormalizeContractStatus(input.Status)
		if !ok {
			return nil, tenancy.ErrInvalidStatus
		}
		status = normalized
	}

	user, err := s.users.Get(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, tenancy.ErrUserNotFound
	}

	room, err := s.rooms.Get(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, tenancy.ErrRoomNotFound
	}
	if status == tenancy.ContractStatusActive && room.Status == masterdata.RoomStatusOccupied {
		return nil, tenancy.ErrRoomOccupied
	}

	now := s.clock.Now().UTC()
	start := input.StartDate
	if start.IsZero() {
		start = now
	}
	contract := &tenancy.Contract{
		ID:              uuid.NewString(),
		RoomID:          input.RoomID,
		UserID:          input.UserID,
		Status:          status,
		WaterConfigType: input.WaterConfigType,
		WaterFixedPrice: input.WaterFixedPrice,
		StartDate:       start,
		EndDate:         input.EndDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := contract.Validate(); err != nil {
		return nil, err
	}
	if err := s.contracts.Save(ctx, contract); err != nil {
		return nil, err
	}
	if status == tenancy.ContractStatusActive {
		if err := s.rooms.SetStatus(ctx, room.ID, masterdata.RoomStatusOccupied); err != nil {
			return nil, err
		}
	}
	return contract, nil
}

// Terminate ends a contract and frees its room.
func (s *ContractService) Terminate(ctx context.Context, contractID string) (*tenancy.Contract, error) {
	contract, err := s.contracts.Get(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, tenancy.ErrContractNotFound
	}
	if contract.Status == tenancy.ContractStatusTerminated {
		return contract, nil
	}
	if err := s.contracts.SetStatus(ctx, contractID, tenancy.ContractStatusTerminated); err != nil {
		return nil, err
	}
	if err := s.rooms.SetStatus(ctx, contract.RoomID, masterdata.RoomStatusVacant); err != nil {
		return nil, err
	}
	contract.Status = tenancy.ContractStatusTerminated
	return contract, nil
}

// Get returns one contract.
func (s *ContractService) Get(ctx context.Context, contractID string) (*tenancy.Contract, error) {
	return s.contracts.Get(ctx, contractID)
}

// ListForUser lists contracts owned by a user.
func (s *ContractService) ListForUser(ctx context.Context, userID string) ([]tenancy.Contract, error) {
	if userID == "" {
		return nil, tenancy.ErrEmptyUserID
	}
	return s.contracts.ListByUser(ctx, userID)
}

// ListBillable lists contracts eligible for monthly billing.
func (s *ContractService) ListBillable(ctx context.Context) ([]tenancy.Contract, error) {
	return s.contracts.ListByStatuses(ctx, []tenancy.ContractStatus{
		tenancy.ContractStatusActive,
		tenancy.ContractStatusComplete,
	})
}
