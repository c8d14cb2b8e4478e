package application

import (
	"context"
	"testing"
	"time"

	masterdata "dormitory-cloud/internal/masterdata/domain"
	masterdatamemory "dormitory-cloud/internal/masterdata/infrastructure/memory"
	tenancy "dormitory-cloud/internal/tenancy/domain"
	"dormitory-cloud/internal/tenancy/infrastructure/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (*ContractService, *memory.ContractRepository, *masterdatamemory.RoomRepository, *memory.UserRepository) {
	t.Helper()
	contracts := memory.NewContractRepository()
	rooms := masterdatamemory.NewRoomRepository()
	users := memory.NewUserRepository()
	clock := fixedClock{now: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)}
	service, err := NewContractService(contracts, rooms, users, clock)
	if err != nil {
		t.Fatalf("new contract service: %v", err)
	}
	return service, contracts, rooms, users
}

func seedRoomAndUser(t *testing.T, rooms *masterdatamemory.RoomRepository, users *memory.UserRepository) {
	t.Helper()
	ctx := context.Background()
	err := rooms.Save(ctx, &masterdata.Room{
		ID:         "room-101",
		BuildingID: "building-a",
		RoomNumber: "101",
		RentPrice:  5000,
		Status:     masterdata.RoomStatusVacant,
	})
	if err != nil {
		t.Fatalf("seed room: %v", err)
	}
	err = users.Save(ctx, &tenancy.User{
		ID:           "user-1",
		Username:     "somchai",
		PasswordHash: "x",
		Role:         "tenant",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestContractCreate_MarksRoomOccupied(t *testing.T) {
	ctx := context.Background()
	service, _, rooms, users := newTestService(t)
	seedRoomAndUser(t, rooms, users)

	contract, err := service.Create(ctx, CreateInput{
		RoomID:          "room-101",
		UserID:          "user-1",
		WaterConfigType: tenancy.WaterConfigUnit,
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	if contract.Status != tenancy.ContractStatusActive {
		t.Fatalf("expected active status, got %s", contract.Status)
	}

	room, err := rooms.Get(ctx, "room-101")
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if room.Status != masterdata.RoomStatusOccupied {
		t.Fatalf("expected occupied room, got %s", room.Status)
	}
}

func TestContractCreate_RejectsOccupiedRoom(t *testing.T) {
	ctx := context.Background()
	service, _, rooms, users := newTestService(t)
	seedRoomAndUser(t, rooms, users)

	if _, err := service.Create(ctx, CreateInput{RoomID: "room-101", UserID: "user-1"}); err != nil {
		t.Fatalf("create first contract: %v", err)
	}
	_, err := service.Create(ctx, CreateInput{RoomID: "room-101", UserID: "user-1"})
	if err != tenancy.ErrRoomOccupied {
		t.Fatalf("expected ErrRoomOccupied, got %v", err)
	}
}

func TestContractCreate_NormalizesLegacyStatus(t *testing.T) {
	ctx := context.Background()
	service, _, rooms, users := newTestService(t)
	seedRoomAndUser(t, rooms, users)

	contract, err := service.Create(ctx, CreateInput{
		RoomID: "room-101",
		UserID: "user-1",
		Status: "Active",
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	if contract.Status != tenancy.ContractStatusActive {
		t.Fatalf("expected normalized active, got %s", contract.Status)
	}
}

func TestContractTerminate_FreesRoom(t *testing.T) {
	ctx := context.Background()
	service, _, rooms, users := newTestService(t)
	seedRoomAndUser(t, rooms, users)

	contract, err := service.Create(ctx, CreateInput{RoomID: "room-101", UserID: "user-1"})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	terminated, err := service.Terminate(ctx, contract.ID)
	if err != nil {
		t.Fatalf("terminate contract: %v", err)
	}
	if terminated.Status != tenancy.ContractStatusTerminated {
		t.Fatalf("expected terminated, got %s", terminated.Status)
	}
	room, err := rooms.Get(ctx, "room-101")
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if room.Status != masterdata.RoomStatusVacant {
		t.Fatalf("expected vacant room, got %s", room.Status)
	}
}

func TestListBillable_ExcludesIneligible(t *testing.T) {
	ctx := context.Background()
	service, contracts, rooms, users := newTestService(t)
	seedRoomAndUser(t, rooms, users)

	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for _, tc := range []struct {
		id     string
		status tenancy.ContractStatus
	}{
		{"contract-a", tenancy.ContractStatusActive},
		{"contract-b", tenancy.ContractStatusComplete},
		{"contract-c", tenancy.ContractStatusIncomplete},
		{"contract-d", tenancy.ContractStatusTerminated},
	} {
		err := contracts.Save(ctx, &tenancy.Contract{
			ID:        tc.id,
			RoomID:    "room-101",
			UserID:    "user-1",
			Status:    tc.status,
			StartDate: now,
			CreatedAt: now,
		})
		if err != nil {
			t.Fatalf("seed contract %s: %v", tc.id, err)
		}
	}

	billable, err := service.ListBillable(ctx)
	if err != nil {
		t.Fatalf("list billable: %v", err)
	}
	if len(billable) != 2 {
		t.Fatalf("expected 2 billable contracts, got %d", len(billable))
	}
	for _, contract := range billable {
		if !contract.Status.Billable() {
			t.Fatalf("contract %s should not be billable", contract.ID)
		}
	}
}
