package application

import (
	"context"
	"testing"
	"time"

	"dormitory-cloud/internal/metering/infrastructure/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestRecord_FirstReadingDefaultsPrevToZero(t *testing.T) {
	repo := memory.NewReadingRepository()
	svc, err := NewReadingService(repo, fixedClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("NewReadingService: %v", err)
	}

	reading, err := svc.Record(context.Background(), RecordInput{
		ContractID:         "contract-1",
		ReadingDate:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CurrentWater:       12,
		CurrentElectricity: 340,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if reading.PrevWater != 0 || reading.PrevElectricity != 0 {
		t.Fatalf("expected zero prev values, got water=%v electricity=%v", reading.PrevWater, reading.PrevElectricity)
	}
}

func TestRecord_AutoFillsPrevFromLatest(t *testing.T) {
	repo := memory.NewReadingRepository()
	svc, err := NewReadingService(repo, fixedClock{now: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("NewReadingService: %v", err)
	}

	_, err = svc.Record(context.Background(), RecordInput{
		ContractID:         "contract-1",
		ReadingDate:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CurrentWater:       12,
		CurrentElectricity: 340,
	})
	if err != nil {
		t.Fatalf("Record first: %v", err)
	}

	second, err := svc.Record(context.Background(), RecordInput{
		ContractID:         "contract-1",
		ReadingDate:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		CurrentWater:       19,
		CurrentElectricity: 512,
	})
	if err != nil {
		t.Fatalf("Record second: %v", err)
	}
	if second.PrevWater != 12 {
		t.Fatalf("expected prev water 12, got %v", second.PrevWater)
	}
	if second.PrevElectricity != 340 {
		t.Fatalf("expected prev electricity 340, got %v", second.PrevElectricity)
	}
}

func TestRecord_ExplicitPrevWinsOverLatest(t *testing.T) {
	repo := memory.NewReadingRepository()
	svc, err := NewReadingService(repo, fixedClock{now: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("NewReadingService: %v", err)
	}

	_, err = svc.Record(context.Background(), RecordInput{
		ContractID:         "contract-1",
		ReadingDate:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CurrentWater:       12,
		CurrentElectricity: 340,
	})
	if err != nil {
		t.Fatalf("Record first: %v", err)
	}

	prevWater := 10.0
	second, err := svc.Record(context.Background(), RecordInput{
		ContractID:         "contract-1",
		ReadingDate:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		PrevWater:          &prevWater,
		CurrentWater:       19,
		CurrentElectricity: 512,
	})
	if err != nil {
		t.Fatalf("Record second: %v", err)
	}
	if second.PrevWater != 10 {
		t.Fatalf("expected explicit prev water 10, got %v", second.PrevWater)
	}
	if second.PrevElectricity != 340 {
		t.Fatalf("expected auto-filled prev electricity 340, got %v", second.PrevElectricity)
	}
}

func TestLatest_OrdersByReadingDate(t *testing.T) {
	repo := memory.NewReadingRepository()
	svc, err := NewReadingService(repo, fixedClock{now: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("NewReadingService: %v", err)
	}

	dates := []time.Time{
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, date := range dates {
		_, err := svc.Record(context.Background(), RecordInput{
			ContractID:         "contract-1",
			ReadingDate:        date,
			CurrentWater:       float64(i + 1),
			CurrentElectricity: float64(100 * (i + 1)),
		})
		if err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	latest, err := svc.Latest(context.Background(), "contract-1")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a latest reading")
	}
	if !latest.ReadingDate.Equal(dates[0]) {
		t.Fatalf("expected latest date %v, got %v", dates[0], latest.ReadingDate)
	}
}
