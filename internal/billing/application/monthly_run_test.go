package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	billing "dormitory-cloud/internal/billing/domain"
	"dormitory-cloud/internal/billing/infrastructure/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var runNow = time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func testContracts(n int) []billing.BillableContract {
	contracts := make([]billing.BillableContract, 0, n)
	for i := 0; i < n; i++ {
		contracts = append(contracts, billing.BillableContract{
			ContractID:      fmt.Sprintf("contract-%d", i+1),
			RoomID:          fmt.Sprintf("room-%d", i+1),
			UserID:          fmt.Sprintf("user-%d", i+1),
			RentPrice:       5000,
			WaterConfigType: "unit",
		})
	}
	return contracts
}

func testReadings(contracts []billing.BillableContract) map[string]billing.ReadingPair {
	readings := make(map[string]billing.ReadingPair, len(contracts))
	for _, contract := range contracts {
		readings[contract.ContractID] = billing.ReadingPair{
			PrevElectricity:    1000,
			CurrentElectricity: 1050,
			PrevWater:          100,
			CurrentWater:       110,
		}
	}
	return readings
}

// failingInvoiceRepo fails Insert for one contract.
type failingInvoiceRepo struct {
	*memory.InvoiceRepository
	failContract string
}

func (r *failingInvoiceRepo) Insert(ctx context.Context, invoice *billing.Invoice) error {
	if invoice.ContractID == r.failContract {
		return errors.New("constraint violation")
	}
	return r.InvoiceRepository.Insert(ctx, invoice)
}

func TestRun_GeneratesInvoicesForEligibleContracts(t *testing.T) {
	contracts := testContracts(3)
	invoices := memory.NewInvoiceRepository()
	svc, err := NewMonthlyRunService(
		&memory.ContractSource{Contracts: contracts},
		&memory.ReadingSource{Readings: testReadings(contracts)},
		invoices,
		billing.DefaultRateTable(),
		fixedClock{now: runNow},
		quietLogger(),
	)
	if err != nil {
		t.Fatalf("NewMonthlyRunService: %v", err)
	}

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Generated != 3 {
		t.Fatalf("expected 3 generated, got %d", result.Generated)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("unexpected failures: %v", result.Failures)
	}

	stored, err := invoices.ListByPeriod(context.Background(), runNow)
	if err != nil {
		t.Fatalf("ListByPeriod: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 stored invoices, got %d", len(stored))
	}
	for _, invoice := range stored {
		if invoice.Total != 5430 {
			t.Fatalf("invoice %s: expected total 5430.00, got %v", invoice.ID, invoice.Total)
		}
		if invoice.Status != billing.InvoiceStatusUnpaid {
			t.Fatalf("invoice %s: expected unpaid, got %q", invoice.ID, invoice.Status)
		}
	}
}

func TestRun_SkipsContractWithoutReading(t *testing.T) {
	contracts := testContracts(2)
	readings := testReadings(contracts[:1])
	svc, err := NewMonthlyRunService(
		&memory.ContractSource{Contracts: contracts},
		&memory.ReadingSource{Readings: readings},
		memory.NewInvoiceRepository(),
		billing.DefaultRateTable(),
		fixedClock{now: runNow},
		quietLogger(),
	)
	if err != nil {
		t.Fatalf("NewMonthlyRunService: %v", err)
	}

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Generated != 1 {
		t.Fatalf("expected 1 generated, got %d", result.Generated)
	}
	if result.SkippedNoReading != 1 {
		t.Fatalf("expected 1 skipped for missing reading, got %d", result.SkippedNoReading)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("a missing reading must not count as failure, got %v", result.Failures)
	}
}

func TestRun_OneFailureDoesNotAbortTheRun(t *testing.T) {
	contracts := testContracts(5)
	repo := &failingInvoiceRepo{
		InvoiceRepository: memory.NewInvoiceRepository(),
		failContract:      "contract-3",
	}
	svc, err := NewMonthlyRunService(
		&memory.ContractSource{Contracts: contracts},
		&memory.ReadingSource{Readings: testReadings(contracts)},
		repo,
		billing.DefaultRateTable(),
		fixedClock{now: runNow},
		quietLogger(),
	)
	if err != nil {
		t.Fatalf("NewMonthlyRunService: %v", err)
	}

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Generated != 4 {
		t.Fatalf("expected 4 generated, got %d", result.Generated)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failures))
	}
	if result.Failures[0].RoomID != "room-3" || result.Failures[0].ContractID != "contract-3" {
		t.Fatalf("failure references wrong contract: %+v", result.Failures[0])
	}
}

func TestRun_RerunSkipsExistingInvoices(t *testing.T) {
	contracts := testContracts(3)
	invoices := memory.NewInvoiceRepository()
	svc, err := NewMonthlyRunService(
		&memory.ContractSource{Contracts: contracts},
		&memory.ReadingSource{Readings: testReadings(contracts)},
		invoices,
		billing.DefaultRateTable(),
		fixedClock{now: runNow},
		quietLogger(),
	)
	if err != nil {
		t.Fatalf("NewMonthlyRunService: %v", err)
	}

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	rerun, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if rerun.Generated != 0 {
		t.Fatalf("rerun must not generate, got %d", rerun.Generated)
	}
	if rerun.SkippedExisting != 3 {
		t.Fatalf("expected 3 skipped existing, got %d", rerun.SkippedExisting)
	}

	stored, err := invoices.ListByPeriod(context.Background(), runNow)
	if err != nil {
		t.Fatalf("ListByPeriod: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("rerun duplicated invoices: %d stored", len(stored))
	}
}

func TestRun_ListErrorIsFatal(t *testing.T) {
	svc, err := NewMonthlyRunService(
		&memory.ContractSource{Err: errors.New("store down")},
		&memory.ReadingSource{},
		memory.NewInvoiceRepository(),
		billing.DefaultRateTable(),
		fixedClock{now: runNow},
		quietLogger(),
	)
	if err != nil {
		t.Fatalf("NewMonthlyRunService: %v", err)
	}
	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected error when contract listing fails")
	}
}
