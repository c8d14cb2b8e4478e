package application

import (
	"context"
	"errors"
	"testing"

	billing "dormitory-cloud/internal/billing/domain"
	"dormitory-cloud/internal/billing/infrastructure/memory"
)

func seedInvoice(t *testing.T, repo *memory.InvoiceRepository) *billing.Invoice {
	t.Helper()
	invoice, _ := billing.ComposeInvoice("inv-1", billing.BillableContract{
		ContractID: "contract-1",
		RoomID:     "room-1",
		RentPrice:  3000,
	}, billing.ReadingPair{}, billing.DefaultRateTable(), runNow)
	if err := repo.Insert(context.Background(), invoice); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return invoice
}

func TestTransition_UnpaidToPendingToPaid(t *testing.T) {
	repo := memory.NewInvoiceRepository()
	seedInvoice(t, repo)
	svc, err := NewInvoiceService(repo)
	if err != nil {
		t.Fatalf("NewInvoiceService: %v", err)
	}

	pending, err := svc.Transition(context.Background(), "inv-1", billing.InvoiceStatusPending)
	if err != nil {
		t.Fatalf("to pending: %v", err)
	}
	if pending.Status != billing.InvoiceStatusPending {
		t.Fatalf("expected pending, got %q", pending.Status)
	}

	paid, err := svc.Transition(context.Background(), "inv-1", billing.InvoiceStatusPaid)
	if err != nil {
		t.Fatalf("to paid: %v", err)
	}
	if paid.Status != billing.InvoiceStatusPaid {
		t.Fatalf("expected paid, got %q", paid.Status)
	}
}

func TestTransition_RejectsBackwardMove(t *testing.T) {
	repo := memory.NewInvoiceRepository()
	seedInvoice(t, repo)
	svc, err := NewInvoiceService(repo)
	if err != nil {
		t.Fatalf("NewInvoiceService: %v", err)
	}

	if _, err := svc.Transition(context.Background(), "inv-1", billing.InvoiceStatusPaid); err != nil {
		t.Fatalf("to paid: %v", err)
	}
	_, err = svc.Transition(context.Background(), "inv-1", billing.InvoiceStatusUnpaid)
	if !errors.Is(err, billing.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransition_UnknownInvoice(t *testing.T) {
	svc, err := NewInvoiceService(memory.NewInvoiceRepository())
	if err != nil {
		t.Fatalf("NewInvoiceService: %v", err)
	}
	_, err = svc.Transition(context.Background(), "missing", billing.InvoiceStatusPaid)
	if !errors.Is(err, billing.ErrInvoiceNotFound) {
		t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
	}
}
