package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"dormitory-cloud/internal/maintenance/domain"
	"dormitory-cloud/internal/maintenance/infrastructure/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newService(t *testing.T) *TicketService {
	t.Helper()
	svc, err := NewTicketService(memory.NewTicketRepository(), fixedClock{
		now: time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NewTicketService: %v", err)
	}
	return svc
}

func TestTicketLifecycle(t *testing.T) {
	svc := newService(t)

	ticket, err := svc.Create(context.Background(), CreateInput{
		RoomID:      "room-1",
		ReporterID:  "tenant-1",
		Title:       "broken faucet",
		Description: "bathroom sink leaks",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("expected open, got %q", ticket.Status)
	}

	assigned, err := svc.Transition(context.Background(), ticket.ID, domain.TicketStatusAssigned, "mechanic-1")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.AssigneeID != "mechanic-1" {
		t.Fatalf("expected assignee mechanic-1, got %q", assigned.AssigneeID)
	}

	if _, err := svc.Transition(context.Background(), ticket.ID, domain.TicketStatusInProgress, ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	resolved, err := svc.Transition(context.Background(), ticket.ID, domain.TicketStatusResolved, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ResolvedAt.IsZero() {
		t.Fatal("expected resolved timestamp")
	}

	_, err = svc.Transition(context.Background(), ticket.ID, domain.TicketStatusOpen, "")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition reopening, got %v", err)
	}
}

func TestTransition_AssignRequiresMechanic(t *testing.T) {
	svc := newService(t)
	ticket, err := svc.Create(context.Background(), CreateInput{
		RoomID:     "room-1",
		ReporterID: "tenant-1",
		Title:      "no hot water",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Transition(context.Background(), ticket.ID, domain.TicketStatusAssigned, "")
	if !errors.Is(err, domain.ErrEmptyAssigneeID) {
		t.Fatalf("expected ErrEmptyAssigneeID, got %v", err)
	}
}

func TestListForAssignee_ReturnsOnlyQueue(t *testing.T) {
	svc := newService(t)
	first, err := svc.Create(context.Background(), CreateInput{RoomID: "room-1", ReporterID: "tenant-1", Title: "a"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{RoomID: "room-2", ReporterID: "tenant-2", Title: "b"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Transition(context.Background(), first.ID, domain.TicketStatusAssigned, "mechanic-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	queue, err := svc.ListForAssignee(context.Background(), "mechanic-1")
	if err != nil {
		t.Fatalf("ListForAssignee: %v", err)
	}
	if len(queue) != 1 || queue[0].ID != first.ID {
		t.Fatalf("expected only the assigned ticket, got %d", len(queue))
	}
}
