package domain

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to TicketStatus
		want     bool
	}{
		{TicketStatusOpen, TicketStatusAssigned, true},
		{TicketStatusAssigned, TicketStatusInProgress, true},
		{TicketStatusAssigned, TicketStatusResolved, true},
		{TicketStatusInProgress, TicketStatusResolved, true},
		{TicketStatusOpen, TicketStatusInProgress, false},
		{TicketStatusOpen, TicketStatusResolved, false},
		{TicketStatusResolved, TicketStatusOpen, false},
		{TicketStatusResolved, TicketStatusInProgress, false},
		{TicketStatusInProgress, TicketStatusAssigned, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTicketValidate(t *testing.T) {
	ticket := Ticket{
		ID:         "ticket-1",
		RoomID:     "room-1",
		ReporterID: "user-1",
		Title:      "broken faucet",
		Status:     TicketStatusOpen,
	}
	if err := ticket.Validate(); err != nil {
		t.Fatalf("valid open ticket rejected: %v", err)
	}

	ticket.Status = TicketStatusAssigned
	if err := ticket.Validate(); err != ErrEmptyAssigneeID {
		t.Fatalf("assigned ticket without assignee: expected ErrEmptyAssigneeID, got %v", err)
	}
	ticket.AssigneeID = "mechanic-1"
	if err := ticket.Validate(); err != nil {
		t.Fatalf("valid assigned ticket rejected: %v", err)
	}

	ticket.Status = "closed"
	if err := ticket.Validate(); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
