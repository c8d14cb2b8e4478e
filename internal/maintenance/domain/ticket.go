package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmptyTicketID     = errors.New("maintenance: ticket id is empty")
	ErrEmptyRoomID       = errors.New("maintenance: room id is empty")
	ErrEmptyReporterID   = errors.New("maintenance: reporter id is empty")
	ErrEmptyTitle        = errors.New("maintenance: title is empty")
	ErrEmptyAssigneeID   = errors.New("maintenance: assignee id is empty")
	ErrTicketNotFound    = errors.New("maintenance: ticket not found")
	ErrInvalidStatus     = errors.New("maintenance: invalid ticket status")
	ErrInvalidTransition = errors.New("maintenance: invalid status transition")
)

// Ticket statuses. A ticket starts open, a manager assigns a mechanic,
// the mechanic works it to resolution.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusAssigned   TicketStatus = "assigned"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
)

// ParseTicketStatus validates a status string.
func ParseTicketStatus(value string) (TicketStatus, bool) {
	switch TicketStatus(value) {
	case TicketStatusOpen, TicketStatusAssigned, TicketStatusInProgress, TicketStatusResolved:
		return TicketStatus(value), true
	}
	return "", false
}

// CanTransition reports whether a ticket may move between statuses.
// Resolved is terminal; an assigned ticket may resolve directly when
// the fix needs no tracked work phase.
func CanTransition(from, to TicketStatus) bool {
	switch from {
	case TicketStatusOpen:
		return to == TicketStatusAssigned
	case TicketStatusAssigned:
		return to == TicketStatusInProgress || to == TicketStatusResolved
	case TicketStatusInProgress:
		return to == TicketStatusResolved
	default:
		return false
	}
}

// Ticket is one maintenance request for a room. Repair costs are never
// billed through invoices.
type Ticket struct {
	ID          string
	RoomID      string
	ReporterID  string
	AssigneeID  string
	Title       string
	Description string
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResolvedAt  time.Time
}

// Validate checks structural integrity.
func (t *Ticket) Validate() error {
	if t.ID == "" {
		return ErrEmptyTicketID
	}
	if t.RoomID == "" {
		return ErrEmptyRoomID
	}
	if t.ReporterID == "" {
		return ErrEmptyReporterID
	}
	if t.Title == "" {
		return ErrEmptyTitle
	}
	if _, ok := ParseTicketStatus(string(t.Status)); !ok {
		return ErrInvalidStatus
	}
	if t.Status != TicketStatusOpen && t.AssigneeID == "" {
		return ErrEmptyAssigneeID
	}
	return nil
}

// TicketRepository persists maintenance tickets.
type TicketRepository interface {
	Get(ctx context.Context, id string) (*Ticket, error)
	ListByReporter(ctx context.Context, reporterID string) ([]Ticket, error)
	ListByAssignee(ctx context.Context, assigneeID string) ([]Ticket, error)
	ListAll(ctx context.Context) ([]Ticket, error)
	Save(ctx context.Context, ticket *Ticket) error
}
