package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	maintenance "dormitory-cloud/internal/maintenance/domain"
	"dormitory-cloud/internal/observability/metrics"
)

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

// SystemClock uses wall clock time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// TicketService manages the maintenance ticket lifecycle.
type TicketService struct {
	tickets maintenance.TicketRepository
	clock   Clock
}

// NewTicketService constructs a service.
func NewTicketService(tickets maintenance.TicketRepository, clock Clock) (*TicketService, error) {
	if tickets == nil {
		return nil, errors.New("ticket service: nil repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &TicketService{tickets: tickets, clock: clock}, nil
}

// CreateInput carries a new maintenance report.
type CreateInput struct {
	RoomID      string
	ReporterID  string
	Title       string
	Description string
}

// Create opens a new ticket.
func (s *TicketService) Create(ctx context.Context, input CreateInput) (*maintenance.Ticket, error) {
	now := s.clock.Now()
	ticket := &maintenance.Ticket{
		ID:          uuid.NewString(),
		RoomID:      input.RoomID,
		ReporterID:  input.ReporterID,
		Title:       input.Title,
		Description: input.Description,
		Status:      maintenance.TicketStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := ticket.Validate(); err != nil {
		return nil, err
	}
	if err := s.tickets.Save(ctx, ticket); err != nil {
		return nil, err
	}
	metrics.IncMaintenanceTransition(string(maintenance.TicketStatusOpen))
	return ticket, nil
}

// Transition moves a ticket to a new status. Assigning requires the
// mechanic's id; resolving stamps the resolution time.
func (s *TicketService) Transition(ctx context.Context, id string, to maintenance.TicketStatus, assigneeID string) (*maintenance.Ticket, error) {
	ticket, err := s.tickets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, maintenance.ErrTicketNotFound
	}
	if !maintenance.CanTransition(ticket.Status, to) {
		return nil, maintenance.ErrInvalidTransition
	}
	if to == maintenance.TicketStatusAssigned {
		if assigneeID == "" {
			return nil, maintenance.ErrEmptyAssigneeID
		}
		ticket.AssigneeID = assigneeID
	}
	ticket.Status = to
	ticket.UpdatedAt = s.clock.Now()
	if to == maintenance.TicketStatusResolved {
		ticket.ResolvedAt = ticket.UpdatedAt
	}
	if err := ticket.Validate(); err != nil {
		return nil, err
	}
	if err := s.tickets.Save(ctx, ticket); err != nil {
		return nil, err
	}
	metrics.IncMaintenanceTransition(string(to))
	return ticket, nil
}

// Get loads a ticket by id, nil when absent.
func (s *TicketService) Get(ctx context.Context, id string) (*maintenance.Ticket, error) {
	if id == "" {
		return nil, maintenance.ErrEmptyTicketID
	}
	return s.tickets.Get(ctx, id)
}

// ListForReporter returns a tenant's own reports.
func (s *TicketService) ListForReporter(ctx context.Context, reporterID string) ([]maintenance.Ticket, error) {
	return s.tickets.ListByReporter(ctx, reporterID)
}

// ListForAssignee returns a mechanic's work queue.
func (s *TicketService) ListForAssignee(ctx context.Context, assigneeID string) ([]maintenance.Ticket, error) {
	return s.tickets.ListByAssignee(ctx, assigneeID)
}

// ListAll returns every ticket.
func (s *TicketService) ListAll(ctx context.Context) ([]maintenance.Ticket, error) {
	return s.tickets.ListAll(ctx)
}
