package memory

import (
	"context"
	"sort"
	"sync"

	maintenance "dormitory-cloud/internal/maintenance/domain"
)

// TicketRepository is an in-memory TicketRepository for tests.
type TicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]maintenance.Ticket
}

// NewTicketRepository constructs an empty repository.
func NewTicketRepository() *TicketRepository {
	return &TicketRepository{tickets: make(map[string]maintenance.Ticket)}
}

func (r *TicketRepository) Get(_ context.Context, id string) (*maintenance.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, nil
	}
	copied := ticket
	return &copied, nil
}

func (r *TicketRepository) ListByReporter(_ context.Context, reporterID string) ([]maintenance.Ticket, error) {
	return r.list(func(t maintenance.Ticket) bool { return t.ReporterID == reporterID }), nil
}

func (r *TicketRepository) ListByAssignee(_ context.Context, assigneeID string) ([]maintenance.Ticket, error) {
	return r.list(func(t maintenance.Ticket) bool { return t.AssigneeID == assigneeID }), nil
}

func (r *TicketRepository) ListAll(context.Context) ([]maintenance.Ticket, error) {
	return r.list(func(maintenance.Ticket) bool { return true }), nil
}

func (r *TicketRepository) Save(_ context.Context, ticket *maintenance.Ticket) error {
	if err := ticket.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *TicketRepository) list(keep func(maintenance.Ticket) bool) []maintenance.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []maintenance.Ticket
	for _, ticket := range r.tickets {
		if keep(ticket) {
			result = append(result, ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}
