package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	maintenance "dormitory-cloud/internal/maintenance/domain"
)

const defaultTicketsTable = "maintenance_requests"

// TicketRepository is a Postgres implementation for maintenance
// tickets.
type TicketRepository struct {
	db    *sql.DB
	table string
}

// NewTicketRepository constructs a repository.
func NewTicketRepository(db *sql.DB, opts ...TicketOption) *TicketRepository {
	repo := &TicketRepository{db: db, table: defaultTicketsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// TicketOption configures the repository.
type TicketOption func(*TicketRepository)

// WithTicketTable overrides the default table name.
func WithTicketTable(table string) TicketOption {
	return func(repo *TicketRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

const ticketColumns = `id, room_id, reporter_id, assignee_id, title, description, status,
	created_at, updated_at, resolved_at`

// Get loads a ticket by id.
func (r *TicketRepository) Get(ctx context.Context, id string) (*maintenance.Ticket, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("ticket repo: nil db")
	}
	if id == "" {
		return nil, maintenance.ErrEmptyTicketID
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE id = $1
LIMIT 1`, ticketColumns, r.table)
	return scanTicket(r.db.QueryRowContext(ctx, query, id))
}

// ListByReporter returns a reporter's tickets, newest first.
func (r *TicketRepository) ListByReporter(ctx context.Context, reporterID string) ([]maintenance.Ticket, error) {
	return r.listWhere(ctx, "reporter_id = $1", reporterID)
}

// ListByAssignee returns a mechanic's queue, newest first.
func (r *TicketRepository) ListByAssignee(ctx context.Context, assigneeID string) ([]maintenance.Ticket, error) {
	return r.listWhere(ctx, "assignee_id = $1", assigneeID)
}

// ListAll returns all tickets, newest first.
func (r *TicketRepository) ListAll(ctx context.Context) ([]maintenance.Ticket, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("ticket repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
ORDER BY created_at DESC`, ticketColumns, r.table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (r *TicketRepository) listWhere(ctx context.Context, clause string, arg any) ([]maintenance.Ticket, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("ticket repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT %s
FROM %s
WHERE %s
ORDER BY created_at DESC`, ticketColumns, r.table, clause)
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

// Save upserts a ticket.
func (r *TicketRepository) Save(ctx context.Context, ticket *maintenance.Ticket) error {
	if r == nil || r.db == nil {
		return errors.New("ticket repo: nil db")
	}
	if ticket == nil {
		return errors.New("ticket repo: nil ticket")
	}
	if err := ticket.Validate(); err != nil {
		return err
	}

	var assignee sql.NullString
	if ticket.AssigneeID != "" {
		assignee = sql.NullString{String: ticket.AssigneeID, Valid: true}
	}
	var resolvedAt sql.NullTime
	if !ticket.ResolvedAt.IsZero() {
		resolvedAt = sql.NullTime{Time: ticket.ResolvedAt.UTC(), Valid: true}
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id, room_id, reporter_id, assignee_id, title, description, status, resolved_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)
ON CONFLICT (id)
DO UPDATE SET
	assignee_id = EXCLUDED.assignee_id,
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	status = EXCLUDED.status,
	resolved_at = EXCLUDED.resolved_at,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(ctx, query,
		ticket.ID, ticket.RoomID, ticket.ReporterID, assignee,
		ticket.Title, ticket.Description, string(ticket.Status), resolvedAt)
	return err
}

func scanTicket(row interface{ Scan(dest ...any) error }) (*maintenance.Ticket, error) {
	var ticket maintenance.Ticket
	var status string
	var assignee sql.NullString
	var resolvedAt sql.NullTime
	if err := row.Scan(
		&ticket.ID,
		&ticket.RoomID,
		&ticket.ReporterID,
		&assignee,
		&ticket.Title,
		&ticket.Description,
		&status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&resolvedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	ticket.Status = maintenance.TicketStatus(status)
	if assignee.Valid {
		ticket.AssigneeID = assignee.String
	}
	if resolvedAt.Valid {
		ticket.ResolvedAt = resolvedAt.Time.UTC()
	}
	ticket.CreatedAt = ticket.CreatedAt.UTC()
	ticket.UpdatedAt = ticket.UpdatedAt.UTC()
	return &ticket, nil
}

func collectTickets(rows *sql.Rows) ([]maintenance.Ticket, error) {
	var result []maintenance.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
