package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"dormitory-cloud/internal/auth"
	"dormitory-cloud/internal/maintenance/application"
	maintenance "dormitory-cloud/internal/maintenance/domain"
)

// TicketHandler handles /api/v1/maintenance. Tenants see their own
// reports, mechanics their queue, managers everything.
type TicketHandler struct {
	service *application.TicketService
}

// NewTicketHandler constructs a handler.
func NewTicketHandler(service *application.TicketService) (*TicketHandler, error) {
	if service == nil {
		return nil, errors.New("ticket handler: nil service")
	}
	return &TicketHandler{service: service}, nil
}

// ServeHTTP routes maintenance requests.
func (h *TicketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/maintenance" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case path == "/api/v1/maintenance" && r.Method == http.MethodPost:
		h.handleCreate(w, r)
	case strings.HasPrefix(path, "/api/v1/maintenance/") && r.Method == http.MethodPatch:
		id := strings.TrimPrefix(path, "/api/v1/maintenance/")
		h.handleTransition(w, r, id)
	case strings.HasPrefix(path, "/api/v1/maintenance/") && r.Method == http.MethodGet:
		id := strings.TrimPrefix(path, "/api/v1/maintenance/")
		h.handleGet(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type ticketResponse struct {
	ID          string `json:"id"`
	RoomID      string `json:"room_id"`
	ReporterID  string `json:"reporter_id"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	ResolvedAt  string `json:"resolved_at,omitempty"`
}

func toTicketResponse(ticket *maintenance.Ticket) ticketResponse {
	resp := ticketResponse{
		ID:          ticket.ID,
		RoomID:      ticket.RoomID,
		ReporterID:  ticket.ReporterID,
		AssigneeID:  ticket.AssigneeID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      string(ticket.Status),
		CreatedAt:   ticket.CreatedAt.Format(time.RFC3339),
	}
	if !ticket.ResolvedAt.IsZero() {
		resp.ResolvedAt = ticket.ResolvedAt.Format(time.RFC3339)
	}
	return resp
}

func (h *TicketHandler) handleList(w http.ResponseWriter, r *http.Request) {
	role := auth.RoleFromContext(r.Context())
	userID := auth.UserIDFromContext(r.Context())

	var tickets []maintenance.Ticket
	var err error
	switch {
	case auth.RoleAtLeast(role, auth.RoleManager):
		tickets, err = h.service.ListAll(r.Context())
	case role == auth.RoleMechanic:
		tickets, err = h.service.ListForAssignee(r.Context(), userID)
	default:
		tickets, err = h.service.ListForReporter(r.Context(), userID)
	}
	if err != nil {
		http.Error(w, "list tickets error", http.StatusInternalServerError)
		return
	}

	result := make([]ticketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, toTicketResponse(&tickets[i]))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (h *TicketHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	ticket, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "get ticket error", http.StatusInternalServerError)
		return
	}
	if ticket == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if !h.visible(r, ticket) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toTicketResponse(ticket))
}

func (h *TicketHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomID      string `json:"room_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	ticket, err := h.service.Create(r.Context(), application.CreateInput{
		RoomID:      req.RoomID,
		ReporterID:  auth.UserIDFromContext(r.Context()),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, maintenance.ErrEmptyRoomID), errors.Is(err, maintenance.ErrEmptyTitle),
			errors.Is(err, maintenance.ErrEmptyReporterID):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "create ticket error", http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toTicketResponse(ticket))
}

func (h *TicketHandler) handleTransition(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status     string `json:"status"`
		AssigneeID string `json:"assignee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	target, ok := maintenance.ParseTicketStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !ok {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}

	role := auth.RoleFromContext(r.Context())
	userID := auth.UserIDFromContext(r.Context())
	switch target {
	case maintenance.TicketStatusAssigned:
		if !auth.RoleAtLeast(role, auth.RoleManager) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	case maintenance.TicketStatusInProgress, maintenance.TicketStatusResolved:
		if !auth.RoleAtLeast(role, auth.RoleMechanic) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		// A mechanic works only their own queue; managers act on any ticket.
		if role == auth.RoleMechanic {
			ticket, err := h.service.Get(r.Context(), id)
			if err != nil {
				http.Error(w, "get ticket error", http.StatusInternalServerError)
				return
			}
			if ticket == nil {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if ticket.AssigneeID != userID {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}
	default:
		http.Error(w, "unsupported transition", http.StatusBadRequest)
		return
	}

	ticket, err := h.service.Transition(r.Context(), id, target, req.AssigneeID)
	if err != nil {
		switch {
		case errors.Is(err, maintenance.ErrTicketNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, maintenance.ErrInvalidTransition):
			http.Error(w, "invalid status transition", http.StatusConflict)
		case errors.Is(err, maintenance.ErrEmptyAssigneeID):
			http.Error(w, "assignee_id is required", http.StatusBadRequest)
		default:
			http.Error(w, "update ticket error", http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toTicketResponse(ticket))
}

func (h *TicketHandler) visible(r *http.Request, ticket *maintenance.Ticket) bool {
	role := auth.RoleFromContext(r.Context())
	if auth.RoleAtLeast(role, auth.RoleManager) {
		return true
	}
	userID := auth.UserIDFromContext(r.Context())
	if role == auth.RoleMechanic {
		return ticket.AssigneeID == userID || ticket.ReporterID == userID
	}
	return ticket.ReporterID == userID
}
