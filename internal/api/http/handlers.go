package apihttp

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
)

// DashboardHandler serves the role dashboards' summary read model:
// per-branch occupancy, outstanding invoice totals and the open
// maintenance workload. Queries go straight to the database; nothing
// here mutates state.
type DashboardHandler struct {
	db *sql.DB
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(db *sql.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

type branchOccupancy struct {
	BranchID   string `json:"branch_id"`
	BranchName string `json:"branch_name"`
	TotalRooms int    `json:"total_rooms"`
	Occupied   int    `json:"occupied"`
	Vacant     int    `json:"vacant"`
}

type dashboardSummary struct {
	Occupancy    []branchOccupancy `json:"occupancy"`
	UnpaidCount  int               `json:"unpaid_count"`
	UnpaidTotal  float64           `json:"unpaid_total"`
	PendingCount int               `json:"pending_count"`
	OpenTickets  int               `json:"open_tickets"`
	ActiveLeases int               `json:"active_leases"`
}

// ServeHTTP handles GET /api/v1/dashboard/summary.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	summary, err := h.querySummary(r.Context())
	if err != nil {
		http.Error(w, "dashboard query error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}

func (h *DashboardHandler) querySummary(ctx context.Context) (*dashboardSummary, error) {
	summary := &dashboardSummary{Occupancy: []branchOccupancy{}}

	rows, err := h.db.QueryContext(ctx, `
SELECT br.id, br.name,
	COUNT(rm.id),
	COUNT(rm.id) FILTER (WHERE rm.status = 'occupied'),
	COUNT(rm.id) FILTER (WHERE rm.status = 'vacant')
FROM branches br
LEFT JOIN buildings bu ON bu.branch_id = br.id
LEFT JOIN rooms rm ON rm.building_id = bu.id
GROUP BY br.id, br.name
ORDER BY br.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var entry branchOccupancy
		if err := rows.Scan(&entry.BranchID, &entry.BranchName, &entry.TotalRooms, &entry.Occupied, &entry.Vacant); err != nil {
			return nil, err
		}
		summary.Occupancy = append(summary.Occupancy, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = h.db.QueryRowContext(ctx, `
SELECT
	COUNT(*) FILTER (WHERE status = 'unpaid'),
	COALESCE(SUM(total_cost) FILTER (WHERE status = 'unpaid'), 0),
	COUNT(*) FILTER (WHERE status = 'pending')
FROM invoices`).Scan(&summary.UnpaidCount, &summary.UnpaidTotal, &summary.PendingCount)
	if err != nil {
		return nil, err
	}

	err = h.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM maintenance_requests WHERE status <> 'resolved'`).Scan(&summary.OpenTickets)
	if err != nil {
		return nil, err
	}

	err = h.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM contracts WHERE LOWER(status) IN ('active', 'complete')`).Scan(&summary.ActiveLeases)
	if err != nil {
		return nil, err
	}

	return summary, nil
}
