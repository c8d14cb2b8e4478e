package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"dormitory-cloud/internal/audit"
	"dormitory-cloud/internal/auth"
	"dormitory-cloud/internal/tenancy/application"
	tenancy "dormitory-cloud/internal/tenancy/domain"
)

// ContractHandler handles contract APIs under /api/v1/contracts.
type ContractHandler struct {
	service     *application.ContractService
	auditLogger audit.Logger
}

// NewContractHandler constructs a handler.
func NewContractHandler(service *application.ContractService, auditLogger audit.Logger) (*ContractHandler, error) {
	if service == nil {
		return nil, errors.New("contract handler: nil service")
	}
	return &ContractHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes contract requests.
func (h *ContractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/contracts" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case path == "/api/v1/contracts" && r.Method == http.MethodPost:
		h.handleCreate(w, r)
	case strings.HasPrefix(path, "/api/v1/contracts/") && strings.HasSuffix(path, "/terminate") && r.Method == http.MethodPost:
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/api/v1/contracts/"), "/terminate")
		h.handleTerminate(w, r, id)
	case strings.HasPrefix(path, "/api/v1/contracts/") && r.Method == http.MethodGet:
		id := strings.TrimPrefix(path, "/api/v1/contracts/")
		h.handleGet(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type contractResponse struct {
	ID              string   `json:"id"`
	RoomID          string   `json:"room_id"`
	UserID          string   `json:"user_id"`
	Status          string   `json:"status"`
	WaterConfigType string   `json:"water_config_type"`
	WaterFixedPrice *float64 `json:"water_fixed_price,omitempty"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date,omitempty"`
}

func toContractResponse(contract *tenancy.Contract) contractResponse {
	resp := contractResponse{
		ID:              contract.ID,
		RoomID:          contract.RoomID,
		UserID:          contract.UserID,
		Status:          string(contract.Status),
		WaterConfigType: contract.WaterConfigType,
		WaterFixedPrice: contract.WaterFixedPrice,
		StartDate:       contract.StartDate.Format(time.RFC3339),
	}
	if !contract.EndDate.IsZero() {
		resp.EndDate = contract.EndDate.Format(time.RFC3339)
	}
	return resp
}

func (h *ContractHandler) handleList(w http.ResponseWriter, r *http.Request) {
	role := auth.RoleFromContext(r.Context())
	userID := r.URL.Query().Get("user_id")
	// Tenants only ever see their own contracts.
	if role == auth.RoleTenant || userID == "" && !auth.RoleAtLeast(role, auth.RoleManager) {
		userID = auth.UserIDFromContext(r.Context())
	}
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	contracts, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "list contracts error", http.StatusInternalServerError)
		return
	}
	result := make([]contractResponse, 0, len(contracts))
	for i := range contracts {
		result = append(result, toContractResponse(&contracts[i]))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (h *ContractHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	contract, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, "get contract error", http.StatusInternalServerError)
		return
	}
	if contract == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	role := auth.RoleFromContext(r.Context())
	if role == auth.RoleTenant && contract.UserID != auth.UserIDFromContext(r.Context()) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toContractResponse(contract))
}

func (h *ContractHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomID          string   `json:"room_id"`
		UserID          string   `json:"user_id"`
		Status          string   `json:"status"`
		WaterConfigType string   `json:"water_config_type"`
		WaterFixedPrice *float64 `json:"water_fixed_price"`
		StartDate       string   `json:"start_date"`
		EndDate         string   `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		http.Error(w, "start_date must be RFC3339", http.StatusBadRequest)
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		http.Error(w, "end_date must be RFC3339", http.StatusBadRequest)
		return
	}

	contract, err := h.service.Create(r.Context(), application.CreateInput{
		RoomID:          req.RoomID,
		UserID:          req.UserID,
		Status:          req.Status,
		WaterConfigType: req.WaterConfigType,
		WaterFixedPrice: req.WaterFixedPrice,
		StartDate:       start,
		EndDate:         end,
	})
	if err != nil {
		respondContractError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toContractResponse(contract))
	h.logAudit(r, "contract.create", contract.ID)
}

func (h *ContractHandler) handleTerminate(w http.ResponseWriter, r *http.Request, id string) {
	contract, err := h.service.Terminate(r.Context(), id)
	if err != nil {
		respondContractError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toContractResponse(contract))
	h.logAudit(r, "contract.terminate", id)
}

func (h *ContractHandler) logAudit(r *http.Request, action, contractID string) {
	if h.auditLogger == nil {
		return
	}
	entry := audit.Entry{
		Actor:        auth.UserIDFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "contract",
		ResourceID:   contractID,
		IP:           r.RemoteAddr,
		UserAgent:    r.UserAgent(),
	}
	_ = h.auditLogger.Log(r.Context(), entry)
}

func respondContractError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tenancy.ErrContractNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, tenancy.ErrRoomNotFound), errors.Is(err, tenancy.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, tenancy.ErrRoomOccupied):
		http.Error(w, "room occupied", http.StatusConflict)
	case errors.Is(err, tenancy.ErrInvalidStatus), errors.Is(err, tenancy.ErrInvalidWaterConfig),
		errors.Is(err, tenancy.ErrNegativeValue), errors.Is(err, tenancy.ErrEmptyRoomID),
		errors.Is(err, tenancy.ErrEmptyUserID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "contract error", http.StatusInternalServerError)
	}
}

func parseOptionalDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}
