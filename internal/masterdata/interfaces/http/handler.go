package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	masterdata "dormitory-cloud/internal/masterdata/domain"
)

// BranchHandler handles branch CRUD under /api/v1/branches.
type BranchHandler struct {
	repo masterdata.BranchRepository
}

// NewBranchHandler constructs a handler.
func NewBranchHandler(repo masterdata.BranchRepository) (*BranchHandler, error) {
	if repo == nil {
		return nil, errors.New("branch handler: nil repo")
	}
	return &BranchHandler{repo: repo}, nil
}

type branchPayload struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// ServeHTTP routes branch requests.
func (h *BranchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r.URL.Path, "/api/v1/branches")
	switch {
	case id == "" && r.Method == http.MethodGet:
		branches, err := h.repo.List(r.Context())
		if err != nil {
			http.Error(w, "list branches error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, branches)
	case id == "" && r.Method == http.MethodPost:
		var payload branchPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		branch := masterdata.Branch{
			ID:      orNewID(payload.ID),
			Name:    payload.Name,
			Address: payload.Address,
			Phone:   payload.Phone,
		}
		if err := h.repo.Save(r.Context(), &branch); err != nil {
			respondSaveError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, branch)
	case id != "" && r.Method == http.MethodGet:
		branch, err := h.repo.Get(r.Context(), id)
		if err != nil {
			http.Error(w, "get branch error", http.StatusInternalServerError)
			return
		}
		if branch == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, branch)
	case id != "" && r.Method == http.MethodPut:
		var payload branchPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		branch := masterdata.Branch{ID: id, Name: payload.Name, Address: payload.Address, Phone: payload.Phone}
		if err := h.repo.Save(r.Context(), &branch); err != nil {
			respondSaveError(w, err)
			return
		}
		writeJSON(w, branch)
	case id != "" && r.Method == http.MethodDelete:
		if err := h.repo.Delete(r.Context(), id); err != nil {
			http.Error(w, "delete branch error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// BuildingHandler handles building CRUD under /api/v1/buildings.
type BuildingHandler struct {
	repo masterdata.BuildingRepository
}

// NewBuildingHandler constructs a handler.
func NewBuildingHandler(repo masterdata.BuildingRepository) (*BuildingHandler, error) {
	if repo == nil {
		return nil, errors.New("building handler: nil repo")
	}
	return &BuildingHandler{repo: repo}, nil
}

type buildingPayload struct {
	ID       string `json:"id,omitempty"`
	BranchID string `json:"branch_id"`
	Name     string `json:"name"`
	Floors   int    `json:"floors"`
}

// ServeHTTP routes building requests.
func (h *BuildingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r.URL.Path, "/api/v1/buildings")
	switch {
	case id == "" && r.Method == http.MethodGet:
		branchID := r.URL.Query().Get("branch_id")
		if branchID == "" {
			http.Error(w, "branch_id is required", http.StatusBadRequest)
			return
		}
		buildings, err := h.repo.ListByBranch(r.Context(), branchID)
		if err != nil {
			http.Error(w, "list buildings error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, buildings)
	case id == "" && r.Method == http.MethodPost:
		var payload buildingPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		building := masterdata.Building{
			ID:       orNewID(payload.ID),
			BranchID: payload.BranchID,
			Name:     payload.Name,
			Floors:   payload.Floors,
		}
		if err := h.repo.Save(r.Context(), &building); err != nil {
			respondSaveError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, building)
	case id != "" && r.Method == http.MethodGet:
		building, err := h.repo.Get(r.Context(), id)
		if err != nil {
			http.Error(w, "get building error", http.StatusInternalServerError)
			return
		}
		if building == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, building)
	case id != "" && r.Method == http.MethodPut:
		var payload buildingPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		building := masterdata.Building{ID: id, BranchID: payload.BranchID, Name: payload.Name, Floors: payload.Floors}
		if err := h.repo.Save(r.Context(), &building); err != nil {
			respondSaveError(w, err)
			return
		}
		writeJSON(w, building)
	case id != "" && r.Method == http.MethodDelete:
		if err := h.repo.Delete(r.Context(), id); err != nil {
			http.Error(w, "delete building error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// RoomHandler handles room CRUD under /api/v1/rooms.
type RoomHandler struct {
	repo masterdata.RoomRepository
}

// NewRoomHandler constructs a handler.
func NewRoomHandler(repo masterdata.RoomRepository) (*RoomHandler, error) {
	if repo == nil {
		return nil, errors.New("room handler: nil repo")
	}
	return &RoomHandler{repo: repo}, nil
}

type roomPayload struct {
	ID         string  `json:"id,omitempty"`
	BuildingID string  `json:"building_id"`
	RoomNumber string  `json:"room_number"`
	RentPrice  float64 `json:"rent_price"`
	Status     string  `json:"status,omitempty"`
}

// ServeHTTP routes room requests.
func (h *RoomHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r.URL.Path, "/api/v1/rooms")
	switch {
	case id == "" && r.Method == http.MethodGet:
		buildingID := r.URL.Query().Get("building_id")
		if buildingID == "" {
			http.Error(w, "building_id is required", http.StatusBadRequest)
			return
		}
		rooms, err := h.repo.ListByBuilding(r.Context(), buildingID)
		if err != nil {
			http.Error(w, "list rooms error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, rooms)
	case id == "" && r.Method == http.MethodPost:
		var payload roomPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		room := masterdata.Room{
			ID:         orNewID(payload.ID),
			BuildingID: payload.BuildingID,
			RoomNumber: payload.RoomNumber,
			RentPrice:  payload.RentPrice,
			Status:     payload.Status,
		}
		if err := h.repo.Save(r.Context(), &room); err != nil {
			respondSaveError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, room)
	case id != "" && r.Method == http.MethodGet:
		room, err := h.repo.Get(r.Context(), id)
		if err != nil {
			http.Error(w, "get room error", http.StatusInternalServerError)
			return
		}
		if room == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, room)
	case id != "" && r.Method == http.MethodPut:
		var payload roomPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		room := masterdata.Room{
			ID:         id,
			BuildingID: payload.BuildingID,
			RoomNumber: payload.RoomNumber,
			RentPrice:  payload.RentPrice,
			Status:     payload.Status,
		}
		if err := h.repo.Save(r.Context(), &room); err != nil {
			respondSaveError(w, err)
			return
		}
		writeJSON(w, room)
	case id != "" && r.Method == http.MethodDelete:
		if err := h.repo.Delete(r.Context(), id); err != nil {
			http.Error(w, "delete room error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// EquipmentHandler handles equipment CRUD under /api/v1/equipment.
type EquipmentHandler struct {
	repo masterdata.EquipmentRepository
}

// NewEquipmentHandler constructs a handler.
func NewEquipmentHandler(repo masterdata.EquipmentRepository) (*EquipmentHandler, error) {
	if repo == nil {
		return nil, errors.New("equipment handler: nil repo")
	}
	return &EquipmentHandler{repo: repo}, nil
}

type equipmentPayload struct {
	ID        string `json:"id,omitempty"`
	RoomID    string `json:"room_id"`
	Name      string `json:"name"`
	Condition string `json:"condition,omitempty"`
}

// ServeHTTP routes equipment requests.
func (h *EquipmentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := pathSuffix(r.URL.Path, "/api/v1/equipment")
	switch {
	case id == "" && r.Method == http.MethodGet:
		roomID := r.URL.Query().Get("room_id")
		if roomID == "" {
			http.Error(w, "room_id is required", http.StatusBadRequest)
			return
		}
		items, err := h.repo.ListByRoom(r.Context(), roomID)
		if err != nil {
			http.Error(w, "list equipment error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, items)
	case id == "" && r.Method == http.MethodPost:
		var payload equipmentPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		item := masterdata.Equipment{
			ID:        orNewID(payload.ID),
			RoomID:    payload.RoomID,
			Name:      payload.Name,
			Condition: payload.Condition,
		}
		if err := h.repo.Save(r.Context(), &item); err != nil {
			respondSaveError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, item)
	case id != "" && r.Method == http.MethodGet:
		item, err := h.repo.Get(r.Context(), id)
		if err != nil {
			http.Error(w, "get equipment error", http.StatusInternalServerError)
			return
		}
		if item == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, item)
	case id != "" && r.Method == http.MethodPut:
		var payload equipmentPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		item := masterdata.Equipment{ID: id, RoomID: payload.RoomID, Name: payload.Name, Condition: payload.Condition}
		if err := h.repo.Save(r.Context(), &item); err != nil {
			respondSaveError(w, err)
			return
		}
		writeJSON(w, item)
	case id != "" && r.Method == http.MethodDelete:
		if err := h.repo.Delete(r.Context(), id); err != nil {
			http.Error(w, "delete equipment error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func pathSuffix(path, base string) string {
	if path == base {
		return ""
	}
	rest := strings.TrimPrefix(path, base+"/")
	if rest == path {
		return ""
	}
	return strings.TrimSuffix(rest, "/")
}

func orNewID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}

func respondSaveError(w http.ResponseWriter, err error) {
	msg := err.Error()
	if strings.Contains(msg, "empty") || strings.Contains(msg, "invalid") || strings.Contains(msg, "negative") {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	http.Error(w, "save error", http.StatusInternalServerError)
}
