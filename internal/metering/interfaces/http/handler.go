package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"dormitory-cloud/internal/metering/application"
	metering "dormitory-cloud/internal/metering/domain"
)

// ReadingHandler handles /api/v1/meter-readings.
type ReadingHandler struct {
	service *application.ReadingService
}

// NewReadingHandler constructs a handler.
func NewReadingHandler(service *application.ReadingService) (*ReadingHandler, error) {
	if service == nil {
		return nil, errors.New("reading handler: nil service")
	}
	return &ReadingHandler{service: service}, nil
}

// ServeHTTP routes meter reading requests.
func (h *ReadingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleRecord(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type readingResponse struct {
	ID                 string  `json:"id"`
	ContractID         string  `json:"contract_id"`
	ReadingDate        string  `json:"reading_date"`
	PrevWater          float64 `json:"prev_water"`
	CurrentWater       float64 `json:"current_water"`
	PrevElectricity    float64 `json:"prev_electricity"`
	CurrentElectricity float64 `json:"current_electricity"`
}

func toReadingResponse(reading *metering.MeterReading) readingResponse {
	return readingResponse{
		ID:                 reading.ID,
		ContractID:         reading.ContractID,
		ReadingDate:        reading.ReadingDate.Format(time.RFC3339),
		PrevWater:          reading.PrevWater,
		CurrentWater:       reading.CurrentWater,
		PrevElectricity:    reading.PrevElectricity,
		CurrentElectricity: reading.CurrentElectricity,
	}
}

func (h *ReadingHandler) handleList(w http.ResponseWriter, r *http.Request) {
	contractID := r.URL.Query().Get("contract_id")
	if contractID == "" {
		http.Error(w, "contract_id is required", http.StatusBadRequest)
		return
	}
	readings, err := h.service.ListByContract(r.Context(), contractID)
	if err != nil {
		http.Error(w, "list readings error", http.StatusInternalServerError)
		return
	}
	result := make([]readingResponse, 0, len(readings))
	for i := range readings {
		result = append(result, toReadingResponse(&readings[i]))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (h *ReadingHandler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContractID         string   `json:"contract_id"`
		ReadingDate        string   `json:"reading_date"`
		PrevWater          *float64 `json:"prev_water"`
		CurrentWater       float64  `json:"current_water"`
		PrevElectricity    *float64 `json:"prev_electricity"`
		CurrentElectricity float64  `json:"current_electricity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	var readingDate time.Time
	if req.ReadingDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.ReadingDate)
		if err != nil {
			http.Error(w, "reading_date must be RFC3339", http.StatusBadRequest)
			return
		}
		readingDate = parsed.UTC()
	}

	reading, err := h.service.Record(r.Context(), application.RecordInput{
		ContractID:         req.ContractID,
		ReadingDate:        readingDate,
		PrevWater:          req.PrevWater,
		CurrentWater:       req.CurrentWater,
		PrevElectricity:    req.PrevElectricity,
		CurrentElectricity: req.CurrentElectricity,
	})
	if err != nil {
		switch {
		case errors.Is(err, metering.ErrEmptyContractID), errors.Is(err, metering.ErrNegativeReading):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "record reading error", http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toReadingResponse(reading))
}
