package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"dormitory-cloud/internal/billing/application"
)

// CronHandler triggers the monthly billing run over HTTP. The caller
// authenticates with a shared secret, not a user JWT, so an external
// scheduler needs no account. Comparison is constant time.
type CronHandler struct {
	service          *application.MonthlyRunService
	secret           string
	allowQuerySecret bool
}

// NewCronHandler constructs a handler.
func NewCronHandler(service *application.MonthlyRunService, secret string, allowQuerySecret bool) (*CronHandler, error) {
	if service == nil {
		return nil, errors.New("cron handler: nil service")
	}
	if secret == "" {
		return nil, errors.New("cron handler: empty secret")
	}
	return &CronHandler{service: service, secret: secret, allowQuerySecret: allowQuerySecret}, nil
}

type runFailure struct {
	RoomID     string `json:"room_id"`
	ContractID string `json:"contract_id"`
	Error      string `json:"error"`
}

type runResponse struct {
	Success          bool         `json:"success"`
	Message          string       `json:"message"`
	Generated        int          `json:"generated"`
	SkippedNoReading int          `json:"skipped_no_reading"`
	SkippedExisting  int          `json:"skipped_existing"`
	Failed           []runFailure `json:"failed,omitempty"`
}

// ServeHTTP handles GET /api/v1/billing/run.
func (h *CronHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.service.Run(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(runResponse{
			Success: false,
			Message: "billing run failed: " + err.Error(),
		})
		return
	}

	resp := runResponse{
		Success:          true,
		Message:          "billing run completed for " + result.Period.Format("2006-01"),
		Generated:        result.Generated,
		SkippedNoReading: result.SkippedNoReading,
		SkippedExisting:  result.SkippedExisting,
	}
	for _, failure := range result.Failures {
		resp.Failed = append(resp.Failed, runFailure{
			RoomID:     failure.RoomID,
			ContractID: failure.ContractID,
			Error:      failure.Err.Error(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *CronHandler) authorized(r *http.Request) bool {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		candidate := strings.TrimPrefix(header, "Bearer ")
		return secretsEqual(candidate, h.secret)
	}
	if h.allowQuerySecret {
		if candidate := r.URL.Query().Get("secret"); candidate != "" {
			return secretsEqual(candidate, h.secret)
		}
	}
	return false
}

func secretsEqual(candidate, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(secret)) == 1
}
