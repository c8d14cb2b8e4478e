package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dormitory-cloud/internal/billing/application"
	billing "dormitory-cloud/internal/billing/domain"
	"dormitory-cloud/internal/billing/infrastructure/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newRunService(t *testing.T, contracts *memory.ContractSource, readings *memory.ReadingSource) *application.MonthlyRunService {
	t.Helper()
	svc, err := application.NewMonthlyRunService(
		contracts,
		readings,
		memory.NewInvoiceRepository(),
		billing.DefaultRateTable(),
		fixedClock{now: time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)},
		log.New(io.Discard, "", 0),
	)
	if err != nil {
		t.Fatalf("NewMonthlyRunService: %v", err)
	}
	return svc
}

func billableFixture() (*memory.ContractSource, *memory.ReadingSource) {
	contracts := &memory.ContractSource{Contracts: []billing.BillableContract{
		{ContractID: "contract-1", RoomID: "room-1", UserID: "user-1", RentPrice: 5000, WaterConfigType: "unit"},
	}}
	readings := &memory.ReadingSource{Readings: map[string]billing.ReadingPair{
		"contract-1": {PrevElectricity: 1000, CurrentElectricity: 1050, PrevWater: 100, CurrentWater: 110},
	}}
	return contracts, readings
}

func TestCronHandler_RejectsMissingSecret(t *testing.T) {
	contracts, readings := billableFixture()
	handler, err := NewCronHandler(newRunService(t, contracts, readings), "cron-secret", false)
	if err != nil {
		t.Fatalf("NewCronHandler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/run", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCronHandler_RejectsWrongSecret(t *testing.T) {
	contracts, readings := billableFixture()
	handler, err := NewCronHandler(newRunService(t, contracts, readings), "cron-secret", false)
	if err != nil {
		t.Fatalf("NewCronHandler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/run", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCronHandler_RunsWithBearerSecret(t *testing.T) {
	contracts, readings := billableFixture()
	handler, err := NewCronHandler(newRunService(t, contracts, readings), "cron-secret", false)
	if err != nil {
		t.Fatalf("NewCronHandler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/run", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success   bool `json:"success"`
		Generated int  `json:"generated"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success")
	}
	if resp.Generated != 1 {
		t.Fatalf("expected 1 generated, got %d", resp.Generated)
	}
}

func TestCronHandler_QuerySecretOnlyWhenAllowed(t *testing.T) {
	contracts, readings := billableFixture()

	restricted, err := NewCronHandler(newRunService(t, contracts, readings), "cron-secret", false)
	if err != nil {
		t.Fatalf("NewCronHandler: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/run?secret=cron-secret", nil)
	rec := httptest.NewRecorder()
	restricted.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("query secret must be rejected by default, got %d", rec.Code)
	}

	permissive, err := NewCronHandler(newRunService(t, contracts, readings), "cron-secret", true)
	if err != nil {
		t.Fatalf("NewCronHandler: %v", err)
	}
	rec = httptest.NewRecorder()
	permissive.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/billing/run?secret=cron-secret", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with allowed query secret, got %d", rec.Code)
	}
}

func TestCronHandler_ListingFailureIs500(t *testing.T) {
	contracts := &memory.ContractSource{Err: errors.New("store down")}
	handler, err := NewCronHandler(newRunService(t, contracts, &memory.ReadingSource{}), "cron-secret", false)
	if err != nil {
		t.Fatalf("NewCronHandler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/run", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
