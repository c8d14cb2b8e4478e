package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	secret := []byte("test-secret")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthMiddleware_TenantForbiddenRoomCreate(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "user-1", RoleTenant)
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rooms", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_ManagerAllowedContractCreate(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "user-2", RoleManager)
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAuthMiddleware_ExemptPath(t *testing.T) {
	secret := []byte("test-secret")
	policy := NewDefaultPolicy([]string{"/healthz"}, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestSignAndParseJWT(t *testing.T) {
	secret := []byte("test-secret")
	token, err := SignJWT("user-77", RoleMechanic, secret, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	claims, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "user-77" {
		t.Fatalf("subject mismatch: got=%s", claims.Subject)
	}
	if claims.Role != string(RoleMechanic) {
		t.Fatalf("role mismatch: got=%s", claims.Role)
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := VerifyPassword(hash, "correct-horse"); err != nil {
		t.Fatalf("verify password: %v", err)
	}
	if err := VerifyPassword(hash, "wrong-horse"); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func mustToken(t *testing.T, secret []byte, userID string, role Role) string {
	t.Helper()
	token, err := SignJWT(userID, role, secret, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}
