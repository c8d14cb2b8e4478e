package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"dormitory-cloud/internal/auth"
	"dormitory-cloud/internal/tenancy/application"
	tenancy "dormitory-cloud/internal/tenancy/domain"
)

// AuthHandler handles registration and login under /api/v1/auth.
type AuthHandler struct {
	service *application.AuthService
}

// NewAuthHandler constructs a handler.
func NewAuthHandler(service *application.AuthService) (*AuthHandler, error) {
	if service == nil {
		return nil, errors.New("auth handler: nil service")
	}
	return &AuthHandler{service: service}, nil
}

// ServeHTTP routes auth requests.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/auth/register" && r.Method == http.MethodPost:
		h.handleRegister(w, r)
	case r.URL.Path == "/api/v1/auth/login" && r.Method == http.MethodPost:
		h.handleLogin(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
		FullName string `json:"full_name"`
		Phone    string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	user, err := h.service.Register(r.Context(), application.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		if errors.Is(err, tenancy.ErrUsernameTaken) {
			http.Error(w, "username taken", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	token, user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, "login error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token": token,
		"user": map[string]any{
			"id":        user.ID,
			"username":  user.Username,
			"role":      user.Role,
			"full_name": user.FullName,
		},
	})
}
