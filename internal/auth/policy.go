package auth

import (
	"net/http"
	"strings"
)

// Policy determines required roles by request.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth/RBAC.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredRole resolves required role for the request.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case path == "/api/v1/auth/register":
		return RoleAdmin, true
	case path == "/api/v1/branches" || path == "/api/v1/buildings" ||
		path == "/api/v1/rooms" || path == "/api/v1/equipment":
		if method == http.MethodGet {
			return RoleTenant, true
		}
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/branches/") ||
		strings.HasPrefix(path, "/api/v1/buildings/") ||
		strings.HasPrefix(path, "/api/v1/rooms/") ||
		strings.HasPrefix(path, "/api/v1/equipment/"):
		if method == http.MethodGet {
			return RoleTenant, true
		}
		return RoleAdmin, true
	case path == "/api/v1/contracts" || strings.HasPrefix(path, "/api/v1/contracts/"):
		if method == http.MethodGet {
			return RoleTenant, true
		}
		return RoleManager, true
	case path == "/api/v1/meter-readings":
		if method == http.MethodGet {
			return RoleTenant, true
		}
		return RoleManager, true
	case path == "/api/v1/invoices":
		return RoleTenant, true
	case strings.HasPrefix(path, "/api/v1/invoices/"):
		if method == http.MethodGet {
			if strings.Contains(path, "/export.") {
				return RoleManager, true
			}
			return RoleTenant, true
		}
		return RoleTenant, true
	case path == "/api/v1/exports/invoices.csv":
		return RoleManager, true
	case path == "/api/v1/reports/billing.xlsx":
		return RoleManager, true
	case path == "/api/v1/maintenance" || strings.HasPrefix(path, "/api/v1/maintenance/"):
		return RoleTenant, true
	case path == "/api/v1/dashboard/summary":
		return RoleTenant, true
	}

	if strings.HasPrefix(path, "/api/") {
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return RoleTenant, true
		}
		return RoleManager, true
	}
	return "", false
}
