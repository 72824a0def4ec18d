package auth

import (
	"net/http"
	"strings"

	"educonnect/internal/httpx"
)

// Policy is a named predicate over the caller's role. Policies are built when
// routes are registered; nothing is interpreted per request.
type Policy struct {
	name  string
	allow func(Role) bool
}

func (p Policy) Name() string {
	return p.name
}

// Allows is pure: no I/O, no state.
func (p Policy) Allows(c *Claims) bool {
	if c == nil || p.allow == nil {
		return false
	}
	return p.allow(c.Role)
}

// RequireRoles allows any of the given roles.
func RequireRoles(roles ...Role) Policy {
	allowed := make(map[Role]struct{}, len(roles))
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
		names = append(names, string(r))
	}
	return Policy{
		name: "Roles(" + strings.Join(names, ",") + ")",
		allow: func(r Role) bool {
			_, ok := allowed[r]
			return ok
		},
	}
}

var (
	Authenticated = Policy{name: "Authenticated", allow: func(Role) bool { return true }}

	ProfessorPolicy = Policy{name: "ProfessorPolicy", allow: RequireRoles(RoleTeacher, RoleAdmin).allow}

	AdminPolicy = Policy{name: "AdminPolicy", allow: RequireRoles(RoleAdmin).allow}
)

// Authorize gates next behind p. It must run after Authenticate: a request
// without claims gets 401, a denied one gets 403.
func Authorize(p Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				httpx.Unauthorized(w, "bearer token required")
				return
			}
			if !p.Allows(claims) {
				httpx.Forbidden(w, "operation requires "+p.name)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
