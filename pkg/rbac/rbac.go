// Package rbac gates routes on the role stored by middleware.Auth.
package rbac

import (
	"net/http"
	"sync"

	"github.com/gamevault/storefront/pkg/middleware"
	"github.com/gamevault/storefront/pkg/response"
)

// Wildcard grants every permission.
const Wildcard = "*"

var (
	mu       sync.RWMutex
	policies = map[string]map[string]bool{}
)

// Grant gives role each of the listed permissions.
func Grant(role string, permissions ...string) {
	mu.Lock()
	defer mu.Unlock()
	set, ok := policies[role]
	if !ok {
		set = map[string]bool{}
		policies[role] = set
	}
	for _, p := range permissions {
		set[p] = true
	}
}

// Can reports whether role holds permission.
func Can(role, permission string) bool {
	mu.RLock()
	defer mu.RUnlock()
	set := policies[role]
	return set[Wildcard] || set[permission]
}

// HasRole allows only callers whose role is one of roles.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r)
			if !ok || !allowed[role] {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Allow permits callers whose role has been granted permission.
func Allow(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r)
			if !ok || !Can(role, permission) {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
