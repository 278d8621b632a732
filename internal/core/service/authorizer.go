package service

import "github.com/ecomhub/storefront-api/internal/core/domain"

// Authorize reports whether a subject holding subjectRoles may invoke an
// operation that requires the given role. ROLE_ADMIN satisfies every check.
func Authorize(subjectRoles []domain.Role, required domain.Role) bool {
	for _, r := range subjectRoles {
		if r == required || r == domain.RoleAdmin {
			return true
		}
	}
	return false
}
