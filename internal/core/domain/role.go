package domain

import (
	"fmt"
	"strings"
)

// Role is a coarse permission group. The set is closed.
type Role string

const (
	RoleUser   Role = "ROLE_USER"
	RoleSeller Role = "ROLE_SELLER"
	RoleAdmin  Role = "ROLE_ADMIN"
)

// AllRoles lists the reference roles seeded into the credential store.
var AllRoles = []Role{RoleUser, RoleSeller, RoleAdmin}

func (r Role) String() string { return string(r) }

// ParseRole maps a signup or admin-supplied label to a Role. Short labels
// ("user", "seller", "admin") and canonical names ("ROLE_ADMIN") are both
// accepted, case-insensitively.
func ParseRole(label string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "user", "role_user":
		return RoleUser, nil
	case "seller", "role_seller":
		return RoleSeller, nil
	case "admin", "role_admin":
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("%w: %q", ErrRoleNotFound, label)
}

// ParseRoles resolves every label and drops duplicates while keeping the
// first-seen order. An empty input resolves to RoleUser.
func ParseRoles(labels []string) ([]Role, error) {
	if len(labels) == 0 {
		return []Role{RoleUser}, nil
	}
	seen := make(map[Role]struct{}, len(labels))
	roles := make([]Role, 0, len(labels))
	for _, l := range labels {
		r, err := ParseRole(l)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		roles = append(roles, r)
	}
	return roles, nil
}
