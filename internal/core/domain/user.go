package domain

import "time"

// User models an identity that can sign in to the storefront.
type User struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleNames returns the user's roles as their canonical string form.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.String())
	}
	return names
}

// Principal is the authenticated caller of a request. Handlers pass it
// explicitly into services; an anonymous caller is represented by a nil
// *Principal.
type Principal struct {
	UserID   uint
	Username string
	Email    string
	Roles    []Role
}

// NewPrincipal builds a Principal from a freshly loaded user.
func NewPrincipal(u *User) *Principal {
	roles := make([]Role, len(u.Roles))
	copy(roles, u.Roles)
	return &Principal{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    roles,
	}
}
