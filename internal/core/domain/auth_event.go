package domain

import "time"

// AuthEventType names an auditable authentication action.
type AuthEventType string

const (
	AuthEventSignup        AuthEventType = "signup"
	AuthEventSigninSuccess AuthEventType = "signin_success"
	AuthEventSigninFailure AuthEventType = "signin_failure"
	AuthEventSignout       AuthEventType = "signout"
	AuthEventRolesAssigned AuthEventType = "roles_assigned"
)

// AuthEvent is an entry in the authentication audit trail.
type AuthEvent struct {
	Type       AuthEventType
	Username   string
	ClientIP   string
	UserAgent  string
	Detail     string
	OccurredAt time.Time
}
