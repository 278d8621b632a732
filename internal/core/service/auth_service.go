package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// dummyHash is compared against when the username is unknown so that a miss
// costs the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("storefront-dummy-password"), bcrypt.DefaultCost)
	return h
})

// AuthService implements signup, signin and per-request authentication.
type AuthService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	issuer   ports.TokenIssuer
	verifier ports.TokenVerifier
	audit    ports.AuditSink
	logger   zerolog.Logger

	hashCost         int
	now              func() time.Time
	privilegedSignup bool
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	issuer ports.TokenIssuer,
	verifier ports.TokenVerifier,
	audit ports.AuditSink,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:            users,
		roles:            roles,
		issuer:           issuer,
		verifier:         verifier,
		audit:            audit,
		logger:           logger,
		hashCost:         bcrypt.DefaultCost,
		now:              time.Now,
		privilegedSignup: true,
	}
}

// AllowPrivilegedSignup controls whether signup may request roles other than
// ROLE_USER. When disallowed such requests fail with ErrForbidden and roles
// must be granted through AssignRoles.
func (s *AuthService) AllowPrivilegedSignup(allow bool) {
	s.privilegedSignup = allow
}

// Signup registers a new user. Username and email uniqueness are checked up
// front and again by the store's unique constraints, so concurrent signups for
// the same name yield exactly one account.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	if len(in.Password) > maxPasswordBytes {
		return nil, domain.NewAPIError("password must be at most %d bytes", maxPasswordBytes)
	}

	taken, err := s.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("signup: check username: %w", err)
	}
	if taken {
		return nil, domain.ErrDuplicateUsername
	}

	taken, err = s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("signup: check email: %w", err)
	}
	if taken {
		return nil, domain.ErrDuplicateEmail
	}

	roles, err := s.resolveRoles(ctx, in.Roles)
	if err != nil {
		return nil, err
	}
	if !s.privilegedSignup {
		for _, r := range roles {
			if r != domain.RoleUser {
				return nil, domain.ErrForbidden
			}
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) || errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("signup: persist user: %w", err)
	}

	s.record(domain.AuthEventSignup, created.Username, in.Client, "")
	s.logger.Info().Str("username", created.Username).Strs("roles", created.RoleNames()).Msg("user registered")
	return created, nil
}

// Signin verifies the password and issues a token. Unknown usernames and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Signin(ctx context.Context, in ports.SigninInput) (*ports.SigninResult, error) {
	user, err := s.users.FindByUsername(ctx, in.Username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("signin: load user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(in.Password))
		s.record(domain.AuthEventSigninFailure, in.Username, in.Client, "unknown user")
		return nil, domain.ErrBadCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		s.record(domain.AuthEventSigninFailure, in.Username, in.Client, "password mismatch")
		return nil, domain.ErrBadCredentials
	}

	token, err := s.issuer.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("signin: %w", err)
	}

	s.record(domain.AuthEventSigninSuccess, user.Username, in.Client, "")
	s.logger.Info().Str("username", user.Username).Time("expires_at", token.ExpiresAt).Msg("signed in")
	return &ports.SigninResult{User: user, Token: token}, nil
}

// Signout only leaves an audit entry; the transport clears the credential.
func (s *AuthService) Signout(_ context.Context, principal *domain.Principal, client ports.ClientMeta) {
	if principal == nil {
		return
	}
	s.record(domain.AuthEventSignout, principal.Username, client, "")
}

// Authenticate verifies rawToken and loads the subject's current roles. Role
// changes take effect on the next request even for tokens already issued.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (*domain.Principal, error) {
	subject, err := s.verifier.Verify(rawToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return domain.NewPrincipal(user), nil
}

func (s *AuthService) CurrentUser(ctx context.Context, principal *domain.Principal) (*domain.User, error) {
	if principal == nil {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("current user: %w", err)
	}
	return user, nil
}

// AssignRoles replaces the role set of userID. Callers are expected to have
// passed the admin gate already.
func (s *AuthService) AssignRoles(ctx context.Context, actor *domain.Principal, userID uint, labels []string) (*domain.User, error) {
	if len(labels) == 0 {
		return nil, domain.NewAPIError("At least one role is required")
	}
	roles, err := s.resolveRoles(ctx, labels)
	if err != nil {
		return nil, err
	}

	user, err := s.users.ReplaceRoles(ctx, userID, roles)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewResourceNotFound("User", "userId", userID)
		}
		return nil, fmt.Errorf("assign roles: %w", err)
	}

	actorName := ""
	if actor != nil {
		actorName = actor.Username
	}
	s.record(domain.AuthEventRolesAssigned, user.Username, ports.ClientMeta{}, "by "+actorName)
	s.logger.Info().Str("username", user.Username).Str("actor", actorName).Strs("roles", user.RoleNames()).Msg("roles assigned")
	return user, nil
}

// resolveRoles parses labels and checks each role against the seeded
// reference data.
func (s *AuthService) resolveRoles(ctx context.Context, labels []string) ([]domain.Role, error) {
	parsed, err := domain.ParseRoles(labels)
	if err != nil {
		return nil, err
	}
	resolved := make([]domain.Role, 0, len(parsed))
	for _, r := range parsed {
		role, err := s.roles.FindByName(ctx, r)
		if err != nil {
			if errors.Is(err, domain.ErrRoleNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("resolve role %s: %w", r, err)
		}
		resolved = append(resolved, role)
	}
	return resolved, nil
}

func (s *AuthService) record(t domain.AuthEventType, username string, client ports.ClientMeta, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuthEvent{
		Type:       t,
		Username:   username,
		ClientIP:   client.IP,
		UserAgent:  client.UserAgent,
		Detail:     detail,
		OccurredAt: s.now().UTC(),
	})
}
