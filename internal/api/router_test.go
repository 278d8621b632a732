package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
	"github.com/ecomhub/storefront-api/internal/core/service"
)

// memUserRepo is an in-memory credential store with unique usernames and
// emails.
type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*domain.User{}}
}

func (r *memUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[username]
	return ok, nil
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return nil, domain.ErrDuplicateUsername
	}
	r.nextID++
	cp := *u
	cp.ID = r.nextID
	r.users[cp.Username] = &cp
	out := cp
	return &out, nil
}

func (r *memUserRepo) ReplaceRoles(_ context.Context, userID uint, roles []domain.Role) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == userID {
			u.Roles = roles
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type seededRoles struct{}

func (seededRoles) FindByName(_ context.Context, role domain.Role) (domain.Role, error) {
	return role, nil
}

type denyAll struct{}

func (denyAll) Allow(_ context.Context, _ string, limit int, window time.Duration) (ports.RateLimitDecision, error) {
	return ports.RateLimitDecision{Allowed: false, Limit: limit, ResetAt: time.Now().Add(window)}, nil
}

var routerSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestRouter(t *testing.T, limiter ports.RateLimiter) *echo.Echo {
	t.Helper()
	tokens, err := service.NewTokenService(service.TokenConfig{
		Secret:   routerSecret,
		Lifetime: time.Hour,
		Cookie:   service.CookieConfig{Name: "ecomJwt", Path: "/api", HTTPOnly: true},
	})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	auth := service.NewAuthService(newMemUserRepo(), seededRoles{}, tokens, tokens, nil, zerolog.Nop())

	reg := prometheus.NewRegistry()
	return NewRouter(Dependencies{
		Auth:         auth,
		Transport:    tokens,
		Limiter:      limiter,
		SigninLimit:  5,
		SigninWindow: time.Minute,
		ImageMaxSize: "1K",
		Registerer:   reg,
		Gatherer:     reg,
		Logger:       zerolog.Nop(),
	})
}

func do(e *echo.Echo, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "ecomJwt" {
			return ck
		}
	}
	t.Fatalf("no session cookie in response, headers: %v", rec.Header())
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return body
}

func signup(t *testing.T, e *echo.Echo, body string) {
	t.Helper()
	if rec := do(e, http.MethodPost, "/api/auth/signup", body); rec.Code != http.StatusOK {
		t.Fatalf("signup %s: status %d body %s", body, rec.Code, rec.Body.String())
	}
}

func TestRouter_SignupSigninDefaultRole(t *testing.T) {
	e := newTestRouter(t, nil)
	signup(t, e, `{"username":"alice","email":"a@x.com","password":"p1"}`)

	rec := do(e, http.MethodPost, "/api/auth/signin", `{"username":"alice","password":"p1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("signin: status %d body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	roles, _ := body["roles"].([]any)
	if len(roles) != 1 || roles[0] != "ROLE_USER" {
		t.Fatalf("roles = %v", body["roles"])
	}
	ck := sessionCookie(t, rec)
	if ck.Value == "" || !ck.HttpOnly || ck.MaxAge != 3600 {
		t.Fatalf("unexpected cookie %+v", ck)
	}

	user := do(e, http.MethodGet, "/api/auth/user", "", ck)
	if user.Code != http.StatusOK {
		t.Fatalf("/user: status %d", user.Code)
	}
	if decode(t, user)["username"] != "alice" {
		t.Fatalf("unexpected /user body %s", user.Body.String())
	}

	name := do(e, http.MethodGet, "/api/auth/username", "", ck)
	if name.Body.String() != "alice" {
		t.Fatalf("/username = %q", name.Body.String())
	}
}

func TestRouter_DuplicateUsername(t *testing.T) {
	e := newTestRouter(t, nil)
	signup(t, e, `{"username":"bob","email":"b@x.com","password":"p2"}`)

	rec := do(e, http.MethodPost, "/api/auth/signup", `{"username":"bob","email":"other@x.com","password":"p3"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decode(t, rec)
	msg, _ := body["message"].(string)
	if !strings.Contains(msg, "Username already exists") || body["status"] != false {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestRouter_DuplicateEmail(t *testing.T) {
	e := newTestRouter(t, nil)
	signup(t, e, `{"username":"carol","email":"c@x.com","password":"p"}`)

	rec := do(e, http.MethodPost, "/api/auth/signup", `{"username":"carol2","email":"c@x.com","password":"p"}`)
	if rec.Code != http.StatusBadRequest || decode(t, rec)["message"] != "Error: Email is already taken!" {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_PasswordByteLimit(t *testing.T) {
	e := newTestRouter(t, nil)

	long := `{"username":"euro","email":"e@x.com","password":"` + strings.Repeat("€", 30) + `"}`
	rec := do(e, http.MethodPost, "/api/auth/signup", long)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
	}
	if msg, _ := decode(t, rec)["message"].(string); !strings.Contains(msg, "password must be at most 72 bytes") {
		t.Fatalf("unexpected message %q", msg)
	}

	pw := strings.Repeat("€", 24)
	signup(t, e, `{"username":"euro","email":"e@x.com","password":"`+pw+`"}`)
	if rec := do(e, http.MethodPost, "/api/auth/signin", `{"username":"euro","password":"`+pw+`"}`); rec.Code != http.StatusOK {
		t.Fatalf("signin: expected 200, got %d", rec.Code)
	}
}

func TestRouter_BadCredentialsAreIndistinguishable(t *testing.T) {
	e := newTestRouter(t, nil)
	signup(t, e, `{"username":"alice","email":"a@x.com","password":"p1"}`)

	wrongPassword := do(e, http.MethodPost, "/api/auth/signin", `{"username":"alice","password":"nope"}`)
	unknownUser := do(e, http.MethodPost, "/api/auth/signin", `{"username":"mallory","password":"nope"}`)

	if wrongPassword.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPassword.Code, unknownUser.Code)
	}
	if wrongPassword.Body.String() != unknownUser.Body.String() {
		t.Fatalf("bodies differ:\n%s\n%s", wrongPassword.Body.String(), unknownUser.Body.String())
	}
	if decode(t, wrongPassword)["message"] != "Bad Credentials" {
		t.Fatalf("unexpected body %s", wrongPassword.Body.String())
	}
}

func TestRouter_SignoutThenUserIsUnauthorized(t *testing.T) {
	e := newTestRouter(t, nil)
	signup(t, e, `{"username":"alice","email":"a@x.com","password":"p1"}`)
	ck := sessionCookie(t, do(e, http.MethodPost, "/api/auth/signin", `{"username":"alice","password":"p1"}`))

	out := do(e, http.MethodPost, "/api/auth/signout", "", ck)
	if out.Code != http.StatusOK {
		t.Fatalf("signout: status %d", out.Code)
	}
	cleared := sessionCookie(t, out)
	if cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Fatalf("cookie not cleared: %+v", cleared)
	}

	rec := do(e, http.MethodGet, "/api/auth/user", "", &http.Cookie{Name: cleared.Name, Value: cleared.Value})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after signout, got %d", rec.Code)
	}
}

func TestRouter_BearerHeader(t *testing.T) {
	e := newTestRouter(t, nil)
	signup(t, e, `{"username":"alice","email":"a@x.com","password":"p1"}`)
	ck := sessionCookie(t, do(e, http.MethodPost, "/api/auth/signin", `{"username":"alice","password":"p1"}`))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+ck.Value)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with bearer header, got %d", rec.Code)
	}
}

func TestRouter_TamperedCookieIsAnonymous(t *testing.T) {
	e := newTestRouter(t, nil)
	signup(t, e, `{"username":"alice","email":"a@x.com","password":"p1"}`)
	ck := sessionCookie(t, do(e, http.MethodPost, "/api/auth/signin", `{"username":"alice","password":"p1"}`))

	forged := &http.Cookie{Name: ck.Name, Value: ck.Value + "x"}
	if rec := do(e, http.MethodGet, "/api/auth/user", "", forged); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/auth/username", "", forged); rec.Body.String() != "NULL" {
		t.Fatalf("/username = %q", rec.Body.String())
	}
}

func TestRouter_AdminGateAndRoleChangesApplyImmediately(t *testing.T) {
	e := newTestRouter(t, nil)
	signup(t, e, `{"username":"alice","email":"a@x.com","password":"p1"}`)
	signup(t, e, `{"username":"root","email":"r@x.com","password":"pw","role":["admin"]}`)

	aliceCk := sessionCookie(t, do(e, http.MethodPost, "/api/auth/signin", `{"username":"alice","password":"p1"}`))
	rootCk := sessionCookie(t, do(e, http.MethodPost, "/api/auth/signin", `{"username":"root","password":"pw"}`))

	if rec := do(e, http.MethodPut, "/api/admin/users/1/roles", `{"roles":["seller"]}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}
	if rec := do(e, http.MethodPut, "/api/admin/users/1/roles", `{"roles":["admin"]}`, aliceCk); rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin: expected 403, got %d", rec.Code)
	}

	rec := do(e, http.MethodPut, "/api/admin/users/1/roles", `{"roles":["seller"]}`, rootCk)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin assign: status %d body %s", rec.Code, rec.Body.String())
	}

	// The cookie minted before the change now resolves to the new role set.
	user := decode(t, do(e, http.MethodGet, "/api/auth/user", "", aliceCk))
	roles, _ := user["roles"].([]any)
	if len(roles) != 1 || roles[0] != "ROLE_SELLER" {
		t.Fatalf("roles after assignment = %v", user["roles"])
	}

	if rec := do(e, http.MethodPut, "/api/admin/users/99/roles", `{"roles":["user"]}`, rootCk); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user: expected 404, got %d", rec.Code)
	}
	if rec := do(e, http.MethodPut, "/api/admin/users/1/roles", `{"roles":[]}`, rootCk); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty roles: expected 400, got %d", rec.Code)
	}
}

func TestRouter_ImageUploadBodyLimit(t *testing.T) {
	e := newTestRouter(t, nil)
	signup(t, e, `{"username":"root","email":"r@x.com","password":"pw","role":["admin"]}`)
	ck := sessionCookie(t, do(e, http.MethodPost, "/api/auth/signin", `{"username":"root","password":"pw"}`))

	req := httptest.NewRequest(http.MethodPut, "/api/admin/products/1/image", strings.NewReader(strings.Repeat("x", 4096)))
	req.Header.Set(echo.HeaderContentType, "multipart/form-data; boundary=xyz")
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_UnknownRoleLabel(t *testing.T) {
	e := newTestRouter(t, nil)
	rec := do(e, http.MethodPost, "/api/auth/signup", `{"username":"dave","email":"d@x.com","password":"p","role":["wizard"]}`)
	if rec.Code != http.StatusInternalServerError || decode(t, rec)["message"] != "Error: Role is not found" {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_SigninRateLimited(t *testing.T) {
	e := newTestRouter(t, denyAll{})
	rec := do(e, http.MethodPost, "/api/auth/signin", `{"username":"alice","password":"p1"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestRouter_Health(t *testing.T) {
	e := newTestRouter(t, nil)
	if rec := do(e, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
}
