package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecomhub/storefront-api/internal/api/metrics"
	"github.com/ecomhub/storefront-api/internal/api/middleware"
	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	transport   ports.CredentialTransport
}

func NewAuthHandler(authService ports.AuthService, transport ports.CredentialTransport) *AuthHandler {
	return &AuthHandler{authService: authService, transport: transport}
}

// Signup creates a new user account.
//
// @Summary      Register a new user
// @Description  Roles other than "user" can be requested only while SIGNUP_ALLOW_PRIVILEGED_ROLES is enabled; otherwise the request is rejected with 403.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "User registration details"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	_, err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
		Client:   clientMeta(c),
	})
	if err != nil {
		metrics.SignupsTotal.WithLabelValues(signupResult(err)).Inc()
		return err
	}

	metrics.SignupsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "User registered successfully!"})
}

func signupResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateUsername):
		return "duplicate_username"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, domain.ErrRoleNotFound):
		return "role_not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}

// Signin verifies credentials and sets the session cookie.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signinRequest  true  "Login credentials"
// @Success      200   {object}  userInfoResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/auth/signin [post]
func (h *AuthHandler) Signin(c echo.Context) error {
	var req signinRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.SigninsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	res, err := h.authService.Signin(c.Request().Context(), ports.SigninInput{
		Username: req.Username,
		Password: req.Password,
		Client:   clientMeta(c),
	})
	if err != nil {
		if errors.Is(err, domain.ErrBadCredentials) {
			metrics.SigninsTotal.WithLabelValues("bad_credentials").Inc()
		} else {
			metrics.SigninsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.SigninsTotal.WithLabelValues("success").Inc()
	c.SetCookie(h.transport.Cookie(res.Token))
	return c.JSON(http.StatusOK, userInfo(res.User))
}

// User returns the caller with freshly resolved roles.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  userInfoResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/user [get]
func (h *AuthHandler) User(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.authService.CurrentUser(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userInfo(user))
}

// Username returns the caller's username as plain text, or NULL when anonymous.
//
// @Summary      Current username
// @Tags         auth
// @Produce      plain
// @Success      200  {string}  string
// @Router       /api/auth/username [get]
func (h *AuthHandler) Username(c echo.Context) error {
	if p := middleware.Principal(c); p != nil {
		return c.String(http.StatusOK, p.Username)
	}
	return c.String(http.StatusOK, "NULL")
}

// Signout clears the session cookie.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/auth/signout [post]
func (h *AuthHandler) Signout(c echo.Context) error {
	h.authService.Signout(c.Request().Context(), middleware.Principal(c), clientMeta(c))
	c.SetCookie(h.transport.CleanCookie())
	return c.JSON(http.StatusOK, messageResponse{Message: "You've been signed out!"})
}

// AssignRoles replaces a user's role set.
//
// @Summary      Assign roles
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        userId  path      int                 true  "User ID"
// @Param        body    body      assignRolesRequest  true  "Role labels"
// @Success      200     {object}  userInfoResponse
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /api/admin/users/{userId}/roles [put]
func (h *AuthHandler) AssignRoles(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	var req assignRolesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.AssignRoles(c.Request().Context(), middleware.Principal(c), userID, req.Roles)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userInfo(user))
}
