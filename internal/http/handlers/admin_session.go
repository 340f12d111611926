package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/wolfman30/connectient/internal/auth"
	"github.com/wolfman30/connectient/internal/http/middleware"
	"github.com/wolfman30/connectient/internal/observability/metrics"
	"github.com/wolfman30/connectient/internal/validation"
	"github.com/wolfman30/connectient/pkg/logging"
)

// LoginValidator checks the shape of submitted credentials.
type LoginValidator interface {
	ValidateLogin(validation.LoginForm) error
}

// AdminSessionHandler handles admin login and logout.
type AdminSessionHandler struct {
	schema       LoginValidator
	authn        auth.Authenticator
	sessions     *auth.SessionIssuer
	secureCookie bool
	metrics      *metrics.BookingMetrics
	logger       *logging.Logger
}

// NewAdminSessionHandler creates a new admin session handler.
func NewAdminSessionHandler(schema LoginValidator, authn auth.Authenticator, sessions *auth.SessionIssuer, secureCookie bool, m *metrics.BookingMetrics, logger *logging.Logger) *AdminSessionHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminSessionHandler{
		schema:       schema,
		authn:        authn,
		sessions:     sessions,
		secureCookie: secureCookie,
		metrics:      m,
		logger:       logger,
	}
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	PracticeID string    `json:"practice_id"`
	Username   string    `json:"username"`
}

// Login checks credentials and issues a session.
// POST /admin/login
func (h *AdminSessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil || h.authn == nil {
		jsonError(w, "admin login is not configured", http.StatusServiceUnavailable)
		return
	}

	var req validation.LoginForm
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.schema.ValidateLogin(req); err != nil {
		h.metrics.ObserveAdminAction("login", "invalid")
		writeError(w, err)
		return
	}

	principal, err := h.authn.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.metrics.ObserveAdminAction("login", "denied")
		jsonError(w, "invalid username or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.metrics.ObserveAdminAction("login", "error")
		h.logger.Error("admin login failed", "error", err)
		jsonError(w, "login failed", http.StatusInternalServerError)
		return
	}

	session, err := h.sessions.Issue(principal)
	if err != nil {
		h.metrics.ObserveAdminAction("login", "error")
		h.logger.Error("failed to issue session", "error", err, "username", principal.Username)
		jsonError(w, "login failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    session.Token,
		Path:     "/admin",
		Expires:  session.ExpiresAt,
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.metrics.ObserveAdminAction("login", "ok")
	h.logger.Info("admin logged in", "username", principal.Username, "practice_id", principal.PracticeID)
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:      session.Token,
		ExpiresAt:  session.ExpiresAt,
		PracticeID: principal.PracticeID,
		Username:   principal.Username,
	})
}

// Logout clears the session cookie.
// POST /admin/logout
func (h *AdminSessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/admin",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	if claims, ok := middleware.AdminClaimsFromContext(r.Context()); ok {
		h.logger.Info("admin logged out", "username", claims.Username)
	}
	h.metrics.ObserveAdminAction("logout", "ok")
	w.WriteHeader(http.StatusNoContent)
}
