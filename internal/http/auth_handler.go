package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"log/slog"

	"wallgrid/internal/backend"
	"wallgrid/internal/identity"
)

const (
	sessionCookieName = "wallgrid_session"
	sessionCookieTTL  = 30 * 24 * time.Hour
)

// AuthHandler exposes registration, login and identity endpoints.
type AuthHandler struct {
	identity     *identity.Service
	logger       *slog.Logger
	secureCookie bool
	frontendURL  string
	successURL   string
	failureURL   string
}

// NewAuthHandler creates a handler.
func NewAuthHandler(identitySvc *identity.Service, frontendURL, successURL, failureURL, env string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		identity:     identitySvc,
		logger:       logger,
		secureCookie: !strings.EqualFold(env, "development"),
		frontendURL:  strings.TrimSuffix(frontendURL, "/"),
		successURL:   successURL,
		failureURL:   failureURL,
	}
}

// Register creates a new account from email, username and password.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		writeDecodeError(w, err)
		return
	}

	email := strings.TrimSpace(payload.Email)
	if email == "" || payload.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	account, err := h.identity.Register(r.Context(), email, strings.TrimSpace(payload.Username), payload.Password)
	if err != nil {
		if errors.Is(err, identity.ErrRegistration) {
			writeError(w, http.StatusConflict, "registration failed")
			return
		}
		h.logger.Error("register", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    account.ID,
		"email": account.Email,
		"name":  account.Name,
	})
}

// Login exchanges email and password for a session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		writeDecodeError(w, err)
		return
	}

	session, err := h.identity.LoginWithPassword(r.Context(), strings.TrimSpace(payload.Email), payload.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.logger.Error("login", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	http.SetCookie(w, h.sessionCookie(session.Secret, sessionCookieTTL))
	writeJSON(w, http.StatusOK, map[string]any{"userId": session.UserID})
}

// Me returns the reconciled identity of the current session, or 401 when no
// usable session exists.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ident := h.identity.CurrentUser(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, ident)
}

// Logout ends the backend session and clears the cookie. Repeated calls are
// harmless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.Logout(r.Context()); err != nil {
		h.logger.Error("logout", "error", err)
		writeError(w, http.StatusInternalServerError, "logout failed")
		return
	}

	clearCookie := h.sessionCookie("", 0)
	clearCookie.MaxAge = -1
	clearCookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, clearCookie)

	w.WriteHeader(http.StatusNoContent)
}

// InitiateGoogle redirects the browser to the backend's OAuth entry point.
func (h *AuthHandler) InitiateGoogle(w http.ResponseWriter, r *http.Request) {
	target, err := h.identity.BeginOAuthLogin("google", h.successURL, h.failureURL)
	if err != nil {
		h.logger.Error("oauth initiation failed", "error", err)
		h.redirectWithError(w, r, "oauth_init_failed")
		return
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// CallbackGoogle verifies the created session and reconciles the identity.
// The backend appends userId and secret to the success redirect.
func (h *AuthHandler) CallbackGoogle(w http.ResponseWriter, r *http.Request) {
	secret := r.URL.Query().Get("secret")
	if secret == "" {
		h.logger.Warn("oauth callback missing session secret")
		h.redirectWithError(w, r, "missing_session")
		return
	}

	ctx := backend.WithSessionToken(r.Context(), secret)
	ident, err := h.identity.CompleteOAuthCallback(ctx)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrNoSession):
			h.redirectWithError(w, r, "no_session")
		case errors.Is(err, identity.ErrNoProfileData):
			h.redirectWithError(w, r, "no_profile")
		default:
			h.logger.Error("oauth callback failed", "error", err)
			h.redirectWithError(w, r, "oauth_failed")
		}
		return
	}

	http.SetCookie(w, h.sessionCookie(secret, sessionCookieTTL))
	h.logger.Info("oauth login successful", "user_id", ident.ID)
	http.Redirect(w, r, h.frontendURL+"/", http.StatusTemporaryRedirect)
}

func (h *AuthHandler) sessionCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
	}
}

func (h *AuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	target := h.frontendURL + "/login?error=" + url.QueryEscape(code)
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}
