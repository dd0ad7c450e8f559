package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"wallgrid/internal/backend"
)

func TestSessionTokenMiddlewareForwardsCookie(t *testing.T) {
	var gotToken string
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken, gotOK = backend.SessionTokenFromContext(r.Context())
	})

	handler := newSessionTokenMiddleware()(next)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "token-abc"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !gotOK || gotToken != "token-abc" {
		t.Fatalf("expected forwarded token, got %q (ok=%v)", gotToken, gotOK)
	}
}

func TestSessionTokenMiddlewareSkipsMissingCookie(t *testing.T) {
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, gotOK = backend.SessionTokenFromContext(r.Context())
	})

	handler := newSessionTokenMiddleware()(next)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	if gotOK {
		t.Fatal("expected no token without a cookie")
	}
}
