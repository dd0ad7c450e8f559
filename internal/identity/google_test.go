package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"wallgrid/internal/backend"
)

func TestGoogleProfileSkipsNonGoogleSessions(t *testing.T) {
	source := &GoogleProfileSource{}

	profile, err := source.Profile(context.Background(), &backend.Session{Provider: "email"})
	if err != nil || profile != nil {
		t.Fatalf("expected nil profile for non-Google session, got %+v err=%v", profile, err)
	}

	profile, err = source.Profile(context.Background(), &backend.Session{Provider: "google"})
	if err != nil || profile != nil {
		t.Fatalf("expected nil profile without access token, got %+v err=%v", profile, err)
	}

	profile, err = source.Profile(context.Background(), nil)
	if err != nil || profile != nil {
		t.Fatalf("expected nil profile for nil session, got %+v err=%v", profile, err)
	}
}

func TestGoogleProfileFetchesUserInfo(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 server.URL,
			"authorization_endpoint": server.URL + "/auth",
			"token_endpoint":         server.URL + "/token",
			"jwks_uri":               server.URL + "/jwks",
			"userinfo_endpoint":      server.URL + "/userinfo",
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-token" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid_token"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sub":     "google-sub",
			"email":   "jane@example.com",
			"name":    "Jane Doe",
			"picture": "https://img/pic.png",
		})
	})

	source, err := NewGoogleProfileSource(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("NewGoogleProfileSource returned error: %v", err)
	}

	profile, err := source.Profile(context.Background(), &backend.Session{
		Provider:            "google",
		ProviderAccessToken: "provider-token",
	})
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if profile == nil {
		t.Fatal("expected profile")
	}
	if profile.Name != "Jane Doe" || profile.Email != "jane@example.com" || profile.ProfileImage != "https://img/pic.png" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestGoogleProfileSurfacesUserInfoFailure(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 server.URL,
			"authorization_endpoint": server.URL + "/auth",
			"token_endpoint":         server.URL + "/token",
			"jwks_uri":               server.URL + "/jwks",
			"userinfo_endpoint":      server.URL + "/userinfo",
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	source, err := NewGoogleProfileSource(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("NewGoogleProfileSource returned error: %v", err)
	}

	if _, err := source.Profile(context.Background(), &backend.Session{
		Provider:            "google",
		ProviderAccessToken: "provider-token",
	}); err == nil {
		t.Fatal("expected error when userinfo endpoint fails")
	}
}
