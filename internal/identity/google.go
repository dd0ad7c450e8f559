package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"wallgrid/internal/backend"
)

const defaultGoogleIssuer = "https://accounts.google.com"

// GoogleProfileSource fetches provider profile data through the OIDC UserInfo
// endpoint, authenticated with the access token the backend stored on the
// session. Token exchange is the backend's job; this only reads the profile.
type GoogleProfileSource struct {
	provider *oidc.Provider
}

// NewGoogleProfileSource discovers the issuer's endpoints. issuerURL is
// overridable for tests and defaults to Google.
func NewGoogleProfileSource(ctx context.Context, issuerURL string) (*GoogleProfileSource, error) {
	if issuerURL == "" {
		issuerURL = defaultGoogleIssuer
	}

	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}

	return &GoogleProfileSource{provider: provider}, nil
}

// Profile returns the provider profile for a Google session, or nil when the
// session carries no usable provider data.
func (g *GoogleProfileSource) Profile(ctx context.Context, session *backend.Session) (*Profile, error) {
	if session == nil || !strings.EqualFold(session.Provider, "google") || session.ProviderAccessToken == "" {
		return nil, nil
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: session.ProviderAccessToken,
		TokenType:   "Bearer",
	})

	info, err := g.provider.UserInfo(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}

	var claims struct {
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := info.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse userinfo claims: %w", err)
	}

	return &Profile{
		Name:         claims.Name,
		Email:        info.Email,
		ProfileImage: claims.Picture,
	}, nil
}
