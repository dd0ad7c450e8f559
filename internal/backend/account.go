package backend

import (
	"context"
	"fmt"
	"net/url"
)

// Session is the backend's view of an authenticated context. Provider fields
// are populated for OAuth sessions only.
type Session struct {
	ID                  string `json:"$id"`
	UserID              string `json:"userId"`
	UserName            string `json:"userName"`
	UserEmail           string `json:"userEmail"`
	Provider            string `json:"provider"`
	ProviderUID         string `json:"providerUid"`
	ProviderAccessToken string `json:"providerAccessToken"`
	Secret              string `json:"secret,omitempty"`
	Expire              string `json:"expire"`
}

// Account is a registered user record.
type Account struct {
	ID           string `json:"$id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Registration string `json:"registration"`
}

// Prefs holds the per-account preference fields consulted during identity
// reconciliation.
type Prefs struct {
	ProfileImage string `json:"profileImage,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
}

// AccountClient exposes the backend's account and session endpoints.
type AccountClient struct {
	client *Client
}

// Account returns the account sub-client.
func (c *Client) Account() *AccountClient {
	return &AccountClient{client: c}
}

// CurrentSession returns the active session for the calling user.
func (a *AccountClient) CurrentSession(ctx context.Context) (*Session, error) {
	resp, err := a.client.request(ctx).
		SetResult(&Session{}).
		Get("/account/sessions/current")
	if err != nil {
		return nil, fmt.Errorf("get current session: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp.Result().(*Session), nil
}

// Prefs returns the calling user's stored preferences.
func (a *AccountClient) Prefs(ctx context.Context) (Prefs, error) {
	resp, err := a.client.request(ctx).
		SetResult(&Prefs{}).
		Get("/account/prefs")
	if err != nil {
		return Prefs{}, fmt.Errorf("get prefs: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return Prefs{}, err
	}
	return *resp.Result().(*Prefs), nil
}

// UpdatePrefs replaces the calling user's stored preferences.
func (a *AccountClient) UpdatePrefs(ctx context.Context, prefs Prefs) error {
	resp, err := a.client.request(ctx).
		SetBody(map[string]any{"prefs": prefs}).
		Patch("/account/prefs")
	if err != nil {
		return fmt.Errorf("update prefs: %w", err)
	}
	return checkResponse(resp)
}

// CreateEmailPasswordSession authenticates with credentials and returns the
// new session.
func (a *AccountClient) CreateEmailPasswordSession(ctx context.Context, email, password string) (*Session, error) {
	resp, err := a.client.request(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&Session{}).
		Post("/account/sessions/email")
	if err != nil {
		return nil, fmt.Errorf("create email session: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp.Result().(*Session), nil
}

// CreateAccount registers a new user under the supplied unique identifier.
func (a *AccountClient) CreateAccount(ctx context.Context, id, email, password, name string) (*Account, error) {
	resp, err := a.client.request(ctx).
		SetBody(map[string]string{
			"userId":   id,
			"email":    email,
			"password": password,
			"name":     name,
		}).
		SetResult(&Account{}).
		Post("/account")
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp.Result().(*Account), nil
}

// DeleteCurrentSession ends the calling user's active session.
func (a *AccountClient) DeleteCurrentSession(ctx context.Context) error {
	resp, err := a.client.request(ctx).Delete("/account/sessions/current")
	if err != nil {
		return fmt.Errorf("delete current session: %w", err)
	}
	return checkResponse(resp)
}

// OAuthRedirectURL builds the backend URL that starts the provider handshake.
// The backend redirects to success or failure once the provider returns.
func (a *AccountClient) OAuthRedirectURL(provider, success, failure string) (string, error) {
	if provider == "" {
		return "", fmt.Errorf("oauth provider is required")
	}
	for name, raw := range map[string]string{"success": success, "failure": failure} {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return "", fmt.Errorf("invalid %s redirect URL %q", name, raw)
		}
	}

	values := url.Values{}
	values.Set("project", a.client.project)
	values.Set("success", success)
	values.Set("failure", failure)

	return fmt.Sprintf("%s/account/sessions/oauth2/%s?%s",
		a.client.endpoint, url.PathEscape(provider), values.Encode()), nil
}
