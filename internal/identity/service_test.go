package identity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"log/slog"

	"wallgrid/internal/backend"
	"wallgrid/internal/platform/kvstore"
)

type accountStub struct {
	currentSession      func(ctx context.Context) (*backend.Session, error)
	prefs               func(ctx context.Context) (backend.Prefs, error)
	updatePrefs         func(ctx context.Context, prefs backend.Prefs) error
	createEmailSession  func(ctx context.Context, email, password string) (*backend.Session, error)
	createAccount       func(ctx context.Context, id, email, password, name string) (*backend.Account, error)
	deleteCurrent       func(ctx context.Context) error
	oauthRedirect       func(provider, success, failure string) (string, error)
	deleteCurrentCalled int
}

func (a *accountStub) CurrentSession(ctx context.Context) (*backend.Session, error) {
	if a.currentSession != nil {
		return a.currentSession(ctx)
	}
	return nil, nil
}

func (a *accountStub) Prefs(ctx context.Context) (backend.Prefs, error) {
	if a.prefs != nil {
		return a.prefs(ctx)
	}
	return backend.Prefs{}, nil
}

func (a *accountStub) UpdatePrefs(ctx context.Context, prefs backend.Prefs) error {
	if a.updatePrefs != nil {
		return a.updatePrefs(ctx, prefs)
	}
	return nil
}

func (a *accountStub) CreateEmailPasswordSession(ctx context.Context, email, password string) (*backend.Session, error) {
	if a.createEmailSession != nil {
		return a.createEmailSession(ctx, email, password)
	}
	return nil, nil
}

func (a *accountStub) CreateAccount(ctx context.Context, id, email, password, name string) (*backend.Account, error) {
	if a.createAccount != nil {
		return a.createAccount(ctx, id, email, password, name)
	}
	return &backend.Account{ID: id, Email: email, Name: name}, nil
}

func (a *accountStub) DeleteCurrentSession(ctx context.Context) error {
	a.deleteCurrentCalled++
	if a.deleteCurrent != nil {
		return a.deleteCurrent(ctx)
	}
	return nil
}

func (a *accountStub) OAuthRedirectURL(provider, success, failure string) (string, error) {
	if a.oauthRedirect != nil {
		return a.oauthRedirect(provider, success, failure)
	}
	return "https://backend.example/oauth2/" + provider, nil
}

type profileStub struct {
	profile func(ctx context.Context, session *backend.Session) (*Profile, error)
}

func (p *profileStub) Profile(ctx context.Context, session *backend.Session) (*Profile, error) {
	if p.profile != nil {
		return p.profile(ctx, session)
	}
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func googleSession() *backend.Session {
	return &backend.Session{
		ID:                  "sess-1",
		UserID:              "user-1",
		Provider:            "google",
		ProviderAccessToken: "provider-token",
	}
}

func TestCompleteOAuthCallbackPrefersSavedImage(t *testing.T) {
	account := &accountStub{
		currentSession: func(ctx context.Context) (*backend.Session, error) {
			return googleSession(), nil
		},
	}
	profiles := &profileStub{
		profile: func(ctx context.Context, session *backend.Session) (*Profile, error) {
			return &Profile{Name: "Jane Doe", Email: "jane@example.com", ProfileImage: "https://img/pic.png"}, nil
		},
	}
	store := kvstore.NewMemory()
	svc := NewService(account, profiles, store, testLogger())

	ident, err := svc.CompleteOAuthCallback(context.Background())
	if err != nil {
		t.Fatalf("CompleteOAuthCallback returned error: %v", err)
	}
	if ident.ProfileImage != "https://img/pic.png" {
		t.Fatalf("expected provider image, got %q", ident.ProfileImage)
	}
	if ident.Name != "Jane Doe" || ident.Email != "jane@example.com" {
		t.Fatalf("expected OAuth name/email, got %+v", ident)
	}

	snapshot, ok, _ := store.Get(context.Background(), kvstore.KeyIdentity)
	if !ok {
		t.Fatal("expected identity snapshot in store")
	}
	var stored Identity
	if err := json.Unmarshal([]byte(snapshot), &stored); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if stored.ID != "user-1" {
		t.Fatalf("unexpected snapshot %+v", stored)
	}

	userID, ok, _ := store.Get(context.Background(), kvstore.KeyUserID)
	if !ok || userID != "user-1" {
		t.Fatalf("expected user id key, got %q ok=%v", userID, ok)
	}
}

func TestCompleteOAuthCallbackFallsBackToProviderImageWhenSaveFails(t *testing.T) {
	account := &accountStub{
		currentSession: func(ctx context.Context) (*backend.Session, error) {
			return googleSession(), nil
		},
		updatePrefs: func(ctx context.Context, prefs backend.Prefs) error {
			return errors.New("prefs write rejected")
		},
	}
	profiles := &profileStub{
		profile: func(ctx context.Context, session *backend.Session) (*Profile, error) {
			return &Profile{Name: "Jane", Email: "jane@example.com", ProfileImage: "https://img/oauth.png"}, nil
		},
	}
	svc := NewService(account, profiles, kvstore.NewMemory(), testLogger())

	ident, err := svc.CompleteOAuthCallback(context.Background())
	if err != nil {
		t.Fatalf("CompleteOAuthCallback returned error: %v", err)
	}
	if ident.ProfileImage != "https://img/oauth.png" {
		t.Fatalf("expected OAuth image fallback, got %q", ident.ProfileImage)
	}
}

func TestCompleteOAuthCallbackNoSession(t *testing.T) {
	account := &accountStub{
		currentSession: func(ctx context.Context) (*backend.Session, error) {
			return nil, &backend.APIError{Status: 401, Message: "unauthorized"}
		},
	}
	store := kvstore.NewMemory()
	svc := NewService(account, &profileStub{}, store, testLogger())

	_, err := svc.CompleteOAuthCallback(context.Background())
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	if _, ok, _ := store.Get(context.Background(), kvstore.KeyIdentity); ok {
		t.Fatal("no snapshot write should occur without a session")
	}
}

func TestCompleteOAuthCallbackNoProfileData(t *testing.T) {
	account := &accountStub{
		currentSession: func(ctx context.Context) (*backend.Session, error) {
			return googleSession(), nil
		},
	}
	profiles := &profileStub{
		profile: func(ctx context.Context, session *backend.Session) (*Profile, error) {
			return nil, nil
		},
	}
	svc := NewService(account, profiles, kvstore.NewMemory(), testLogger())

	if _, err := svc.CompleteOAuthCallback(context.Background()); !errors.Is(err, ErrNoProfileData) {
		t.Fatalf("expected ErrNoProfileData, got %v", err)
	}
}

func TestCurrentUserNeverErrors(t *testing.T) {
	account := &accountStub{
		currentSession: func(ctx context.Context) (*backend.Session, error) {
			return nil, errors.New("backend down")
		},
	}
	svc := NewService(account, &profileStub{}, kvstore.NewMemory(), testLogger())

	if ident := svc.CurrentUser(context.Background()); ident != nil {
		t.Fatalf("expected nil identity on session failure, got %+v", ident)
	}
}

func TestCurrentUserPrefsWinOverOAuthFallback(t *testing.T) {
	account := &accountStub{
		currentSession: func(ctx context.Context) (*backend.Session, error) {
			return googleSession(), nil
		},
		prefs: func(ctx context.Context) (backend.Prefs, error) {
			return backend.Prefs{ProfileImage: "/prefs.png", Name: "Pref Name"}, nil
		},
	}
	profiles := &profileStub{
		profile: func(ctx context.Context, session *backend.Session) (*Profile, error) {
			return &Profile{Name: "OAuth Name", Email: "oauth@example.com", ProfileImage: "https://img/oauth.png"}, nil
		},
	}
	svc := NewService(account, profiles, kvstore.NewMemory(), testLogger())

	ident := svc.CurrentUser(context.Background())
	if ident == nil {
		t.Fatal("expected identity")
	}
	if ident.ProfileImage != "/prefs.png" || ident.Name != "Pref Name" {
		t.Fatalf("preferences should win, got %+v", ident)
	}
	if ident.Email != "oauth@example.com" {
		t.Fatalf("missing prefs email should fall back to OAuth, got %q", ident.Email)
	}
}

func TestCurrentUserSwallowsOAuthFallbackFailure(t *testing.T) {
	account := &accountStub{
		currentSession: func(ctx context.Context) (*backend.Session, error) {
			return googleSession(), nil
		},
		prefs: func(ctx context.Context) (backend.Prefs, error) {
			return backend.Prefs{}, nil
		},
	}
	profiles := &profileStub{
		profile: func(ctx context.Context, session *backend.Session) (*Profile, error) {
			return nil, errors.New("userinfo unavailable")
		},
	}
	svc := NewService(account, profiles, kvstore.NewMemory(), testLogger())

	ident := svc.CurrentUser(context.Background())
	if ident == nil {
		t.Fatal("expected identity despite OAuth fallback failure")
	}
	if ident.Name != DefaultName || ident.Email != DefaultEmail || ident.ProfileImage != DefaultProfileImage {
		t.Fatalf("expected hardcoded defaults, got %+v", ident)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	active := googleSession()
	account := &accountStub{}
	account.currentSession = func(ctx context.Context) (*backend.Session, error) {
		if account.deleteCurrentCalled > 0 {
			return nil, nil
		}
		return active, nil
	}
	svc := NewService(account, &profileStub{}, kvstore.NewMemory(), testLogger())

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("first Logout returned error: %v", err)
	}
	if account.deleteCurrentCalled != 1 {
		t.Fatalf("expected one delete call, got %d", account.deleteCurrentCalled)
	}

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("second Logout returned error: %v", err)
	}
	if account.deleteCurrentCalled != 1 {
		t.Fatalf("second logout should not delete again, got %d calls", account.deleteCurrentCalled)
	}
}

func TestLogoutTreatsMissingScopeAsLoggedOut(t *testing.T) {
	account := &accountStub{
		currentSession: func(ctx context.Context) (*backend.Session, error) {
			return nil, &backend.APIError{
				Status:  401,
				Type:    "general_unauthorized_scope",
				Message: "User (role: guests) missing scope (account)",
			}
		},
	}
	svc := NewService(account, &profileStub{}, kvstore.NewMemory(), testLogger())

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("missing-scope logout should be benign, got %v", err)
	}
}

func TestLogoutPropagatesOtherErrors(t *testing.T) {
	account := &accountStub{
		currentSession: func(ctx context.Context) (*backend.Session, error) {
			return googleSession(), nil
		},
		deleteCurrent: func(ctx context.Context) error {
			return &backend.APIError{Status: 500, Message: "internal"}
		},
	}
	svc := NewService(account, &profileStub{}, kvstore.NewMemory(), testLogger())

	if err := svc.Logout(context.Background()); err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestLoginWithPasswordWrapsBackendError(t *testing.T) {
	account := &accountStub{
		createEmailSession: func(ctx context.Context, email, password string) (*backend.Session, error) {
			return nil, &backend.APIError{Status: 401, Message: "Invalid credentials"}
		},
	}
	svc := NewService(account, &profileStub{}, kvstore.NewMemory(), testLogger())

	if _, err := svc.LoginWithPassword(context.Background(), "a@b.c", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginWithPasswordStoresUserID(t *testing.T) {
	account := &accountStub{
		createEmailSession: func(ctx context.Context, email, password string) (*backend.Session, error) {
			return &backend.Session{ID: "sess-9", UserID: "user-9"}, nil
		},
	}
	store := kvstore.NewMemory()
	svc := NewService(account, &profileStub{}, store, testLogger())

	session, err := svc.LoginWithPassword(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("LoginWithPassword returned error: %v", err)
	}
	if session.ID != "sess-9" {
		t.Fatalf("unexpected session %+v", session)
	}

	userID, ok, _ := store.Get(context.Background(), kvstore.KeyUserID)
	if !ok || userID != "user-9" {
		t.Fatalf("expected stored user id, got %q ok=%v", userID, ok)
	}
}

func TestRegisterGeneratesUniqueID(t *testing.T) {
	var receivedID string
	account := &accountStub{
		createAccount: func(ctx context.Context, id, email, password, name string) (*backend.Account, error) {
			receivedID = id
			return &backend.Account{ID: id, Email: email, Name: name}, nil
		},
	}
	svc := NewService(account, &profileStub{}, kvstore.NewMemory(), testLogger())

	created, err := svc.Register(context.Background(), "new@example.com", "newbie", "pw")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if receivedID == "" {
		t.Fatal("expected generated account ID")
	}
	if created.Email != "new@example.com" || created.Name != "newbie" {
		t.Fatalf("unexpected account %+v", created)
	}
}

func TestRegisterWrapsDuplicateEmail(t *testing.T) {
	account := &accountStub{
		createAccount: func(ctx context.Context, id, email, password, name string) (*backend.Account, error) {
			return nil, &backend.APIError{Status: 409, Type: "user_already_exists", Message: "user already exists"}
		},
	}
	svc := NewService(account, &profileStub{}, kvstore.NewMemory(), testLogger())

	if _, err := svc.Register(context.Background(), "dupe@example.com", "dupe", "pw"); !errors.Is(err, ErrRegistration) {
		t.Fatalf("expected ErrRegistration, got %v", err)
	}
}

func TestBeginOAuthLoginWrapsFailure(t *testing.T) {
	account := &accountStub{
		oauthRedirect: func(provider, success, failure string) (string, error) {
			return "", errors.New("provider not configured")
		},
	}
	svc := NewService(account, &profileStub{}, kvstore.NewMemory(), testLogger())

	if _, err := svc.BeginOAuthLogin("google", "https://a/cb", "https://a/login"); !errors.Is(err, ErrAuthInitiation) {
		t.Fatalf("expected ErrAuthInitiation, got %v", err)
	}
}
