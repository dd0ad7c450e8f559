package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"log/slog"

	"github.com/google/uuid"

	"wallgrid/internal/backend"
	"wallgrid/internal/platform/kvstore"
)

// AccountAPI is the slice of the backend account surface the reconciler needs.
type AccountAPI interface {
	CurrentSession(ctx context.Context) (*backend.Session, error)
	Prefs(ctx context.Context) (backend.Prefs, error)
	UpdatePrefs(ctx context.Context, prefs backend.Prefs) error
	CreateEmailPasswordSession(ctx context.Context, email, password string) (*backend.Session, error)
	CreateAccount(ctx context.Context, id, email, password, name string) (*backend.Account, error)
	DeleteCurrentSession(ctx context.Context) error
	OAuthRedirectURL(provider, success, failure string) (string, error)
}

// ProfileSource resolves OAuth provider profile data for a session. A nil
// profile with a nil error means the session carries no usable provider data.
type ProfileSource interface {
	Profile(ctx context.Context, session *backend.Session) (*Profile, error)
}

// Service reconciles identity sources (active session, OAuth provider
// profile, stored preferences) into one canonical Identity.
type Service struct {
	account  AccountAPI
	profiles ProfileSource
	store    kvstore.Store
	logger   *slog.Logger

	// mu serializes the fetch-merge-persist sequence so two racing callback
	// completions cannot interleave snapshot writes.
	mu sync.Mutex
}

// NewService wires a Service with the provided dependencies. profiles may be
// nil when no OAuth provider is configured; OAuth-sourced enrichment is then
// skipped.
func NewService(account AccountAPI, profiles ProfileSource, store kvstore.Store, logger *slog.Logger) *Service {
	return &Service{
		account:  account,
		profiles: profiles,
		store:    store,
		logger:   logger,
	}
}

// BeginOAuthLogin returns the URL that starts the provider handshake. Control
// leaves the process once the caller redirects to it.
func (s *Service) BeginOAuthLogin(provider, successRedirect, failureRedirect string) (string, error) {
	redirect, err := s.account.OAuthRedirectURL(provider, successRedirect, failureRedirect)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthInitiation, err)
	}
	return redirect, nil
}

// CompleteOAuthCallback finishes the provider handshake after the redirect
// back: it requires an active session and provider profile data, merges them
// with the saved profile image (best effort) and persists the snapshot.
func (s *Service) CompleteOAuthCallback(ctx context.Context) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.account.CurrentSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if session == nil || session.ID == "" {
		return nil, ErrNoSession
	}

	profile, err := s.fetchProfile(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoProfileData, err)
	}
	if profile == nil {
		return nil, ErrNoProfileData
	}

	// Saved image beats the provider image beats the default.
	image := s.saveProfileImage(ctx, profile)
	if image == "" {
		image = profile.ProfileImage
	}
	if image == "" {
		image = DefaultProfileImage
	}

	ident := &Identity{
		ID:           session.UserID,
		Email:        profile.Email,
		Name:         profile.Name,
		ProfileImage: image,
		Session:      *session,
	}
	if ident.Name == "" {
		ident.Name = DefaultName
	}

	s.persistSnapshot(ctx, ident)
	return ident, nil
}

// LoginWithPassword creates a backend session from credentials.
func (s *Service) LoginWithPassword(ctx context.Context, email, password string) (*backend.Session, error) {
	session, err := s.account.CreateEmailPasswordSession(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	if err := s.store.Set(ctx, kvstore.KeyUserID, session.UserID); err != nil {
		s.logger.Warn("persist user id failed", "error", err)
	}
	return session, nil
}

// Register creates a new backend account under a generated unique identifier.
func (s *Service) Register(ctx context.Context, email, username, password string) (*backend.Account, error) {
	account, err := s.account.CreateAccount(ctx, uuid.NewString(), email, password, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistration, err)
	}
	return account, nil
}

// CurrentUser returns the reconciled identity of the calling user, or nil
// when no identity can be established. It never returns an error: callers
// must nil-check rather than catch.
func (s *Service) CurrentUser(ctx context.Context) *Identity {
	session, err := s.account.CurrentSession(ctx)
	if err != nil || session == nil || session.ID == "" {
		if err != nil {
			s.logger.Debug("current user: no session", "error", err)
		}
		return nil
	}

	prefs, err := s.account.Prefs(ctx)
	if err != nil {
		s.logger.Debug("current user: prefs fetch failed", "error", err)
		return nil
	}

	image := prefs.ProfileImage
	name := prefs.Name
	email := prefs.Email

	// Preferences win; the provider profile only fills the gaps, and a
	// failure here degrades to the hardcoded defaults.
	if image == "" || name == "" || email == "" {
		if profile, err := s.fetchProfile(ctx, session); err == nil && profile != nil {
			if image == "" {
				image = profile.ProfileImage
			}
			if name == "" {
				name = profile.Name
			}
			if email == "" {
				email = profile.Email
			}
		} else if err != nil {
			s.logger.Debug("current user: oauth fallback failed", "error", err)
		}
	}

	if image == "" {
		image = DefaultProfileImage
	}
	if name == "" {
		name = DefaultName
	}
	if email == "" {
		email = DefaultEmail
	}

	return &Identity{
		ID:           session.UserID,
		Email:        email,
		Name:         name,
		ProfileImage: image,
		Session:      *session,
	}
}

// Logout deletes the active session. It is a no-op when no session exists,
// and the backend's missing-scope condition counts as already logged out.
func (s *Service) Logout(ctx context.Context) error {
	session, err := s.account.CurrentSession(ctx)
	if err != nil {
		if backend.IsMissingScope(err) || backend.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("check session: %w", err)
	}
	if session == nil || session.ID == "" {
		return nil
	}

	if err := s.account.DeleteCurrentSession(ctx); err != nil {
		if backend.IsMissingScope(err) {
			return nil
		}
		return fmt.Errorf("delete session: %w", err)
	}

	s.clearSnapshot(ctx)
	return nil
}

func (s *Service) fetchProfile(ctx context.Context, session *backend.Session) (*Profile, error) {
	if s.profiles == nil {
		return nil, nil
	}
	return s.profiles.Profile(ctx, session)
}

// saveProfileImage stores the provider image in the account preferences and
// returns the reference that was persisted. Failures are swallowed; the
// caller falls back to the un-persisted provider image.
func (s *Service) saveProfileImage(ctx context.Context, profile *Profile) string {
	if profile.ProfileImage == "" {
		return ""
	}

	prefs := backend.Prefs{
		ProfileImage: profile.ProfileImage,
		Name:         profile.Name,
		Email:        profile.Email,
	}
	if err := s.account.UpdatePrefs(ctx, prefs); err != nil {
		s.logger.Debug("save profile image failed", "error", err)
		return ""
	}
	return profile.ProfileImage
}

func (s *Service) persistSnapshot(ctx context.Context, ident *Identity) {
	snapshot, err := json.Marshal(ident)
	if err != nil {
		s.logger.Warn("marshal identity snapshot failed", "error", err)
		return
	}
	if err := s.store.Set(ctx, kvstore.KeyIdentity, string(snapshot)); err != nil {
		s.logger.Warn("persist identity snapshot failed", "error", err)
	}
	if err := s.store.Set(ctx, kvstore.KeyUserID, ident.ID); err != nil {
		s.logger.Warn("persist user id failed", "error", err)
	}
}

func (s *Service) clearSnapshot(ctx context.Context) {
	if err := s.store.Delete(ctx, kvstore.KeyIdentity); err != nil {
		s.logger.Warn("clear identity snapshot failed", "error", err)
	}
	if err := s.store.Delete(ctx, kvstore.KeyUserID); err != nil {
		s.logger.Warn("clear user id failed", "error", err)
	}
}
