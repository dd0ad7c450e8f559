package identity

import "errors"

var (
	// ErrNoSession is returned when an operation requires an active backend
	// session and none exists.
	ErrNoSession = errors.New("no active session")
	// ErrNoProfileData is returned when the OAuth provider profile could not
	// be resolved during callback completion.
	ErrNoProfileData = errors.New("no oauth profile data")
	// ErrAuthInitiation is returned when the provider handshake could not be
	// started.
	ErrAuthInitiation = errors.New("oauth initiation failed")
	// ErrInvalidCredentials is returned verbatim-wrapped when the backend
	// rejects an email/password login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRegistration is returned verbatim-wrapped when account creation
	// fails, e.g. on a duplicate email.
	ErrRegistration = errors.New("registration failed")
)
