package identity

import "wallgrid/internal/backend"

// Fallback values applied when no identity source supplies a field.
const (
	DefaultName         = "Anonymous User"
	DefaultEmail        = ""
	DefaultProfileImage = "/avatar.png"
)

// Identity is the canonical user record produced by reconciliation. It is
// rebuilt wholesale on every login, callback or current-user call and never
// partially mutated.
type Identity struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	ProfileImage string          `json:"profileImage"`
	Session      backend.Session `json:"session"`
}

// Profile is the ephemeral OAuth provider profile consulted during
// reconciliation. It is fetched per call and never cached.
type Profile struct {
	Name         string
	Email        string
	ProfileImage string
}
