// Package kvstore provides the opaque key-value store used for identity
// snapshots between requests.
package kvstore

import "context"

// Keys written by the identity and gallery services.
const (
	// KeyIdentity holds the serialized identity snapshot of the current user.
	KeyIdentity = "wallgrid:user"
	// KeyUserID holds the raw user identifier read at upload time for ownership.
	KeyUserID = "wallgrid:user_id"
)

// Store is an opaque key-value persistence handle.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
