// Package storage provides the persistent key-value store that session and
// wishlist state is mirrored into, so it survives restarts.
package storage

import (
	"context"
	"errors"
)

// Well-known keys. Presence of KeyToken at startup gates the validity of
// every other persisted key: a missing token triggers a full wipe.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
	KeyWishlistIDs  = "wishlistIds"
	// KeyWishlistLegacy is an older wishlist key some deployments still carry.
	KeyWishlistLegacy = "wishlist"
)

// ErrNotFound is returned when a key is not present in the store.
var ErrNotFound = errors.New("storage: key not found")

// KV is a string-keyed persistent store. Values are opaque strings;
// callers serialize structured data (JSON) themselves.
//
// Read-modify-write sequences on a KV are not atomic; callers that need
// exclusion across a sequence must serialize it themselves.
type KV interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any existing value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every key currently present.
	Keys(ctx context.Context) ([]string, error)

	// Clear removes every key.
	Clear(ctx context.Context) error
}
