package ephemeral

import (
	"context"
	"fmt"
	"time"
)

// Blacklist marks session token ids as revoked until they would have
// expired anyway.
type Blacklist struct {
	store Store
}

// NewBlacklist creates a revocation list over store.
func NewBlacklist(store Store) *Blacklist {
	return &Blacklist{store: store}
}

func blacklistKey(tokenID string) string {
	return "blacklist:" + tokenID
}

// Revoke marks tokenID as revoked for ttl.
func (b *Blacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := b.store.Put(ctx, blacklistKey(tokenID), "1", ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID is currently revoked.
func (b *Blacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, ok, err := b.store.Get(ctx, blacklistKey(tokenID))
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return ok, nil
}
