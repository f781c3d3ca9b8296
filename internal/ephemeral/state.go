package ephemeral

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// StateTokens stores single-use anti-replay tokens, such as OAuth state
// parameters, grouped by category.
type StateTokens struct {
	store Store
}

// NewStateTokens creates a state token store over store.
func NewStateTokens(store Store) *StateTokens {
	return &StateTokens{store: store}
}

func stateKey(category, token string) string {
	return "state:" + strings.ToLower(category) + ":" + token
}

// Save records token under category for ttl.
func (s *StateTokens) Save(ctx context.Context, category, token string, ttl time.Duration) error {
	if err := s.store.Put(ctx, stateKey(category, token), "1", ttl); err != nil {
		return fmt.Errorf("save state token: %w", err)
	}
	return nil
}

// Consume reports whether token was outstanding and removes it, so a second
// call for the same token returns false.
func (s *StateTokens) Consume(ctx context.Context, category, token string) (bool, error) {
	key := stateKey(category, token)
	_, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load state token: %w", err)
	}
	if !ok {
		return false, nil
	}
	if err := consume(ctx, s.store, key); err != nil {
		return false, fmt.Errorf("consume state token: %w", err)
	}
	return true, nil
}
