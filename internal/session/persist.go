package session

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-agent-character-demo/client/internal/models"
	"ai-agent-character-demo/client/internal/storage"
)

// LoadCachedUser returns the user persisted by the last successful login or
// resolution, or nil when none is stored or it cannot be decoded
func LoadCachedUser(ctx context.Context, store storage.Store) (*models.User, error) {
	raw, ok, err := store.Get(ctx, storage.KeyUser)
	if err != nil || !ok {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, nil
	}
	return &user, nil
}

func saveUser(ctx context.Context, store storage.Store, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := store.Set(ctx, storage.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}
