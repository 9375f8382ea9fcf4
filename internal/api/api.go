// Package api exposes one typed operation per backend endpoint, grouped by
// resource. Operations shape requests and return results unchanged; every
// failure comes from the transport layer and has already been notified.
package api

import (
	"context"

	"ai-agent-character-demo/client/internal/storage"
	"ai-agent-character-demo/client/internal/transport"
)

// Client groups the resource facades
type Client struct {
	Auth       *AuthAPI
	Characters *CharactersAPI
	Chat       *ChatAPI
}

// New builds the facade over t. store receives the access token on login
// and is cleared on logout.
func New(t *transport.Client, store storage.Store) *Client {
	return &Client{
		Auth:       &AuthAPI{t: t, store: store},
		Characters: &CharactersAPI{t: t},
		Chat:       &ChatAPI{t: t},
	}
}

// TokenFromStore reads the persisted bearer token on every call
func TokenFromStore(store storage.Store) transport.CredentialFunc {
	return func(ctx context.Context) (string, error) {
		token, _, err := store.Get(ctx, storage.KeyToken)
		return token, err
	}
}
