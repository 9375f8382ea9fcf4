package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ai-agent-character-demo/client/internal/models"
	"ai-agent-character-demo/client/internal/storage"
	"ai-agent-character-demo/client/internal/transport"
)

// AuthAPI covers /auth
type AuthAPI struct {
	t     *transport.Client
	store storage.Store
}

// Login exchanges credentials for a token and persists the token before
// returning the backend response
func (a *AuthAPI) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	resp, err := transport.Call[models.LoginResponse](ctx, a.t, transport.Request{
		Operation: "auth.login",
		Method:    http.MethodPost,
		Path:      "/auth/login",
		Body:      models.LoginRequest{Email: email, Password: password},
	})
	if err != nil {
		return nil, err
	}

	if err := a.store.Set(ctx, storage.KeyToken, resp.AccessToken); err != nil {
		return nil, fmt.Errorf("persist access token: %w", err)
	}
	return &resp, nil
}

// Signup registers a new account. The session is not touched.
func (a *AuthAPI) Signup(ctx context.Context, name, email, username, password string) (json.RawMessage, error) {
	return a.t.Do(ctx, transport.Request{
		Operation: "auth.signup",
		Method:    http.MethodPost,
		Path:      "/auth/signup",
		Body: models.SignupRequest{
			Name:     name,
			Email:    email,
			Username: username,
			Password: password,
		},
	})
}

// Logout forgets the persisted token and cached user. No request is made.
func (a *AuthAPI) Logout(ctx context.Context) error {
	if err := a.store.Delete(ctx, storage.KeyToken); err != nil {
		return err
	}
	return a.store.Delete(ctx, storage.KeyUser)
}

// GetCurrentUser resolves the identity behind the current token. A null
// response yields a nil user.
func (a *AuthAPI) GetCurrentUser(ctx context.Context) (*models.User, error) {
	return transport.Call[*models.User](ctx, a.t, transport.Request{
		Operation: "auth.me",
		Method:    http.MethodGet,
		Path:      "/auth/me",
	})
}
