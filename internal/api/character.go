package api

import (
	"context"
	"fmt"
	"net/http"

	"ai-agent-character-demo/client/internal/models"
	"ai-agent-character-demo/client/internal/transport"
)

// CharactersAPI covers /characters
type CharactersAPI struct {
	t *transport.Client
}

func (c *CharactersAPI) List(ctx context.Context) ([]models.Character, error) {
	return transport.Call[[]models.Character](ctx, c.t, transport.Request{
		Operation: "characters.list",
		Method:    http.MethodGet,
		Path:      "/characters/",
	})
}

func (c *CharactersAPI) Get(ctx context.Context, id uint) (*models.Character, error) {
	return call[models.Character](ctx, c.t, "characters.get", http.MethodGet, characterPath(id), nil)
}

func (c *CharactersAPI) Create(ctx context.Context, input models.CharacterInput) (*models.Character, error) {
	return call[models.Character](ctx, c.t, "characters.create", http.MethodPost, "/characters/", input)
}

func (c *CharactersAPI) Update(ctx context.Context, id uint, input models.CharacterInput) (*models.Character, error) {
	return call[models.Character](ctx, c.t, "characters.update", http.MethodPut, characterPath(id), input)
}

// Delete removes a character. The backend answers with an empty body.
func (c *CharactersAPI) Delete(ctx context.Context, id uint) error {
	_, err := c.t.Do(ctx, transport.Request{
		Operation: "characters.delete",
		Method:    http.MethodDelete,
		Path:      characterPath(id),
	})
	return err
}

// UpdateAvatar points the character at an already hosted image
func (c *CharactersAPI) UpdateAvatar(ctx context.Context, id uint, imageURL string) (*models.Character, error) {
	return call[models.Character](ctx, c.t, "characters.avatar", http.MethodPatch,
		characterPath(id)+"/avatar", models.UpdateAvatarRequest{ImageURL: imageURL})
}

// Generate asks the backend to build a complete character from a free-text description
func (c *CharactersAPI) Generate(ctx context.Context, prompt string) (*models.Character, error) {
	return call[models.Character](ctx, c.t, "characters.generate", http.MethodPost,
		"/characters/ai-generate", models.GenerateCharacterRequest{Details: prompt})
}

func characterPath(id uint) string {
	return fmt.Sprintf("/characters/%d", id)
}

// call decodes a single object response into a freshly allocated T
func call[T any](ctx context.Context, t *transport.Client, operation, method, path string, body any) (*T, error) {
	out, err := transport.Call[T](ctx, t, transport.Request{
		Operation: operation,
		Method:    method,
		Path:      path,
		Body:      body,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
