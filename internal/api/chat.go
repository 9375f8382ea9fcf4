package api

import (
	"context"
	"fmt"
	"net/http"

	"ai-agent-character-demo/client/internal/models"
	"ai-agent-character-demo/client/internal/transport"
)

// ChatAPI covers /chat
type ChatAPI struct {
	t *transport.Client
}

// ListConversations returns the user's conversations, each with its last message if any
func (c *ChatAPI) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	resp, err := transport.Call[models.ConversationsResponse](ctx, c.t, transport.Request{
		Operation: "chat.conversations",
		Method:    http.MethodGet,
		Path:      "/chat/conversations",
	})
	if err != nil {
		return nil, err
	}
	return resp.Conversations, nil
}

// StartConversation opens a conversation with a character. Whether a
// repeated call returns the same conversation is up to the backend.
func (c *ChatAPI) StartConversation(ctx context.Context, characterID uint) (*models.Conversation, error) {
	return call[models.Conversation](ctx, c.t, "chat.start", http.MethodPost,
		fmt.Sprintf("/chat/start/%d", characterID), nil)
}

// GetConversationHistory returns messages in backend order
func (c *ChatAPI) GetConversationHistory(ctx context.Context, conversationID uint) ([]models.Message, error) {
	resp, err := transport.Call[models.HistoryResponse](ctx, c.t, transport.Request{
		Operation: "chat.history",
		Method:    http.MethodGet,
		Path:      fmt.Sprintf("/chat/history/%d", conversationID),
	})
	if err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendMessage posts text to a conversation and returns the stored message
func (c *ChatAPI) SendMessage(ctx context.Context, conversationID uint, text string) (*models.Message, error) {
	return call[models.Message](ctx, c.t, "chat.send", http.MethodPost,
		fmt.Sprintf("/chat/message/%d", conversationID), models.SendMessageRequest{Message: text})
}
