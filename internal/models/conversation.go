package models

// Conversation is a thread between the session user and one character
type Conversation struct {
	ConversationID uint      `json:"conversation_id"`
	CharacterID    uint      `json:"character_id"`
	UserID         uint      `json:"user_id"`
	CreatedAt      Timestamp `json:"created_at"`
	Character      Character `json:"character"`
	LastMessage    *Message  `json:"last_message,omitempty"`
}

// ConversationsResponse wraps GET /chat/conversations
type ConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
}
