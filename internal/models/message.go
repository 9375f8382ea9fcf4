package models

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the two known roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one turn in a conversation
type Message struct {
	ID             uint      `json:"id"`
	ConversationID *uint     `json:"conversation_id,omitempty"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      Timestamp `json:"created_at"`
}

// SendMessageRequest is the body for POST /chat/message/{id}.
// The backend expects the field to be called "message".
type SendMessageRequest struct {
	Message string `json:"message"`
}

// HistoryResponse wraps GET /chat/history/{id}
type HistoryResponse struct {
	Messages []Message `json:"messages"`
}
