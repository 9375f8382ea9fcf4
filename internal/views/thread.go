package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ai-agent-character-demo/client/internal/models"
	"ai-agent-character-demo/client/internal/notify"
	"ai-agent-character-demo/client/internal/session"
)

// Messages shown by the consumer flows
const (
	MsgCharacterNotFound       = "Character not found."
	MsgLoadConversationFailed  = "Failed to load conversation."
	MsgSendFailed              = "Failed to send message."
	MsgStartFailed             = "Failed to start conversation"
	MsgEmptyPrompt             = "Please enter a description for your character"
	MsgGenerateFailed          = "Failed to generate character"
	MsgLoadCharactersFailed    = "Failed to load characters"
	MsgLoadConversationsFailed = "Failed to load conversations"
)

var (
	// ErrSendInFlight is returned when a send is attempted while another is pending
	ErrSendInFlight = errors.New("a message is already being sent")
	ErrEmptyPrompt  = errors.New("character description is empty")
)

// ChatService is the chat API used by the views
type ChatService interface {
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	StartConversation(ctx context.Context, characterID uint) (*models.Conversation, error)
	GetConversationHistory(ctx context.Context, conversationID uint) ([]models.Message, error)
	SendMessage(ctx context.Context, conversationID uint, text string) (*models.Message, error)
}

// CharacterService is the characters API used by the views
type CharacterService interface {
	List(ctx context.Context) ([]models.Character, error)
	Generate(ctx context.Context, prompt string) (*models.Character, error)
}

// ChatThread is one open conversation. After every send the history is
// fetched again rather than patched locally.
type ChatThread struct {
	chat           ChatService
	notifier       notify.Notifier
	conversationID uint

	sending atomic.Bool

	mu        sync.RWMutex
	messages  []models.Message
	character *models.Character
}

// NewChatThread creates a thread for conversationID. Call Load to fill it.
func NewChatThread(chat ChatService, notifier notify.Notifier, conversationID uint) *ChatThread {
	return &ChatThread{chat: chat, notifier: notifier, conversationID: conversationID}
}

// ConversationID returns the thread's conversation
func (t *ChatThread) ConversationID() uint {
	return t.conversationID
}

// Load fetches the history and resolves the character from the
// conversation list
func (t *ChatThread) Load(ctx context.Context) error {
	messages, err := t.chat.GetConversationHistory(ctx, t.conversationID)
	if err != nil {
		t.notifier.Error(MsgLoadConversationFailed)
		return err
	}
	t.mu.Lock()
	t.messages = messages
	t.mu.Unlock()

	convs, err := t.chat.ListConversations(ctx)
	if err != nil {
		t.notifier.Error(MsgLoadConversationFailed)
		return err
	}

	for _, c := range convs {
		if c.ConversationID == t.conversationID {
			character := c.Character
			t.mu.Lock()
			t.character = &character
			t.mu.Unlock()
			return nil
		}
	}

	t.notifier.Error(MsgCharacterNotFound)
	return nil
}

// Send posts text and reloads the thread. Blank text is ignored. A second
// Send while one is pending fails with ErrSendInFlight.
func (t *ChatThread) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if !t.sending.CompareAndSwap(false, true) {
		return ErrSendInFlight
	}
	defer t.sending.Store(false)

	if _, err := t.chat.SendMessage(ctx, t.conversationID, text); err != nil {
		t.notifier.Error(MsgSendFailed)
		return err
	}
	// Load reports its own failures
	return t.Load(ctx)
}

// IsSending reports whether a send is pending
func (t *ChatThread) IsSending() bool {
	return t.sending.Load()
}

// Messages returns the loaded history in backend order
func (t *ChatThread) Messages() []models.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]models.Message(nil), t.messages...)
}

// Character returns the conversation's character, or nil if unresolved
func (t *ChatThread) Character() *models.Character {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.character
}

// Groups returns the history grouped by day in loc
func (t *ChatThread) Groups(loc *time.Location) []DayGroup {
	return GroupMessagesByDay(t.Messages(), loc)
}

// ChatPath is where the chat view for a conversation lives
func ChatPath(conversationID uint) string {
	return fmt.Sprintf("/chat/%d", conversationID)
}

// StartChat opens a conversation with a character and navigates to it
func StartChat(ctx context.Context, chat ChatService, notifier notify.Notifier, nav session.Navigator, characterID uint) (*models.Conversation, error) {
	conv, err := chat.StartConversation(ctx, characterID)
	if err != nil {
		notifier.Error(MsgStartFailed)
		return nil, err
	}
	if nav != nil {
		nav.Navigate(ChatPath(conv.ConversationID))
	}
	return conv, nil
}

// GenerateCharacter creates a character from a free-text description
func GenerateCharacter(ctx context.Context, chars CharacterService, notifier notify.Notifier, prompt string) (*models.Character, error) {
	if strings.TrimSpace(prompt) == "" {
		notifier.Error(MsgEmptyPrompt)
		return nil, ErrEmptyPrompt
	}

	character, err := chars.Generate(ctx, prompt)
	if err != nil {
		notifier.Error(MsgGenerateFailed)
		return nil, err
	}
	notifier.Success(fmt.Sprintf("%s has been created!", character.Name))
	return character, nil
}

// LoadCharacters lists characters matching query
func LoadCharacters(ctx context.Context, chars CharacterService, notifier notify.Notifier, query string) ([]models.Character, error) {
	list, err := chars.List(ctx)
	if err != nil {
		notifier.Error(MsgLoadCharactersFailed)
		return nil, err
	}
	return FilterCharacters(list, query), nil
}

// LoadConversations lists conversations matching query
func LoadConversations(ctx context.Context, chat ChatService, notifier notify.Notifier, query string) ([]models.Conversation, error) {
	convs, err := chat.ListConversations(ctx)
	if err != nil {
		notifier.Error(MsgLoadConversationsFailed)
		return nil, err
	}
	return FilterConversations(convs, query), nil
}
