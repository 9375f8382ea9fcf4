package views

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-agent-character-demo/client/internal/models"
	"ai-agent-character-demo/client/internal/notify"
	"ai-agent-character-demo/client/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockChat struct {
	mock.Mock
}

func (m *mockChat) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	args := m.Called(ctx)
	convs, _ := args.Get(0).([]models.Conversation)
	return convs, args.Error(1)
}

func (m *mockChat) StartConversation(ctx context.Context, characterID uint) (*models.Conversation, error) {
	args := m.Called(ctx, characterID)
	conv, _ := args.Get(0).(*models.Conversation)
	return conv, args.Error(1)
}

func (m *mockChat) GetConversationHistory(ctx context.Context, id uint) ([]models.Message, error) {
	args := m.Called(ctx, id)
	msgs, _ := args.Get(0).([]models.Message)
	return msgs, args.Error(1)
}

func (m *mockChat) SendMessage(ctx context.Context, id uint, text string) (*models.Message, error) {
	args := m.Called(ctx, id, text)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

type mockCharacters struct {
	mock.Mock
}

func (m *mockCharacters) List(ctx context.Context) ([]models.Character, error) {
	args := m.Called(ctx)
	chars, _ := args.Get(0).([]models.Character)
	return chars, args.Error(1)
}

func (m *mockCharacters) Generate(ctx context.Context, prompt string) (*models.Character, error) {
	args := m.Called(ctx, prompt)
	c, _ := args.Get(0).(*models.Character)
	return c, args.Error(1)
}

func at(layout, value string) models.Timestamp {
	t, err := time.ParseInLocation(layout, value, time.UTC)
	if err != nil {
		panic(err)
	}
	return models.At(t)
}

func TestFilterCharacters(t *testing.T) {
	chars := []models.Character{
		{ID: 1, Name: "Ada Lovelace", Profession: models.String("Mathematician")},
		{ID: 2, Name: "Sherlock", Description: models.String("A consulting DETECTIVE")},
		{ID: 3, Name: "Bob"},
	}

	assert.Len(t, FilterCharacters(chars, "  "), 3)
	assert.Equal(t, []uint{1}, ids(FilterCharacters(chars, "math")))
	assert.Equal(t, []uint{2}, ids(FilterCharacters(chars, "detective")))
	assert.Equal(t, []uint{1}, ids(FilterCharacters(chars, "LOVE")))
	assert.Empty(t, FilterCharacters(chars, "zzz"))
}

func ids(chars []models.Character) []uint {
	var out []uint
	for _, c := range chars {
		out = append(out, c.ID)
	}
	return out
}

func TestFilterConversations(t *testing.T) {
	convs := []models.Conversation{
		{ConversationID: 1, Character: models.Character{Name: "Ada"}, LastMessage: &models.Message{Content: "Engines!"}},
		{ConversationID: 2, Character: models.Character{Name: "Bob"}},
	}

	assert.Len(t, FilterConversations(convs, ""), 2)

	got := FilterConversations(convs, "engine")
	require.Len(t, got, 1)
	assert.EqualValues(t, 1, got[0].ConversationID)

	got = FilterConversations(convs, "bo")
	require.Len(t, got, 1)
	assert.EqualValues(t, 2, got[0].ConversationID)
}

func TestGroupMessagesByDay(t *testing.T) {
	const layout = "2006-01-02 15:04"
	messages := []models.Message{
		{ID: 1, Role: models.RoleUser, Content: "a", CreatedAt: at(layout, "2024-05-01 09:05")},
		{ID: 2, Role: models.RoleAssistant, Content: "b", CreatedAt: at(layout, "2024-05-01 21:30")},
		{ID: 3, Role: models.RoleUser, Content: "c", CreatedAt: at(layout, "2024-05-03 08:00")},
		{ID: 4, Role: models.RoleAssistant, Content: "d", CreatedAt: at(layout, "2024-05-03 08:01")},
	}

	groups := GroupMessagesByDay(messages, time.UTC)

	require.Len(t, groups, 2)
	assert.Equal(t, "May 1, 2024", groups[0].Label)
	assert.Equal(t, "May 3, 2024", groups[1].Label)
	require.Len(t, groups[0].Messages, 2)
	assert.Equal(t, "9:05 AM", groups[0].Messages[0].Time)
	assert.Equal(t, "9:30 PM", groups[0].Messages[1].Time)
	assert.EqualValues(t, 4, groups[1].Messages[1].ID)

	assert.Empty(t, GroupMessagesByDay(nil, time.UTC))
}

func TestFormatConversationTime(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"same day", time.Date(2024, 5, 10, 9, 7, 0, 0, time.UTC), "9:07 AM"},
		{"yesterday", time.Date(2024, 5, 9, 13, 0, 0, 0, time.UTC), "1 day ago"},
		{"hours across midnight", time.Date(2024, 5, 9, 23, 0, 0, 0, time.UTC), "about 16 hours ago"},
		{"days", time.Date(2024, 5, 6, 15, 0, 0, 0, time.UTC), "4 days ago"},
		{"older", time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC), "Apr 1, 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatConversationTime(tt.t, now))
		})
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, "less than a minute ago", RelativeTime(now.Add(-10*time.Second), now))
	assert.Equal(t, "1 minute ago", RelativeTime(now.Add(-50*time.Second), now))
	assert.Equal(t, "12 minutes ago", RelativeTime(now.Add(-12*time.Minute), now))
	assert.Equal(t, "about 1 hour ago", RelativeTime(now.Add(-70*time.Minute), now))
	assert.Equal(t, "in 3 days", RelativeTime(now.Add(72*time.Hour), now))
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AL", Initials("ada lovelace"))
	assert.Equal(t, "U", Initials("User"))
	assert.Equal(t, "JD", Initials("  jane  doe"))
	assert.Equal(t, "", Initials(""))
}

func TestCharacterImage(t *testing.T) {
	assert.Equal(t, "https://img.test/a.png", CharacterImage(models.Character{Name: "Ada", ImageURL: models.String("https://img.test/a.png")}))
	assert.Equal(t, "https://via.placeholder.com/150?text=A", CharacterImage(models.Character{Name: "Ada"}))
	assert.Equal(t, "https://via.placeholder.com/150?text=%26", CharacterImage(models.Character{Name: "&co"}))
}

func TestChatThreadLoad(t *testing.T) {
	chat := &mockChat{}
	history := []models.Message{{ID: 2, Content: "later"}, {ID: 1, Content: "earlier"}}
	chat.On("GetConversationHistory", mock.Anything, uint(5)).Return(history, nil)
	chat.On("ListConversations", mock.Anything).Return([]models.Conversation{
		{ConversationID: 4, Character: models.Character{Name: "Other"}},
		{ConversationID: 5, Character: models.Character{ID: 9, Name: "Ada"}},
	}, nil)
	rec := notify.NewRecorder()

	thread := NewChatThread(chat, rec, 5)
	require.NoError(t, thread.Load(context.Background()))

	assert.Equal(t, history, thread.Messages())
	require.NotNil(t, thread.Character())
	assert.Equal(t, "Ada", thread.Character().Name)
	assert.Empty(t, rec.All())
}

func TestChatThreadMissingCharacter(t *testing.T) {
	chat := &mockChat{}
	chat.On("GetConversationHistory", mock.Anything, uint(5)).Return([]models.Message{}, nil)
	chat.On("ListConversations", mock.Anything).Return([]models.Conversation{}, nil)
	rec := notify.NewRecorder()

	thread := NewChatThread(chat, rec, 5)
	require.NoError(t, thread.Load(context.Background()))

	assert.Nil(t, thread.Character())
	assert.Equal(t, []string{MsgCharacterNotFound}, rec.Messages(notify.LevelError))
}

func TestChatThreadSendRefetches(t *testing.T) {
	chat := &mockChat{}
	chat.On("SendMessage", mock.Anything, uint(5), "hello").Return(&models.Message{ID: 3}, nil).Once()
	chat.On("GetConversationHistory", mock.Anything, uint(5)).Return([]models.Message{{ID: 3, Content: "hello"}, {ID: 4, Content: "hi!"}}, nil)
	chat.On("ListConversations", mock.Anything).Return([]models.Conversation{{ConversationID: 5}}, nil)

	thread := NewChatThread(chat, notify.NewRecorder(), 5)

	require.NoError(t, thread.Send(context.Background(), "   "))
	chat.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)

	require.NoError(t, thread.Send(context.Background(), "hello"))
	assert.Len(t, thread.Messages(), 2)
	assert.False(t, thread.IsSending())
	chat.AssertExpectations(t)
}

func TestChatThreadRejectsDoubleSend(t *testing.T) {
	release := make(chan struct{})
	chat := &mockChat{}
	chat.On("SendMessage", mock.Anything, uint(5), "one").
		Run(func(mock.Arguments) { <-release }).
		Return(&models.Message{ID: 1}, nil).Once()
	chat.On("GetConversationHistory", mock.Anything, uint(5)).Return([]models.Message{}, nil)
	chat.On("ListConversations", mock.Anything).Return([]models.Conversation{{ConversationID: 5}}, nil)

	thread := NewChatThread(chat, notify.NewRecorder(), 5)

	done := make(chan error, 1)
	go func() { done <- thread.Send(context.Background(), "one") }()
	require.Eventually(t, thread.IsSending, time.Second, time.Millisecond)

	assert.ErrorIs(t, thread.Send(context.Background(), "two"), ErrSendInFlight)

	close(release)
	require.NoError(t, <-done)
	chat.AssertNumberOfCalls(t, "SendMessage", 1)
}

func TestChatThreadSendFailure(t *testing.T) {
	chat := &mockChat{}
	boom := errors.New("boom")
	chat.On("SendMessage", mock.Anything, uint(5), "hello").Return(nil, boom)
	rec := notify.NewRecorder()

	thread := NewChatThread(chat, rec, 5)
	assert.ErrorIs(t, thread.Send(context.Background(), "hello"), boom)
	assert.Equal(t, []string{MsgSendFailed}, rec.Messages(notify.LevelError))
}

func TestStartChatNavigates(t *testing.T) {
	chat := &mockChat{}
	chat.On("StartConversation", mock.Anything, uint(9)).Return(&models.Conversation{ConversationID: 12}, nil)

	var path string
	conv, err := StartChat(context.Background(), chat, notify.NewRecorder(), session.NavigatorFunc(func(p string) { path = p }), 9)

	require.NoError(t, err)
	assert.EqualValues(t, 12, conv.ConversationID)
	assert.Equal(t, "/chat/12", path)
}

func TestGenerateCharacter(t *testing.T) {
	chars := &mockCharacters{}
	chars.On("Generate", mock.Anything, "a pirate").Return(&models.Character{ID: 1, Name: "Anne Bonny"}, nil)
	rec := notify.NewRecorder()

	_, err := GenerateCharacter(context.Background(), chars, rec, " ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Equal(t, []string{MsgEmptyPrompt}, rec.Messages(notify.LevelError))
	chars.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)

	c, err := GenerateCharacter(context.Background(), chars, rec, "a pirate")
	require.NoError(t, err)
	assert.Equal(t, "Anne Bonny", c.Name)
	assert.Equal(t, []string{"Anne Bonny has been created!"}, rec.Messages(notify.LevelSuccess))
}

func TestLoadCharactersFilters(t *testing.T) {
	chars := &mockCharacters{}
	chars.On("List", mock.Anything).Return([]models.Character{{ID: 1, Name: "Ada"}, {ID: 2, Name: "Bob"}}, nil)

	got, err := LoadCharacters(context.Background(), chars, notify.NewRecorder(), "ada")
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids(got))
}
