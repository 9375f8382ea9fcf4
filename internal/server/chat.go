package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"ai-agent-character-demo/client/internal/models"
	"ai-agent-character-demo/client/internal/notify"
	"ai-agent-character-demo/client/internal/session"
	"ai-agent-character-demo/client/internal/views"
	"ai-agent-character-demo/client/pkg/errors"

	"github.com/gin-gonic/gin"
)

// StartChatRequest is the body for POST /api/conversations
type StartChatRequest struct {
	CharacterID uint `json:"character_id"`
}

// ThreadView is an open conversation as the chat screen renders it
type ThreadView struct {
	ConversationID uint              `json:"conversation_id"`
	Character      *models.Character `json:"character"`
	Groups         []views.DayGroup  `json:"groups"`
	IsSending      bool              `json:"is_sending"`
}

// ChatHandler serves conversations and chat threads. Threads are built per
// request; only conversations with a send in flight are tracked, so a second
// send to the same one is refused and nothing outlives the request.
type ChatHandler struct {
	chat     views.ChatService
	notifier notify.Notifier
	nav      session.Navigator
	loc      *time.Location

	mu      sync.Mutex
	sending map[uint]struct{}
}

func NewChatHandler(chat views.ChatService, notifier notify.Notifier, nav session.Navigator, loc *time.Location) *ChatHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ChatHandler{
		chat:     chat,
		notifier: notifier,
		nav:      nav,
		loc:      loc,
		sending:  make(map[uint]struct{}),
	}
}

// ListConversations returns the conversations matching the optional ?q= filter
func (h *ChatHandler) ListConversations(c *gin.Context) {
	convs, err := views.LoadConversations(c.Request.Context(), h.chat, h.notifier, c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}
	if convs == nil {
		convs = []models.Conversation{}
	}
	c.JSON(http.StatusOK, convs)
}

func (h *ChatHandler) StartConversation(c *gin.Context) {
	var req StartChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CharacterID == 0 {
		c.Error(errors.NewBadRequestError("INVALID_REQUEST", "character_id is required"))
		return
	}
	conv, err := views.StartChat(c.Request.Context(), h.chat, h.notifier, h.nav, req.CharacterID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, conv)
}

// GetThread loads a conversation's history grouped by day
func (h *ChatHandler) GetThread(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	thread := views.NewChatThread(h.chat, h.notifier, id)
	if err := thread.Load(c.Request.Context()); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.view(thread, h.inFlight(id)))
}

// SendMessage posts a message and returns the reloaded thread
func (h *ChatHandler) SendMessage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_REQUEST", err.Error()))
		return
	}

	if !h.acquire(id) {
		c.Error(errors.NewConflictError("SEND_IN_FLIGHT", views.ErrSendInFlight.Error()))
		return
	}
	defer h.release(id)

	thread := views.NewChatThread(h.chat, h.notifier, id)
	var err error
	if strings.TrimSpace(req.Message) == "" {
		err = thread.Load(c.Request.Context())
	} else {
		err = thread.Send(c.Request.Context(), req.Message)
	}
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, h.view(thread, false))
}

func (h *ChatHandler) acquire(id uint) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, busy := h.sending[id]; busy {
		return false
	}
	h.sending[id] = struct{}{}
	return true
}

func (h *ChatHandler) release(id uint) {
	h.mu.Lock()
	delete(h.sending, id)
	h.mu.Unlock()
}

func (h *ChatHandler) inFlight(id uint) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, busy := h.sending[id]
	return busy
}

func (h *ChatHandler) view(t *views.ChatThread, sending bool) ThreadView {
	groups := t.Groups(h.loc)
	if groups == nil {
		groups = []views.DayGroup{}
	}
	return ThreadView{
		ConversationID: t.ConversationID(),
		Character:      t.Character(),
		Groups:         groups,
		IsSending:      sending,
	}
}
