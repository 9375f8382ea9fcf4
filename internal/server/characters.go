package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"ai-agent-character-demo/client/internal/models"
	"ai-agent-character-demo/client/internal/notify"
	"ai-agent-character-demo/client/internal/views"
	"ai-agent-character-demo/client/pkg/errors"

	"github.com/gin-gonic/gin"
)

// CharacterService is the characters API behind /api/characters
type CharacterService interface {
	List(ctx context.Context) ([]models.Character, error)
	Get(ctx context.Context, id uint) (*models.Character, error)
	Create(ctx context.Context, input models.CharacterInput) (*models.Character, error)
	Update(ctx context.Context, id uint, input models.CharacterInput) (*models.Character, error)
	Delete(ctx context.Context, id uint) error
	UpdateAvatar(ctx context.Context, id uint, imageURL string) (*models.Character, error)
	Generate(ctx context.Context, prompt string) (*models.Character, error)
}

type CharacterHandler struct {
	chars    CharacterService
	notifier notify.Notifier
}

func NewCharacterHandler(chars CharacterService, notifier notify.Notifier) *CharacterHandler {
	return &CharacterHandler{chars: chars, notifier: notifier}
}

// ListCharacters returns the characters matching the optional ?q= filter
func (h *CharacterHandler) ListCharacters(c *gin.Context) {
	list, err := views.LoadCharacters(c.Request.Context(), h.chars, h.notifier, c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}
	if list == nil {
		list = []models.Character{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *CharacterHandler) GetCharacter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	character, err := h.chars.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, character)
}

func (h *CharacterHandler) CreateCharacter(c *gin.Context) {
	var input models.CharacterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_REQUEST", err.Error()))
		return
	}
	character, err := h.chars.Create(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, character)
}

func (h *CharacterHandler) UpdateCharacter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.CharacterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_REQUEST", err.Error()))
		return
	}
	character, err := h.chars.Update(c.Request.Context(), id, input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, character)
}

func (h *CharacterHandler) DeleteCharacter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.chars.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CharacterHandler) UpdateAvatar(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req models.UpdateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_REQUEST", err.Error()))
		return
	}
	character, err := h.chars.UpdateAvatar(c.Request.Context(), id, req.ImageURL)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, character)
}

// GenerateCharacter creates a character from a free-text description
func (h *CharacterHandler) GenerateCharacter(c *gin.Context) {
	var req models.GenerateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_REQUEST", err.Error()))
		return
	}
	character, err := views.GenerateCharacter(c.Request.Context(), h.chars, h.notifier, req.Details)
	if stderrors.Is(err, views.ErrEmptyPrompt) {
		c.Error(errors.NewBadRequestError("EMPTY_PROMPT", views.MsgEmptyPrompt))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, character)
}

// idParam parses the :id path segment, answering 400 itself when it is not a positive integer
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.Error(errors.NewBadRequestError("INVALID_ID", "Invalid ID"))
		return 0, false
	}
	return uint(id), true
}
