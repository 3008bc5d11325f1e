package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/nikhilkushawaha/teammates-backend/internal/chat"
	"github.com/nikhilkushawaha/teammates-backend/internal/config"
	"github.com/nikhilkushawaha/teammates-backend/internal/core"
	"github.com/nikhilkushawaha/teammates-backend/internal/proto"
	"github.com/nikhilkushawaha/teammates-backend/internal/store"
)

// ChatHandlers provides the request/response endpoint for chat history and
// message submission.
type ChatHandlers struct {
	chat *chat.Service
	hub  *core.Hub
	cfg  *config.Config
	log  *zerolog.Logger
}

// NewChatHandlers creates a new chat handlers instance.
func NewChatHandlers(chatService *chat.Service, hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *ChatHandlers {
	return &ChatHandlers{
		chat: chatService,
		hub:  hub,
		cfg:  cfg,
		log:  logger,
	}
}

// CreateMessageRequest represents the create message request body.
type CreateMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// MessagesResponse represents the paginated history response body.
type MessagesResponse struct {
	Message    string              `json:"message"`
	Messages   []proto.ChatMessage `json:"messages"`
	Pagination chat.Pagination     `json:"pagination"`
}

// CreateMessageResponse represents the message creation response body.
type CreateMessageResponse struct {
	Message     string            `json:"message"`
	ChatMessage proto.ChatMessage `json:"chatMessage"`
}

// GetMessages returns one page of workspace chat history.
// GET /api/workspace/:workspaceId/messages?pageNumber=&pageSize=
func (h *ChatHandlers) GetMessages(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
		return
	}

	workspaceID := c.Param("workspaceId")
	if workspaceID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Workspace ID is required", ErrorCode: chat.CodeValidation})
		return
	}

	pageNumber := queryInt(c, "pageNumber", chat.DefaultPageNumber)
	pageSize := queryInt(c, "pageSize", h.cfg.DefaultPageSize)
	if h.cfg.MaxPageSize > 0 && pageSize > h.cfg.MaxPageSize {
		pageSize = h.cfg.MaxPageSize
	}

	page, err := h.chat.ListMessages(c.Request.Context(), workspaceID, identity.UserID, pageNumber, pageSize)
	if err != nil {
		h.writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessagesResponse{
		Message: "Chat messages retrieved successfully",
		Messages: lo.Map(page.Messages, func(m *store.ChatMessage, _ int) proto.ChatMessage {
			return chatMessagePayload(m)
		}),
		Pagination: page.Pagination,
	})
}

// CreateMessage persists a message and broadcasts it to the workspace room,
// so a message submitted over plain request/response is visible to peers on
// the live channel. The broadcast after the durable write is mandatory.
// POST /api/workspace/:workspaceId/messages
func (h *ChatHandlers) CreateMessage(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
		return
	}

	workspaceID := c.Param("workspaceId")
	if workspaceID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Workspace ID is required", ErrorCode: chat.CodeValidation})
		return
	}

	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create message request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Message cannot be empty", ErrorCode: chat.CodeValidation})
		return
	}

	// Validate before any store access.
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Message cannot be empty", ErrorCode: chat.CodeValidation})
		return
	}
	if utf8.RuneCountInString(req.Message) > chat.MaxMessageLength {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Message is too long", ErrorCode: chat.CodeValidation})
		return
	}

	msg, err := h.chat.CreateMessage(c.Request.Context(), workspaceID, identity.UserID, req.Message)
	if err != nil {
		h.writeChatError(c, err)
		return
	}

	h.hub.BroadcastNewMessage(workspaceID, msg)

	c.JSON(http.StatusCreated, CreateMessageResponse{
		Message:     "Chat message created successfully",
		ChatMessage: chatMessagePayload(msg),
	})
}

// writeChatError maps the domain error taxonomy onto HTTP status codes.
func (h *ChatHandlers) writeChatError(c *gin.Context, err error) {
	var domainErr *chat.Error
	if !errors.As(err, &domainErr) {
		h.log.Error().Err(err).Msg("unexpected chat error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Kind {
	case chat.KindValidation:
		status = http.StatusBadRequest
	case chat.KindUnauthorized:
		status = http.StatusUnauthorized
	case chat.KindNotFound:
		status = http.StatusNotFound
	case chat.KindInternal:
		h.log.Error().Err(err).Msg("chat store failure")
	}

	message := domainErr.Message
	if domainErr.Kind == chat.KindInternal {
		message = "internal server error"
	}
	c.JSON(status, ErrorResponse{Message: message, ErrorCode: domainErr.Code})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
