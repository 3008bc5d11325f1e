package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/nikhilkushawaha/teammates-backend/internal/store"
)

const (
	// MaxMessageLength is the maximum message body length in characters after trimming.
	MaxMessageLength = 5000

	// DefaultPageNumber and DefaultPageSize apply when a caller passes zero values.
	DefaultPageNumber = 1
	DefaultPageSize   = 50
)

// Pagination describes one page of a reverse-chronological message window.
type Pagination struct {
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	TotalMessages int64 `json:"totalMessages"`
	TotalPages    int   `json:"totalPages"`
}

// Page is the result of ListMessages: messages ordered oldest-first within
// the requested page, plus pagination metadata.
type Page struct {
	Messages   []*store.ChatMessage
	Pagination Pagination
}

// Service orchestrates authorization and persistence for chat messages.
// It is the single place where "can this user access this workspace" is
// enforced, for both the REST path and the live-channel path.
type Service struct {
	members  store.WorkspaceStore
	messages store.MessageStore
	log      *zerolog.Logger
}

// NewService creates a chat service.
func NewService(members store.WorkspaceStore, messages store.MessageStore, logger *zerolog.Logger) *Service {
	return &Service{
		members:  members,
		messages: messages,
		log:      logger,
	}
}

// CheckMembership verifies that userID is a current member of workspaceID.
// Returns an Unauthorized error if not.
func (s *Service) CheckMembership(ctx context.Context, userID, workspaceID string) error {
	_, err := s.members.FindMembership(ctx, userID, workspaceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Unauthorized("You are not a member of this workspace")
		}
		return Internal(fmt.Errorf("find membership: %w", err))
	}
	return nil
}

// CreateMessage persists a new chat message on behalf of senderID.
// Membership is checked before the write; the persisted message is re-read
// with the sender's public profile attached. Broadcasting to live peers is
// the caller's responsibility.
func (s *Service) CreateMessage(ctx context.Context, workspaceID, senderID, text string) (*store.ChatMessage, error) {
	if err := s.CheckMembership(ctx, senderID, workspaceID); err != nil {
		return nil, err
	}

	body := strings.TrimSpace(text)
	if body == "" {
		return nil, Validation("Message cannot be empty")
	}
	if utf8.RuneCountInString(body) > MaxMessageLength {
		return nil, Validation("Message is too long")
	}

	now := time.Now().UTC()
	msg := &store.ChatMessage{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		SenderID:    senderID,
		Body:        body,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.messages.InsertMessage(ctx, msg); err != nil {
		return nil, Internal(fmt.Errorf("insert message: %w", err))
	}

	populated, err := s.messages.GetMessageByID(ctx, msg.ID)
	if err != nil {
		return nil, Internal(fmt.Errorf("reload message: %w", err))
	}

	s.log.Debug().
		Str("workspace_id", workspaceID).
		Str("sender_id", senderID).
		Str("message_id", msg.ID).
		Msg("chat message created")

	return populated, nil
}

// ListMessages returns one page of workspace history. Pages are independent
// reverse-chronological windows: page 1 holds the most recent pageSize
// messages. The returned page itself is reversed to oldest-first for stable
// display order.
func (s *Service) ListMessages(ctx context.Context, workspaceID, userID string, pageNumber, pageSize int) (*Page, error) {
	if err := s.CheckMembership(ctx, userID, workspaceID); err != nil {
		return nil, err
	}

	if pageNumber < 1 {
		pageNumber = DefaultPageNumber
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	offset := (pageNumber - 1) * pageSize
	messages, err := s.messages.ListMessages(ctx, workspaceID, pageSize, offset)
	if err != nil {
		return nil, Internal(fmt.Errorf("list messages: %w", err))
	}

	total, err := s.messages.CountMessages(ctx, workspaceID)
	if err != nil {
		return nil, Internal(fmt.Errorf("count messages: %w", err))
	}

	return &Page{
		Messages: lo.Reverse(messages),
		Pagination: Pagination{
			PageNumber:    pageNumber,
			PageSize:      pageSize,
			TotalMessages: total,
			TotalPages:    int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}, nil
}
