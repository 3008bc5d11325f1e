package core

import (
	"github.com/nikhilkushawaha/teammates-backend/internal/chat"
	"github.com/nikhilkushawaha/teammates-backend/internal/store"
)

// EventKind is a notification the hub emits to live connections.
type EventKind int

const (
	// EventNewMessage notifies the room about a persisted chat message.
	EventNewMessage EventKind = iota
	// EventUserJoined notifies other room members that a user joined.
	EventUserJoined
	// EventUserTyping notifies other room members that a user is typing.
	EventUserTyping
	// EventUserStoppedTyping notifies other room members that a user stopped typing.
	EventUserStoppedTyping
	// EventError delivers a scoped domain error to the requester only.
	EventError
)

// Event is sent to live connections to describe what happened.
type Event struct {
	Kind        EventKind
	WorkspaceID string
	UserID      string
	UserName    string
	Message     *store.ChatMessage // non-nil for EventNewMessage
	Error       *chat.Error        // non-nil for EventError
}
