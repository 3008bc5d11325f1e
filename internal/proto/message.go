package proto

import "encoding/json"

// Inbound is the envelope for events coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinWorkspace  = "join_workspace"
	InboundTypeLeaveWorkspace = "leave_workspace"
	InboundTypeSendMessage    = "send_message"
	InboundTypeTypingStart    = "typing_start"
	InboundTypeTypingStop     = "typing_stop"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventNewMessage        = "new_message"
	EventUserJoined        = "user_joined"
	EventUserTyping        = "user_typing"
	EventUserStoppedTyping = "user_stopped_typing"
)

// JoinWorkspaceData requests to join or leave a workspace room.
type JoinWorkspaceData struct {
	WorkspaceID string `json:"workspaceId"`
}

// SendMessageData is a chat message from the client.
type SendMessageData struct {
	WorkspaceID string `json:"workspaceId"`
	Message     string `json:"message"`
}

// TypingData marks a typing indicator change.
type TypingData struct {
	WorkspaceID string `json:"workspaceId"`
}

// Outbound is the envelope for events sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Sender is the public profile attached to a chat message.
type Sender struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// ChatMessage is the wire form of a persisted message, shared by the live
// channel and the REST responses.
type ChatMessage struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	Sender      Sender `json:"sender"`
	Message     string `json:"message"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// EventNewMessageData carries a persisted message to room members.
type EventNewMessageData struct {
	ChatMessage ChatMessage `json:"chatMessage"`
}

// EventPresenceData carries join/typing presence hints.
type EventPresenceData struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// Error describes a scoped error sent to the requester only.
type Error struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode,omitempty"`
}

// HandshakeRejection is written to an unauthenticated connection before it
// is closed, so the rejection is a structured signal rather than a silent
// disconnect.
type HandshakeRejection struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}
