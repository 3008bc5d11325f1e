package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinWorkspace subscribes the client to a workspace room.
	CommandJoinWorkspace CommandKind = iota
	// CommandLeaveWorkspace unsubscribes the client from a workspace room.
	CommandLeaveWorkspace
	// CommandSendMessage persists a chat message and fans it out to the room.
	CommandSendMessage
	// CommandTypingStart signals that the client started typing.
	CommandTypingStart
	// CommandTypingStop signals that the client stopped typing.
	CommandTypingStop
)

// Command represents an action requested by a live connection.
type Command struct {
	Kind        CommandKind
	WorkspaceID string
	Text        string
}
