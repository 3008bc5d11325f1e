package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups that legitimately miss.
var ErrNotFound = errors.New("not found")

// User represents a registered account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	AvatarURL    string
	CreatedAt    time.Time
}

// Profile is the public view of a user attached to chat messages.
type Profile struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
}

// Workspace is a team's isolated collaboration space.
type Workspace struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
}

// MemberRole defines a member's role within a workspace.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleMember MemberRole = "member"
)

// Member records an active association between a user and a workspace.
// Its existence is the sole authorization basis for chat reads and writes.
type Member struct {
	UserID      string
	WorkspaceID string
	Role        MemberRole
	JoinedAt    time.Time
}

// ChatMessage is a persisted chat message. Sender is populated on reads.
type ChatMessage struct {
	ID          string
	WorkspaceID string
	SenderID    string
	Body        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Sender      *Profile
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, name, email, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// WorkspaceStore handles workspace and membership persistence.
// FindMembership is the membership authority consulted before every
// chat read or write.
type WorkspaceStore interface {
	// CreateWorkspace creates a workspace and records the owner as its first member.
	CreateWorkspace(ctx context.Context, name, ownerID string) (*Workspace, error)

	// GetWorkspaceByID retrieves a workspace by ID.
	GetWorkspaceByID(ctx context.Context, id string) (*Workspace, error)

	// ListWorkspaces lists workspaces the user is a member of.
	ListWorkspaces(ctx context.Context, userID string) ([]*Workspace, error)

	// AddMember adds a user to a workspace. Adding an existing member is a no-op.
	AddMember(ctx context.Context, workspaceID, userID string, role MemberRole) error

	// FindMembership returns the membership record for (userID, workspaceID),
	// or ErrNotFound if the user is not a member.
	FindMembership(ctx context.Context, userID, workspaceID string) (*Member, error)
}

// MessageStore handles chat message persistence. The log is append-only:
// messages are never mutated or deleted.
type MessageStore interface {
	// InsertMessage persists a new chat message.
	InsertMessage(ctx context.Context, msg *ChatMessage) error

	// GetMessageByID retrieves a message with its sender profile populated.
	GetMessageByID(ctx context.Context, id string) (*ChatMessage, error)

	// ListMessages retrieves up to limit messages for a workspace ordered
	// newest-first, skipping offset messages. Sender profiles are populated.
	ListMessages(ctx context.Context, workspaceID string, limit, offset int) ([]*ChatMessage, error)

	// CountMessages returns the total number of messages in a workspace.
	CountMessages(ctx context.Context, workspaceID string) (int64, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	WorkspaceStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
