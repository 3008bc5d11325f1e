package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nikhilkushawaha/teammates-backend/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	avatar_url    TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS workspaces (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	owner_id   TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	FOREIGN KEY (owner_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS members (
	user_id      TEXT NOT NULL,
	workspace_id TEXT NOT NULL,
	role         TEXT NOT NULL DEFAULT 'member',
	joined_at    TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, workspace_id),
	FOREIGN KEY (user_id) REFERENCES users(id),
	FOREIGN KEY (workspace_id) REFERENCES workspaces(id)
);

CREATE TABLE IF NOT EXISTS chat_messages (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT NOT NULL UNIQUE,
	workspace_id TEXT NOT NULL,
	sender_id    TEXT NOT NULL,
	body         TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL,
	FOREIGN KEY (workspace_id) REFERENCES workspaces(id),
	FOREIGN KEY (sender_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_workspace ON chat_messages(workspace_id, seq DESC);
CREATE INDEX IF NOT EXISTS idx_members_workspace ON members(workspace_id);
`

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Set connection pool limits; SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function after
// applying the schema. Useful for tests to seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	st, err := New(dbPath)
	if err != nil {
		return nil, err
	}

	if setup != nil {
		if err := setup(st.db); err != nil {
			st.db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return st, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	id := newID()
	if _, err := s.db.ExecContext(ctx, query, id, name, email, passwordHash); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	query := `
		SELECT id, name, email, password_hash, avatar_url, created_at
		FROM users
		WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `
		SELECT id, name, email, password_hash, avatar_url, created_at
		FROM users
		WHERE email = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*store.User, error) {
	var user store.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// ==== WorkspaceStore implementation ====

// CreateWorkspace creates a workspace and records the owner as its first member.
func (s *SQLiteStore) CreateWorkspace(ctx context.Context, name, ownerID string) (*store.Workspace, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id := newID()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO workspaces (id, name, owner_id, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`, id, name, ownerID); err != nil {
		return nil, fmt.Errorf("insert workspace: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO members (user_id, workspace_id, role, joined_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`, ownerID, id, store.MemberRoleOwner); err != nil {
		return nil, fmt.Errorf("insert owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return s.GetWorkspaceByID(ctx, id)
}

// GetWorkspaceByID retrieves a workspace by ID.
func (s *SQLiteStore) GetWorkspaceByID(ctx context.Context, id string) (*store.Workspace, error) {
	query := `
		SELECT id, name, owner_id, created_at
		FROM workspaces
		WHERE id = ?
	`
	var ws store.Workspace
	err := s.db.QueryRowContext(ctx, query, id).Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query workspace: %w", err)
	}

	return &ws, nil
}

// ListWorkspaces lists workspaces the user is a member of.
func (s *SQLiteStore) ListWorkspaces(ctx context.Context, userID string) ([]*store.Workspace, error) {
	query := `
		SELECT w.id, w.name, w.owner_id, w.created_at
		FROM workspaces w
		JOIN members m ON m.workspace_id = w.id
		WHERE m.user_id = ?
		ORDER BY w.created_at
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []*store.Workspace
	for rows.Next() {
		var ws store.Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		workspaces = append(workspaces, &ws)
	}

	return workspaces, rows.Err()
}

// AddMember adds a user to a workspace. Adding an existing member is a no-op.
func (s *SQLiteStore) AddMember(ctx context.Context, workspaceID, userID string, role store.MemberRole) error {
	query := `
		INSERT OR IGNORE INTO members (user_id, workspace_id, role, joined_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`
	if _, err := s.db.ExecContext(ctx, query, userID, workspaceID, role); err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// FindMembership returns the membership record for (userID, workspaceID).
func (s *SQLiteStore) FindMembership(ctx context.Context, userID, workspaceID string) (*store.Member, error) {
	query := `
		SELECT user_id, workspace_id, role, joined_at
		FROM members
		WHERE user_id = ? AND workspace_id = ?
	`
	var m store.Member
	err := s.db.QueryRowContext(ctx, query, userID, workspaceID).Scan(
		&m.UserID,
		&m.WorkspaceID,
		&m.Role,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query membership: %w", err)
	}

	return &m, nil
}

// ==== MessageStore implementation ====

const messageColumns = `
	m.id, m.workspace_id, m.sender_id, m.body, m.created_at, m.updated_at,
	u.id, u.name, u.email, u.avatar_url
`

// InsertMessage persists a new chat message.
func (s *SQLiteStore) InsertMessage(ctx context.Context, msg *store.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, workspace_id, sender_id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.WorkspaceID, msg.SenderID, msg.Body, msg.CreatedAt, msg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// GetMessageByID retrieves a message with its sender profile populated.
func (s *SQLiteStore) GetMessageByID(ctx context.Context, id string) (*store.ChatMessage, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM chat_messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.id = ?
	`
	var msg store.ChatMessage
	var sender store.Profile
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID, &msg.WorkspaceID, &msg.SenderID, &msg.Body, &msg.CreatedAt, &msg.UpdatedAt,
		&sender.ID, &sender.Name, &sender.Email, &sender.AvatarURL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query message: %w", err)
	}

	msg.Sender = &sender
	return &msg, nil
}

// ListMessages retrieves up to limit messages for a workspace ordered newest-first.
func (s *SQLiteStore) ListMessages(ctx context.Context, workspaceID string, limit, offset int) ([]*store.ChatMessage, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM chat_messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.workspace_id = ?
		ORDER BY m.seq DESC
		LIMIT ? OFFSET ?
	`
	rows, err := s.db.QueryContext(ctx, query, workspaceID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.ChatMessage
	for rows.Next() {
		var msg store.ChatMessage
		var sender store.Profile
		if err := rows.Scan(
			&msg.ID, &msg.WorkspaceID, &msg.SenderID, &msg.Body, &msg.CreatedAt, &msg.UpdatedAt,
			&sender.ID, &sender.Name, &sender.Email, &sender.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Sender = &sender
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

// CountMessages returns the total number of messages in a workspace.
func (s *SQLiteStore) CountMessages(ctx context.Context, workspaceID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chat_messages WHERE workspace_id = ?
	`, workspaceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}
