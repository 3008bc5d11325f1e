package core

// Client is a live connection as seen by the hub. UserID and UserName are
// set once at the handshake and immutable for the connection's lifetime.
type Client struct {
	ID       string
	UserID   string
	UserName string
	Commands chan *Command
	Events   chan *Event

	// rooms tracks joined workspace rooms; owned by the hub run loop.
	rooms map[string]struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id, userID, userName string) *Client {
	return &Client{
		ID:       id,
		UserID:   userID,
		UserName: userName,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 8),
		rooms:    make(map[string]struct{}),
	}
}
