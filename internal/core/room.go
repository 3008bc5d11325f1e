package core

// Room groups live connections joined to the same workspace.
type Room struct {
	WorkspaceID string
	clients     map[*Client]struct{}
}

// NewRoom constructs a room with no clients.
func NewRoom(workspaceID string) *Room {
	return &Room{
		WorkspaceID: workspaceID,
		clients:     make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Contains reports whether the client is currently in the room.
func (r *Room) Contains(c *Client) bool {
	_, exists := r.clients[c]
	return exists
}

// Broadcast sends an event to all clients in the room except exclude
// (which may be nil). Delivery is fire-and-forget.
func (r *Room) Broadcast(event *Event, exclude *Client) {
	for client := range r.clients {
		if client == exclude {
			continue
		}
		select {
		case client.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.clients) == 0
}
