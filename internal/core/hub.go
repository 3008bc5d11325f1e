package core

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/nikhilkushawaha/teammates-backend/internal/chat"
	"github.com/nikhilkushawaha/teammates-backend/internal/store"
)

// clientCommand pairs a command with the connection that issued it.
type clientCommand struct {
	client *Client
	cmd    *Command
}

// notification is an externally submitted broadcast, used by the REST write
// path so messages submitted over plain requests reach live peers.
type notification struct {
	workspaceID string
	message     *store.ChatMessage
}

// Hub is the broadcast registry: it groups live connections by workspace and
// fans events out to them. All state is owned by the Run loop, which
// processes one operation at a time, so no two mutations interleave. Per
// connection, commands are processed in the order received.
type Hub struct {
	chat *chat.Service
	log  *zerolog.Logger

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	notify     chan notification

	rooms   map[string]*Room
	clients map[*Client]struct{}
}

// NewHub creates a hub backed by the given chat service.
func NewHub(chatService *chat.Service, logger *zerolog.Logger) *Hub {
	return &Hub{
		chat:       chatService,
		log:        logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand),
		notify:     make(chan notification, 64),
		rooms:      make(map[string]*Room),
		clients:    make(map[*Client]struct{}),
	}
}

// RegisterClient adds a connection to the hub and starts pumping its
// commands into the run loop. The pump preserves the connection's own
// command order and exits when the transport closes the Commands channel.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
	go func() {
		for cmd := range c.Commands {
			h.commands <- clientCommand{client: c, cmd: cmd}
		}
	}()
}

// UnregisterClient removes a connection from the hub and every room it
// joined. The client's Events channel is closed by the run loop.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// BroadcastNewMessage fans out an already persisted message to the workspace
// room. Used by the REST write path after a durable write; delivery is
// fire-and-forget.
func (h *Hub) BroadcastNewMessage(workspaceID string, msg *store.ChatMessage) {
	select {
	case h.notify <- notification{workspaceID: workspaceID, message: msg}:
	default:
		h.log.Warn().Str("workspace_id", workspaceID).Msg("notification queue full, broadcast dropped")
	}
}

// Run processes hub operations until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.log.Debug().Str("client_id", c.ID).Str("user_id", c.UserID).Msg("client registered")
		case c := <-h.unregister:
			h.removeClient(c)
		case cc := <-h.commands:
			h.handleCommand(ctx, cc.client, cc.cmd)
		case n := <-h.notify:
			if room, ok := h.rooms[n.workspaceID]; ok {
				room.Broadcast(&Event{
					Kind:        EventNewMessage,
					WorkspaceID: n.workspaceID,
					Message:     n.message,
				}, nil)
			}
		}
	}
}

func (h *Hub) removeClient(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	for workspaceID := range c.rooms {
		if room, ok := h.rooms[workspaceID]; ok {
			room.RemoveClient(c)
			if room.Empty() {
				delete(h.rooms, workspaceID)
			}
		}
	}
	delete(h.clients, c)
	close(c.Events)
	h.log.Debug().Str("client_id", c.ID).Msg("client unregistered")
}

func (h *Hub) handleCommand(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoinWorkspace:
		h.handleJoin(ctx, c, cmd.WorkspaceID)
	case CommandLeaveWorkspace:
		h.handleLeave(c, cmd.WorkspaceID)
	case CommandSendMessage:
		h.handleSend(ctx, c, cmd.WorkspaceID, cmd.Text)
	case CommandTypingStart:
		h.handleTyping(c, cmd.WorkspaceID, EventUserTyping)
	case CommandTypingStop:
		h.handleTyping(c, cmd.WorkspaceID, EventUserStoppedTyping)
	}
}

// handleJoin re-validates membership before adding the connection to the
// room; authentication alone is not sufficient since membership can change
// after login. Existing room members are notified, the joiner is not.
func (h *Hub) handleJoin(ctx context.Context, c *Client, workspaceID string) {
	if err := h.chat.CheckMembership(ctx, c.UserID, workspaceID); err != nil {
		h.sendError(c, err)
		return
	}

	room, ok := h.rooms[workspaceID]
	if !ok {
		room = NewRoom(workspaceID)
		h.rooms[workspaceID] = room
	}
	if !room.AddClient(c) {
		// Already joined; nothing to announce.
		return
	}
	c.rooms[workspaceID] = struct{}{}

	room.Broadcast(&Event{
		Kind:        EventUserJoined,
		WorkspaceID: workspaceID,
		UserID:      c.UserID,
		UserName:    c.UserName,
	}, c)

	h.log.Debug().
		Str("client_id", c.ID).
		Str("user_id", c.UserID).
		Str("workspace_id", workspaceID).
		Msg("client joined workspace room")
}

// handleLeave is idempotent: leaving a room not joined is a no-op and emits
// no events. No membership check is needed since leaving only reduces
// capability.
func (h *Hub) handleLeave(c *Client, workspaceID string) {
	room, ok := h.rooms[workspaceID]
	if !ok {
		return
	}
	if !room.RemoveClient(c) {
		return
	}
	delete(c.rooms, workspaceID)
	if room.Empty() {
		delete(h.rooms, workspaceID)
	}
}

// handleSend persists through the chat service using the connection's
// authenticated identity, then fans the message out to the whole room,
// sender included. Persistence failure guarantees no broadcast occurs and
// the failure never propagates to other room members.
func (h *Hub) handleSend(ctx context.Context, c *Client, workspaceID, text string) {
	msg, err := h.chat.CreateMessage(ctx, workspaceID, c.UserID, text)
	if err != nil {
		h.sendError(c, err)
		return
	}

	if room, ok := h.rooms[workspaceID]; ok {
		room.Broadcast(&Event{
			Kind:        EventNewMessage,
			WorkspaceID: workspaceID,
			Message:     msg,
		}, nil)
	}
}

// handleTyping broadcasts a best-effort presence hint to the other room
// members. No persistence, no membership re-check.
func (h *Hub) handleTyping(c *Client, workspaceID string, kind EventKind) {
	room, ok := h.rooms[workspaceID]
	if !ok {
		return
	}
	room.Broadcast(&Event{
		Kind:        kind,
		WorkspaceID: workspaceID,
		UserID:      c.UserID,
		UserName:    c.UserName,
	}, c)
}

// sendError delivers a scoped error event to the requester only. The
// connection and its other room memberships stay intact.
func (h *Hub) sendError(c *Client, err error) {
	var domainErr *chat.Error
	if !errors.As(err, &domainErr) {
		domainErr = chat.Internal(err)
	}
	select {
	case c.Events <- &Event{Kind: EventError, Error: domainErr}:
	default:
	}
}
