package core

import (
	"context"
	"testing"
	"time"

	"github.com/nikhilkushawaha/teammates-backend/internal/chat"
	"github.com/nikhilkushawaha/teammates-backend/internal/log"
	"github.com/nikhilkushawaha/teammates-backend/internal/store/sqlite"
)

// testWorld is a hub wired to an in-memory store with two workspace members
// (alice, bob) and one outsider (carol).
type testWorld struct {
	hub         *Hub
	workspaceID string
	aliceID     string
	bobID       string
	carolID     string
}

func newTestWorld(t *testing.T, ctx context.Context) *testWorld {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	alice, err := st.CreateUser(ctx, "alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := st.CreateUser(ctx, "bob", "bob@example.com", "hash")
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	carol, err := st.CreateUser(ctx, "carol", "carol@example.com", "hash")
	if err != nil {
		t.Fatalf("create carol: %v", err)
	}

	ws, err := st.CreateWorkspace(ctx, "acme", alice.ID)
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	if err := st.AddMember(ctx, ws.ID, bob.ID, "member"); err != nil {
		t.Fatalf("add bob: %v", err)
	}

	hub := NewHub(chat.NewService(st, st, log.Nop()), log.Nop())
	go hub.Run(ctx)

	return &testWorld{
		hub:         hub,
		workspaceID: ws.ID,
		aliceID:     alice.ID,
		bobID:       bob.ID,
		carolID:     carol.ID,
	}
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// settle gives the hub loop time to drain previously queued commands, so
// tests can rely on join order across different connections.
func settle() {
	time.Sleep(50 * time.Millisecond)
}

func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("expected no event, got %+v", ev)
	case <-time.After(150 * time.Millisecond):
	}
}
