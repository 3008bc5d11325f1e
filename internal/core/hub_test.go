package core

import (
	"context"
	"testing"
	"time"

	"github.com/nikhilkushawaha/teammates-backend/internal/chat"
)

func TestHubJoinNotifiesOthersNotJoiner(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	w := newTestWorld(t, ctx)

	alice := NewClient("c1", w.aliceID, "alice")
	bob := NewClient("c2", w.bobID, "bob")
	w.hub.RegisterClient(alice)
	w.hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandJoinWorkspace, WorkspaceID: w.workspaceID}
	settle()
	bob.Commands <- &Command{Kind: CommandJoinWorkspace, WorkspaceID: w.workspaceID}

	// Alice, already in the room, sees bob join; bob gets nothing.
	ev := mustEvent(t, alice.Events, EventUserJoined)
	if ev.UserID != w.bobID || ev.UserName != "bob" || ev.WorkspaceID != w.workspaceID {
		t.Fatalf("unexpected join event: %+v", ev)
	}
	mustNoEvent(t, bob.Events)
}

func TestHubJoinRejectsNonMember(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	w := newTestWorld(t, ctx)

	alice := NewClient("c1", w.aliceID, "alice")
	carol := NewClient("c2", w.carolID, "carol")
	w.hub.RegisterClient(alice)
	w.hub.RegisterClient(carol)

	alice.Commands <- &Command{Kind: CommandJoinWorkspace, WorkspaceID: w.workspaceID}
	carol.Commands <- &Command{Kind: CommandJoinWorkspace, WorkspaceID: w.workspaceID}

	// Carol gets a scoped error; alice sees no join broadcast.
	ev := mustEvent(t, carol.Events, EventError)
	if ev.Error == nil || ev.Error.Code != chat.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %+v", ev)
	}
	mustNoEvent(t, alice.Events)
}

func TestHubSendFansOutIncludingSender(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	w := newTestWorld(t, ctx)

	alice := NewClient("c1", w.aliceID, "alice")
	bob := NewClient("c2", w.bobID, "bob")
	w.hub.RegisterClient(alice)
	w.hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandJoinWorkspace, WorkspaceID: w.workspaceID}
	settle()
	bob.Commands <- &Command{Kind: CommandJoinWorkspace, WorkspaceID: w.workspaceID}
	mustEvent(t, alice.Events, EventUserJoined)

	alice.Commands <- &Command{Kind: CommandSendMessage, WorkspaceID: w.workspaceID, Text: "hi there"}

	// Own echo for the sender, plus delivery to bob.
	for _, events := range []<-chan *Event{alice.Events, bob.Events} {
		ev := mustEvent(t, events, EventNewMessage)
		if ev.Message == nil || ev.Message.Body != "hi there" {
			t.Fatalf("unexpected message event: %+v", ev)
		}
		if ev.Message.Sender == nil || ev.Message.Sender.Name != "alice" {
			t.Fatalf("expected populated sender, got %+v", ev.Message)
		}
	}
}

func TestHubSendErrorScopedToRequester(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	w := newTestWorld(t, ctx)

	alice := NewClient("c1", w.aliceID, "alice")
	carol := NewClient("c2", w.carolID, "carol")
	w.hub.RegisterClient(alice)
	w.hub.RegisterClient(carol)

	alice.Commands <- &Command{Kind: CommandJoinWorkspace, WorkspaceID: w.workspaceID}

	// Carol never joined and is not a member; her send fails privately.
	carol.Commands <- &Command{Kind: CommandSendMessage, WorkspaceID: w.workspaceID, Text: "intruding"}

	ev := mustEvent(t, carol.Events, EventError)
	if ev.Error == nil || ev.Error.Code != chat.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %+v", ev)
	}
	mustNoEvent(t, alice.Events)
}

func TestHubLeaveIsIdempotentAndSilent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	w := newTestWorld(t, ctx)

	alice := NewClient("c1", w.aliceID, "alice")
	bob := NewClient("c2", w.bobID, "bob")
	w.hub.RegisterClient(alice)
	w.hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandJoinWorkspace, WorkspaceID: w.workspaceID}
	settle()
	bob.Commands <- &Command{Kind: CommandJoinWorkspace, WorkspaceID: w.workspaceID}
	mustEvent(t, alice.Events, EventUserJoined)

	// Leaving a room not joined is a no-op.
	bob.Commands <- &Command{Kind: CommandLeaveWorkspace, WorkspaceID: "ghost"}
	// Real leave emits nothing either.
	bob.Commands <- &Command{Kind: CommandLeaveWorkspace, WorkspaceID: w.workspaceID}
	bob.Commands <- &Command{Kind: CommandLeaveWorkspace, WorkspaceID: w.workspaceID}

	mustNoEvent(t, alice.Events)
	mustNoEvent(t, bob.Events)

	// Bob left, so a message from alice no longer reaches him.
	alice.Commands <- &Command{Kind: CommandSendMessage, WorkspaceID: w.workspaceID, Text: "still here?"}
	mustEvent(t, alice.Events, EventNewMessage)
	mustNoEvent(t, bob.Events)
}

func TestHubTypingGoesToOthersOnly(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	w := newTestWorld(t, ctx)

	alice := NewClient("c1", w.aliceID, "alice")
	bob := NewClient("c2", w.bobID, "bob")
	w.hub.RegisterClient(alice)
	w.hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandJoinWorkspace, WorkspaceID: w.workspaceID}
	settle()
	bob.Commands <- &Command{Kind: CommandJoinWorkspace, WorkspaceID: w.workspaceID}
	mustEvent(t, alice.Events, EventUserJoined)

	alice.Commands <- &Command{Kind: CommandTypingStart, WorkspaceID: w.workspaceID}
	ev := mustEvent(t, bob.Events, EventUserTyping)
	if ev.UserID != w.aliceID || ev.UserName != "alice" {
		t.Fatalf("unexpected typing event: %+v", ev)
	}
	mustNoEvent(t, alice.Events)

	alice.Commands <- &Command{Kind: CommandTypingStop, WorkspaceID: w.workspaceID}
	mustEvent(t, bob.Events, EventUserStoppedTyping)
}

func TestHubExternalBroadcastReachesRoom(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	w := newTestWorld(t, ctx)

	alice := NewClient("c1", w.aliceID, "alice")
	bob := NewClient("c2", w.bobID, "bob")
	w.hub.RegisterClient(alice)
	w.hub.RegisterClient(bob)
	alice.Commands <- &Command{Kind: CommandJoinWorkspace, WorkspaceID: w.workspaceID}
	settle()
	bob.Commands <- &Command{Kind: CommandJoinWorkspace, WorkspaceID: w.workspaceID}
	// Both joins are processed once alice observes bob's arrival.
	mustEvent(t, alice.Events, EventUserJoined)

	// Simulates the REST write path: persist through the service, then
	// hand the message to the hub.
	msg, err := w.hub.chat.CreateMessage(ctx, w.workspaceID, w.aliceID, "posted over http")
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	w.hub.BroadcastNewMessage(w.workspaceID, msg)

	ev := mustEvent(t, bob.Events, EventNewMessage)
	if ev.Message.Body != "posted over http" {
		t.Fatalf("unexpected message event: %+v", ev)
	}
}
