// Command ws_chat is an interactive terminal client for the live channel.
// It authenticates with a session token, joins one workspace room, and
// relays stdin lines as chat messages.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/nikhilkushawaha/teammates-backend/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	token := flag.String("token", "", "session token (from /api/auth/login)")
	workspace := flag.String("workspace", "", "workspace ID to join")
	flag.Parse()

	if *token == "" || *workspace == "" {
		return errors.New("both -token and -workspace are required")
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	header := stdhttp.Header{}
	header.Set("Authorization", "Bearer "+*token)

	conn, _, err := websocket.Dial(ctx, *addr, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(inbound proto.Inbound) {
		if writeErr := wsjson.Write(ctx, conn, inbound); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	joinPayload, err := json.Marshal(proto.JoinWorkspaceData{WorkspaceID: *workspace})
	if err != nil {
		return fmt.Errorf("marshal join: %w", err)
	}
	send(proto.Inbound{Type: proto.InboundTypeJoinWorkspace, Data: joinPayload})

	fmt.Printf("Connected to %s, workspace %s\n", *addr, *workspace)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		payload, err := json.Marshal(proto.SendMessageData{WorkspaceID: *workspace, Message: text})
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		send(proto.Inbound{Type: proto.InboundTypeSendMessage, Data: payload})
	}

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("read: %v", err)
			}
			return
		}

		switch {
		case outbound.Error != nil:
			fmt.Printf("[error] %s (%s)\n", outbound.Error.Message, outbound.Error.ErrorCode)
		case outbound.Event == proto.EventNewMessage:
			data, _ := json.Marshal(outbound.Data)
			var ev proto.EventNewMessageData
			if err := json.Unmarshal(data, &ev); err == nil {
				fmt.Printf("[%s] %s: %s\n", ev.ChatMessage.CreatedAt, ev.ChatMessage.Sender.Name, ev.ChatMessage.Message)
			}
		case outbound.Event != "":
			data, _ := json.Marshal(outbound.Data)
			var ev proto.EventPresenceData
			if err := json.Unmarshal(data, &ev); err == nil {
				fmt.Printf("[%s] %s\n", outbound.Event, ev.UserName)
			}
		}
	}
}
