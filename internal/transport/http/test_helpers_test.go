package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nikhilkushawaha/teammates-backend/internal/auth"
	"github.com/nikhilkushawaha/teammates-backend/internal/chat"
	"github.com/nikhilkushawaha/teammates-backend/internal/config"
	"github.com/nikhilkushawaha/teammates-backend/internal/core"
	"github.com/nikhilkushawaha/teammates-backend/internal/log"
	"github.com/nikhilkushawaha/teammates-backend/internal/store"
	"github.com/nikhilkushawaha/teammates-backend/internal/store/sqlite"
)

// testEnv is a full server over an in-memory store. Alice owns a workspace,
// bob is a member, carol has an account but no membership.
type testEnv struct {
	ts    *httptest.Server
	store *sqlite.SQLiteStore

	workspaceID string
	aliceID     string
	bobID       string
	carolID     string
	aliceToken  string
	bobToken    string
	carolToken  string
}

func startTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.Default()
	logger := log.Nop()

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}, cfg.SessionCookieName)
	chatService := chat.NewService(st, st, logger)

	hub := core.NewHub(chatService, logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, authService, chatService, st, &cfg, logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	aliceToken, alice, err := authService.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	bobToken, bob, err := authService.Register(ctx, "bob", "bob@example.com", "password123")
	require.NoError(t, err)
	carolToken, carol, err := authService.Register(ctx, "carol", "carol@example.com", "password123")
	require.NoError(t, err)

	ws, err := st.CreateWorkspace(ctx, "acme", alice.ID)
	require.NoError(t, err)
	require.NoError(t, st.AddMember(ctx, ws.ID, bob.ID, store.MemberRoleMember))

	return &testEnv{
		ts:          ts,
		store:       st,
		workspaceID: ws.ID,
		aliceID:     alice.ID,
		bobID:       bob.ID,
		carolID:     carol.ID,
		aliceToken:  aliceToken,
		bobToken:    bobToken,
		carolToken:  carolToken,
	}
}

// request performs a JSON request against the test server and returns the
// response with its body fully read.
func (env *testEnv) request(t *testing.T, method, path, token string, body any) (*stdhttp.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := stdhttp.NewRequest(method, env.ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decodeJSON[T any](t *testing.T, raw []byte) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
