package http

import (
	"fmt"
	stdhttp "net/http"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/nikhilkushawaha/teammates-backend/internal/chat"
	"github.com/nikhilkushawaha/teammates-backend/internal/config"
	"github.com/nikhilkushawaha/teammates-backend/internal/proto"
)

func TestHealthEndpoint(t *testing.T) {
	env := startTestEnv(t)

	resp, _ := env.request(t, "GET", "/health", "", nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
}

func TestMessagesEndpointsRequireAuth(t *testing.T) {
	env := startTestEnv(t)
	base := "/api/workspace/" + env.workspaceID + "/messages"

	resp, _ := env.request(t, "GET", base, "", nil)
	require.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)

	resp, raw := env.request(t, "POST", base, "", map[string]string{"message": "hi"})
	require.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Unauthorized", decodeJSON[ErrorResponse](t, raw).Message)
}

func TestCreateMessageMemberVsOutsider(t *testing.T) {
	env := startTestEnv(t)
	base := "/api/workspace/" + env.workspaceID + "/messages"

	resp, raw := env.request(t, "POST", base, env.aliceToken, map[string]string{"message": "  hello team  "})
	require.Equal(t, stdhttp.StatusCreated, resp.StatusCode)

	created := decodeJSON[CreateMessageResponse](t, raw)
	require.Equal(t, "Chat message created successfully", created.Message)
	require.Equal(t, "hello team", created.ChatMessage.Message)
	require.Equal(t, env.workspaceID, created.ChatMessage.WorkspaceID)
	require.Equal(t, env.aliceID, created.ChatMessage.Sender.ID)
	require.Equal(t, "alice", created.ChatMessage.Sender.Name)
	require.NotEmpty(t, created.ChatMessage.ID)
	require.NotEmpty(t, created.ChatMessage.CreatedAt)

	// Carol has an account but no membership; nothing is persisted for her.
	resp, raw = env.request(t, "POST", base, env.carolToken, map[string]string{"message": "let me in"})
	require.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, chat.CodeUnauthorized, decodeJSON[ErrorResponse](t, raw).ErrorCode)

	count, err := env.store.CountMessages(t.Context(), env.workspaceID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestCreateMessageValidation(t *testing.T) {
	env := startTestEnv(t)
	base := "/api/workspace/" + env.workspaceID + "/messages"

	for _, body := range []map[string]string{
		{"message": ""},
		{"message": "   \n\t "},
		{"message": strings.Repeat("a", chat.MaxMessageLength+1)},
	} {
		resp, raw := env.request(t, "POST", base, env.aliceToken, body)
		require.Equal(t, stdhttp.StatusBadRequest, resp.StatusCode)
		require.Equal(t, chat.CodeValidation, decodeJSON[ErrorResponse](t, raw).ErrorCode)
	}

	count, err := env.store.CountMessages(t.Context(), env.workspaceID)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}

func TestGetMessagesPaging(t *testing.T) {
	env := startTestEnv(t)
	base := "/api/workspace/" + env.workspaceID + "/messages"

	for i := 1; i <= 5; i++ {
		resp, _ := env.request(t, "POST", base, env.aliceToken, map[string]string{"message": fmt.Sprintf("m%d", i)})
		require.Equal(t, stdhttp.StatusCreated, resp.StatusCode)
	}

	getPage := func(page int) MessagesResponse {
		resp, raw := env.request(t, "GET", fmt.Sprintf("%s?pageNumber=%d&pageSize=2", base, page), env.bobToken, nil)
		require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
		return decodeJSON[MessagesResponse](t, raw)
	}

	bodies := func(page MessagesResponse) []string {
		return lo.Map(page.Messages, func(m proto.ChatMessage, _ int) string { return m.Message })
	}

	// Page 1 is the newest window, returned oldest-first within the page.
	page1 := getPage(1)
	require.Equal(t, []string{"m4", "m5"}, bodies(page1))
	require.Equal(t, chat.Pagination{PageNumber: 1, PageSize: 2, TotalMessages: 5, TotalPages: 3}, page1.Pagination)

	require.Equal(t, []string{"m2", "m3"}, bodies(getPage(2)))
	require.Equal(t, []string{"m1"}, bodies(getPage(3)))
	require.Empty(t, getPage(4).Messages)

	// Non-member reads are refused outright.
	resp, raw := env.request(t, "GET", base, env.carolToken, nil)
	require.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, chat.CodeUnauthorized, decodeJSON[ErrorResponse](t, raw).ErrorCode)
}

func TestGetMessagesDefaultsAndClamp(t *testing.T) {
	env := startTestEnv(t)
	base := "/api/workspace/" + env.workspaceID + "/messages"

	resp, raw := env.request(t, "GET", base, env.aliceToken, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	page := decodeJSON[MessagesResponse](t, raw)
	require.Equal(t, chat.DefaultPageNumber, page.Pagination.PageNumber)
	require.Equal(t, chat.DefaultPageSize, page.Pagination.PageSize)

	// Nonsense paging values fall back to defaults, oversized pages clamp.
	resp, raw = env.request(t, "GET", base+"?pageNumber=zero&pageSize=99999", env.aliceToken, nil)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	page = decodeJSON[MessagesResponse](t, raw)
	require.Equal(t, chat.DefaultPageNumber, page.Pagination.PageNumber)
	require.Equal(t, config.Default().MaxPageSize, page.Pagination.PageSize)
}
