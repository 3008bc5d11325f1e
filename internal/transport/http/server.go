package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nikhilkushawaha/teammates-backend/internal/auth"
	"github.com/nikhilkushawaha/teammates-backend/internal/chat"
	"github.com/nikhilkushawaha/teammates-backend/internal/config"
	"github.com/nikhilkushawaha/teammates-backend/internal/core"
	"github.com/nikhilkushawaha/teammates-backend/internal/store"
)

// NewServer builds the HTTP server carrying both transports: the REST API
// and the live channel endpoint.
func NewServer(hub *core.Hub, authService *auth.Service, chatService *chat.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	authHandlers := NewAuthHandlers(authService, cfg, logger)
	workspaceHandlers := NewWorkspaceHandlers(st, logger)
	chatHandlers := NewChatHandlers(chatService, hub, cfg, logger)

	api := router.Group("/api")
	api.POST("/auth/register", authHandlers.Register)
	api.POST("/auth/login", authHandlers.Login)

	authed := api.Group("", AuthMiddleware(authService, logger))
	authed.POST("/workspace", workspaceHandlers.CreateWorkspace)
	authed.GET("/workspace", workspaceHandlers.ListWorkspaces)
	authed.POST("/workspace/:workspaceId/members", workspaceHandlers.AddMember)
	authed.GET("/workspace/:workspaceId/messages", chatHandlers.GetMessages)
	authed.POST("/workspace/:workspaceId/messages", chatHandlers.CreateMessage)

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, cfg, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
