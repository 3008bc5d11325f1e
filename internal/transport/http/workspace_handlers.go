package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/nikhilkushawaha/teammates-backend/internal/store"
)

// WorkspaceHandlers provides HTTP handlers for workspace management, the
// surface behind the membership authority.
type WorkspaceHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewWorkspaceHandlers creates a new workspace handlers instance.
func NewWorkspaceHandlers(st store.Store, logger *zerolog.Logger) *WorkspaceHandlers {
	return &WorkspaceHandlers{
		store: st,
		log:   logger,
	}
}

// CreateWorkspaceRequest represents the create workspace request body.
type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
}

// AddMemberRequest represents the add member request body.
type AddMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// WorkspaceResponse represents a workspace in API responses.
type WorkspaceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
}

// CreateWorkspace creates a workspace owned by the caller.
// POST /api/workspace
func (h *WorkspaceHandlers) CreateWorkspace(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
		return
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create workspace request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	ws, err := h.store.CreateWorkspace(c.Request.Context(), req.Name, identity.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("failed to create workspace")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}

	h.log.Info().Str("workspace_id", ws.ID).Str("owner_id", identity.UserID).Msg("workspace created")
	c.JSON(http.StatusCreated, workspaceResponse(ws))
}

// ListWorkspaces lists workspaces the caller is a member of.
// GET /api/workspace
func (h *WorkspaceHandlers) ListWorkspaces(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
		return
	}

	workspaces, err := h.store.ListWorkspaces(c.Request.Context(), identity.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", identity.UserID).Msg("failed to list workspaces")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, lo.Map(workspaces, func(ws *store.Workspace, _ int) WorkspaceResponse {
		return workspaceResponse(ws)
	}))
}

// AddMember adds a user to a workspace. Only workspace owners may do this.
// POST /api/workspace/:workspaceId/members
func (h *WorkspaceHandlers) AddMember(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
		return
	}

	workspaceID := c.Param("workspaceId")
	if workspaceID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Workspace ID is required"})
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid add member request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	ctx := c.Request.Context()

	membership, err := h.store.FindMembership(ctx, identity.UserID, workspaceID)
	if err != nil || membership.Role != store.MemberRoleOwner {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Only workspace owners can add members"})
		return
	}

	if _, err := h.store.GetUserByID(ctx, req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Message: "user not found"})
			return
		}
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("failed to look up user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}

	if err := h.store.AddMember(ctx, workspaceID, req.UserID, store.MemberRoleMember); err != nil {
		h.log.Error().Err(err).Str("workspace_id", workspaceID).Msg("failed to add member")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}

	h.log.Info().Str("workspace_id", workspaceID).Str("user_id", req.UserID).Msg("member added")
	c.Status(http.StatusCreated)
}

func workspaceResponse(ws *store.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		ID:        ws.ID,
		Name:      ws.Name,
		OwnerID:   ws.OwnerID,
		CreatedAt: ws.CreatedAt.Format(time.RFC3339),
	}
}
