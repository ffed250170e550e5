package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/accessly/workspace_access_app/internal/apperrors"
	"github.com/accessly/workspace_access_app/internal/core/domain"
	portssvc "github.com/accessly/workspace_access_app/internal/core/ports/services"
	"github.com/accessly/workspace_access_app/internal/dto"
	"github.com/accessly/workspace_access_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// workspaceHandler handles HTTP requests related to workspaces.
type workspaceHandler struct {
	workspaceService  portssvc.WorkspaceSvcFacade
	membershipService portssvc.MembershipAuthorizerSvc
}

// newWorkspaceHandler creates a new workspaceHandler.
func newWorkspaceHandler(ws portssvc.WorkspaceSvcFacade, ms portssvc.MembershipAuthorizerSvc) *workspaceHandler {
	return &workspaceHandler{
		workspaceService:  ws,
		membershipService: ms,
	}
}

// registerWorkspaceRoutes registers routes related to workspaces. It also
// registers MEMBERSHIP, PERMISSION and MIGRATION routes nested under a
// specific workspace.
func registerWorkspaceRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newWorkspaceHandler(services.Workspace, services.Membership)

	// Routes for managing workspaces themselves (e.g., creating, listing user's workspaces)
	workspacesTopLevel := rg.Group("/workspaces")
	{
		workspacesTopLevel.POST("", h.createWorkspace)
		workspacesTopLevel.GET("", h.listUserWorkspaces) // List workspaces the calling user belongs to
		workspacesTopLevel.GET("/accessible", h.getAccessibleWorkspaces)
	}

	// Routes specific to a single workspace (identified by workspace_id)
	workspaceSpecific := rg.Group("/workspaces/:workspace_id")
	{
		workspaceSpecific.POST("/sub-workspaces", h.createSubWorkspace)
		workspaceSpecific.GET("/hierarchy", h.getHierarchy)
		workspaceSpecific.DELETE("", h.deactivateWorkspace)

		// -- NESTED MEMBERSHIP ROUTES --
		registerMembershipRoutes(workspaceSpecific, services.Membership)

		// -- NESTED PERMISSION ROUTES --
		registerPermissionRoutes(workspaceSpecific, services.Authorization, services.Membership)

		// -- NESTED MIGRATION ROUTES --
		registerWorkspaceMigrationRoutes(workspaceSpecific, services.Migration)
	}
}

// createWorkspace godoc
// @Summary Create a new main workspace
// @Description Creates a new main workspace and assigns the creator as owner.
// @Tags workspaces
// @Accept  json
// @Produce  json
// @Param   workspace body dto.CreateWorkspaceRequest true "Workspace details"
// @Success 201 {object} dto.WorkspaceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create workspace"
// @Security BearerAuth
// @Router /workspaces [post]
func (h *workspaceHandler) createWorkspace(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateWorkspace", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to create workspace", slog.String("workspace_name", req.Name))

	newWorkspace, err := h.workspaceService.CreateWorkspace(c.Request.Context(), req.Name, req.Description, creatorUserID)
	if err != nil {
		logger.Error("Failed to create workspace in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workspace"})
		return
	}

	logger.Info("Workspace created successfully", slog.String("workspace_id", newWorkspace.WorkspaceID))
	c.JSON(http.StatusCreated, dto.ToWorkspaceResponse(newWorkspace))
}

// createSubWorkspace godoc
// @Summary Create a sub-workspace
// @Description Creates a sub-workspace under a main workspace. Only an owner of the parent may create sub-workspaces.
// @Tags workspaces
// @Accept  json
// @Produce  json
// @Param   workspace_id path string true "Parent Workspace ID"
// @Param   workspace body dto.CreateSubWorkspaceRequest true "Sub-workspace details"
// @Success 201 {object} dto.WorkspaceResponse
// @Failure 400 {object} map[string]string "Invalid input or parent is not a main workspace"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller is not an owner of the parent"
// @Failure 404 {object} map[string]string "Parent workspace not found"
// @Failure 500 {object} map[string]string "Failed to create sub-workspace"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/sub-workspaces [post]
func (h *workspaceHandler) createSubWorkspace(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	parentWorkspaceID := c.Param("workspace_id")

	var req dto.CreateSubWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSubWorkspace", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID), slog.String("parent_workspace_id", parentWorkspaceID))
	logger.Info("Received request to create sub-workspace", slog.String("workspace_name", req.Name))

	newWorkspace, err := h.workspaceService.CreateSubWorkspace(c.Request.Context(), parentWorkspaceID, req.Name, req.Description, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parent workspace not found"})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create sub-workspace in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sub-workspace"})
		}
		return
	}

	logger.Info("Sub-workspace created successfully", slog.String("workspace_id", newWorkspace.WorkspaceID))
	c.JSON(http.StatusCreated, dto.ToWorkspaceResponse(newWorkspace))
}

// deactivateWorkspace godoc
// @Summary Deactivate a workspace
// @Description Marks a workspace as inactive. Only an owner of the workspace may deactivate it.
// @Tags workspaces
// @Param   workspace_id path string true "Workspace ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller is not an owner"
// @Failure 404 {object} map[string]string "Workspace not found"
// @Failure 409 {object} map[string]string "Workspace already inactive"
// @Failure 500 {object} map[string]string "Failed to deactivate workspace"
// @Security BearerAuth
// @Router /workspaces/{workspace_id} [delete]
func (h *workspaceHandler) deactivateWorkspace(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workspaceID := c.Param("workspace_id")

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("acting_user_id", actingUserID), slog.String("workspace_id", workspaceID))
	logger.Info("Received request to deactivate workspace")

	err := h.workspaceService.DeactivateWorkspace(c.Request.Context(), workspaceID, actingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "Workspace already inactive"})
		} else {
			logger.Error("Failed to deactivate workspace in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate workspace"})
		}
		return
	}

	logger.Info("Workspace deactivated successfully")
	c.Status(http.StatusNoContent)
}

// listUserWorkspaces godoc
// @Summary List workspaces for current user
// @Description Retrieves a list of workspaces the authenticated user belongs to.
// @Tags workspaces
// @Produce  json
// @Success 200 {object} dto.ListWorkspacesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list workspaces"
// @Security BearerAuth
// @Router /workspaces [get]
func (h *workspaceHandler) listUserWorkspaces(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("user_id", userID))
	logger.Info("Received request to list user's workspaces")

	workspaces, err := h.workspaceService.ListUserWorkspaces(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list workspaces from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list workspaces"})
		return
	}

	logger.Info("Workspaces listed successfully", slog.Int("count", len(workspaces)))
	c.JSON(http.StatusOK, dto.ToListWorkspacesResponse(workspaces))
}

// getAccessibleWorkspaces godoc
// @Summary List all workspaces accessible to the current user
// @Description Retrieves every main workspace the user owns plus all their sub-workspaces, together with the workspaces of the user's other memberships.
// @Tags workspaces
// @Produce  json
// @Success 200 {object} dto.AccessibleWorkspacesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to aggregate accessible workspaces"
// @Security BearerAuth
// @Router /workspaces/accessible [get]
func (h *workspaceHandler) getAccessibleWorkspaces(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("user_id", userID))
	logger.Info("Received request for accessible workspaces")

	accessible, err := h.workspaceService.GetUserAccessibleWorkspaces(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to aggregate accessible workspaces", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate accessible workspaces"})
		return
	}

	logger.Info("Accessible workspaces aggregated", slog.Int("main_count", len(accessible.MainWorkspaces)))
	c.JSON(http.StatusOK, dto.ToAccessibleWorkspacesResponse(accessible))
}

// getHierarchy godoc
// @Summary Get the hierarchy around a workspace
// @Description Retrieves the workspace together with its parent (for a sub-workspace) and its children (for a main workspace). Requires membership in the workspace.
// @Tags workspaces
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Success 200 {object} dto.WorkspaceHierarchyResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller is not a member"
// @Failure 404 {object} map[string]string "Workspace not found"
// @Failure 500 {object} map[string]string "Failed to get hierarchy"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/hierarchy [get]
func (h *workspaceHandler) getHierarchy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workspaceID := c.Param("workspace_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("user_id", userID), slog.String("workspace_id", workspaceID))

	if err := h.membershipService.AuthorizeRole(c.Request.Context(), userID, workspaceID, domain.RoleMember); err != nil {
		if errors.Is(err, apperrors.ErrForbidden) || errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Hierarchy access denied")
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		} else {
			logger.Error("Failed to authorize hierarchy access", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get hierarchy"})
		}
		return
	}

	workspace, err := h.workspaceService.FindWorkspaceByID(c.Request.Context(), workspaceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		} else {
			logger.Error("Failed to find workspace", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get hierarchy"})
		}
		return
	}

	resp := dto.WorkspaceHierarchyResponse{
		Workspace: dto.ToWorkspaceResponse(workspace),
		Children:  []dto.WorkspaceResponse{},
	}

	if workspace.IsSub() {
		parent, err := h.workspaceService.GetParent(c.Request.Context(), workspaceID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to get parent workspace", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get hierarchy"})
			return
		}
		if parent != nil {
			parentResp := dto.ToWorkspaceResponse(parent)
			resp.Parent = &parentResp
		}
	} else {
		children, err := h.workspaceService.GetChildren(c.Request.Context(), workspaceID)
		if err != nil {
			logger.Error("Failed to get child workspaces", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get hierarchy"})
			return
		}
		for i := range children {
			resp.Children = append(resp.Children, dto.ToWorkspaceResponse(&children[i]))
		}
	}

	c.JSON(http.StatusOK, resp)
}
