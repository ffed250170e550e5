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

// membershipHandler handles HTTP requests related to workspace memberships.
type membershipHandler struct {
	membershipService portssvc.MembershipSvcFacade
}

// newMembershipHandler creates a new membershipHandler.
func newMembershipHandler(ms portssvc.MembershipSvcFacade) *membershipHandler {
	return &membershipHandler{
		membershipService: ms,
	}
}

// registerMembershipRoutes registers membership routes nested under a specific workspace.
func registerMembershipRoutes(workspaceGroup *gin.RouterGroup, membershipService portssvc.MembershipSvcFacade) {
	h := newMembershipHandler(membershipService)

	members := workspaceGroup.Group("/members")
	{
		members.POST("", h.addMember)
		members.GET("", h.listMembers)
		members.PUT("/:user_id/role", h.changeMemberRole)
		members.DELETE("/:user_id", h.removeMember)
	}
}

// addMember godoc
// @Summary Add a member to a workspace
// @Description Adds a user to a workspace with the given role. Requires admin or owner in the workspace; granting OWNER requires an owner.
// @Tags memberships
// @Accept  json
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   member body dto.AddMemberRequest true "User ID and Role"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller lacks the required role"
// @Failure 404 {object} map[string]string "Workspace or user not found"
// @Failure 409 {object} map[string]string "User is already a member"
// @Failure 500 {object} map[string]string "Failed to add member"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/members [post]
func (h *membershipHandler) addMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workspaceID := c.Param("workspace_id")

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddMember", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("acting_user_id", actingUserID), slog.String("workspace_id", workspaceID), slog.String("target_user_id", req.UserID))
	logger.Info("Received request to add member", slog.String("role", req.Role))

	err := h.membershipService.AddMembership(c.Request.Context(), actingUserID, req.UserID, workspaceID, domain.Role(req.Role))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Add member failed: workspace or user not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Workspace or user not found"})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			logger.Warn("Add member failed: forbidden")
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Add member failed: already a member")
			c.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this workspace"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to add member in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		}
		return
	}

	logger.Info("Member added successfully")
	c.Status(http.StatusNoContent)
}

// listMembers godoc
// @Summary List members of a workspace
// @Description Retrieves all direct memberships of a workspace. Requires membership in the workspace.
// @Tags memberships
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Success 200 {object} dto.ListMembershipsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller is not a member"
// @Failure 500 {object} map[string]string "Failed to list members"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/members [get]
func (h *membershipHandler) listMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workspaceID := c.Param("workspace_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("user_id", userID), slog.String("workspace_id", workspaceID))
	logger.Info("Received request to list workspace members")

	memberships, err := h.membershipService.ListWorkspaceMemberships(c.Request.Context(), workspaceID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) || errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("List members denied")
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		} else {
			logger.Error("Failed to list members from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list members"})
		}
		return
	}

	logger.Info("Members listed successfully", slog.Int("count", len(memberships)))
	c.JSON(http.StatusOK, dto.ToListMembershipsResponse(memberships))
}

// changeMemberRole godoc
// @Summary Change a member's role
// @Description Updates a member's role in a workspace and recomputes the derived capabilities. Promoting to or demoting from OWNER requires an owner.
// @Tags memberships
// @Accept  json
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   user_id path string true "Target User ID"
// @Param   role body dto.ChangeMemberRoleRequest true "New role"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller lacks the required role"
// @Failure 404 {object} map[string]string "Membership not found"
// @Failure 500 {object} map[string]string "Failed to change role"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/members/{user_id}/role [put]
func (h *membershipHandler) changeMemberRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workspaceID := c.Param("workspace_id")
	targetUserID := c.Param("user_id")

	var req dto.ChangeMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ChangeMemberRole", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("acting_user_id", actingUserID), slog.String("workspace_id", workspaceID), slog.String("target_user_id", targetUserID))
	logger.Info("Received request to change member role", slog.String("new_role", req.Role))

	err := h.membershipService.ChangeRole(c.Request.Context(), actingUserID, targetUserID, workspaceID, domain.Role(req.Role))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Membership not found"})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			logger.Warn("Change role failed: forbidden")
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to change member role in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change role"})
		}
		return
	}

	logger.Info("Member role changed successfully")
	c.Status(http.StatusNoContent)
}

// removeMember godoc
// @Summary Remove a member from a workspace
// @Description Removes a user's membership from a workspace. Removing an owner requires an owner.
// @Tags memberships
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   user_id path string true "Target User ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller lacks the required role"
// @Failure 404 {object} map[string]string "Membership not found"
// @Failure 500 {object} map[string]string "Failed to remove member"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/members/{user_id} [delete]
func (h *membershipHandler) removeMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workspaceID := c.Param("workspace_id")
	targetUserID := c.Param("user_id")

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("acting_user_id", actingUserID), slog.String("workspace_id", workspaceID), slog.String("target_user_id", targetUserID))
	logger.Info("Received request to remove member")

	err := h.membershipService.RemoveMembership(c.Request.Context(), actingUserID, targetUserID, workspaceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Membership not found"})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			logger.Warn("Remove member failed: forbidden")
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		} else {
			logger.Error("Failed to remove member in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		}
		return
	}

	logger.Info("Member removed successfully")
	c.Status(http.StatusNoContent)
}
