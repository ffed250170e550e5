package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/accessly/workspace_access_app/internal/apperrors"
	"github.com/accessly/workspace_access_app/internal/core/domain"
	portssvc "github.com/accessly/workspace_access_app/internal/core/ports/services"
	"github.com/accessly/workspace_access_app/internal/dto"
	"github.com/accessly/workspace_access_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// permissionHandler handles HTTP requests related to permission grants.
type permissionHandler struct {
	authService       portssvc.AuthorizationSvcFacade
	membershipService portssvc.MembershipAuthorizerSvc
}

// newPermissionHandler creates a new permissionHandler.
func newPermissionHandler(as portssvc.AuthorizationSvcFacade, ms portssvc.MembershipAuthorizerSvc) *permissionHandler {
	return &permissionHandler{
		authService:       as,
		membershipService: ms,
	}
}

// registerPermissionRoutes registers permission routes nested under a specific workspace.
func registerPermissionRoutes(workspaceGroup *gin.RouterGroup, authService portssvc.AuthorizationSvcFacade, membershipService portssvc.MembershipAuthorizerSvc) {
	h := newPermissionHandler(authService, membershipService)

	permissions := workspaceGroup.Group("/permissions")
	{
		permissions.POST("/check", h.checkPermission)
		permissions.GET("/:user_id", h.getUserPermissions)
		permissions.PUT("/:user_id", h.updatePermissions)
	}
}

// checkPermission godoc
// @Summary Check a permission for the current user
// @Description Resolves whether the authenticated user holds a permission in the workspace. Precedence: superuser, explicit non-expired grant, role default, deny. A malformed permission id resolves to a deny, not an error.
// @Tags permissions
// @Accept  json
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   check body dto.PermissionCheckRequest true "Permission ID and optional role hint"
// @Success 200 {object} dto.PermissionCheckResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to check permission"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/permissions/check [post]
func (h *permissionHandler) checkPermission(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workspaceID := c.Param("workspace_id")

	var req dto.PermissionCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CheckPermission", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("user_id", userID), slog.String("workspace_id", workspaceID), slog.String("permission_id", req.PermissionID))

	permID, err := domain.ParsePermissionID(req.PermissionID)
	if err != nil {
		// Unknown permission ids resolve to a deny rather than an error so
		// callers probing a newer permission set degrade safely.
		logger.Warn("Permission id outside the known set", slog.String("error", err.Error()))
		c.JSON(http.StatusOK, dto.PermissionCheckResponse{Allowed: false, Reason: string(domain.ReasonDefaultDeny)})
		return
	}

	var roleHint *domain.Role
	if req.Role != "" {
		role := domain.Role(req.Role)
		roleHint = &role
	}

	decision, err := h.authService.HasPermissionWithFallback(c.Request.Context(), userID, workspaceID, permID, roleHint)
	if err != nil {
		logger.Error("Failed to resolve permission", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check permission"})
		return
	}

	logger.Info("Permission resolved", slog.Bool("allowed", decision.Allowed), slog.String("reason", string(decision.Reason)))
	c.JSON(http.StatusOK, dto.ToPermissionCheckResponse(decision))
}

// getUserPermissions godoc
// @Summary Get a user's explicit permission grants
// @Description Retrieves the raw explicit-grant state for a user in a workspace, including expired grants. Viewing another user's grants requires admin or owner in the workspace. Returns null when the user has no grants.
// @Tags permissions
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   user_id path string true "Target User ID"
// @Success 200 {object} dto.UserPermissionsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller lacks the required role"
// @Failure 500 {object} map[string]string "Failed to get permissions"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/permissions/{user_id} [get]
func (h *permissionHandler) getUserPermissions(c *gin.Context) {
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

	// Users may always read their own grants; reading someone else's requires
	// admin or above.
	if actingUserID != targetUserID {
		if err := h.membershipService.AuthorizeRole(c.Request.Context(), actingUserID, workspaceID, domain.RoleAdmin); err != nil {
			if errors.Is(err, apperrors.ErrForbidden) || errors.Is(err, apperrors.ErrNotFound) {
				logger.Warn("Get permissions denied")
				c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			} else {
				logger.Error("Failed to authorize permission read", slog.String("error", err.Error()))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get permissions"})
			}
			return
		}
	}

	grants, err := h.authService.GetUserPermissions(c.Request.Context(), targetUserID, workspaceID)
	if err != nil {
		logger.Error("Failed to get permissions from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get permissions"})
		return
	}

	if len(grants) == 0 {
		c.JSON(http.StatusOK, nil)
		return
	}

	logger.Info("Permissions retrieved", slog.Int("grant_count", len(grants)))
	c.JSON(http.StatusOK, dto.ToUserPermissionsResponse(targetUserID, workspaceID, grants, time.Now()))
}

// updatePermissions godoc
// @Summary Update a user's explicit permission grants
// @Description Applies a batch of explicit grant changes for a user in a workspace. Owners may update anyone; admins may update non-owners only.
// @Tags permissions
// @Accept  json
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Param   user_id path string true "Target User ID"
// @Param   permissions body dto.UpdatePermissionsRequest true "Grant changes keyed by permission id"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input or unknown permission id"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller lacks the required role"
// @Failure 500 {object} map[string]string "Failed to update permissions"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/permissions/{user_id} [put]
func (h *permissionHandler) updatePermissions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workspaceID := c.Param("workspace_id")
	targetUserID := c.Param("user_id")

	var req dto.UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdatePermissions", slog.String("error", err.Error()))
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
	logger.Info("Received request to update permissions", slog.Int("update_count", len(req.Permissions)))

	updates := make(map[domain.PermissionID]domain.PermissionUpdate, len(req.Permissions))
	for rawID, entry := range req.Permissions {
		permID, err := domain.ParsePermissionID(rawID)
		if err != nil {
			logger.Warn("Rejected unknown permission id in update", slog.String("permission_id", rawID))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updates[permID] = domain.PermissionUpdate{
			Granted:   entry.Granted,
			GrantedBy: actingUserID,
			ExpiresAt: entry.ExpiresAt,
		}
	}

	err := h.authService.UpdatePermissions(c.Request.Context(), targetUserID, workspaceID, updates, actingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			logger.Warn("Update permissions failed: forbidden")
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workspace or user not found"})
		} else {
			logger.Error("Failed to update permissions in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update permissions"})
		}
		return
	}

	logger.Info("Permissions updated successfully")
	c.Status(http.StatusNoContent)
}
