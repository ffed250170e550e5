package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/accessly/workspace_access_app/internal/apperrors"
	portssvc "github.com/accessly/workspace_access_app/internal/core/ports/services"
	"github.com/accessly/workspace_access_app/internal/dto"
	"github.com/accessly/workspace_access_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// migrationHandler handles HTTP requests that materialize role defaults into
// explicit permission grants.
type migrationHandler struct {
	migrationService portssvc.MigrationSvcFacade
}

// newMigrationHandler creates a new migrationHandler.
func newMigrationHandler(ms portssvc.MigrationSvcFacade) *migrationHandler {
	return &migrationHandler{
		migrationService: ms,
	}
}

// registerWorkspaceMigrationRoutes registers the single-workspace migration
// route nested under a specific workspace.
func registerWorkspaceMigrationRoutes(workspaceGroup *gin.RouterGroup, migrationService portssvc.MigrationSvcFacade) {
	h := newMigrationHandler(migrationService)
	workspaceGroup.POST("/migrate-permissions", h.migrateWorkspace)
}

// registerMigrationRoutes registers the all-owned-workspaces migration route.
func registerMigrationRoutes(rg *gin.RouterGroup, migrationService portssvc.MigrationSvcFacade) {
	h := newMigrationHandler(migrationService)
	rg.POST("/migrate-permissions", h.migrateAllOwnedWorkspaces)
}

// migrateWorkspace godoc
// @Summary Materialize role defaults for one workspace
// @Description Converts every member's role defaults into explicit permission grants. Existing grants are never overwritten, so re-running is safe. Only an owner of the workspace may invoke it.
// @Tags migration
// @Produce  json
// @Param   workspace_id path string true "Workspace ID"
// @Success 200 {object} dto.MigrationResultResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Caller is not an owner"
// @Failure 404 {object} map[string]string "Workspace not found"
// @Failure 500 {object} map[string]string "Failed to run migration"
// @Security BearerAuth
// @Router /workspaces/{workspace_id}/migrate-permissions [post]
func (h *migrationHandler) migrateWorkspace(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workspaceID := c.Param("workspace_id")

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("acting_user_id", actingUserID), slog.String("workspace_id", workspaceID))
	logger.Info("Received request to migrate workspace permissions")

	result, err := h.migrationService.MigrateWorkspace(c.Request.Context(), workspaceID, actingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workspace not found"})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			logger.Warn("Migration denied: caller is not an owner")
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to run workspace migration", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run migration"})
		}
		return
	}

	logger.Info("Workspace migration finished", slog.Int("success_count", result.SuccessCount), slog.Int("error_count", len(result.Errors)))
	c.JSON(http.StatusOK, dto.ToMigrationResultResponse(result))
}

// migrateAllOwnedWorkspaces godoc
// @Summary Materialize role defaults across all owned workspaces
// @Description Runs the permission migration over every workspace the caller owns, main workspaces plus their sub-workspaces, and aggregates the results. Cancelling the request returns the partial result accumulated so far.
// @Tags migration
// @Produce  json
// @Success 200 {object} dto.MigrationResultResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to run migration"
// @Security BearerAuth
// @Router /migrate-permissions [post]
func (h *migrationHandler) migrateAllOwnedWorkspaces(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("acting_user_id", actingUserID))
	logger.Info("Received request to migrate all owned workspaces")

	result, err := h.migrationService.MigrateAllOwnedWorkspaces(c.Request.Context(), actingUserID)
	if err != nil {
		logger.Error("Failed to run owned-workspace migration", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run migration"})
		return
	}

	logger.Info("Owned-workspace migration finished", slog.Int("success_count", result.SuccessCount), slog.Int("error_count", len(result.Errors)))
	c.JSON(http.StatusOK, dto.ToMigrationResultResponse(result))
}
