package repositories

import (
	"context"

	"github.com/accessly/workspace_access_app/internal/core/domain"
)

// WorkspaceReader defines read operations for workspace data
type WorkspaceReader interface {
	// FindWorkspaceByID retrieves a specific workspace by its ID.
	FindWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error)

	// ListWorkspacesByUserID retrieves all workspaces a user belongs to,
	// optionally filtered to memberships holding a specific role.
	ListWorkspacesByUserID(ctx context.Context, userID string, role *domain.Role) ([]domain.Workspace, error)

	// ListChildWorkspaces retrieves the sub-workspaces of a main workspace.
	ListChildWorkspaces(ctx context.Context, parentWorkspaceID string) ([]domain.Workspace, error)
}

// WorkspaceWriter defines write operations for workspace data
type WorkspaceWriter interface {
	// CreateWorkspaceWithOwner persists a new workspace together with its
	// owner membership atomically.
	CreateWorkspaceWithOwner(ctx context.Context, workspace domain.Workspace, owner domain.Membership) error

	// UpdateWorkspaceStatus updates the is_active flag of a workspace.
	UpdateWorkspaceStatus(ctx context.Context, workspaceID string, isActive bool, updatedByUserID string) error
}

// WorkspaceRepositoryFacade combines all workspace-related repository interfaces
// This is a facade for clients that need access to all operations
type WorkspaceRepositoryFacade interface {
	WorkspaceReader
	WorkspaceWriter
}

// WorkspaceRepositoryWithTx extends WorkspaceRepositoryFacade with transaction capabilities
type WorkspaceRepositoryWithTx interface {
	WorkspaceRepositoryFacade
	TransactionManager
}
