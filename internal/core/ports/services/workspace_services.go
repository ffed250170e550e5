package services

import (
	"context"

	"github.com/accessly/workspace_access_app/internal/core/domain"
)

// WorkspaceReaderSvc defines read operations for workspace data
type WorkspaceReaderSvc interface {
	// FindWorkspaceByID retrieves a specific workspace by its ID.
	FindWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error)

	// ListUserWorkspaces retrieves workspaces a user belongs to.
	ListUserWorkspaces(ctx context.Context, userID string) ([]domain.Workspace, error)

	// GetParent retrieves the parent of a sub-workspace. Returns ErrNotFound
	// for a main workspace, which has no parent.
	GetParent(ctx context.Context, workspaceID string) (*domain.Workspace, error)

	// GetChildren retrieves the sub-workspaces of a main workspace.
	GetChildren(ctx context.Context, workspaceID string) ([]domain.Workspace, error)
}

// WorkspaceWriterSvc defines write operations for workspace data
type WorkspaceWriterSvc interface {
	// CreateWorkspace persists a new main workspace; the creator becomes its
	// owner member.
	CreateWorkspace(ctx context.Context, name, description, creatorUserID string) (*domain.Workspace, error)

	// CreateSubWorkspace persists a new sub-workspace under a main parent.
	// Only a parent owner may create sub-workspaces.
	CreateSubWorkspace(ctx context.Context, parentWorkspaceID, name, description, creatorUserID string) (*domain.Workspace, error)

	// DeactivateWorkspace marks a workspace as inactive. Only an owner of the
	// workspace may deactivate it.
	DeactivateWorkspace(ctx context.Context, workspaceID string, actingUserID string) error
}

// WorkspaceAggregatorSvc computes the reachable workspace set for a principal.
type WorkspaceAggregatorSvc interface {
	// GetUserAccessibleWorkspaces returns every main workspace the user owns
	// plus all their sub-workspaces, widened only through ownership; plain
	// admin/member memberships contribute exactly their own workspace.
	// No permission checks are performed here.
	GetUserAccessibleWorkspaces(ctx context.Context, userID string) (*domain.AccessibleWorkspaces, error)
}

// WorkspaceSvcFacade combines all workspace-related service interfaces
// This is a facade for clients that need access to all operations
type WorkspaceSvcFacade interface {
	WorkspaceReaderSvc
	WorkspaceWriterSvc
	WorkspaceAggregatorSvc
}
