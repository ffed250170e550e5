package repositories

import (
	"context"

	"github.com/accessly/workspace_access_app/internal/core/domain"
)

// PermissionGrantReader defines read operations for explicit permission grants
type PermissionGrantReader interface {
	// FindGrant retrieves the explicit grant for the exact
	// (user, workspace, permission) key, or ErrNotFound.
	FindGrant(ctx context.Context, userID, workspaceID string, permID domain.PermissionID) (*domain.PermissionGrant, error)

	// ListGrants retrieves every explicit grant for a (user, workspace) pair,
	// including expired records.
	ListGrants(ctx context.Context, userID, workspaceID string) ([]domain.PermissionGrant, error)
}

// PermissionGrantWriter defines write operations for explicit permission grants
type PermissionGrantWriter interface {
	// UpsertGrant writes the grant for its key, replacing any existing record.
	// Concurrent writers to the same key converge to the last writer's value.
	UpsertGrant(ctx context.Context, grant domain.PermissionGrant) error

	// InsertGrantIfAbsent writes the grant only when no record exists for its
	// key, reporting whether a row was written. Used by migration so an
	// existing explicit grant, from either source, is never overwritten.
	InsertGrantIfAbsent(ctx context.Context, grant domain.PermissionGrant) (bool, error)
}

// PermissionRepositoryFacade combines all grant-related repository interfaces
// This is a facade for clients that need access to all operations
type PermissionRepositoryFacade interface {
	PermissionGrantReader
	PermissionGrantWriter
}
