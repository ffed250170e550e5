package services

import (
	"context"

	"github.com/accessly/workspace_access_app/internal/core/domain"
)

// PermissionCheckerSvc defines the read side of permission resolution.
type PermissionCheckerSvc interface {
	// HasPermission checks the explicit grant for the exact
	// (user, workspace, permission) key. A present, non-expired grant returns
	// its granted value; an absent or expired grant returns false. No role
	// fallback is consulted.
	HasPermission(ctx context.Context, userID, workspaceID string, permID domain.PermissionID) (bool, error)

	// HasPermissionWithFallback resolves with the full precedence chain:
	// superuser > explicit non-expired grant > role default > deny.
	// A nil roleHint makes the resolver read the user's membership itself,
	// including inherited sub-workspace memberships.
	HasPermissionWithFallback(ctx context.Context, userID, workspaceID string, permID domain.PermissionID, roleHint *domain.Role) (domain.Decision, error)

	// GetUserPermissions returns the raw explicit-grant map for a
	// (user, workspace) pair. Expired entries are included; callers computing
	// granted counts must filter them.
	GetUserPermissions(ctx context.Context, userID, workspaceID string) (domain.PermissionMap, error)
}

// PermissionUpdaterSvc defines the write side of explicit grants.
type PermissionUpdaterSvc interface {
	// UpdatePermissions applies a batch of explicit grant changes for one
	// target user in one workspace. Authorized for owners, or for admins
	// acting on a non-owner target.
	UpdatePermissions(ctx context.Context, userID, workspaceID string, updates map[domain.PermissionID]domain.PermissionUpdate, actingUserID string) error
}

// GrantCacheInvalidator drops any cached grant state for a (user, workspace)
// tuple. Components that write grants outside the authorization service (the
// migration engine) call this so reads never observe stale state.
type GrantCacheInvalidator interface {
	InvalidateUserWorkspace(userID, workspaceID string)
}

// AuthorizationSvcFacade combines permission resolution and grant updates.
// This is a facade for clients that need access to all operations
type AuthorizationSvcFacade interface {
	PermissionCheckerSvc
	PermissionUpdaterSvc
	GrantCacheInvalidator
}
