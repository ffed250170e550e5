package services

import (
	"context"

	"github.com/accessly/workspace_access_app/internal/core/domain"
)

// MembershipReaderSvc defines read operations for membership data
type MembershipReaderSvc interface {
	// GetMembership retrieves the membership of a user in a workspace. When
	// the workspace is a sub-workspace and no direct membership exists, a
	// membership inherited from the parent workspace is synthesized; a direct
	// membership always wins over the inherited one.
	GetMembership(ctx context.Context, userID, workspaceID string) (*domain.Membership, error)

	// ListWorkspaceMemberships retrieves all direct memberships of a
	// workspace. Only members of the workspace may list them.
	ListWorkspaceMemberships(ctx context.Context, workspaceID, requestingUserID string) ([]domain.Membership, error)
}

// MembershipManagerSvc defines operations for managing workspace membership
type MembershipManagerSvc interface {
	// AddMembership adds a user to a workspace with a specific role.
	// The acting user must be an admin or owner of the workspace; granting
	// the OWNER role requires the acting user to be an owner. Self-bootstrap
	// (acting == target) is permitted for workspace creation.
	AddMembership(ctx context.Context, actingUserID, targetUserID, workspaceID string, role domain.Role) error

	// RemoveMembership removes a user from a workspace.
	RemoveMembership(ctx context.Context, actingUserID, targetUserID, workspaceID string) error

	// ChangeRole updates a user's role in a workspace and recomputes the
	// derived capabilities.
	ChangeRole(ctx context.Context, actingUserID, targetUserID, workspaceID string, newRole domain.Role) error
}

// MembershipAuthorizerSvc defines role-gate checks for workspace operations.
type MembershipAuthorizerSvc interface {
	// AuthorizeRole checks that a user holds the required role (or higher) in
	// a workspace, counting inherited memberships. Returns ErrForbidden when
	// the user is not a member or the role is insufficient.
	AuthorizeRole(ctx context.Context, userID, workspaceID string, requiredRole domain.Role) error
}

// MembershipSvcFacade combines all membership-related service interfaces
// This is a facade for clients that need access to all operations
type MembershipSvcFacade interface {
	MembershipReaderSvc
	MembershipManagerSvc
	MembershipAuthorizerSvc
}
