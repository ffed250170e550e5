package repositories

import (
	"context"

	"github.com/accessly/workspace_access_app/internal/core/domain"
)

// MembershipReader defines read operations for workspace membership data
type MembershipReader interface {
	// FindMembership retrieves the direct membership of a user in a workspace.
	FindMembership(ctx context.Context, userID, workspaceID string) (*domain.Membership, error)

	// ListMembershipsByWorkspace retrieves all direct memberships of a workspace.
	ListMembershipsByWorkspace(ctx context.Context, workspaceID string) ([]domain.Membership, error)
}

// MembershipWriter defines write operations for workspace membership data
type MembershipWriter interface {
	// SaveMembership persists a new membership. A membership already existing
	// for the (user, workspace) pair is a conflict, not an upsert.
	SaveMembership(ctx context.Context, membership domain.Membership) error

	// UpdateMembershipRole changes the role of an existing membership.
	UpdateMembershipRole(ctx context.Context, userID, workspaceID string, newRole domain.Role) error

	// DeleteMembership removes a membership.
	DeleteMembership(ctx context.Context, userID, workspaceID string) error
}

// MembershipRepositoryFacade combines all membership-related repository interfaces
// This is a facade for clients that need access to all operations
type MembershipRepositoryFacade interface {
	MembershipReader
	MembershipWriter
}
