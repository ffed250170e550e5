package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/accessly/workspace_access_app/internal/apperrors"
	"github.com/accessly/workspace_access_app/internal/core/domain"
	portsrepo "github.com/accessly/workspace_access_app/internal/core/ports/repositories"
	portssvc "github.com/accessly/workspace_access_app/internal/core/ports/services"
)

// membershipService implements the MembershipSvcFacade interface
type membershipService struct {
	BaseService
	membershipRepo portsrepo.MembershipRepositoryFacade
	workspaceRepo  portsrepo.WorkspaceReader
}

// NewMembershipService creates a new membership service with the provided dependencies
func NewMembershipService(
	membershipRepo portsrepo.MembershipRepositoryFacade,
	workspaceRepo portsrepo.WorkspaceReader,
) portssvc.MembershipSvcFacade {
	return &membershipService{
		membershipRepo: membershipRepo,
		workspaceRepo:  workspaceRepo,
	}
}

// Ensure membershipService implements the MembershipSvcFacade interface
var _ portssvc.MembershipSvcFacade = (*membershipService)(nil)

// GetMembership retrieves a user's membership in a workspace. A direct
// membership always wins; when none exists and the workspace is a
// sub-workspace, a membership inherited from ownership of the parent is
// synthesized with scope INHERITED.
func (s *membershipService) GetMembership(ctx context.Context, userID, workspaceID string) (*domain.Membership, error) {
	membership, err := s.membershipRepo.FindMembership(ctx, userID, workspaceID)
	if err == nil {
		return membership, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to find membership",
			slog.String("user_id", userID),
			slog.String("workspace_id", workspaceID))
		return nil, err
	}

	inherited, inhErr := s.inheritedMembership(ctx, userID, workspaceID)
	if inhErr != nil {
		return nil, inhErr
	}
	if inherited == nil {
		return nil, apperrors.ErrNotFound
	}
	return inherited, nil
}

// inheritedMembership synthesizes the membership implied by ownership of the
// parent workspace, or returns nil when no such membership applies.
func (s *membershipService) inheritedMembership(ctx context.Context, userID, workspaceID string) (*domain.Membership, error) {
	workspace, err := s.workspaceRepo.FindWorkspaceByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !workspace.IsSub() || workspace.ParentWorkspaceID == nil {
		return nil, nil
	}

	parentMembership, err := s.membershipRepo.FindMembership(ctx, userID, *workspace.ParentWorkspaceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	// Only ownership of the parent implies access to its sub-workspaces.
	if parentMembership.Role != domain.RoleOwner {
		return nil, nil
	}

	inherited := domain.InheritMembership(*parentMembership, workspaceID)
	return &inherited, nil
}

// ListWorkspaceMemberships retrieves all direct memberships of a workspace.
func (s *membershipService) ListWorkspaceMemberships(ctx context.Context, workspaceID, requestingUserID string) ([]domain.Membership, error) {
	if err := s.AuthorizeRole(ctx, requestingUserID, workspaceID, domain.RoleMember); err != nil {
		return nil, err
	}

	memberships, err := s.membershipRepo.ListMembershipsByWorkspace(ctx, workspaceID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list workspace memberships",
			slog.String("workspace_id", workspaceID))
		return nil, err
	}
	if memberships == nil {
		return []domain.Membership{}, nil
	}
	return memberships, nil
}

// AddMembership adds a user to a workspace with a specific role.
func (s *membershipService) AddMembership(ctx context.Context, actingUserID, targetUserID, workspaceID string, role domain.Role) error {
	if !role.Valid() {
		return apperrors.NewValidationFailedError("invalid role " + string(role))
	}

	if actingUserID == targetUserID {
		// Self-assignment is permitted only to bootstrap an empty workspace
		// (e.g., the creator adding themselves as owner).
		existing, err := s.membershipRepo.ListMembershipsByWorkspace(ctx, workspaceID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			if err := s.authorizeGrantOfRole(ctx, actingUserID, workspaceID, role); err != nil {
				return err
			}
		}
	} else {
		if err := s.authorizeGrantOfRole(ctx, actingUserID, workspaceID, role); err != nil {
			s.LogError(ctx, err, "User not authorized to add members to workspace",
				slog.String("acting_user_id", actingUserID),
				slog.String("workspace_id", workspaceID))
			return err
		}
	}

	membership := domain.NewDirectMembership(targetUserID, workspaceID, role, time.Now())
	if err := s.membershipRepo.SaveMembership(ctx, membership); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to add user to workspace",
				slog.String("target_user_id", targetUserID),
				slog.String("workspace_id", workspaceID))
		}
		return err
	}

	s.LogInfo(ctx, "User added to workspace successfully",
		slog.String("target_user_id", targetUserID),
		slog.String("workspace_id", workspaceID),
		slog.String("role", string(role)))
	return nil
}

// RemoveMembership removes a user from a workspace.
func (s *membershipService) RemoveMembership(ctx context.Context, actingUserID, targetUserID, workspaceID string) error {
	target, err := s.membershipRepo.FindMembership(ctx, targetUserID, workspaceID)
	if err != nil {
		return err
	}

	// Removing an owner requires ownership; anything else requires admin.
	requiredRole := domain.RoleAdmin
	if target.Role == domain.RoleOwner {
		requiredRole = domain.RoleOwner
	}
	if err := s.AuthorizeRole(ctx, actingUserID, workspaceID, requiredRole); err != nil {
		return err
	}

	if err := s.membershipRepo.DeleteMembership(ctx, targetUserID, workspaceID); err != nil {
		s.LogError(ctx, err, "Failed to remove user from workspace",
			slog.String("target_user_id", targetUserID),
			slog.String("workspace_id", workspaceID))
		return err
	}

	s.LogInfo(ctx, "User removed from workspace",
		slog.String("target_user_id", targetUserID),
		slog.String("workspace_id", workspaceID))
	return nil
}

// ChangeRole updates a user's role in a workspace. Capabilities are derived
// from the role at read time, so persisting the new role is sufficient to
// recompute them deterministically.
func (s *membershipService) ChangeRole(ctx context.Context, actingUserID, targetUserID, workspaceID string, newRole domain.Role) error {
	if !newRole.Valid() {
		return apperrors.NewValidationFailedError("invalid role " + string(newRole))
	}

	target, err := s.membershipRepo.FindMembership(ctx, targetUserID, workspaceID)
	if err != nil {
		return err
	}

	// Promoting to owner or demoting an owner requires ownership.
	requiredRole := domain.RoleAdmin
	if newRole == domain.RoleOwner || target.Role == domain.RoleOwner {
		requiredRole = domain.RoleOwner
	}
	if err := s.AuthorizeRole(ctx, actingUserID, workspaceID, requiredRole); err != nil {
		return err
	}

	if err := s.membershipRepo.UpdateMembershipRole(ctx, targetUserID, workspaceID, newRole); err != nil {
		s.LogError(ctx, err, "Failed to change membership role",
			slog.String("target_user_id", targetUserID),
			slog.String("workspace_id", workspaceID),
			slog.String("new_role", string(newRole)))
		return err
	}

	s.LogInfo(ctx, "Membership role changed",
		slog.String("target_user_id", targetUserID),
		slog.String("workspace_id", workspaceID),
		slog.String("new_role", string(newRole)))
	return nil
}

// AuthorizeRole checks if a user has the required role (or higher) in a
// workspace, counting inherited memberships.
func (s *membershipService) AuthorizeRole(ctx context.Context, userID, workspaceID string, requiredRole domain.Role) error {
	membership, err := s.GetMembership(ctx, userID, workspaceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "User not a member of workspace",
				slog.String("user_id", userID),
				slog.String("workspace_id", workspaceID))
			return apperrors.ErrForbidden
		}
		s.LogError(ctx, err, "Failed to resolve membership for authorization",
			slog.String("user_id", userID),
			slog.String("workspace_id", workspaceID))
		return err
	}

	if !hasRequiredRole(membership.EffectiveRole, requiredRole) {
		s.LogDebug(ctx, "User does not have required role",
			slog.String("user_id", userID),
			slog.String("workspace_id", workspaceID),
			slog.String("user_role", string(membership.EffectiveRole)),
			slog.String("required_role", string(requiredRole)))
		return apperrors.ErrForbidden
	}

	return nil
}

// authorizeGrantOfRole checks that the acting user may assign the given role:
// admins may add members and admins, only owners may assign ownership.
func (s *membershipService) authorizeGrantOfRole(ctx context.Context, actingUserID, workspaceID string, role domain.Role) error {
	requiredRole := domain.RoleAdmin
	if role == domain.RoleOwner {
		requiredRole = domain.RoleOwner
	}
	return s.AuthorizeRole(ctx, actingUserID, workspaceID, requiredRole)
}

// hasRequiredRole checks if the user's role meets or exceeds the required role
func hasRequiredRole(userRole, requiredRole domain.Role) bool {
	return roleRank(userRole) >= roleRank(requiredRole) && roleRank(userRole) > 0
}

func roleRank(role domain.Role) int {
	switch role {
	case domain.RoleOwner:
		return 3
	case domain.RoleAdmin:
		return 2
	case domain.RoleMember:
		return 1
	default:
		return 0
	}
}
