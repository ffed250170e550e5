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
	"github.com/google/uuid"
)

// workspaceService implements the WorkspaceSvcFacade interface
type workspaceService struct {
	BaseService
	workspaceRepo portsrepo.WorkspaceRepositoryFacade
	membershipSvc portssvc.MembershipSvcFacade
}

// NewWorkspaceService creates a new workspace service with the provided dependencies
func NewWorkspaceService(
	workspaceRepo portsrepo.WorkspaceRepositoryFacade,
	membershipSvc portssvc.MembershipSvcFacade,
) portssvc.WorkspaceSvcFacade {
	return &workspaceService{
		workspaceRepo: workspaceRepo,
		membershipSvc: membershipSvc,
	}
}

// Ensure workspaceService implements the WorkspaceSvcFacade interface
var _ portssvc.WorkspaceSvcFacade = (*workspaceService)(nil)

// FindWorkspaceByID retrieves a workspace by its ID
func (s *workspaceService) FindWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	workspace, err := s.workspaceRepo.FindWorkspaceByID(ctx, workspaceID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find workspace by ID",
				slog.String("workspace_id", workspaceID))
		}
		return nil, err
	}
	return workspace, nil
}

// ListUserWorkspaces retrieves all workspaces a user belongs to
func (s *workspaceService) ListUserWorkspaces(ctx context.Context, userID string) ([]domain.Workspace, error) {
	workspaces, err := s.workspaceRepo.ListWorkspacesByUserID(ctx, userID, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to list workspaces for user",
			slog.String("user_id", userID))
		return nil, err
	}
	if workspaces == nil {
		return []domain.Workspace{}, nil
	}
	return workspaces, nil
}

// GetParent retrieves the parent workspace of a sub-workspace.
func (s *workspaceService) GetParent(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	workspace, err := s.workspaceRepo.FindWorkspaceByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !workspace.IsSub() || workspace.ParentWorkspaceID == nil {
		return nil, apperrors.NewNotFoundError("workspace " + workspaceID + " has no parent")
	}
	return s.workspaceRepo.FindWorkspaceByID(ctx, *workspace.ParentWorkspaceID)
}

// GetChildren retrieves the sub-workspaces of a workspace. A sub-workspace
// has no children in the two-level tree, so an empty slice is returned.
func (s *workspaceService) GetChildren(ctx context.Context, workspaceID string) ([]domain.Workspace, error) {
	workspace, err := s.workspaceRepo.FindWorkspaceByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if workspace.IsSub() {
		return []domain.Workspace{}, nil
	}

	children, err := s.workspaceRepo.ListChildWorkspaces(ctx, workspaceID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list child workspaces",
			slog.String("workspace_id", workspaceID))
		return nil, err
	}
	if children == nil {
		return []domain.Workspace{}, nil
	}
	return children, nil
}

// CreateWorkspace creates a new main workspace
func (s *workspaceService) CreateWorkspace(ctx context.Context, name, description, creatorUserID string) (*domain.Workspace, error) {
	if name == "" {
		return nil, apperrors.NewValidationFailedError("workspace name is required")
	}

	now := time.Now()
	workspace := domain.Workspace{
		WorkspaceID: uuid.NewString(),
		Name:        name,
		Description: description,
		Kind:        domain.WorkspaceMain,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	// The creator becomes the owner in the same transaction, so a workspace
	// can never exist without an owner.
	owner := domain.NewDirectMembership(creatorUserID, workspace.WorkspaceID, domain.RoleOwner, now)
	if err := s.workspaceRepo.CreateWorkspaceWithOwner(ctx, workspace, owner); err != nil {
		s.LogError(ctx, err, "Failed to create workspace with owner",
			slog.String("workspace_id", workspace.WorkspaceID),
			slog.String("user_id", creatorUserID))
		return nil, err
	}

	s.LogInfo(ctx, "Workspace created successfully",
		slog.String("workspace_id", workspace.WorkspaceID),
		slog.String("creator_id", creatorUserID))
	return &workspace, nil
}

// CreateSubWorkspace creates a new sub-workspace under a main parent
func (s *workspaceService) CreateSubWorkspace(ctx context.Context, parentWorkspaceID, name, description, creatorUserID string) (*domain.Workspace, error) {
	if name == "" {
		return nil, apperrors.NewValidationFailedError("workspace name is required")
	}

	parent, err := s.workspaceRepo.FindWorkspaceByID(ctx, parentWorkspaceID)
	if err != nil {
		return nil, err
	}
	if parent.IsSub() {
		// The tree is strictly two levels deep; a sub-workspace cannot have children.
		return nil, apperrors.NewValidationFailedError("parent workspace must be a main workspace")
	}

	// Only a parent owner may create sub-workspaces
	if err := s.membershipSvc.AuthorizeRole(ctx, creatorUserID, parentWorkspaceID, domain.RoleOwner); err != nil {
		s.LogError(ctx, err, "User not authorized to create sub-workspace",
			slog.String("user_id", creatorUserID),
			slog.String("parent_workspace_id", parentWorkspaceID))
		return nil, err
	}

	now := time.Now()
	workspace := domain.Workspace{
		WorkspaceID:       uuid.NewString(),
		Name:              name,
		Description:       description,
		Kind:              domain.WorkspaceSub,
		ParentWorkspaceID: &parentWorkspaceID,
		IsActive:          true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	owner := domain.NewDirectMembership(creatorUserID, workspace.WorkspaceID, domain.RoleOwner, now)
	if err := s.workspaceRepo.CreateWorkspaceWithOwner(ctx, workspace, owner); err != nil {
		s.LogError(ctx, err, "Failed to create sub-workspace with owner",
			slog.String("workspace_id", workspace.WorkspaceID),
			slog.String("parent_workspace_id", parentWorkspaceID))
		return nil, err
	}

	s.LogInfo(ctx, "Sub-workspace created successfully",
		slog.String("workspace_id", workspace.WorkspaceID),
		slog.String("parent_workspace_id", parentWorkspaceID),
		slog.String("creator_id", creatorUserID))
	return &workspace, nil
}

// DeactivateWorkspace marks a workspace as inactive so it no longer shows up
// in listings. Memberships and grants are kept as they are.
func (s *workspaceService) DeactivateWorkspace(ctx context.Context, workspaceID string, actingUserID string) error {
	workspace, err := s.workspaceRepo.FindWorkspaceByID(ctx, workspaceID)
	if err != nil {
		return err
	}
	if !workspace.IsActive {
		return apperrors.NewConflictError("workspace " + workspaceID + " is already inactive")
	}

	if err := s.membershipSvc.AuthorizeRole(ctx, actingUserID, workspaceID, domain.RoleOwner); err != nil {
		s.LogError(ctx, err, "User not authorized to deactivate workspace",
			slog.String("user_id", actingUserID),
			slog.String("workspace_id", workspaceID))
		return err
	}

	if err := s.workspaceRepo.UpdateWorkspaceStatus(ctx, workspaceID, false, actingUserID); err != nil {
		s.LogError(ctx, err, "Failed to deactivate workspace",
			slog.String("workspace_id", workspaceID))
		return err
	}

	s.LogInfo(ctx, "Workspace deactivated successfully",
		slog.String("workspace_id", workspaceID),
		slog.String("user_id", actingUserID))
	return nil
}

// GetUserAccessibleWorkspaces computes the full workspace set reachable by a
// principal. Ownership of a main workspace widens access to all of its
// sub-workspaces; admin and member memberships contribute exactly the
// workspace of direct membership.
func (s *workspaceService) GetUserAccessibleWorkspaces(ctx context.Context, userID string) (*domain.AccessibleWorkspaces, error) {
	workspaces, err := s.workspaceRepo.ListWorkspacesByUserID(ctx, userID, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to list workspaces for accessible set",
			slog.String("user_id", userID))
		return nil, err
	}

	ownerRole := domain.RoleOwner
	owned, err := s.workspaceRepo.ListWorkspacesByUserID(ctx, userID, &ownerRole)
	if err != nil {
		s.LogError(ctx, err, "Failed to list owned workspaces",
			slog.String("user_id", userID))
		return nil, err
	}

	ownedMains := make(map[string]bool, len(owned))
	for _, w := range owned {
		if w.Kind == domain.WorkspaceMain {
			ownedMains[w.WorkspaceID] = true
		}
	}

	result := &domain.AccessibleWorkspaces{
		MainWorkspaces:        []domain.Workspace{},
		SubWorkspacesByParent: map[string][]domain.Workspace{},
	}
	seenMain := make(map[string]bool)
	seenSub := make(map[string]bool)

	for _, w := range workspaces {
		switch w.Kind {
		case domain.WorkspaceMain:
			if !seenMain[w.WorkspaceID] {
				seenMain[w.WorkspaceID] = true
				result.MainWorkspaces = append(result.MainWorkspaces, w)
			}
			if ownedMains[w.WorkspaceID] {
				children, err := s.workspaceRepo.ListChildWorkspaces(ctx, w.WorkspaceID)
				if err != nil {
					s.LogError(ctx, err, "Failed to list child workspaces for accessible set",
						slog.String("workspace_id", w.WorkspaceID))
					return nil, err
				}
				for _, child := range children {
					if !seenSub[child.WorkspaceID] {
						seenSub[child.WorkspaceID] = true
						result.SubWorkspacesByParent[w.WorkspaceID] = append(result.SubWorkspacesByParent[w.WorkspaceID], child)
					}
				}
			}
		case domain.WorkspaceSub:
			if w.ParentWorkspaceID == nil || seenSub[w.WorkspaceID] {
				continue
			}
			seenSub[w.WorkspaceID] = true
			result.SubWorkspacesByParent[*w.ParentWorkspaceID] = append(result.SubWorkspacesByParent[*w.ParentWorkspaceID], w)
		}
	}

	s.LogDebug(ctx, "Accessible workspaces computed",
		slog.String("user_id", userID),
		slog.Int("main_count", len(result.MainWorkspaces)),
		slog.Int("sub_parent_count", len(result.SubWorkspacesByParent)))
	return result, nil
}
