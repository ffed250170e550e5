package services_test

import (
	"context"

	"github.com/accessly/workspace_access_app/internal/core/domain"
	portsrepo "github.com/accessly/workspace_access_app/internal/core/ports/repositories"
	portssvc "github.com/accessly/workspace_access_app/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// --- Mock WorkspaceRepository (based on service usage) ---
type MockWorkspaceRepository struct {
	mock.Mock
	FindWorkspaceByIDFn        func(ctx context.Context, workspaceID string) (*domain.Workspace, error)
	ListWorkspacesByUserIDFn   func(ctx context.Context, userID string, role *domain.Role) ([]domain.Workspace, error)
	ListChildWorkspacesFn      func(ctx context.Context, parentWorkspaceID string) ([]domain.Workspace, error)
	CreateWorkspaceWithOwnerFn func(ctx context.Context, workspace domain.Workspace, owner domain.Membership) error
	UpdateWorkspaceStatusFn    func(ctx context.Context, workspaceID string, isActive bool, updatedByUserID string) error
}

func (m *MockWorkspaceRepository) FindWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	if m.FindWorkspaceByIDFn != nil {
		return m.FindWorkspaceByIDFn(ctx, workspaceID)
	}
	args := m.Called(ctx, workspaceID)
	var workspace *domain.Workspace
	if args.Get(0) != nil {
		workspace = args.Get(0).(*domain.Workspace)
	}
	return workspace, args.Error(1)
}

func (m *MockWorkspaceRepository) ListWorkspacesByUserID(ctx context.Context, userID string, role *domain.Role) ([]domain.Workspace, error) {
	if m.ListWorkspacesByUserIDFn != nil {
		return m.ListWorkspacesByUserIDFn(ctx, userID, role)
	}
	args := m.Called(ctx, userID, role)
	var workspaces []domain.Workspace
	if args.Get(0) != nil {
		workspaces = args.Get(0).([]domain.Workspace)
	}
	return workspaces, args.Error(1)
}

func (m *MockWorkspaceRepository) ListChildWorkspaces(ctx context.Context, parentWorkspaceID string) ([]domain.Workspace, error) {
	if m.ListChildWorkspacesFn != nil {
		return m.ListChildWorkspacesFn(ctx, parentWorkspaceID)
	}
	args := m.Called(ctx, parentWorkspaceID)
	var workspaces []domain.Workspace
	if args.Get(0) != nil {
		workspaces = args.Get(0).([]domain.Workspace)
	}
	return workspaces, args.Error(1)
}

func (m *MockWorkspaceRepository) CreateWorkspaceWithOwner(ctx context.Context, workspace domain.Workspace, owner domain.Membership) error {
	if m.CreateWorkspaceWithOwnerFn != nil {
		return m.CreateWorkspaceWithOwnerFn(ctx, workspace, owner)
	}
	args := m.Called(ctx, workspace, owner)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) UpdateWorkspaceStatus(ctx context.Context, workspaceID string, isActive bool, updatedByUserID string) error {
	if m.UpdateWorkspaceStatusFn != nil {
		return m.UpdateWorkspaceStatusFn(ctx, workspaceID, isActive, updatedByUserID)
	}
	args := m.Called(ctx, workspaceID, isActive, updatedByUserID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portsrepo.WorkspaceRepositoryFacade = (*MockWorkspaceRepository)(nil)

// --- Mock MembershipRepository ---
type MockMembershipRepository struct {
	mock.Mock
	FindMembershipFn             func(ctx context.Context, userID, workspaceID string) (*domain.Membership, error)
	ListMembershipsByWorkspaceFn func(ctx context.Context, workspaceID string) ([]domain.Membership, error)
	SaveMembershipFn             func(ctx context.Context, membership domain.Membership) error
	UpdateMembershipRoleFn       func(ctx context.Context, userID, workspaceID string, newRole domain.Role) error
	DeleteMembershipFn           func(ctx context.Context, userID, workspaceID string) error
}

func (m *MockMembershipRepository) FindMembership(ctx context.Context, userID, workspaceID string) (*domain.Membership, error) {
	if m.FindMembershipFn != nil {
		return m.FindMembershipFn(ctx, userID, workspaceID)
	}
	args := m.Called(ctx, userID, workspaceID)
	var membership *domain.Membership
	if args.Get(0) != nil {
		membership = args.Get(0).(*domain.Membership)
	}
	return membership, args.Error(1)
}

func (m *MockMembershipRepository) ListMembershipsByWorkspace(ctx context.Context, workspaceID string) ([]domain.Membership, error) {
	if m.ListMembershipsByWorkspaceFn != nil {
		return m.ListMembershipsByWorkspaceFn(ctx, workspaceID)
	}
	args := m.Called(ctx, workspaceID)
	var memberships []domain.Membership
	if args.Get(0) != nil {
		memberships = args.Get(0).([]domain.Membership)
	}
	return memberships, args.Error(1)
}

func (m *MockMembershipRepository) SaveMembership(ctx context.Context, membership domain.Membership) error {
	if m.SaveMembershipFn != nil {
		return m.SaveMembershipFn(ctx, membership)
	}
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) UpdateMembershipRole(ctx context.Context, userID, workspaceID string, newRole domain.Role) error {
	if m.UpdateMembershipRoleFn != nil {
		return m.UpdateMembershipRoleFn(ctx, userID, workspaceID, newRole)
	}
	args := m.Called(ctx, userID, workspaceID, newRole)
	return args.Error(0)
}

func (m *MockMembershipRepository) DeleteMembership(ctx context.Context, userID, workspaceID string) error {
	if m.DeleteMembershipFn != nil {
		return m.DeleteMembershipFn(ctx, userID, workspaceID)
	}
	args := m.Called(ctx, userID, workspaceID)
	return args.Error(0)
}

var _ portsrepo.MembershipRepositoryFacade = (*MockMembershipRepository)(nil)

// --- Mock PermissionRepository ---
type MockPermissionRepository struct {
	mock.Mock
	FindGrantFn           func(ctx context.Context, userID, workspaceID string, permID domain.PermissionID) (*domain.PermissionGrant, error)
	ListGrantsFn          func(ctx context.Context, userID, workspaceID string) ([]domain.PermissionGrant, error)
	UpsertGrantFn         func(ctx context.Context, grant domain.PermissionGrant) error
	InsertGrantIfAbsentFn func(ctx context.Context, grant domain.PermissionGrant) (bool, error)
}

func (m *MockPermissionRepository) FindGrant(ctx context.Context, userID, workspaceID string, permID domain.PermissionID) (*domain.PermissionGrant, error) {
	if m.FindGrantFn != nil {
		return m.FindGrantFn(ctx, userID, workspaceID, permID)
	}
	args := m.Called(ctx, userID, workspaceID, permID)
	var grant *domain.PermissionGrant
	if args.Get(0) != nil {
		grant = args.Get(0).(*domain.PermissionGrant)
	}
	return grant, args.Error(1)
}

func (m *MockPermissionRepository) ListGrants(ctx context.Context, userID, workspaceID string) ([]domain.PermissionGrant, error) {
	if m.ListGrantsFn != nil {
		return m.ListGrantsFn(ctx, userID, workspaceID)
	}
	args := m.Called(ctx, userID, workspaceID)
	var grants []domain.PermissionGrant
	if args.Get(0) != nil {
		grants = args.Get(0).([]domain.PermissionGrant)
	}
	return grants, args.Error(1)
}

func (m *MockPermissionRepository) UpsertGrant(ctx context.Context, grant domain.PermissionGrant) error {
	if m.UpsertGrantFn != nil {
		return m.UpsertGrantFn(ctx, grant)
	}
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockPermissionRepository) InsertGrantIfAbsent(ctx context.Context, grant domain.PermissionGrant) (bool, error) {
	if m.InsertGrantIfAbsentFn != nil {
		return m.InsertGrantIfAbsentFn(ctx, grant)
	}
	args := m.Called(ctx, grant)
	return args.Bool(0), args.Error(1)
}

var _ portsrepo.PermissionRepositoryFacade = (*MockPermissionRepository)(nil)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
	FindUserByIDFn func(ctx context.Context, userID string) (*domain.User, error)
	SaveUserFn     func(ctx context.Context, user domain.User) error
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	if m.FindUserByIDFn != nil {
		return m.FindUserByIDFn(ctx, userID)
	}
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	if m.SaveUserFn != nil {
		return m.SaveUserFn(ctx, user)
	}
	args := m.Called(ctx, user)
	return args.Error(0)
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

// --- Mock MembershipService (for services that authorize through it) ---
type MockMembershipService struct {
	mock.Mock
	GetMembershipFn func(ctx context.Context, userID, workspaceID string) (*domain.Membership, error)
	AuthorizeRoleFn func(ctx context.Context, userID, workspaceID string, requiredRole domain.Role) error
}

func (m *MockMembershipService) GetMembership(ctx context.Context, userID, workspaceID string) (*domain.Membership, error) {
	if m.GetMembershipFn != nil {
		return m.GetMembershipFn(ctx, userID, workspaceID)
	}
	args := m.Called(ctx, userID, workspaceID)
	var membership *domain.Membership
	if args.Get(0) != nil {
		membership = args.Get(0).(*domain.Membership)
	}
	return membership, args.Error(1)
}

func (m *MockMembershipService) ListWorkspaceMemberships(ctx context.Context, workspaceID, requestingUserID string) ([]domain.Membership, error) {
	args := m.Called(ctx, workspaceID, requestingUserID)
	var memberships []domain.Membership
	if args.Get(0) != nil {
		memberships = args.Get(0).([]domain.Membership)
	}
	return memberships, args.Error(1)
}

func (m *MockMembershipService) AddMembership(ctx context.Context, actingUserID, targetUserID, workspaceID string, role domain.Role) error {
	args := m.Called(ctx, actingUserID, targetUserID, workspaceID, role)
	return args.Error(0)
}

func (m *MockMembershipService) RemoveMembership(ctx context.Context, actingUserID, targetUserID, workspaceID string) error {
	args := m.Called(ctx, actingUserID, targetUserID, workspaceID)
	return args.Error(0)
}

func (m *MockMembershipService) ChangeRole(ctx context.Context, actingUserID, targetUserID, workspaceID string, newRole domain.Role) error {
	args := m.Called(ctx, actingUserID, targetUserID, workspaceID, newRole)
	return args.Error(0)
}

func (m *MockMembershipService) AuthorizeRole(ctx context.Context, userID, workspaceID string, requiredRole domain.Role) error {
	if m.AuthorizeRoleFn != nil {
		return m.AuthorizeRoleFn(ctx, userID, workspaceID, requiredRole)
	}
	args := m.Called(ctx, userID, workspaceID, requiredRole)
	return args.Error(0)
}

var _ portssvc.MembershipSvcFacade = (*MockMembershipService)(nil)

// --- Mock GrantCacheInvalidator ---
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) InvalidateUserWorkspace(userID, workspaceID string) {
	m.Called(userID, workspaceID)
}

var _ portssvc.GrantCacheInvalidator = (*MockInvalidator)(nil)
