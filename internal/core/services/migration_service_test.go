package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/accessly/workspace_access_app/internal/apperrors"
	"github.com/accessly/workspace_access_app/internal/core/domain"
	portssvc "github.com/accessly/workspace_access_app/internal/core/ports/services"
	"github.com/accessly/workspace_access_app/internal/core/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type MigrationServiceTestSuite struct {
	suite.Suite
	mockWorkspaceRepo  *MockWorkspaceRepository
	mockMembershipRepo *MockMembershipRepository
	mockPermissionRepo *MockPermissionRepository
	mockMembershipSvc  *MockMembershipService
	mockInvalidator    *MockInvalidator
	service            portssvc.MigrationSvcFacade
}

func (suite *MigrationServiceTestSuite) SetupTest() {
	suite.mockWorkspaceRepo = new(MockWorkspaceRepository)
	suite.mockMembershipRepo = new(MockMembershipRepository)
	suite.mockPermissionRepo = new(MockPermissionRepository)
	suite.mockMembershipSvc = new(MockMembershipService)
	suite.mockInvalidator = new(MockInvalidator)
	suite.service = services.NewMigrationService(
		suite.mockWorkspaceRepo,
		suite.mockMembershipRepo,
		suite.mockPermissionRepo,
		suite.mockMembershipSvc,
		suite.mockInvalidator,
		services.WithMigrationRetry(2, time.Millisecond),
		services.WithMigrationClock(func() time.Time { return fixedNow }),
	)
}

func (suite *MigrationServiceTestSuite) actingOwner(actingUserID, workspaceID string) {
	ownerMembership := domain.NewDirectMembership(actingUserID, workspaceID, domain.RoleOwner, fixedNow)
	suite.mockMembershipSvc.GetMembershipFn = func(ctx context.Context, userID, wsID string) (*domain.Membership, error) {
		return &ownerMembership, nil
	}
}

// --- MigrateWorkspace Tests ---

func (suite *MigrationServiceTestSuite) TestMigrateWorkspace_MaterializesRoleDefaults() {
	ctx := context.Background()
	actingUserID := uuid.NewString()
	memberUserID := uuid.NewString()
	workspaceID := uuid.NewString()
	memberships := []domain.Membership{
		domain.NewDirectMembership(memberUserID, workspaceID, domain.RoleMember, fixedNow),
	}

	suite.actingOwner(actingUserID, workspaceID)
	suite.mockWorkspaceRepo.FindWorkspaceByIDFn = func(ctx context.Context, wsID string) (*domain.Workspace, error) {
		return mainWorkspace(workspaceID), nil
	}
	suite.mockMembershipRepo.ListMembershipsByWorkspaceFn = func(ctx context.Context, wsID string) ([]domain.Membership, error) {
		return memberships, nil
	}
	suite.mockPermissionRepo.ListGrantsFn = func(ctx context.Context, userID, wsID string) ([]domain.PermissionGrant, error) {
		return nil, nil
	}

	var written []domain.PermissionGrant
	suite.mockPermissionRepo.InsertGrantIfAbsentFn = func(ctx context.Context, g domain.PermissionGrant) (bool, error) {
		written = append(written, g)
		return true, nil
	}
	suite.mockInvalidator.On("InvalidateUserWorkspace", memberUserID, workspaceID).Once()

	result, err := suite.service.MigrateWorkspace(ctx, workspaceID, actingUserID)

	suite.Require().NoError(err)
	suite.Equal(1, result.SuccessCount)
	suite.Empty(result.Errors)
	suite.Require().Len(result.Details, 1)
	suite.Equal(domain.MigrationStatusSuccess, result.Details[0].Status)

	// A member gets exactly the view defaults, all granted by the acting owner.
	suite.Len(written, len(domain.DefaultPermissions(domain.RoleMember)))
	for _, g := range written {
		suite.True(g.Granted)
		suite.Equal(actingUserID, g.GrantedBy)
		suite.Equal(domain.ActionView, g.PermissionID.Action())
	}
	suite.mockInvalidator.AssertExpectations(suite.T())
}

func (suite *MigrationServiceTestSuite) TestMigrateWorkspace_NeverOverwritesExistingGrants() {
	ctx := context.Background()
	actingUserID := uuid.NewString()
	memberUserID := uuid.NewString()
	workspaceID := uuid.NewString()
	memberships := []domain.Membership{
		domain.NewDirectMembership(memberUserID, workspaceID, domain.RoleMember, fixedNow),
	}

	// Every member default already exists explicitly, one of them as a deny.
	existing := make([]domain.PermissionGrant, 0)
	for i, permID := range domain.DefaultPermissions(domain.RoleMember) {
		existing = append(existing, *grant(memberUserID, workspaceID, permID, i != 0, nil))
	}

	suite.actingOwner(actingUserID, workspaceID)
	suite.mockWorkspaceRepo.FindWorkspaceByIDFn = func(ctx context.Context, wsID string) (*domain.Workspace, error) {
		return mainWorkspace(workspaceID), nil
	}
	suite.mockMembershipRepo.ListMembershipsByWorkspaceFn = func(ctx context.Context, wsID string) ([]domain.Membership, error) {
		return memberships, nil
	}
	suite.mockPermissionRepo.ListGrantsFn = func(ctx context.Context, userID, wsID string) ([]domain.PermissionGrant, error) {
		return existing, nil
	}

	inserts := 0
	suite.mockPermissionRepo.InsertGrantIfAbsentFn = func(ctx context.Context, g domain.PermissionGrant) (bool, error) {
		inserts++
		return true, nil
	}

	result, err := suite.service.MigrateWorkspace(ctx, workspaceID, actingUserID)

	suite.Require().NoError(err)
	suite.Equal(0, inserts)
	suite.Equal(1, result.SuccessCount)
	suite.Require().Len(result.Details, 1)
	// The explicit deny contradicting the role default is flagged, not fixed.
	suite.Contains(result.Details[0].Status, "left untouched")
	// Nothing was written, so nothing needs invalidating.
	suite.mockInvalidator.AssertNotCalled(suite.T(), "InvalidateUserWorkspace", memberUserID, workspaceID)
}

func (suite *MigrationServiceTestSuite) TestMigrateWorkspace_RerunWritesNothing() {
	ctx := context.Background()
	actingUserID := uuid.NewString()
	memberUserID := uuid.NewString()
	workspaceID := uuid.NewString()
	memberships := []domain.Membership{
		domain.NewDirectMembership(memberUserID, workspaceID, domain.RoleAdmin, fixedNow),
	}

	store := map[string]domain.PermissionGrant{}
	var mu sync.Mutex

	suite.actingOwner(actingUserID, workspaceID)
	suite.mockWorkspaceRepo.FindWorkspaceByIDFn = func(ctx context.Context, wsID string) (*domain.Workspace, error) {
		return mainWorkspace(workspaceID), nil
	}
	suite.mockMembershipRepo.ListMembershipsByWorkspaceFn = func(ctx context.Context, wsID string) ([]domain.Membership, error) {
		return memberships, nil
	}
	suite.mockPermissionRepo.ListGrantsFn = func(ctx context.Context, userID, wsID string) ([]domain.PermissionGrant, error) {
		mu.Lock()
		defer mu.Unlock()
		grants := make([]domain.PermissionGrant, 0, len(store))
		for _, g := range store {
			grants = append(grants, g)
		}
		return grants, nil
	}
	suite.mockPermissionRepo.InsertGrantIfAbsentFn = func(ctx context.Context, g domain.PermissionGrant) (bool, error) {
		mu.Lock()
		defer mu.Unlock()
		if _, ok := store[g.PermissionID.String()]; ok {
			return false, nil
		}
		store[g.PermissionID.String()] = g
		return true, nil
	}
	suite.mockInvalidator.On("InvalidateUserWorkspace", memberUserID, workspaceID).Once()

	first, err := suite.service.MigrateWorkspace(ctx, workspaceID, actingUserID)
	suite.Require().NoError(err)
	suite.Equal(1, first.SuccessCount)
	writtenAfterFirst := len(store)
	suite.Equal(len(domain.DefaultPermissions(domain.RoleAdmin)), writtenAfterFirst)

	second, err := suite.service.MigrateWorkspace(ctx, workspaceID, actingUserID)
	suite.Require().NoError(err)
	suite.Equal(1, second.SuccessCount)
	suite.Equal(writtenAfterFirst, len(store))
	// The second run wrote nothing, so only the first run invalidated.
	suite.mockInvalidator.AssertExpectations(suite.T())
}

func (suite *MigrationServiceTestSuite) TestMigrateWorkspace_AdminForbidden() {
	ctx := context.Background()
	actingUserID := uuid.NewString()
	workspaceID := uuid.NewString()
	adminMembership := domain.NewDirectMembership(actingUserID, workspaceID, domain.RoleAdmin, fixedNow)

	suite.mockWorkspaceRepo.FindWorkspaceByIDFn = func(ctx context.Context, wsID string) (*domain.Workspace, error) {
		return mainWorkspace(workspaceID), nil
	}
	suite.mockMembershipSvc.GetMembershipFn = func(ctx context.Context, userID, wsID string) (*domain.Membership, error) {
		return &adminMembership, nil
	}

	result, err := suite.service.MigrateWorkspace(ctx, workspaceID, actingUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(result)
}

func (suite *MigrationServiceTestSuite) TestMigrateWorkspace_WorkspaceNotFound() {
	ctx := context.Background()
	workspaceID := uuid.NewString()

	suite.mockWorkspaceRepo.FindWorkspaceByIDFn = func(ctx context.Context, wsID string) (*domain.Workspace, error) {
		return nil, apperrors.ErrNotFound
	}

	result, err := suite.service.MigrateWorkspace(ctx, workspaceID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(result)
}

func (suite *MigrationServiceTestSuite) TestMigrateWorkspace_PerUserFailureContinues() {
	ctx := context.Background()
	actingUserID := uuid.NewString()
	failingUserID := uuid.NewString()
	healthyUserID := uuid.NewString()
	workspaceID := uuid.NewString()
	memberships := []domain.Membership{
		domain.NewDirectMembership(failingUserID, workspaceID, domain.RoleMember, fixedNow),
		domain.NewDirectMembership(healthyUserID, workspaceID, domain.RoleMember, fixedNow),
	}

	suite.actingOwner(actingUserID, workspaceID)
	suite.mockWorkspaceRepo.FindWorkspaceByIDFn = func(ctx context.Context, wsID string) (*domain.Workspace, error) {
		return mainWorkspace(workspaceID), nil
	}
	suite.mockMembershipRepo.ListMembershipsByWorkspaceFn = func(ctx context.Context, wsID string) ([]domain.Membership, error) {
		return memberships, nil
	}
	suite.mockPermissionRepo.ListGrantsFn = func(ctx context.Context, userID, wsID string) ([]domain.PermissionGrant, error) {
		if userID == failingUserID {
			return nil, errors.New("grant store unavailable")
		}
		return nil, nil
	}
	suite.mockPermissionRepo.InsertGrantIfAbsentFn = func(ctx context.Context, g domain.PermissionGrant) (bool, error) {
		return true, nil
	}
	suite.mockInvalidator.On("InvalidateUserWorkspace", healthyUserID, workspaceID).Once()

	result, err := suite.service.MigrateWorkspace(ctx, workspaceID, actingUserID)

	suite.Require().NoError(err)
	suite.Equal(1, result.SuccessCount)
	suite.Require().Len(result.Errors, 1)
	suite.Contains(result.Errors[0], failingUserID)
	suite.Len(result.Details, 2)
	suite.Contains(result.Details[0].Status, "Error")
	suite.Equal(domain.MigrationStatusSuccess, result.Details[1].Status)
}

func (suite *MigrationServiceTestSuite) TestMigrateWorkspace_RetriesTransientWriteFailures() {
	ctx := context.Background()
	actingUserID := uuid.NewString()
	memberUserID := uuid.NewString()
	workspaceID := uuid.NewString()
	memberships := []domain.Membership{
		domain.NewDirectMembership(memberUserID, workspaceID, domain.RoleMember, fixedNow),
	}

	suite.actingOwner(actingUserID, workspaceID)
	suite.mockWorkspaceRepo.FindWorkspaceByIDFn = func(ctx context.Context, wsID string) (*domain.Workspace, error) {
		return mainWorkspace(workspaceID), nil
	}
	suite.mockMembershipRepo.ListMembershipsByWorkspaceFn = func(ctx context.Context, wsID string) ([]domain.Membership, error) {
		return memberships, nil
	}
	suite.mockPermissionRepo.ListGrantsFn = func(ctx context.Context, userID, wsID string) ([]domain.PermissionGrant, error) {
		return nil, nil
	}

	attempts := 0
	suite.mockPermissionRepo.InsertGrantIfAbsentFn = func(ctx context.Context, g domain.PermissionGrant) (bool, error) {
		attempts++
		if attempts == 1 {
			return false, apperrors.NewTransientError("deadlock detected", errors.New("40P01"))
		}
		return true, nil
	}
	suite.mockInvalidator.On("InvalidateUserWorkspace", memberUserID, workspaceID).Once()

	result, err := suite.service.MigrateWorkspace(ctx, workspaceID, actingUserID)

	suite.Require().NoError(err)
	suite.Equal(1, result.SuccessCount)
	suite.Empty(result.Errors)
	// One retry on top of the expected insert count.
	suite.Equal(len(domain.DefaultPermissions(domain.RoleMember))+1, attempts)
}

func (suite *MigrationServiceTestSuite) TestMigrateWorkspace_PermanentWriteFailureNotRetried() {
	ctx := context.Background()
	actingUserID := uuid.NewString()
	memberUserID := uuid.NewString()
	workspaceID := uuid.NewString()
	memberships := []domain.Membership{
		domain.NewDirectMembership(memberUserID, workspaceID, domain.RoleMember, fixedNow),
	}

	suite.actingOwner(actingUserID, workspaceID)
	suite.mockWorkspaceRepo.FindWorkspaceByIDFn = func(ctx context.Context, wsID string) (*domain.Workspace, error) {
		return mainWorkspace(workspaceID), nil
	}
	suite.mockMembershipRepo.ListMembershipsByWorkspaceFn = func(ctx context.Context, wsID string) ([]domain.Membership, error) {
		return memberships, nil
	}
	suite.mockPermissionRepo.ListGrantsFn = func(ctx context.Context, userID, wsID string) ([]domain.PermissionGrant, error) {
		return nil, nil
	}

	attempts := 0
	suite.mockPermissionRepo.InsertGrantIfAbsentFn = func(ctx context.Context, g domain.PermissionGrant) (bool, error) {
		attempts++
		return false, errors.New("constraint violation")
	}

	result, err := suite.service.MigrateWorkspace(ctx, workspaceID, actingUserID)

	suite.Require().NoError(err)
	suite.Equal(0, result.SuccessCount)
	suite.Equal(1, attempts)
	suite.Require().Len(result.Errors, 1)
	suite.Contains(result.Errors[0], "constraint violation")
}

func (suite *MigrationServiceTestSuite) TestMigrateWorkspace_LostInsertRaceIsNotAnError() {
	ctx := context.Background()
	actingUserID := uuid.NewString()
	memberUserID := uuid.NewString()
	workspaceID := uuid.NewString()
	memberships := []domain.Membership{
		domain.NewDirectMembership(memberUserID, workspaceID, domain.RoleMember, fixedNow),
	}

	suite.actingOwner(actingUserID, workspaceID)
	suite.mockWorkspaceRepo.FindWorkspaceByIDFn = func(ctx context.Context, wsID string) (*domain.Workspace, error) {
		return mainWorkspace(workspaceID), nil
	}
	suite.mockMembershipRepo.ListMembershipsByWorkspaceFn = func(ctx context.Context, wsID string) ([]domain.Membership, error) {
		return memberships, nil
	}
	suite.mockPermissionRepo.ListGrantsFn = func(ctx context.Context, userID, wsID string) ([]domain.PermissionGrant, error) {
		return nil, nil
	}
	// A concurrent writer always lands first; every insert loses the race.
	suite.mockPermissionRepo.InsertGrantIfAbsentFn = func(ctx context.Context, g domain.PermissionGrant) (bool, error) {
		return false, nil
	}

	result, err := suite.service.MigrateWorkspace(ctx, workspaceID, actingUserID)

	suite.Require().NoError(err)
	suite.Equal(1, result.SuccessCount)
	suite.Empty(result.Errors)
	suite.mockInvalidator.AssertNotCalled(suite.T(), "InvalidateUserWorkspace", memberUserID, workspaceID)
}

// --- MigrateAllOwnedWorkspaces Tests ---

func (suite *MigrationServiceTestSuite) TestMigrateAllOwnedWorkspaces_CoversChildrenAndDedups() {
	ctx := context.Background()
	actingUserID := uuid.NewString()
	mainID := uuid.NewString()
	subID := uuid.NewString()
	sub := subWorkspace(subID, mainID)

	// The sub-workspace is both directly owned and a child of the owned main;
	// it must be migrated once.
	suite.mockWorkspaceRepo.ListWorkspacesByUserIDFn = func(ctx context.Context, userID string, role *domain.Role) ([]domain.Workspace, error) {
		return []domain.Workspace{*mainWorkspace(mainID), *sub}, nil
	}
	suite.mockWorkspaceRepo.ListChildWorkspacesFn = func(ctx context.Context, parentWorkspaceID string) ([]domain.Workspace, error) {
		return []domain.Workspace{*sub}, nil
	}

	var mu sync.Mutex
	migrated := map[string]int{}
	suite.mockMembershipRepo.ListMembershipsByWorkspaceFn = func(ctx context.Context, wsID string) ([]domain.Membership, error) {
		mu.Lock()
		migrated[wsID]++
		mu.Unlock()
		return []domain.Membership{domain.NewDirectMembership(actingUserID, wsID, domain.RoleOwner, fixedNow)}, nil
	}
	suite.mockPermissionRepo.ListGrantsFn = func(ctx context.Context, userID, wsID string) ([]domain.PermissionGrant, error) {
		return nil, nil
	}
	suite.mockPermissionRepo.InsertGrantIfAbsentFn = func(ctx context.Context, g domain.PermissionGrant) (bool, error) {
		return true, nil
	}
	suite.mockInvalidator.On("InvalidateUserWorkspace", actingUserID, mainID).Once()
	suite.mockInvalidator.On("InvalidateUserWorkspace", actingUserID, subID).Once()

	result, err := suite.service.MigrateAllOwnedWorkspaces(ctx, actingUserID)

	suite.Require().NoError(err)
	suite.Equal(2, result.SuccessCount)
	suite.Empty(result.Errors)
	suite.Equal(1, migrated[mainID])
	suite.Equal(1, migrated[subID])
}

func (suite *MigrationServiceTestSuite) TestMigrateAllOwnedWorkspaces_CancelledReturnsPartial() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	actingUserID := uuid.NewString()
	mainID := uuid.NewString()

	suite.mockWorkspaceRepo.ListWorkspacesByUserIDFn = func(ctx context.Context, userID string, role *domain.Role) ([]domain.Workspace, error) {
		return []domain.Workspace{*mainWorkspace(mainID)}, nil
	}
	suite.mockWorkspaceRepo.ListChildWorkspacesFn = func(ctx context.Context, parentWorkspaceID string) ([]domain.Workspace, error) {
		return nil, nil
	}

	result, err := suite.service.MigrateAllOwnedWorkspaces(ctx, actingUserID)

	suite.Require().NoError(err)
	suite.Equal(0, result.SuccessCount)
	suite.NotEmpty(result.Errors)
	suite.Contains(result.Errors[len(result.Errors)-1], "migration cancelled")
}

func (suite *MigrationServiceTestSuite) TestMigrateAllOwnedWorkspaces_NoOwnedWorkspaces() {
	ctx := context.Background()

	suite.mockWorkspaceRepo.ListWorkspacesByUserIDFn = func(ctx context.Context, userID string, role *domain.Role) ([]domain.Workspace, error) {
		return nil, nil
	}

	result, err := suite.service.MigrateAllOwnedWorkspaces(ctx, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(0, result.SuccessCount)
	suite.Empty(result.Errors)
	suite.Empty(result.Details)
}

func TestMigrationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MigrationServiceTestSuite))
}
