package services_test

import (
	"context"
	"testing"

	"github.com/accessly/workspace_access_app/internal/apperrors"
	"github.com/accessly/workspace_access_app/internal/core/domain"
	portssvc "github.com/accessly/workspace_access_app/internal/core/ports/services"
	"github.com/accessly/workspace_access_app/internal/core/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type WorkspaceServiceTestSuite struct {
	suite.Suite
	mockWorkspaceRepo *MockWorkspaceRepository
	mockMembershipSvc *MockMembershipService
	service           portssvc.WorkspaceSvcFacade
}

func (suite *WorkspaceServiceTestSuite) SetupTest() {
	suite.mockWorkspaceRepo = new(MockWorkspaceRepository)
	suite.mockMembershipSvc = new(MockMembershipService)
	suite.service = services.NewWorkspaceService(suite.mockWorkspaceRepo, suite.mockMembershipSvc)
}

// --- CreateWorkspace Tests ---

func (suite *WorkspaceServiceTestSuite) TestCreateWorkspace_CreatorBecomesOwner() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()

	var gotWorkspace domain.Workspace
	var gotOwner domain.Membership
	calls := 0
	suite.mockWorkspaceRepo.CreateWorkspaceWithOwnerFn = func(ctx context.Context, w domain.Workspace, o domain.Membership) error {
		calls++
		gotWorkspace, gotOwner = w, o
		return nil
	}

	workspace, err := suite.service.CreateWorkspace(ctx, "Acme", "main tenant", creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(workspace)
	suite.Equal(1, calls)
	suite.Equal("Acme", gotWorkspace.Name)
	suite.Equal(domain.WorkspaceMain, gotWorkspace.Kind)
	suite.Nil(gotWorkspace.ParentWorkspaceID)
	suite.True(gotWorkspace.IsActive)
	// Workspace and owner membership are handed to the repository as one
	// atomic unit.
	suite.Equal(creatorUserID, gotOwner.UserID)
	suite.Equal(domain.RoleOwner, gotOwner.Role)
	suite.Equal(gotWorkspace.WorkspaceID, gotOwner.WorkspaceID)
	suite.Equal(creatorUserID, workspace.CreatedBy)
	suite.mockMembershipSvc.AssertNotCalled(suite.T(), "AddMembership", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *WorkspaceServiceTestSuite) TestCreateWorkspace_EmptyNameRejected() {
	ctx := context.Background()

	workspace, err := suite.service.CreateWorkspace(ctx, "", "", uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(workspace)
	suite.mockWorkspaceRepo.AssertNotCalled(suite.T(), "CreateWorkspaceWithOwner", ctx, mock.Anything, mock.Anything)
}

func (suite *WorkspaceServiceTestSuite) TestCreateWorkspace_CreateErrorPropagates() {
	ctx := context.Background()
	expectedErr := apperrors.NewAppError(500, "db down", nil)

	suite.mockWorkspaceRepo.On("CreateWorkspaceWithOwner", ctx, mock.AnythingOfType("domain.Workspace"), mock.AnythingOfType("domain.Membership")).Return(expectedErr).Once()

	workspace, err := suite.service.CreateWorkspace(ctx, "Acme", "", uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, expectedErr)
	suite.Nil(workspace)
}

// --- CreateSubWorkspace Tests ---

func (suite *WorkspaceServiceTestSuite) TestCreateSubWorkspace_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	parentID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, parentID).Return(mainWorkspace(parentID), nil).Once()
	suite.mockMembershipSvc.On("AuthorizeRole", ctx, creatorUserID, parentID, domain.RoleOwner).Return(nil).Once()
	suite.mockWorkspaceRepo.On("CreateWorkspaceWithOwner", ctx, mock.MatchedBy(func(w domain.Workspace) bool {
		return w.Kind == domain.WorkspaceSub && w.ParentWorkspaceID != nil && *w.ParentWorkspaceID == parentID
	}), mock.MatchedBy(func(o domain.Membership) bool {
		return o.UserID == creatorUserID && o.Role == domain.RoleOwner
	})).Return(nil).Once()

	workspace, err := suite.service.CreateSubWorkspace(ctx, parentID, "Payroll Dept", "", creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(workspace)
	suite.Equal(domain.WorkspaceSub, workspace.Kind)
	suite.Require().NotNil(workspace.ParentWorkspaceID)
	suite.Equal(parentID, *workspace.ParentWorkspaceID)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
	suite.mockMembershipSvc.AssertExpectations(suite.T())
}

func (suite *WorkspaceServiceTestSuite) TestCreateSubWorkspace_ParentMustBeMain() {
	ctx := context.Background()
	grandparentID := uuid.NewString()
	parentID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, parentID).Return(subWorkspace(parentID, grandparentID), nil).Once()

	workspace, err := suite.service.CreateSubWorkspace(ctx, parentID, "Too Deep", "", uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(workspace)
	suite.mockWorkspaceRepo.AssertNotCalled(suite.T(), "CreateWorkspaceWithOwner", ctx, mock.Anything, mock.Anything)
}

func (suite *WorkspaceServiceTestSuite) TestCreateSubWorkspace_OnlyParentOwner() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	parentID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, parentID).Return(mainWorkspace(parentID), nil).Once()
	suite.mockMembershipSvc.On("AuthorizeRole", ctx, creatorUserID, parentID, domain.RoleOwner).Return(apperrors.ErrForbidden).Once()

	workspace, err := suite.service.CreateSubWorkspace(ctx, parentID, "Payroll Dept", "", creatorUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(workspace)
	suite.mockWorkspaceRepo.AssertNotCalled(suite.T(), "CreateWorkspaceWithOwner", ctx, mock.Anything, mock.Anything)
}

// --- DeactivateWorkspace Tests ---

func (suite *WorkspaceServiceTestSuite) TestDeactivateWorkspace_OwnerDeactivates() {
	ctx := context.Background()
	actingUserID := uuid.NewString()
	workspaceID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, workspaceID).Return(mainWorkspace(workspaceID), nil).Once()
	suite.mockMembershipSvc.On("AuthorizeRole", ctx, actingUserID, workspaceID, domain.RoleOwner).Return(nil).Once()
	suite.mockWorkspaceRepo.On("UpdateWorkspaceStatus", ctx, workspaceID, false, actingUserID).Return(nil).Once()

	err := suite.service.DeactivateWorkspace(ctx, workspaceID, actingUserID)

	suite.Require().NoError(err)
	suite.mockWorkspaceRepo.AssertExpectations(suite.T())
	suite.mockMembershipSvc.AssertExpectations(suite.T())
}

func (suite *WorkspaceServiceTestSuite) TestDeactivateWorkspace_NonOwnerForbidden() {
	ctx := context.Background()
	actingUserID := uuid.NewString()
	workspaceID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, workspaceID).Return(mainWorkspace(workspaceID), nil).Once()
	suite.mockMembershipSvc.On("AuthorizeRole", ctx, actingUserID, workspaceID, domain.RoleOwner).Return(apperrors.ErrForbidden).Once()

	err := suite.service.DeactivateWorkspace(ctx, workspaceID, actingUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockWorkspaceRepo.AssertNotCalled(suite.T(), "UpdateWorkspaceStatus", ctx, workspaceID, false, actingUserID)
}

func (suite *WorkspaceServiceTestSuite) TestDeactivateWorkspace_AlreadyInactive() {
	ctx := context.Background()
	actingUserID := uuid.NewString()
	workspaceID := uuid.NewString()
	inactive := mainWorkspace(workspaceID)
	inactive.IsActive = false

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, workspaceID).Return(inactive, nil).Once()

	err := suite.service.DeactivateWorkspace(ctx, workspaceID, actingUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockWorkspaceRepo.AssertNotCalled(suite.T(), "UpdateWorkspaceStatus", ctx, workspaceID, false, actingUserID)
}

func (suite *WorkspaceServiceTestSuite) TestDeactivateWorkspace_NotFound() {
	ctx := context.Background()
	actingUserID := uuid.NewString()
	workspaceID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, workspaceID).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.DeactivateWorkspace(ctx, workspaceID, actingUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- GetParent / GetChildren Tests ---

func (suite *WorkspaceServiceTestSuite) TestGetParent_SubWorkspace() {
	ctx := context.Background()
	parentID := uuid.NewString()
	subID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, subID).Return(subWorkspace(subID, parentID), nil).Once()
	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, parentID).Return(mainWorkspace(parentID), nil).Once()

	parent, err := suite.service.GetParent(ctx, subID)

	suite.Require().NoError(err)
	suite.Equal(parentID, parent.WorkspaceID)
}

func (suite *WorkspaceServiceTestSuite) TestGetParent_MainWorkspaceHasNone() {
	ctx := context.Background()
	workspaceID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, workspaceID).Return(mainWorkspace(workspaceID), nil).Once()

	parent, err := suite.service.GetParent(ctx, workspaceID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(parent)
}

func (suite *WorkspaceServiceTestSuite) TestGetChildren_MainWorkspace() {
	ctx := context.Background()
	workspaceID := uuid.NewString()
	children := []domain.Workspace{*subWorkspace(uuid.NewString(), workspaceID)}

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, workspaceID).Return(mainWorkspace(workspaceID), nil).Once()
	suite.mockWorkspaceRepo.On("ListChildWorkspaces", ctx, workspaceID).Return(children, nil).Once()

	result, err := suite.service.GetChildren(ctx, workspaceID)

	suite.Require().NoError(err)
	suite.Len(result, 1)
}

func (suite *WorkspaceServiceTestSuite) TestGetChildren_SubWorkspaceIsEmpty() {
	ctx := context.Background()
	parentID := uuid.NewString()
	subID := uuid.NewString()

	suite.mockWorkspaceRepo.On("FindWorkspaceByID", ctx, subID).Return(subWorkspace(subID, parentID), nil).Once()

	result, err := suite.service.GetChildren(ctx, subID)

	suite.Require().NoError(err)
	suite.Empty(result)
	suite.mockWorkspaceRepo.AssertNotCalled(suite.T(), "ListChildWorkspaces", ctx, subID)
}

// --- GetUserAccessibleWorkspaces Tests ---

func (suite *WorkspaceServiceTestSuite) TestGetUserAccessibleWorkspaces_OwnershipWidensToChildren() {
	ctx := context.Background()
	userID := uuid.NewString()
	ownedMainID := uuid.NewString()
	memberMainID := uuid.NewString()
	childA := *subWorkspace(uuid.NewString(), ownedMainID)
	childB := *subWorkspace(uuid.NewString(), ownedMainID)

	memberships := []domain.Workspace{*mainWorkspace(ownedMainID), *mainWorkspace(memberMainID)}
	owned := []domain.Workspace{*mainWorkspace(ownedMainID)}

	suite.mockWorkspaceRepo.ListWorkspacesByUserIDFn = func(ctx context.Context, gotUserID string, role *domain.Role) ([]domain.Workspace, error) {
		suite.Equal(userID, gotUserID)
		if role == nil {
			return memberships, nil
		}
		suite.Equal(domain.RoleOwner, *role)
		return owned, nil
	}
	suite.mockWorkspaceRepo.ListChildWorkspacesFn = func(ctx context.Context, parentWorkspaceID string) ([]domain.Workspace, error) {
		suite.Equal(ownedMainID, parentWorkspaceID)
		return []domain.Workspace{childA, childB}, nil
	}

	result, err := suite.service.GetUserAccessibleWorkspaces(ctx, userID)

	suite.Require().NoError(err)
	suite.Len(result.MainWorkspaces, 2)
	// Ownership of ownedMainID pulls in both children; plain membership of
	// memberMainID contributes nothing below it.
	suite.Len(result.SubWorkspacesByParent[ownedMainID], 2)
	suite.NotContains(result.SubWorkspacesByParent, memberMainID)
}

func (suite *WorkspaceServiceTestSuite) TestGetUserAccessibleWorkspaces_MemberGetsExactWorkspaces() {
	ctx := context.Background()
	userID := uuid.NewString()
	mainID := uuid.NewString()
	directSub := *subWorkspace(uuid.NewString(), mainID)

	suite.mockWorkspaceRepo.ListWorkspacesByUserIDFn = func(ctx context.Context, gotUserID string, role *domain.Role) ([]domain.Workspace, error) {
		if role == nil {
			return []domain.Workspace{*mainWorkspace(mainID), directSub}, nil
		}
		return nil, nil
	}

	result, err := suite.service.GetUserAccessibleWorkspaces(ctx, userID)

	suite.Require().NoError(err)
	suite.Len(result.MainWorkspaces, 1)
	suite.Len(result.SubWorkspacesByParent[mainID], 1)
	suite.Equal(directSub.WorkspaceID, result.SubWorkspacesByParent[mainID][0].WorkspaceID)
}

func (suite *WorkspaceServiceTestSuite) TestGetUserAccessibleWorkspaces_DirectSubNotDoubleCounted() {
	ctx := context.Background()
	userID := uuid.NewString()
	ownedMainID := uuid.NewString()
	child := *subWorkspace(uuid.NewString(), ownedMainID)

	// The user owns the main workspace and also holds a direct membership in
	// its child; the child must appear exactly once.
	suite.mockWorkspaceRepo.ListWorkspacesByUserIDFn = func(ctx context.Context, gotUserID string, role *domain.Role) ([]domain.Workspace, error) {
		if role == nil {
			return []domain.Workspace{*mainWorkspace(ownedMainID), child}, nil
		}
		return []domain.Workspace{*mainWorkspace(ownedMainID)}, nil
	}
	suite.mockWorkspaceRepo.ListChildWorkspacesFn = func(ctx context.Context, parentWorkspaceID string) ([]domain.Workspace, error) {
		return []domain.Workspace{child}, nil
	}

	result, err := suite.service.GetUserAccessibleWorkspaces(ctx, userID)

	suite.Require().NoError(err)
	suite.Len(result.SubWorkspacesByParent[ownedMainID], 1)
}

// --- ListUserWorkspaces Tests ---

func (suite *WorkspaceServiceTestSuite) TestListUserWorkspaces_NilBecomesEmpty() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockWorkspaceRepo.On("ListWorkspacesByUserID", ctx, userID, (*domain.Role)(nil)).Return(nil, nil).Once()

	result, err := suite.service.ListUserWorkspaces(ctx, userID)

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func TestWorkspaceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WorkspaceServiceTestSuite))
}
