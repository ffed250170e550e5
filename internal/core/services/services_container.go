package services

import (
	portsrepo "github.com/accessly/workspace_access_app/internal/core/ports/repositories"
	portssvc "github.com/accessly/workspace_access_app/internal/core/ports/services"
	"github.com/accessly/workspace_access_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.User = NewUserService(repos.UserRepo)

	// Membership service first since the other services authorize through it
	container.Membership = NewMembershipService(repos.MembershipRepo, repos.WorkspaceRepo)

	container.Workspace = NewWorkspaceService(repos.WorkspaceRepo, container.Membership)

	var authOpts []AuthorizationOption
	if cfg.PermissionCacheEnabled {
		authOpts = append(authOpts, WithGrantCache(cfg.PermissionCacheSize, cfg.PermissionCacheTTL))
	}
	container.Authorization = NewAuthorizationService(
		repos.PermissionRepo,
		container.Membership,
		repos.UserRepo,
		authOpts...,
	)

	container.Migration = NewMigrationService(
		repos.WorkspaceRepo,
		repos.MembershipRepo,
		repos.PermissionRepo,
		container.Membership,
		container.Authorization,
		WithMigrationConcurrency(cfg.MigrationConcurrency),
		WithMigrationRetry(cfg.MigrationMaxRetries, cfg.MigrationRetryBase),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.MembershipSvcFacade    = (*membershipService)(nil)
	_ portssvc.WorkspaceSvcFacade     = (*workspaceService)(nil)
	_ portssvc.AuthorizationSvcFacade = (*authorizationService)(nil)
	_ portssvc.MigrationSvcFacade     = (*migrationService)(nil)
)
