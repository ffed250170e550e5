package services

import (
	"context"

	"github.com/accessly/workspace_access_app/internal/core/domain"
)

// MigrationSvcFacade bulk-converts implicit role-based access into explicit
// permission grants.
type MigrationSvcFacade interface {
	// MigrateWorkspace materializes role defaults into explicit grants for
	// every membership of the workspace. Existing explicit grants are never
	// overwritten, which makes the operation idempotent. Only an owner of the
	// workspace may invoke it. Per-user write failures are collected into the
	// result's Errors rather than aborting the run.
	MigrateWorkspace(ctx context.Context, workspaceID, actingUserID string) (*domain.MigrationResult, error)

	// MigrateAllOwnedWorkspaces runs MigrateWorkspace over every workspace
	// the acting user owns (main workspaces plus their sub-workspaces) and
	// aggregates the results. Cancelling ctx mid-batch returns the partial
	// result accumulated so far.
	MigrateAllOwnedWorkspaces(ctx context.Context, actingUserID string) (*domain.MigrationResult, error)
}
