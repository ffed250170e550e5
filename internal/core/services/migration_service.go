package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/accessly/workspace_access_app/internal/apperrors"
	"github.com/accessly/workspace_access_app/internal/core/domain"
	portsrepo "github.com/accessly/workspace_access_app/internal/core/ports/repositories"
	portssvc "github.com/accessly/workspace_access_app/internal/core/ports/services"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
)

// defaultMigrationConcurrency bounds the per-workspace fan-out of
// MigrateAllOwnedWorkspaces.
const defaultMigrationConcurrency = 4

// migrationService implements the MigrationSvcFacade interface. It bulk
// converts implicit role-based access into explicit permission grants by
// materializing the role-default table for every membership of a workspace.
type migrationService struct {
	BaseService
	workspaceRepo  portsrepo.WorkspaceReader
	membershipRepo portsrepo.MembershipReader
	permissionRepo portsrepo.PermissionRepositoryFacade
	membershipSvc  portssvc.MembershipReaderSvc
	invalidator    portssvc.GrantCacheInvalidator

	concurrency int
	maxRetries  uint64
	retryBase   time.Duration
	now         func() time.Time
}

// MigrationOption configures optional behavior of the migration service.
type MigrationOption func(*migrationService)

// WithMigrationConcurrency bounds the number of workspaces migrated in parallel.
func WithMigrationConcurrency(n int) MigrationOption {
	return func(s *migrationService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithMigrationRetry tunes the bounded backoff applied to transient grant
// write failures.
func WithMigrationRetry(maxRetries uint64, base time.Duration) MigrationOption {
	return func(s *migrationService) {
		s.maxRetries = maxRetries
		if base > 0 {
			s.retryBase = base
		}
	}
}

// WithMigrationClock overrides the time source, used by tests.
func WithMigrationClock(now func() time.Time) MigrationOption {
	return func(s *migrationService) {
		s.now = now
	}
}

// NewMigrationService creates a new migration service with the provided dependencies
func NewMigrationService(
	workspaceRepo portsrepo.WorkspaceReader,
	membershipRepo portsrepo.MembershipReader,
	permissionRepo portsrepo.PermissionRepositoryFacade,
	membershipSvc portssvc.MembershipReaderSvc,
	invalidator portssvc.GrantCacheInvalidator,
	opts ...MigrationOption,
) portssvc.MigrationSvcFacade {
	s := &migrationService{
		workspaceRepo:  workspaceRepo,
		membershipRepo: membershipRepo,
		permissionRepo: permissionRepo,
		membershipSvc:  membershipSvc,
		invalidator:    invalidator,
		concurrency:    defaultMigrationConcurrency,
		maxRetries:     3,
		retryBase:      100 * time.Millisecond,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure migrationService implements the MigrationSvcFacade interface
var _ portssvc.MigrationSvcFacade = (*migrationService)(nil)

// MigrateWorkspace materializes role defaults into explicit grants for every
// membership of the workspace. Existing explicit grants are never
// overwritten, which makes re-runs write zero additional records.
func (s *migrationService) MigrateWorkspace(ctx context.Context, workspaceID, actingUserID string) (*domain.MigrationResult, error) {
	if workspaceID == "" {
		return nil, apperrors.NewValidationFailedError("workspace id is required")
	}
	if actingUserID == "" {
		return nil, apperrors.NewValidationFailedError("acting user id is required")
	}

	if _, err := s.workspaceRepo.FindWorkspaceByID(ctx, workspaceID); err != nil {
		return nil, err
	}

	if err := s.authorizeOwner(ctx, actingUserID, workspaceID); err != nil {
		return nil, err
	}

	result := s.migrateMemberships(ctx, workspaceID, actingUserID)

	s.LogInfo(ctx, "Workspace permission migration finished",
		slog.String("workspace_id", workspaceID),
		slog.Int("success_count", result.SuccessCount),
		slog.Int("error_count", len(result.Errors)))
	return result, nil
}

// MigrateAllOwnedWorkspaces runs the migration over every workspace the
// acting user owns: owned main workspaces, each of their sub-workspaces, and
// any directly owned sub-workspaces. Workspaces are processed in parallel
// with bounded concurrency; cancelling ctx returns the partial aggregate.
func (s *migrationService) MigrateAllOwnedWorkspaces(ctx context.Context, actingUserID string) (*domain.MigrationResult, error) {
	if actingUserID == "" {
		return nil, apperrors.NewValidationFailedError("acting user id is required")
	}

	ownerRole := domain.RoleOwner
	owned, err := s.workspaceRepo.ListWorkspacesByUserID(ctx, actingUserID, &ownerRole)
	if err != nil {
		s.LogError(ctx, err, "Failed to list owned workspaces",
			slog.String("acting_user_id", actingUserID))
		return nil, err
	}

	seen := make(map[string]bool)
	var targets []string
	for _, w := range owned {
		if !seen[w.WorkspaceID] {
			seen[w.WorkspaceID] = true
			targets = append(targets, w.WorkspaceID)
		}
		if w.Kind != domain.WorkspaceMain {
			continue
		}
		children, err := s.workspaceRepo.ListChildWorkspaces(ctx, w.WorkspaceID)
		if err != nil {
			s.LogError(ctx, err, "Failed to list child workspaces for migration",
				slog.String("workspace_id", w.WorkspaceID))
			return nil, err
		}
		for _, child := range children {
			if !seen[child.WorkspaceID] {
				seen[child.WorkspaceID] = true
				targets = append(targets, child.WorkspaceID)
			}
		}
	}

	aggregate := &domain.MigrationResult{Errors: []string{}, Details: []domain.MigrationDetail{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, workspaceID := range targets {
		workspaceID := workspaceID
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			result := s.migrateMemberships(gctx, workspaceID, actingUserID)
			mu.Lock()
			aggregate.Merge(*result)
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; per-workspace failures land in the aggregate.
	_ = g.Wait()

	if ctx.Err() != nil {
		aggregate.Errors = append(aggregate.Errors, fmt.Sprintf("migration cancelled: %v", ctx.Err()))
	}

	s.LogInfo(ctx, "Owned-workspace permission migration finished",
		slog.String("acting_user_id", actingUserID),
		slog.Int("workspace_count", len(targets)),
		slog.Int("success_count", aggregate.SuccessCount),
		slog.Int("error_count", len(aggregate.Errors)))
	return aggregate, nil
}

// authorizeOwner requires the acting user to hold the OWNER effective role in
// the workspace. Admins may not run migration.
func (s *migrationService) authorizeOwner(ctx context.Context, actingUserID, workspaceID string) error {
	membership, err := s.membershipSvc.GetMembership(ctx, actingUserID, workspaceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewForbiddenError("only a workspace owner may run permission migration")
		}
		return err
	}
	if membership.EffectiveRole != domain.RoleOwner {
		return apperrors.NewForbiddenError("only a workspace owner may run permission migration")
	}
	return nil
}

// migrateMemberships does the per-membership work for one workspace. A
// failure on one user's grants is recorded and processing continues with the
// next membership.
func (s *migrationService) migrateMemberships(ctx context.Context, workspaceID, actingUserID string) *domain.MigrationResult {
	result := &domain.MigrationResult{Errors: []string{}, Details: []domain.MigrationDetail{}}

	memberships, err := s.membershipRepo.ListMembershipsByWorkspace(ctx, workspaceID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("workspace %s: failed to list memberships: %v", workspaceID, err))
		return result
	}

	for _, membership := range memberships {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("workspace %s: migration cancelled: %v", workspaceID, ctx.Err()))
			return result
		}

		detail := domain.MigrationDetail{
			UserID:      membership.UserID,
			WorkspaceID: workspaceID,
			Role:        membership.Role,
		}

		written, conflicts, err := s.migrateOneMembership(ctx, membership, actingUserID)
		if err != nil {
			detail.Status = fmt.Sprintf("Error: %v", err)
			result.Errors = append(result.Errors, fmt.Sprintf("user %s in workspace %s: %v", membership.UserID, workspaceID, err))
			result.Details = append(result.Details, detail)
			continue
		}

		if conflicts > 0 {
			// Never resolve conflicts silently; flag them for manual review.
			detail.Status = fmt.Sprintf("Success: %d explicit grant(s) differ from the role default and were left untouched", conflicts)
			s.LogInfo(ctx, "Migration found conflicting explicit grants",
				slog.String("user_id", membership.UserID),
				slog.String("workspace_id", workspaceID),
				slog.Int("conflict_count", conflicts))
		} else {
			detail.Status = domain.MigrationStatusSuccess
		}
		result.SuccessCount++
		result.Details = append(result.Details, detail)

		if written > 0 && s.invalidator != nil {
			s.invalidator.InvalidateUserWorkspace(membership.UserID, workspaceID)
		}
	}

	return result
}

// migrateOneMembership writes the missing default grants for one membership,
// returning the number of records written and the number of existing explicit
// grants that contradict the role default.
func (s *migrationService) migrateOneMembership(ctx context.Context, membership domain.Membership, actingUserID string) (written, conflicts int, err error) {
	existing, err := s.permissionRepo.ListGrants(ctx, membership.UserID, membership.WorkspaceID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list existing grants: %w", err)
	}
	existingByID := make(map[string]domain.PermissionGrant, len(existing))
	for _, g := range existing {
		existingByID[g.PermissionID.String()] = g
	}

	now := s.now()
	for _, permID := range domain.DefaultPermissions(membership.Role) {
		if prior, ok := existingByID[permID.String()]; ok {
			// Merge semantics: an existing explicit grant is never overwritten.
			if !prior.Granted {
				conflicts++
			}
			continue
		}

		grant := domain.PermissionGrant{
			UserID:       membership.UserID,
			WorkspaceID:  membership.WorkspaceID,
			PermissionID: permID,
			Granted:      true,
			GrantedBy:    actingUserID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actingUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: actingUserID,
			},
		}

		inserted, err := s.insertGrantWithRetry(ctx, grant)
		if err != nil {
			return written, conflicts, fmt.Errorf("failed to write grant %s: %w", permID.String(), err)
		}
		if inserted {
			written++
		}
		// A lost insert race means a concurrent explicit grant landed first;
		// it wins, per merge semantics.
	}

	return written, conflicts, nil
}

// insertGrantWithRetry retries transient store failures with bounded
// exponential backoff. Validation and authorization failures are permanent
// and returned immediately.
func (s *migrationService) insertGrantWithRetry(ctx context.Context, grant domain.PermissionGrant) (bool, error) {
	var inserted bool
	operation := func() error {
		var err error
		inserted, err = s.permissionRepo.InsertGrantIfAbsent(ctx, grant)
		if err != nil && !apperrors.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryBase
	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, s.maxRetries), ctx))
	return inserted, err
}
