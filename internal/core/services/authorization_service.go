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
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// authorizationService implements the AuthorizationSvcFacade interface.
// Resolution precedence is fixed here and must not be re-derived elsewhere:
// superuser > explicit non-expired grant > role default > deny.
type authorizationService struct {
	BaseService
	permissionRepo portsrepo.PermissionRepositoryFacade
	membershipSvc  portssvc.MembershipReaderSvc
	userRepo       portsrepo.UserReader

	// grantCache is an optional read-through cache of the explicit-grant map,
	// keyed by the exact (userID, workspaceID) tuple. It is invalidated
	// synchronously on any grant write for that key.
	grantCache *expirable.LRU[string, domain.PermissionMap]

	now func() time.Time
}

// AuthorizationOption configures optional behavior of the authorization service.
type AuthorizationOption func(*authorizationService)

// WithGrantCache enables the read-through grant cache with the given size and TTL.
func WithGrantCache(size int, ttl time.Duration) AuthorizationOption {
	return func(s *authorizationService) {
		s.grantCache = expirable.NewLRU[string, domain.PermissionMap](size, nil, ttl)
	}
}

// WithClock overrides the time source, used by tests to pin expiry decisions.
func WithClock(now func() time.Time) AuthorizationOption {
	return func(s *authorizationService) {
		s.now = now
	}
}

// NewAuthorizationService creates a new authorization service with the provided dependencies
func NewAuthorizationService(
	permissionRepo portsrepo.PermissionRepositoryFacade,
	membershipSvc portssvc.MembershipReaderSvc,
	userRepo portsrepo.UserReader,
	opts ...AuthorizationOption,
) portssvc.AuthorizationSvcFacade {
	s := &authorizationService{
		permissionRepo: permissionRepo,
		membershipSvc:  membershipSvc,
		userRepo:       userRepo,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure authorizationService implements the AuthorizationSvcFacade interface
var _ portssvc.AuthorizationSvcFacade = (*authorizationService)(nil)

func cacheKey(userID, workspaceID string) string {
	return userID + "\x00" + workspaceID
}

// findGrant looks up the explicit grant for the exact key, going through the
// read-through cache when enabled. Returns nil without error when no grant exists.
func (s *authorizationService) findGrant(ctx context.Context, userID, workspaceID string, permID domain.PermissionID) (*domain.PermissionGrant, error) {
	if s.grantCache != nil {
		grants, err := s.loadGrantMap(ctx, userID, workspaceID)
		if err != nil {
			return nil, err
		}
		if grant, ok := grants[permID.String()]; ok {
			return &grant, nil
		}
		return nil, nil
	}

	grant, err := s.permissionRepo.FindGrant(ctx, userID, workspaceID, permID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return grant, nil
}

func (s *authorizationService) loadGrantMap(ctx context.Context, userID, workspaceID string) (domain.PermissionMap, error) {
	key := cacheKey(userID, workspaceID)
	if s.grantCache != nil {
		if grants, ok := s.grantCache.Get(key); ok {
			return grants, nil
		}
	}

	records, err := s.permissionRepo.ListGrants(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	grants := make(domain.PermissionMap, len(records))
	for _, g := range records {
		grants[g.PermissionID.String()] = g
	}

	if s.grantCache != nil {
		s.grantCache.Add(key, grants)
	}
	return grants, nil
}

// HasPermission checks the explicit grant for the exact key, with no role
// fallback. An absent or expired grant yields false.
func (s *authorizationService) HasPermission(ctx context.Context, userID, workspaceID string, permID domain.PermissionID) (bool, error) {
	if userID == "" || workspaceID == "" {
		return false, apperrors.NewValidationFailedError("user id and workspace id are required")
	}
	if permID.IsZero() {
		return false, apperrors.NewValidationFailedError("permission id is required")
	}

	grant, err := s.findGrant(ctx, userID, workspaceID, permID)
	if err != nil {
		s.LogError(ctx, err, "Failed to look up permission grant",
			slog.String("user_id", userID),
			slog.String("workspace_id", workspaceID),
			slog.String("permission_id", permID.String()))
		return false, err
	}
	if grant == nil {
		return false, nil
	}
	return grant.GrantedAt(s.now()), nil
}

// HasPermissionWithFallback resolves a permission with the full precedence
// chain. A nil roleHint makes the service read the membership itself,
// including memberships inherited from parent-workspace ownership.
func (s *authorizationService) HasPermissionWithFallback(ctx context.Context, userID, workspaceID string, permID domain.PermissionID, roleHint *domain.Role) (domain.Decision, error) {
	deny := domain.Decision{Allowed: false, Reason: domain.ReasonDefaultDeny}

	if userID == "" || workspaceID == "" {
		return deny, apperrors.NewValidationFailedError("user id and workspace id are required")
	}
	if permID.IsZero() {
		return deny, apperrors.NewValidationFailedError("permission id is required")
	}

	superuser, err := s.isSuperuser(ctx, userID)
	if err != nil {
		return deny, err
	}
	if superuser {
		return domain.Decision{Allowed: true, Reason: domain.ReasonSuperuser}, nil
	}

	grant, err := s.findGrant(ctx, userID, workspaceID, permID)
	if err != nil {
		s.LogError(ctx, err, "Failed to look up permission grant",
			slog.String("user_id", userID),
			slog.String("workspace_id", workspaceID),
			slog.String("permission_id", permID.String()))
		return deny, err
	}
	if grant != nil {
		if grant.Expired(s.now()) {
			// An expired grant denies; it does not fall back to role defaults.
			return domain.Decision{Allowed: false, Reason: domain.ReasonExpiredGrant}, nil
		}
		// An explicit grant wins unconditionally, including explicit denies
		// of something the role default would allow.
		return domain.Decision{Allowed: grant.Granted, Reason: domain.ReasonExplicitGrant}, nil
	}

	role := roleHint
	if role == nil {
		membership, err := s.membershipSvc.GetMembership(ctx, userID, workspaceID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return domain.Decision{Allowed: false, Reason: domain.ReasonNoMembership}, nil
			}
			return deny, err
		}
		role = &membership.EffectiveRole
	}

	if domain.IsDefaultGranted(*role, permID) {
		return domain.Decision{Allowed: true, Reason: domain.ReasonRoleDefault}, nil
	}
	return deny, nil
}

// GetUserPermissions returns the raw explicit-grant map for a (user,
// workspace) pair. Expired entries are surfaced as-is; callers computing
// granted counts must filter them to stay consistent with HasPermission.
func (s *authorizationService) GetUserPermissions(ctx context.Context, userID, workspaceID string) (domain.PermissionMap, error) {
	if userID == "" || workspaceID == "" {
		return nil, apperrors.NewValidationFailedError("user id and workspace id are required")
	}
	return s.loadGrantMap(ctx, userID, workspaceID)
}

// UpdatePermissions applies a batch of explicit grant changes for one target
// user in one workspace. Owners may always update; admins may update any
// non-owner target.
func (s *authorizationService) UpdatePermissions(ctx context.Context, userID, workspaceID string, updates map[domain.PermissionID]domain.PermissionUpdate, actingUserID string) error {
	if userID == "" || workspaceID == "" || actingUserID == "" {
		return apperrors.NewValidationFailedError("user id, workspace id and acting user id are required")
	}
	if len(updates) == 0 {
		return apperrors.NewValidationFailedError("no permission updates supplied")
	}
	for permID := range updates {
		if permID.IsZero() {
			return apperrors.NewValidationFailedError("permission id is required")
		}
	}

	if err := s.authorizeUpdate(ctx, actingUserID, userID, workspaceID); err != nil {
		return err
	}

	now := s.now()
	for permID, update := range updates {
		grantedBy := update.GrantedBy
		if grantedBy == "" {
			grantedBy = actingUserID
		}
		grant := domain.PermissionGrant{
			UserID:       userID,
			WorkspaceID:  workspaceID,
			PermissionID: permID,
			Granted:      update.Granted,
			GrantedBy:    grantedBy,
			ExpiresAt:    update.ExpiresAt,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actingUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: actingUserID,
			},
		}
		if err := s.permissionRepo.UpsertGrant(ctx, grant); err != nil {
			s.LogError(ctx, err, "Failed to upsert permission grant",
				slog.String("user_id", userID),
				slog.String("workspace_id", workspaceID),
				slog.String("permission_id", permID.String()))
			s.invalidate(userID, workspaceID)
			return err
		}
	}

	// Invalidate synchronously before returning so subsequent reads observe
	// the write.
	s.invalidate(userID, workspaceID)

	s.LogInfo(ctx, "Permissions updated",
		slog.String("target_user_id", userID),
		slog.String("workspace_id", workspaceID),
		slog.String("acting_user_id", actingUserID),
		slog.Int("update_count", len(updates)))
	return nil
}

func (s *authorizationService) invalidate(userID, workspaceID string) {
	if s.grantCache != nil {
		s.grantCache.Remove(cacheKey(userID, workspaceID))
	}
}

// InvalidateUserWorkspace drops cached grant state for the tuple. Exposed for
// writers that bypass this service's own write path.
func (s *authorizationService) InvalidateUserWorkspace(userID, workspaceID string) {
	s.invalidate(userID, workspaceID)
}

func (s *authorizationService) isSuperuser(ctx context.Context, userID string) (bool, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsSuperuser, nil
}

// authorizeUpdate enforces the grant-update authority rule: owners always,
// admins only when the target is not an owner.
func (s *authorizationService) authorizeUpdate(ctx context.Context, actingUserID, targetUserID, workspaceID string) error {
	superuser, err := s.isSuperuser(ctx, actingUserID)
	if err != nil {
		return err
	}
	if superuser {
		return nil
	}

	acting, err := s.membershipSvc.GetMembership(ctx, actingUserID, workspaceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrForbidden
		}
		return err
	}

	switch acting.EffectiveRole {
	case domain.RoleOwner:
		return nil
	case domain.RoleAdmin:
		target, err := s.membershipSvc.GetMembership(ctx, targetUserID, workspaceID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// A target with no membership cannot be an owner.
				return nil
			}
			return err
		}
		if target.EffectiveRole == domain.RoleOwner {
			return apperrors.NewForbiddenError("admins cannot modify an owner's permissions")
		}
		return nil
	default:
		return apperrors.ErrForbidden
	}
}
