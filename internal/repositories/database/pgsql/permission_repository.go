package pgsql

import (
	"context"
	"errors"

	"github.com/accessly/workspace_access_app/internal/apperrors"
	"github.com/accessly/workspace_access_app/internal/core/domain"
	portsrepo "github.com/accessly/workspace_access_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPermissionRepository struct {
	BaseRepository
}

// newPgxPermissionRepository creates a new repository for permission grant data.
func newPgxPermissionRepository(pool *pgxpool.Pool) portsrepo.PermissionRepositoryFacade {
	return &PgxPermissionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxPermissionRepository implements portsrepo.PermissionRepositoryFacade
var _ portsrepo.PermissionRepositoryFacade = (*PgxPermissionRepository)(nil)

const grantSelectColumns = `
	user_id, workspace_id, permission_id, granted, granted_by, expires_at,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanGrant(row pgx.Row) (*domain.PermissionGrant, error) {
	var g domain.PermissionGrant
	var rawPermID string
	err := row.Scan(
		&g.UserID,
		&g.WorkspaceID,
		&rawPermID,
		&g.Granted,
		&g.GrantedBy,
		&g.ExpiresAt,
		&g.CreatedAt,
		&g.CreatedBy,
		&g.LastUpdatedAt,
		&g.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	permID, err := domain.ParsePermissionID(rawPermID)
	if err != nil {
		// A stored id outside the closed enumeration means schema drift.
		return nil, apperrors.NewAppError(500, "stored permission id is invalid: "+rawPermID, err)
	}
	g.PermissionID = permID
	return &g, nil
}

func (r *PgxPermissionRepository) FindGrant(ctx context.Context, userID, workspaceID string, permID domain.PermissionID) (*domain.PermissionGrant, error) {
	query := `SELECT ` + grantSelectColumns + `
		FROM permission_grants
		WHERE user_id = $1 AND workspace_id = $2 AND permission_id = $3;
	`
	grant, err := scanGrant(r.Pool.QueryRow(ctx, query, userID, workspaceID, permID.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, storeError("failed to find permission grant for user "+userID, err)
	}
	return grant, nil
}

func (r *PgxPermissionRepository) ListGrants(ctx context.Context, userID, workspaceID string) ([]domain.PermissionGrant, error) {
	query := `SELECT ` + grantSelectColumns + `
		FROM permission_grants
		WHERE user_id = $1 AND workspace_id = $2
		ORDER BY permission_id;
	`
	rows, err := r.Pool.Query(ctx, query, userID, workspaceID)
	if err != nil {
		return nil, storeError("failed to query permission grants for user "+userID, err)
	}
	defer rows.Close()

	var grants []domain.PermissionGrant
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan permission grant row", err)
		}
		grants = append(grants, *grant)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("failed to iterate permission grant rows", err)
	}

	return grants, nil
}

// UpsertGrant writes the grant for its key, replacing any existing record.
// The ON CONFLICT update makes concurrent writers to the same key converge on
// the last writer's value with no duplicate rows.
func (r *PgxPermissionRepository) UpsertGrant(ctx context.Context, grant domain.PermissionGrant) error {
	query := `
		INSERT INTO permission_grants (
			user_id, workspace_id, permission_id, granted, granted_by, expires_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, workspace_id, permission_id) DO UPDATE SET
			granted = EXCLUDED.granted,
			granted_by = EXCLUDED.granted_by,
			expires_at = EXCLUDED.expires_at,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		grant.UserID,
		grant.WorkspaceID,
		grant.PermissionID.String(),
		grant.Granted,
		grant.GrantedBy,
		grant.ExpiresAt,
		grant.CreatedAt,
		grant.CreatedBy,
		grant.LastUpdatedAt,
		grant.LastUpdatedBy,
	)
	if err != nil {
		return storeError("failed to upsert permission grant for user "+grant.UserID, err)
	}
	return nil
}

// InsertGrantIfAbsent writes the grant only when no record exists for its
// key. ON CONFLICT DO NOTHING guarantees an existing record, whatever its
// source, is never overwritten; losing the insert race reports inserted=false.
func (r *PgxPermissionRepository) InsertGrantIfAbsent(ctx context.Context, grant domain.PermissionGrant) (bool, error) {
	query := `
		INSERT INTO permission_grants (
			user_id, workspace_id, permission_id, granted, granted_by, expires_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, workspace_id, permission_id) DO NOTHING;
	`
	result, err := r.Pool.Exec(ctx, query,
		grant.UserID,
		grant.WorkspaceID,
		grant.PermissionID.String(),
		grant.Granted,
		grant.GrantedBy,
		grant.ExpiresAt,
		grant.CreatedAt,
		grant.CreatedBy,
		grant.LastUpdatedAt,
		grant.LastUpdatedBy,
	)
	if err != nil {
		return false, storeError("failed to insert permission grant for user "+grant.UserID, err)
	}
	return result.RowsAffected() > 0, nil
}
