package pgsql

import (
	"context"
	"errors"

	"github.com/accessly/workspace_access_app/internal/apperrors"
	"github.com/accessly/workspace_access_app/internal/core/domain"
	portsrepo "github.com/accessly/workspace_access_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxWorkspaceRepository struct {
	BaseRepository
}

// newPgxWorkspaceRepository creates a new repository for workspace data.
func newPgxWorkspaceRepository(pool *pgxpool.Pool) portsrepo.WorkspaceRepositoryWithTx {
	return &PgxWorkspaceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxWorkspaceRepository implements portsrepo.WorkspaceRepositoryWithTx
var _ portsrepo.WorkspaceRepositoryWithTx = (*PgxWorkspaceRepository)(nil)

var FULL_WORKSPACE_SELECT_QUERY = `
SELECT
	w.workspace_id, w.name, w.description, w.kind, w.parent_workspace_id, w.is_active,
	w.created_at, w.created_by, w.last_updated_at, w.last_updated_by
FROM workspaces w
`

// getWorkspaces private func to get workspaces from the select query filters
func (r *PgxWorkspaceRepository) getWorkspaces(ctx context.Context, filterQuery string, args ...any) ([]domain.Workspace, error) {
	query := FULL_WORKSPACE_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("failed to query workspaces", err)
	}
	defer rows.Close()
	workspaces, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Workspace])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) { // It's possible to get no rows, which is not an error for a list.
			return []domain.Workspace{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect workspace rows", err)
	}

	return workspaces, nil
}

// CreateWorkspaceWithOwner inserts a workspace and its owner membership within
// a DB transaction, so a workspace is never left without an owner.
func (r *PgxWorkspaceRepository) CreateWorkspaceWithOwner(ctx context.Context, workspace domain.Workspace, owner domain.Membership) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	// Defer rollback in case of error
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	workspaceQuery := `
		INSERT INTO workspaces (
			workspace_id, name, description, kind, parent_workspace_id, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, workspaceQuery,
		workspace.WorkspaceID,
		workspace.Name,
		workspace.Description,
		workspace.Kind,
		workspace.ParentWorkspaceID,
		workspace.IsActive,
		workspace.CreatedAt,
		workspace.CreatedBy,
		workspace.LastUpdatedAt,
		workspace.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("workspace ID " + workspace.WorkspaceID + " already exists")
			}
			if pgErr.Code == "23503" && pgErr.ConstraintName == "fk_workspace_parent" { // foreign_key_violation
				return apperrors.NewValidationFailedError("parent workspace does not exist")
			}
		}
		return storeError("failed to save workspace "+workspace.WorkspaceID, err)
	}

	membershipQuery := `
		INSERT INTO memberships (user_id, workspace_id, role, joined_at)
		VALUES ($1, $2, $3, $4);
	`
	_, err = tx.Exec(ctx, membershipQuery,
		owner.UserID,
		owner.WorkspaceID,
		owner.Role,
		owner.JoinedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return apperrors.NewValidationFailedError("owner user does not exist")
		}
		return storeError("failed to save owner membership for workspace "+workspace.WorkspaceID, err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxWorkspaceRepository) FindWorkspaceByID(ctx context.Context, workspaceID string) (*domain.Workspace, error) {
	query := `WHERE w.workspace_id = $1`
	workspaces, err := r.getWorkspaces(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	if len(workspaces) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &workspaces[0], nil
}

func (r *PgxWorkspaceRepository) ListWorkspacesByUserID(ctx context.Context, userID string, role *domain.Role) ([]domain.Workspace, error) {
	baseQuery := `JOIN memberships m ON w.workspace_id = m.workspace_id WHERE m.user_id = $1 AND w.is_active = true`

	args := []any{userID}
	if role != nil {
		baseQuery += ` AND m.role = $2`
		args = append(args, *role)
	}

	query := baseQuery + ` ORDER BY w.name;`
	return r.getWorkspaces(ctx, query, args...)
}

func (r *PgxWorkspaceRepository) ListChildWorkspaces(ctx context.Context, parentWorkspaceID string) ([]domain.Workspace, error) {
	query := `WHERE w.parent_workspace_id = $1 AND w.is_active = true ORDER BY w.name;`
	return r.getWorkspaces(ctx, query, parentWorkspaceID)
}

// UpdateWorkspaceStatus updates the is_active status of a workspace
func (r *PgxWorkspaceRepository) UpdateWorkspaceStatus(ctx context.Context, workspaceID string, isActive bool, updatedByUserID string) error {
	query := `
		UPDATE workspaces
		SET is_active = $1, last_updated_at = NOW(), last_updated_by = $2
		WHERE workspace_id = $3;
	`
	result, err := r.Pool.Exec(ctx, query, isActive, updatedByUserID, workspaceID)
	if err != nil {
		return storeError("failed to update workspace status "+workspaceID, err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("workspace " + workspaceID + " not found")
	}

	return nil
}
