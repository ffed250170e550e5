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

type PgxMembershipRepository struct {
	BaseRepository
}

// newPgxMembershipRepository creates a new repository for membership data.
func newPgxMembershipRepository(pool *pgxpool.Pool) portsrepo.MembershipRepositoryFacade {
	return &PgxMembershipRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxMembershipRepository implements portsrepo.MembershipRepositoryFacade
var _ portsrepo.MembershipRepositoryFacade = (*PgxMembershipRepository)(nil)

// hydrate fills the derived fields of a direct membership row. Scope,
// effective role and capabilities are computed from the stored role, never
// persisted.
func hydrate(m *domain.Membership) {
	m.Scope = domain.ScopeDirect
	m.EffectiveRole = m.Role
	m.Capabilities = domain.CapabilitiesForRole(m.Role)
}

func (r *PgxMembershipRepository) SaveMembership(ctx context.Context, membership domain.Membership) error {
	query := `
		INSERT INTO memberships (user_id, workspace_id, role, joined_at)
		VALUES ($1, $2, $3, $4);
	`
	_, err := r.Pool.Exec(ctx, query,
		membership.UserID,
		membership.WorkspaceID,
		membership.Role,
		membership.JoinedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("user " + membership.UserID + " is already a member of workspace " + membership.WorkspaceID)
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return apperrors.NewValidationFailedError("user or workspace does not exist")
			}
		}
		return storeError("failed to save membership for user "+membership.UserID+" in workspace "+membership.WorkspaceID, err)
	}
	return nil
}

func (r *PgxMembershipRepository) FindMembership(ctx context.Context, userID, workspaceID string) (*domain.Membership, error) {
	query := `
		SELECT m.user_id, u.name AS user_name, m.workspace_id, m.role, m.joined_at
		FROM memberships m
		JOIN users u ON m.user_id = u.user_id
		WHERE m.user_id = $1 AND m.workspace_id = $2;
	`
	var m domain.Membership
	err := r.Pool.QueryRow(ctx, query, userID, workspaceID).Scan(
		&m.UserID,
		&m.UserName,
		&m.WorkspaceID,
		&m.Role,
		&m.JoinedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storeError("failed to find membership for user "+userID+" in workspace "+workspaceID, err)
	}

	hydrate(&m)
	return &m, nil
}

func (r *PgxMembershipRepository) ListMembershipsByWorkspace(ctx context.Context, workspaceID string) ([]domain.Membership, error) {
	query := `
		SELECT m.user_id, u.name AS user_name, m.workspace_id, m.role, m.joined_at
		FROM memberships m
		JOIN users u ON m.user_id = u.user_id
		WHERE m.workspace_id = $1
		ORDER BY m.joined_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, storeError("failed to query memberships for workspace "+workspaceID, err)
	}
	defer rows.Close()

	var memberships []domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.UserID, &m.UserName, &m.WorkspaceID, &m.Role, &m.JoinedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan membership row", err)
		}
		hydrate(&m)
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("failed to iterate membership rows", err)
	}

	return memberships, nil
}

func (r *PgxMembershipRepository) UpdateMembershipRole(ctx context.Context, userID, workspaceID string, newRole domain.Role) error {
	query := `
		UPDATE memberships SET role = $1
		WHERE user_id = $2 AND workspace_id = $3;
	`
	result, err := r.Pool.Exec(ctx, query, newRole, userID, workspaceID)
	if err != nil {
		return storeError("failed to update role for user "+userID+" in workspace "+workspaceID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("membership of user " + userID + " in workspace " + workspaceID + " not found")
	}
	return nil
}

func (r *PgxMembershipRepository) DeleteMembership(ctx context.Context, userID, workspaceID string) error {
	query := `DELETE FROM memberships WHERE user_id = $1 AND workspace_id = $2;`
	result, err := r.Pool.Exec(ctx, query, userID, workspaceID)
	if err != nil {
		return storeError("failed to delete membership of user "+userID+" in workspace "+workspaceID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("membership of user " + userID + " in workspace " + workspaceID + " not found")
	}
	return nil
}
