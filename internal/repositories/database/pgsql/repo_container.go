package pgsql

import (
	portsrepo "github.com/accessly/workspace_access_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:       newPgxUserRepository(dbPool),
		WorkspaceRepo:  newPgxWorkspaceRepository(dbPool),
		MembershipRepo: newPgxMembershipRepository(dbPool),
		PermissionRepo: newPgxPermissionRepository(dbPool),
	}
}
