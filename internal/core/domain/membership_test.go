package domain_test

import (
	"testing"
	"time"

	"github.com/accessly/workspace_access_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestCapabilitiesForRole(t *testing.T) {
	tests := []struct {
		name string
		role domain.Role
		want domain.Capabilities
	}{
		{
			name: "owner gets everything",
			role: domain.RoleOwner,
			want: domain.Capabilities{
				CanAccessSubWorkspaces:   true,
				CanCreateSubWorkspaces:   true,
				CanManageInherited:       true,
				CanViewHierarchy:         true,
				CanSwitchWorkspaces:      true,
				CanInviteToSubWorkspaces: true,
			},
		},
		{
			name: "admin cannot create sub-workspaces",
			role: domain.RoleAdmin,
			want: domain.Capabilities{
				CanAccessSubWorkspaces:   true,
				CanCreateSubWorkspaces:   false,
				CanManageInherited:       true,
				CanViewHierarchy:         true,
				CanSwitchWorkspaces:      true,
				CanInviteToSubWorkspaces: true,
			},
		},
		{
			name: "member only views and switches",
			role: domain.RoleMember,
			want: domain.Capabilities{
				CanAccessSubWorkspaces:   false,
				CanCreateSubWorkspaces:   false,
				CanManageInherited:       false,
				CanViewHierarchy:         true,
				CanSwitchWorkspaces:      true,
				CanInviteToSubWorkspaces: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CapabilitiesForRole(tt.role))
		})
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, domain.RoleOwner.Valid())
	assert.True(t, domain.RoleAdmin.Valid())
	assert.True(t, domain.RoleMember.Valid())
	assert.False(t, domain.Role("owner").Valid()) // case sensitive
	assert.False(t, domain.Role("").Valid())
	assert.False(t, domain.Role("GUEST").Valid())
}

func TestNewDirectMembership(t *testing.T) {
	joined := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	m := domain.NewDirectMembership("user-1", "ws-1", domain.RoleAdmin, joined)

	assert.Equal(t, "user-1", m.UserID)
	assert.Equal(t, "ws-1", m.WorkspaceID)
	assert.Equal(t, domain.RoleAdmin, m.Role)
	assert.Equal(t, domain.ScopeDirect, m.Scope)
	assert.Equal(t, domain.RoleAdmin, m.EffectiveRole)
	assert.Equal(t, joined, m.JoinedAt)
	assert.Equal(t, domain.CapabilitiesForRole(domain.RoleAdmin), m.Capabilities)
}

func TestInheritMembership(t *testing.T) {
	joined := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	parent := domain.NewDirectMembership("user-1", "ws-main", domain.RoleOwner, joined)

	inherited := domain.InheritMembership(parent, "ws-sub")

	assert.Equal(t, "user-1", inherited.UserID)
	assert.Equal(t, "ws-sub", inherited.WorkspaceID)
	assert.Equal(t, domain.ScopeInherited, inherited.Scope)
	assert.Equal(t, domain.RoleOwner, inherited.EffectiveRole)
	assert.Equal(t, domain.CapabilitiesForRole(domain.RoleOwner), inherited.Capabilities)
}
