package domain

import "time"

// Role defines the coarse-grained authority level a user holds within a workspace.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// MembershipScope records how a membership came to exist.
type MembershipScope string

const (
	// ScopeDirect marks a membership created directly in the workspace.
	ScopeDirect MembershipScope = "DIRECT"
	// ScopeInherited marks a membership implied by ownership of the parent
	// workspace. Inherited memberships are synthesized at read time, never
	// persisted.
	ScopeInherited MembershipScope = "INHERITED"
)

// Capabilities are the workspace-level abilities derived from a membership's
// role. They are recomputed from the role on every role change, never stored
// as independent authority.
type Capabilities struct {
	CanAccessSubWorkspaces   bool `json:"canAccessSubWorkspaces"`
	CanCreateSubWorkspaces   bool `json:"canCreateSubWorkspaces"`
	CanManageInherited       bool `json:"canManageInherited"`
	CanViewHierarchy         bool `json:"canViewHierarchy"`
	CanSwitchWorkspaces      bool `json:"canSwitchWorkspaces"`
	CanInviteToSubWorkspaces bool `json:"canInviteToSubWorkspaces"`
}

// CapabilitiesForRole derives the capability set for a role.
func CapabilitiesForRole(role Role) Capabilities {
	isOwner := role == RoleOwner
	isAdminOrAbove := role == RoleOwner || role == RoleAdmin
	return Capabilities{
		CanAccessSubWorkspaces:   isAdminOrAbove,
		CanCreateSubWorkspaces:   isOwner,
		CanManageInherited:       isAdminOrAbove,
		CanViewHierarchy:         true,
		CanSwitchWorkspaces:      true,
		CanInviteToSubWorkspaces: isAdminOrAbove,
	}
}

// Membership represents the relationship binding a User to a Workspace.
// At most one membership exists per (user, workspace) pair.
type Membership struct {
	UserID        string          `json:"userID"`      // FK -> users.user_id
	UserName      string          `json:"userName"`    // Name of the user, populated on listing queries
	WorkspaceID   string          `json:"workspaceID"` // FK -> workspaces.workspace_id
	Role          Role            `json:"role"`        // Role of the user in this specific workspace
	Scope         MembershipScope `json:"scope"`       // DIRECT or INHERITED
	EffectiveRole Role            `json:"effectiveRole"`
	JoinedAt      time.Time       `json:"joinedAt"`
	Capabilities  Capabilities    `json:"capabilities"`
}

// NewDirectMembership builds a direct membership with capabilities derived
// from the role.
func NewDirectMembership(userID, workspaceID string, role Role, joinedAt time.Time) Membership {
	return Membership{
		UserID:        userID,
		WorkspaceID:   workspaceID,
		Role:          role,
		Scope:         ScopeDirect,
		EffectiveRole: role,
		JoinedAt:      joinedAt,
		Capabilities:  CapabilitiesForRole(role),
	}
}

// InheritMembership synthesizes the membership a parent-workspace member holds
// in a sub-workspace. The effective role follows the parent membership's role.
func InheritMembership(parent Membership, subWorkspaceID string) Membership {
	return Membership{
		UserID:        parent.UserID,
		UserName:      parent.UserName,
		WorkspaceID:   subWorkspaceID,
		Role:          parent.Role,
		Scope:         ScopeInherited,
		EffectiveRole: parent.EffectiveRole,
		JoinedAt:      parent.JoinedAt,
		Capabilities:  CapabilitiesForRole(parent.EffectiveRole),
	}
}
