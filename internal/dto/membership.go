package dto

import (
	"time"

	"github.com/accessly/workspace_access_app/internal/core/domain"
)

// --- Membership DTOs ---

// AddMemberRequest defines data for adding a user to a workspace.
type AddMemberRequest struct {
	UserID string `json:"userID" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=OWNER ADMIN MEMBER"`
}

// ChangeMemberRoleRequest defines data for changing a member's role.
// The target user is identified by the route.
type ChangeMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=OWNER ADMIN MEMBER"`
}

// CapabilitiesResponse mirrors the coarse UI capabilities derived from a role.
type CapabilitiesResponse struct {
	CanAccessSubWorkspaces   bool `json:"canAccessSubWorkspaces"`
	CanCreateSubWorkspaces   bool `json:"canCreateSubWorkspaces"`
	CanManageInherited       bool `json:"canManageInherited"`
	CanViewHierarchy         bool `json:"canViewHierarchy"`
	CanSwitchWorkspaces      bool `json:"canSwitchWorkspaces"`
	CanInviteToSubWorkspaces bool `json:"canInviteToSubWorkspaces"`
}

// MembershipResponse defines data returned for a workspace membership.
type MembershipResponse struct {
	UserID        string               `json:"userID"`
	UserName      string               `json:"userName,omitempty"`
	WorkspaceID   string               `json:"workspaceID"`
	Role          string               `json:"role"`
	Scope         string               `json:"scope"`
	EffectiveRole string               `json:"effectiveRole"`
	Capabilities  CapabilitiesResponse `json:"capabilities"`
	JoinedAt      time.Time            `json:"joinedAt"`
}

// ToMembershipResponse converts domain.Membership to DTO.
func ToMembershipResponse(m *domain.Membership) MembershipResponse {
	return MembershipResponse{
		UserID:        m.UserID,
		UserName:      m.UserName,
		WorkspaceID:   m.WorkspaceID,
		Role:          string(m.Role),
		Scope:         string(m.Scope),
		EffectiveRole: string(m.EffectiveRole),
		Capabilities: CapabilitiesResponse{
			CanAccessSubWorkspaces:   m.Capabilities.CanAccessSubWorkspaces,
			CanCreateSubWorkspaces:   m.Capabilities.CanCreateSubWorkspaces,
			CanManageInherited:       m.Capabilities.CanManageInherited,
			CanViewHierarchy:         m.Capabilities.CanViewHierarchy,
			CanSwitchWorkspaces:      m.Capabilities.CanSwitchWorkspaces,
			CanInviteToSubWorkspaces: m.Capabilities.CanInviteToSubWorkspaces,
		},
		JoinedAt: m.JoinedAt,
	}
}

// ListMembershipsResponse wraps a list of memberships.
type ListMembershipsResponse struct {
	Members []MembershipResponse `json:"members"`
}

// ToListMembershipsResponse converts a slice of domain.Membership to DTO.
func ToListMembershipsResponse(ms []domain.Membership) ListMembershipsResponse {
	list := make([]MembershipResponse, len(ms))
	for i, m := range ms {
		list[i] = ToMembershipResponse(&m)
	}
	return ListMembershipsResponse{Members: list}
}
