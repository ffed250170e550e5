package dto

import (
	"sort"
	"time"

	"github.com/accessly/workspace_access_app/internal/core/domain"
)

// --- Permission DTOs ---

// PermissionCheckRequest defines data for a single permission check.
type PermissionCheckRequest struct {
	PermissionID string `json:"permissionID" binding:"required"`
	Role         string `json:"role,omitempty" binding:"omitempty,oneof=OWNER ADMIN MEMBER"`
}

// PermissionCheckResponse is the outcome of permission resolution.
type PermissionCheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// ToPermissionCheckResponse converts domain.Decision to DTO.
func ToPermissionCheckResponse(d domain.Decision) PermissionCheckResponse {
	return PermissionCheckResponse{Allowed: d.Allowed, Reason: string(d.Reason)}
}

// GrantResponse defines data returned for one explicit permission grant.
type GrantResponse struct {
	PermissionID string     `json:"permissionID"`
	Granted      bool       `json:"granted"`
	GrantedBy    string     `json:"grantedBy"` // UserID of the grantor
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	Expired      bool       `json:"expired"`
}

// UserPermissionsResponse is the full explicit-grant state for one user in
// one workspace, ordered by permission id for stable output.
type UserPermissionsResponse struct {
	UserID      string          `json:"userID"`
	WorkspaceID string          `json:"workspaceID"`
	Grants      []GrantResponse `json:"grants"`
}

// ToUserPermissionsResponse converts a domain.PermissionMap to DTO.
func ToUserPermissionsResponse(userID, workspaceID string, grants domain.PermissionMap, now time.Time) UserPermissionsResponse {
	resp := UserPermissionsResponse{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Grants:      make([]GrantResponse, 0, len(grants)),
	}
	for id, g := range grants {
		resp.Grants = append(resp.Grants, GrantResponse{
			PermissionID: id,
			Granted:      g.Granted,
			GrantedBy:    g.GrantedBy,
			ExpiresAt:    g.ExpiresAt,
			Expired:      g.Expired(now),
		})
	}
	sort.Slice(resp.Grants, func(i, j int) bool {
		return resp.Grants[i].PermissionID < resp.Grants[j].PermissionID
	})
	return resp
}

// PermissionUpdateEntry describes one requested grant change.
type PermissionUpdateEntry struct {
	Granted   bool       `json:"granted"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// UpdatePermissionsRequest defines data for replacing or amending a user's
// explicit grants in a workspace, keyed by permission id.
type UpdatePermissionsRequest struct {
	Permissions map[string]PermissionUpdateEntry `json:"permissions" binding:"required"`
}
