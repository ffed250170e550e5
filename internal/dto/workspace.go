package dto

import (
	"time"

	"github.com/accessly/workspace_access_app/internal/core/domain"
)

// --- Workspace DTOs ---

// CreateWorkspaceRequest defines data for creating a new main workspace.
type CreateWorkspaceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateSubWorkspaceRequest defines data for creating a sub-workspace.
type CreateSubWorkspaceRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// WorkspaceResponse defines data returned for a workspace.
type WorkspaceResponse struct {
	WorkspaceID       string    `json:"workspaceID"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Kind              string    `json:"kind"`
	ParentWorkspaceID *string   `json:"parentWorkspaceID,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	CreatedBy         string    `json:"createdBy"` // UserID
	LastUpdatedAt     time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy     string    `json:"lastUpdatedBy"` // UserID
}

// ToWorkspaceResponse converts domain.Workspace to DTO.
func ToWorkspaceResponse(w *domain.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		WorkspaceID:       w.WorkspaceID,
		Name:              w.Name,
		Description:       w.Description,
		Kind:              string(w.Kind),
		ParentWorkspaceID: w.ParentWorkspaceID,
		CreatedAt:         w.CreatedAt,
		CreatedBy:         w.CreatedBy,
		LastUpdatedAt:     w.LastUpdatedAt,
		LastUpdatedBy:     w.LastUpdatedBy,
	}
}

// ListWorkspacesResponse wraps a list of workspaces.
type ListWorkspacesResponse struct {
	Workspaces []WorkspaceResponse `json:"workspaces"`
}

// ToListWorkspacesResponse converts a slice of domain.Workspace to DTO.
func ToListWorkspacesResponse(ws []domain.Workspace) ListWorkspacesResponse {
	list := make([]WorkspaceResponse, len(ws))
	for i, w := range ws {
		list[i] = ToWorkspaceResponse(&w)
	}
	return ListWorkspacesResponse{Workspaces: list}
}

// WorkspaceHierarchyResponse describes a workspace together with its parent
// and children in the two-level tree.
type WorkspaceHierarchyResponse struct {
	Workspace WorkspaceResponse   `json:"workspace"`
	Parent    *WorkspaceResponse  `json:"parent,omitempty"`
	Children  []WorkspaceResponse `json:"children"`
}

// AccessibleWorkspacesResponse is the aggregate of every workspace a
// principal can reach.
type AccessibleWorkspacesResponse struct {
	MainWorkspaces        []WorkspaceResponse            `json:"mainWorkspaces"`
	SubWorkspacesByParent map[string][]WorkspaceResponse `json:"subWorkspacesByParent"`
}

// ToAccessibleWorkspacesResponse converts the domain aggregate to DTO.
func ToAccessibleWorkspacesResponse(a *domain.AccessibleWorkspaces) AccessibleWorkspacesResponse {
	resp := AccessibleWorkspacesResponse{
		MainWorkspaces:        make([]WorkspaceResponse, len(a.MainWorkspaces)),
		SubWorkspacesByParent: make(map[string][]WorkspaceResponse, len(a.SubWorkspacesByParent)),
	}
	for i, w := range a.MainWorkspaces {
		resp.MainWorkspaces[i] = ToWorkspaceResponse(&w)
	}
	for parentID, subs := range a.SubWorkspacesByParent {
		converted := make([]WorkspaceResponse, len(subs))
		for i, w := range subs {
			converted[i] = ToWorkspaceResponse(&w)
		}
		resp.SubWorkspacesByParent[parentID] = converted
	}
	return resp
}
