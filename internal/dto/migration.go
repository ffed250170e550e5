package dto

import "github.com/accessly/workspace_access_app/internal/core/domain"

// --- Migration DTOs ---

// MigrationDetailResponse records the per-user outcome of a migration run.
type MigrationDetailResponse struct {
	UserID      string `json:"userID"`
	WorkspaceID string `json:"workspaceID"`
	Role        string `json:"role"`
	Status      string `json:"status"`
}

// MigrationResultResponse aggregates the outcome of materializing role
// defaults into explicit grants.
type MigrationResultResponse struct {
	SuccessCount int                       `json:"successCount"`
	Errors       []string                  `json:"errors"`
	Details      []MigrationDetailResponse `json:"details"`
}

// ToMigrationResultResponse converts domain.MigrationResult to DTO.
func ToMigrationResultResponse(r *domain.MigrationResult) MigrationResultResponse {
	resp := MigrationResultResponse{
		SuccessCount: r.SuccessCount,
		Errors:       r.Errors,
		Details:      make([]MigrationDetailResponse, len(r.Details)),
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	for i, d := range r.Details {
		resp.Details[i] = MigrationDetailResponse{
			UserID:      d.UserID,
			WorkspaceID: d.WorkspaceID,
			Role:        string(d.Role),
			Status:      d.Status,
		}
	}
	return resp
}
