package domain

// MigrationStatus values recorded per user in MigrationDetail.Status.
const (
	MigrationStatusSuccess = "Success"
)

// MigrationDetail records the per-user outcome of a migration run for audit
// review. Status is "Success", "Error: <reason>", or a "Success: ..." variant
// noting how many explicit grants differed from the role default and were
// left untouched.
type MigrationDetail struct {
	UserID      string `json:"userID"`
	WorkspaceID string `json:"workspaceID"`
	Role        Role   `json:"role"`
	Status      string `json:"status"`
}

// MigrationResult aggregates the outcome of materializing role defaults into
// explicit grants across the memberships of one or more workspaces.
type MigrationResult struct {
	SuccessCount int               `json:"successCount"`
	Errors       []string          `json:"errors"`
	Details      []MigrationDetail `json:"details"`
}

// Merge folds another result into this one, summing success counts and
// concatenating errors and details.
func (r *MigrationResult) Merge(other MigrationResult) {
	r.SuccessCount += other.SuccessCount
	r.Errors = append(r.Errors, other.Errors...)
	r.Details = append(r.Details, other.Details...)
}
