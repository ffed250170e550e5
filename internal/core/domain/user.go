package domain

import "time"

// User represents a user of the application in the domain.
type User struct {
	UserID string `json:"userID"` // Primary Key (e.g., UUID)
	Name   string `json:"name"`
	// IsSuperuser is the single global elevation flag. It is orthogonal to
	// any per-workspace role and is consulted only at the top of permission
	// resolution, where it takes precedence over per-workspace grants.
	IsSuperuser bool `json:"isSuperuser"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"` // Used for soft delete
}
