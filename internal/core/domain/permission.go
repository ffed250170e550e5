package domain

import (
	"fmt"
	"strings"
	"time"
)

// PermissionCategory is the functional area a permission belongs to.
type PermissionCategory string

const (
	CategoryCostCenters PermissionCategory = "costCenters"
	CategoryInvoices    PermissionCategory = "invoices"
	CategoryPayroll     PermissionCategory = "payroll"
	CategoryHRRecords   PermissionCategory = "hrRecords"
	CategoryReports     PermissionCategory = "reports"
	CategoryMembers     PermissionCategory = "members"
)

// PermissionAction is the operation a permission controls within a category.
type PermissionAction string

const (
	ActionView   PermissionAction = "view"
	ActionCreate PermissionAction = "create"
	ActionEdit   PermissionAction = "edit"
	ActionDelete PermissionAction = "delete"
)

// PermissionCategories lists every known category.
var PermissionCategories = []PermissionCategory{
	CategoryCostCenters,
	CategoryInvoices,
	CategoryPayroll,
	CategoryHRRecords,
	CategoryReports,
	CategoryMembers,
}

// PermissionActions lists every known action.
var PermissionActions = []PermissionAction{
	ActionView,
	ActionCreate,
	ActionEdit,
	ActionDelete,
}

// PermissionID identifies one permission as "<category>.<action>"
// (e.g. "costCenters.delete"). The set of valid ids is closed: every id must
// combine a known category with a known action. No component may infer
// category or action by substring matching on the raw string.
type PermissionID struct {
	category PermissionCategory
	action   PermissionAction
}

// NewPermissionID builds a PermissionID from its parts. It does not validate;
// use ParsePermissionID for untrusted input.
func NewPermissionID(category PermissionCategory, action PermissionAction) PermissionID {
	return PermissionID{category: category, action: action}
}

// ParsePermissionID validates and parses the "<category>.<action>" string
// form against the closed enumeration.
func ParsePermissionID(s string) (PermissionID, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return PermissionID{}, fmt.Errorf("permission id %q is not of the form category.action", s)
	}

	category := PermissionCategory(parts[0])
	action := PermissionAction(parts[1])

	validCategory := false
	for _, c := range PermissionCategories {
		if c == category {
			validCategory = true
			break
		}
	}
	if !validCategory {
		return PermissionID{}, fmt.Errorf("unknown permission category %q", parts[0])
	}

	validAction := false
	for _, a := range PermissionActions {
		if a == action {
			validAction = true
			break
		}
	}
	if !validAction {
		return PermissionID{}, fmt.Errorf("unknown permission action %q", parts[1])
	}

	return PermissionID{category: category, action: action}, nil
}

// Category returns the functional area of the permission.
func (p PermissionID) Category() PermissionCategory { return p.category }

// Action returns the operation of the permission.
func (p PermissionID) Action() PermissionAction { return p.action }

// String returns the canonical "<category>.<action>" form.
func (p PermissionID) String() string {
	return string(p.category) + "." + string(p.action)
}

// IsZero reports whether the id is the zero value (never valid).
func (p PermissionID) IsZero() bool {
	return p.category == "" && p.action == ""
}

// MarshalText encodes the id in its canonical string form.
func (p PermissionID) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes and validates the canonical string form.
func (p *PermissionID) UnmarshalText(text []byte) error {
	parsed, err := ParsePermissionID(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// AllPermissionIDs enumerates the full closed permission set.
func AllPermissionIDs() []PermissionID {
	ids := make([]PermissionID, 0, len(PermissionCategories)*len(PermissionActions))
	for _, c := range PermissionCategories {
		for _, a := range PermissionActions {
			ids = append(ids, PermissionID{category: c, action: a})
		}
	}
	return ids
}

// PermissionGrant is an explicit, possibly time-limited, allow/deny record
// for one user, one workspace, one permission id. A grant whose ExpiresAt is
// in the past never counts as granted, but the record itself is kept (lazy
// expiry) so audit trails and re-grants retain history.
type PermissionGrant struct {
	UserID       string       `json:"userID"`
	WorkspaceID  string       `json:"workspaceID"`
	PermissionID PermissionID `json:"permissionID"`
	Granted      bool         `json:"granted"`
	GrantedBy    string       `json:"grantedBy"` // UserID of the grantor
	ExpiresAt    *time.Time   `json:"expiresAt,omitempty"`
	AuditFields
}

// Expired reports whether the grant has an expiry in the past relative to now.
func (g *PermissionGrant) Expired(now time.Time) bool {
	return g.ExpiresAt != nil && g.ExpiresAt.Before(now)
}

// GrantedAt reports whether the grant allows the action at the given instant.
func (g *PermissionGrant) GrantedAt(now time.Time) bool {
	return g.Granted && !g.Expired(now)
}

// PermissionMap is the full explicit-grant state for one (user, workspace)
// pair, keyed by permission id string form. It is raw state: expired entries
// are included and callers computing granted counts must filter them.
type PermissionMap map[string]PermissionGrant

// PermissionUpdate describes one requested change to an explicit grant.
type PermissionUpdate struct {
	Granted   bool       `json:"granted"`
	GrantedBy string     `json:"grantedBy,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
