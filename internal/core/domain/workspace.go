package domain

// WorkspaceKind distinguishes top-level workspaces from their children.
type WorkspaceKind string

const (
	WorkspaceMain WorkspaceKind = "MAIN"
	WorkspaceSub  WorkspaceKind = "SUB"
)

// Workspace represents a tenant boundary containing departments, invoices, etc.
// Workspaces form a strict two-level tree: a SUB workspace always has a MAIN
// parent, and a MAIN workspace never has a parent.
type Workspace struct {
	WorkspaceID       string        `json:"workspaceID"`                 // Primary Key (e.g., UUID)
	Name              string        `json:"name"`                        // User-defined name for the workspace
	Description       string        `json:"description"`                 // Optional description
	Kind              WorkspaceKind `json:"kind"`                        // MAIN or SUB
	ParentWorkspaceID *string       `json:"parentWorkspaceID,omitempty"` // Set iff Kind == SUB
	IsActive          bool          `json:"isActive"`                    // Indicates whether the workspace is active or disabled
	AuditFields                     // Embed common audit fields
}

// IsSub reports whether the workspace is a sub-workspace.
func (w *Workspace) IsSub() bool {
	return w.Kind == WorkspaceSub
}

// AccessibleWorkspaces is the full set of workspaces a principal may act
// within: the main workspaces they can reach plus the sub-workspaces grouped
// under each parent. It carries no permission decisions; callers still
// resolve individual actions per workspace.
type AccessibleWorkspaces struct {
	MainWorkspaces        []Workspace            `json:"mainWorkspaces"`
	SubWorkspacesByParent map[string][]Workspace `json:"subWorkspacesByParent"`
}
