package domain

// Role defaults are the fallback allow/deny decisions applied when no
// explicit grant exists for a permission:
//
//   - OWNER:  granted for every permission id, including destructive actions
//   - ADMIN:  granted for every permission id except delete actions
//   - MEMBER: granted only for view actions
//
// This table is the single source of truth for defaults. No other component
// re-implements the rule; migration and fallback resolution both call here.

// IsDefaultGranted returns the default decision for a role and permission id.
// Unknown roles resolve to deny.
func IsDefaultGranted(role Role, permID PermissionID) bool {
	switch role {
	case RoleOwner:
		return true
	case RoleAdmin:
		return permID.Action() != ActionDelete
	case RoleMember:
		return permID.Action() == ActionView
	default:
		return false
	}
}

// DefaultPermissions enumerates every permission id granted to the role by
// default.
func DefaultPermissions(role Role) []PermissionID {
	var granted []PermissionID
	for _, id := range AllPermissionIDs() {
		if IsDefaultGranted(role, id) {
			granted = append(granted, id)
		}
	}
	return granted
}

// DefaultPermissionsForCategory enumerates the default-granted permission ids
// of one category for the role.
func DefaultPermissionsForCategory(role Role, category PermissionCategory) []PermissionID {
	var granted []PermissionID
	for _, action := range PermissionActions {
		id := NewPermissionID(category, action)
		if IsDefaultGranted(role, id) {
			granted = append(granted, id)
		}
	}
	return granted
}
