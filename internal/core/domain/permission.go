package domain

import (
	"encoding/json"
	"fmt"
)

// Permission names a capability a caller may hold.
type Permission string

const (
	PermissionAll                Permission = "all"
	PermissionManageAccounting   Permission = "manage_accounting"
	PermissionViewAccounting     Permission = "view_accounting"
	PermissionManageTransactions Permission = "manage_transactions"
)

// PermissionSet is the single internal representation of a caller's grants.
// Tokens may carry permissions either as a JSON list of names or as a map of
// name -> enabled; both collapse into this type at parse time.
type PermissionSet struct {
	grants map[Permission]bool
}

// NewPermissionSet builds a set from explicit permission names.
func NewPermissionSet(perms ...Permission) PermissionSet {
	grants := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		grants[p] = true
	}
	return PermissionSet{grants: grants}
}

// ParsePermissionSet accepts either of the two wire shapes:
//
//	["manage_accounting", "view_accounting"]
//	{"manage_accounting": true, "view_accounting": false}
func ParsePermissionSet(raw []byte) (PermissionSet, error) {
	if len(raw) == 0 {
		return NewPermissionSet(), nil
	}

	var asList []Permission
	if err := json.Unmarshal(raw, &asList); err == nil {
		return NewPermissionSet(asList...), nil
	}

	var asMap map[Permission]bool
	if err := json.Unmarshal(raw, &asMap); err == nil {
		grants := make(map[Permission]bool, len(asMap))
		for p, enabled := range asMap {
			if enabled {
				grants[p] = true
			}
		}
		return PermissionSet{grants: grants}, nil
	}

	return PermissionSet{}, fmt.Errorf("permissions must be a list or a map of booleans")
}

// Has reports whether the set grants the permission, either directly or via
// the "all" superset.
func (s PermissionSet) Has(p Permission) bool {
	if s.grants == nil {
		return false
	}
	return s.grants[p] || s.grants[PermissionAll]
}
