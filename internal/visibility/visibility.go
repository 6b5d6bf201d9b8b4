// Package visibility computes the subset of activities a caller may see.
// This is the one hard authorization boundary on the client: a field promoter
// is never shown another promoter's activities, no matter what the caller
// passes for the admin scope override.
package visibility

import "fieldops/internal/types"

// Visible returns the activities the given (role, identity) pair may see,
// preserving input order. It is a pure function: the input slice is never
// mutated and the same inputs always produce the same output.
//
// Admins see everything unless adminScope names a specific promoter id
// (types.AdminScopeAll or empty means unrestricted). Field promoters see only
// their own activities; the adminScope argument is ignored for them even if a
// caller bug supplies one.
func Visible(activities []types.Activity, role types.Role, identity, adminScope string) []types.Activity {
	if role == types.RoleAdmin {
		if adminScope == "" || adminScope == types.AdminScopeAll {
			out := make([]types.Activity, len(activities))
			copy(out, activities)
			return out
		}
		return ownedBy(activities, adminScope)
	}
	return ownedBy(activities, identity)
}

func ownedBy(activities []types.Activity, owner string) []types.Activity {
	out := make([]types.Activity, 0, len(activities))
	for _, a := range activities {
		if a.PromoterID == owner {
			out = append(out, a)
		}
	}
	return out
}
