package authz

import "topcoop-lending/internal/core/domain"

// Resolution is the outcome of ownership resolution: whose resources an
// operation targets, and at what scope. Resolution never denies anything;
// an impossible combination is still resolved and left for Authorize to
// reject.
type Resolution struct {
	Scope        Scope
	TargetUserID uint
}

// Resolve decides whether an operation targets the caller's own resources
// or another user's. An explicitly supplied target always wins over the
// caller's token identity, even when the caller will turn out to lack "any"
// permission.
func Resolve(callerID uint, target *uint) Resolution {
	if target == nil || *target == callerID {
		return Resolution{Scope: ScopeOwn, TargetUserID: callerID}
	}
	return Resolution{Scope: ScopeAny, TargetUserID: *target}
}

// ResolveList resolves scope for collection reads. With no explicit target
// a caller holding the "all" permission gets the unrestricted scope;
// everyone else falls back to their own records. TargetUserID is zero for
// the all scope since no single user is in play.
func ResolveList(resource Resource, role domain.Role, callerID uint, target *uint) Resolution {
	if target == nil && IsAllowed(resource, ActionList, ScopeAll, role) {
		return Resolution{Scope: ScopeAll}
	}
	return Resolve(callerID, target)
}
