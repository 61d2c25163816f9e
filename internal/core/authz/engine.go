package authz

import "topcoop-lending/internal/core/domain"

// Capability is the per-operation context produced by an Allow decision.
// It records exactly the (action, scope) pair that was granted and the user
// whose resources are in play. It is created fresh for one operation,
// passed by value to the handler, and discarded with the response; it is
// never shared between operations.
type Capability struct {
	Resource     Resource
	Action       Action
	Scope        Scope
	Role         domain.Role
	CallerID     uint
	TargetUserID uint
}

// ReadAll reports whether the capability grants unrestricted access to
// every resource of its type.
func (c Capability) ReadAll() bool {
	return c.Scope == ScopeAll
}

// Owns reports whether the capability covers resources owned by userID.
// Only meaningful for own/any scopes; an all-scope capability covers
// everything.
func (c Capability) Owns(userID uint) bool {
	return c.Scope == ScopeAll || c.TargetUserID == userID
}

// Authorize combines a resolution with a permission-table lookup and
// produces the capability for the operation, or ErrUnauthorized.
//
// Each scope is authorized independently: a denied "own" check is never
// upgraded to "any" even when the role would pass it, so a self-access
// request cannot silently become a privileged one.
func Authorize(resource Resource, action Action, role domain.Role, callerID uint, res Resolution) (Capability, error) {
	if !IsAllowed(resource, action, res.Scope, role) {
		return Capability{}, domain.ErrUnauthorized
	}

	return Capability{
		Resource:     resource,
		Action:       action,
		Scope:        res.Scope,
		Role:         role,
		CallerID:     callerID,
		TargetUserID: res.TargetUserID,
	}, nil
}

// AuthorizeAction handles the privileged transitions (approve, decline,
// pay): a role-only check against the action's "any" entry, with no
// ownership resolution. The target the capability carries is the caller;
// the entity acted on is named by id in the operation itself.
func AuthorizeAction(resource Resource, action Action, role domain.Role, callerID uint) (Capability, error) {
	return Authorize(resource, action, role, callerID, Resolution{
		Scope:        ScopeAny,
		TargetUserID: callerID,
	})
}
