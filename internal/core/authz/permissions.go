package authz

import (
	"fmt"

	"topcoop-lending/internal/core/domain"
)

// Resource identifies a protected resource type.
type Resource string

const (
	ResourceUser    Resource = "user"
	ResourceRequest Resource = "request"
	ResourceLoan    Resource = "loan"
)

// Action identifies an operation on a resource.
type Action string

const (
	ActionCreate  Action = "create"
	ActionList    Action = "list"
	ActionRead    Action = "read"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionDecline Action = "decline"
	ActionPay     Action = "pay"
)

// Scope is the breadth of a granted capability: the caller's own resource,
// one specific other user's resource, or every resource of the type.
type Scope string

const (
	ScopeOwn Scope = "own"
	ScopeAny Scope = "any"
	ScopeAll Scope = "all"
)

// RoleSet is a closed set of roles. An empty set means nobody is allowed,
// admins included; there is no wildcard.
type RoleSet map[domain.Role]struct{}

func (s RoleSet) Contains(role domain.Role) bool {
	_, ok := s[role]
	return ok
}

func roles(rs ...domain.Role) RoleSet {
	set := make(RoleSet, len(rs))
	for _, r := range rs {
		set[r] = struct{}{}
	}
	return set
}

func nobody() RoleSet {
	return RoleSet{}
}

// permissionTable maps (resource, action, scope) to the roles allowed to act.
// Built once, read-only afterwards. Scopes absent for an action are
// undefined: looking them up is a programming error, not a denial.
var permissionTable = map[Resource]map[Action]map[Scope]RoleSet{
	ResourceUser: {
		ActionList: {
			ScopeOwn: roles(domain.RoleAdmin, domain.RoleUser),
			ScopeAny: roles(domain.RoleAdmin),
			ScopeAll: roles(domain.RoleAdmin),
		},
		ActionRead: {
			ScopeOwn: roles(domain.RoleAdmin, domain.RoleUser),
			ScopeAny: roles(domain.RoleAdmin),
		},
		ActionEdit: {
			ScopeOwn: roles(domain.RoleAdmin, domain.RoleUser),
			ScopeAny: roles(domain.RoleAdmin),
		},
		ActionDelete: {
			ScopeOwn: roles(domain.RoleAdmin, domain.RoleUser),
			ScopeAny: roles(domain.RoleAdmin),
		},
	},
	ResourceRequest: {
		ActionCreate: {
			ScopeOwn: roles(domain.RoleUser),
			ScopeAny: roles(domain.RoleAdmin),
		},
		ActionList: {
			ScopeOwn: roles(domain.RoleAdmin, domain.RoleUser),
			ScopeAny: roles(domain.RoleAdmin),
			ScopeAll: roles(domain.RoleAdmin),
		},
		ActionRead: {
			ScopeOwn: roles(domain.RoleAdmin, domain.RoleUser),
			ScopeAny: roles(domain.RoleAdmin),
		},
		ActionEdit: {
			ScopeOwn: roles(domain.RoleUser),
			ScopeAny: roles(domain.RoleAdmin),
		},
		ActionDelete: {
			ScopeOwn: roles(domain.RoleUser),
			ScopeAny: roles(domain.RoleAdmin),
		},
		ActionApprove: {
			ScopeAny: roles(domain.RoleAdmin),
		},
		ActionDecline: {
			ScopeAny: roles(domain.RoleAdmin),
		},
	},
	ResourceLoan: {
		// Loans are spawned by request approval only; nobody creates them
		// directly, not even admins.
		ActionCreate: {
			ScopeOwn: nobody(),
			ScopeAny: nobody(),
		},
		ActionList: {
			ScopeOwn: roles(domain.RoleAdmin, domain.RoleUser),
			ScopeAny: roles(domain.RoleAdmin),
			ScopeAll: roles(domain.RoleAdmin),
		},
		ActionRead: {
			ScopeOwn: roles(domain.RoleAdmin, domain.RoleUser),
			ScopeAny: roles(domain.RoleAdmin),
		},
		ActionEdit: {
			ScopeOwn: nobody(),
			ScopeAny: roles(domain.RoleAdmin),
		},
		ActionDelete: {
			ScopeOwn: nobody(),
			ScopeAny: roles(domain.RoleAdmin),
		},
		// Self-service repayment is not live yet; own mirrors any until then.
		ActionPay: {
			ScopeOwn: roles(domain.RoleAdmin),
			ScopeAny: roles(domain.RoleAdmin),
		},
	},
}

// IsAllowed reports whether role may perform action on resource at scope.
// It is pure and side-effect free. An undefined (resource, action, scope)
// triple panics: the route table asked a question the permission table was
// never built to answer.
func IsAllowed(resource Resource, action Action, scope Scope, role domain.Role) bool {
	set, ok := permissionTable[resource][action][scope]
	if !ok {
		panic(fmt.Sprintf("authz: undefined permission entry (%s, %s, %s)", resource, action, scope))
	}
	return set.Contains(role)
}

// Defined reports whether a (resource, action, scope) entry exists in the
// table. Used by tests to sweep the full table without tripping the panic.
func Defined(resource Resource, action Action, scope Scope) bool {
	_, ok := permissionTable[resource][action][scope]
	return ok
}
