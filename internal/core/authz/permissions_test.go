package authz

import (
	"testing"

	"topcoop-lending/internal/core/domain"
)

func TestIsAllowed_Table(t *testing.T) {
	tests := []struct {
		resource Resource
		action   Action
		scope    Scope
		role     domain.Role
		want     bool
	}{
		// Users
		{ResourceUser, ActionRead, ScopeOwn, domain.RoleUser, true},
		{ResourceUser, ActionRead, ScopeAny, domain.RoleUser, false},
		{ResourceUser, ActionRead, ScopeAny, domain.RoleAdmin, true},
		{ResourceUser, ActionList, ScopeAll, domain.RoleAdmin, true},
		{ResourceUser, ActionList, ScopeAll, domain.RoleUser, false},
		{ResourceUser, ActionDelete, ScopeAny, domain.RoleAdmin, true},
		{ResourceUser, ActionDelete, ScopeAny, domain.RoleUser, false},

		// Requests
		{ResourceRequest, ActionCreate, ScopeOwn, domain.RoleUser, true},
		{ResourceRequest, ActionCreate, ScopeOwn, domain.RoleAdmin, false},
		{ResourceRequest, ActionCreate, ScopeAny, domain.RoleAdmin, true},
		{ResourceRequest, ActionList, ScopeAll, domain.RoleAdmin, true},
		{ResourceRequest, ActionList, ScopeAll, domain.RoleUser, false},
		{ResourceRequest, ActionApprove, ScopeAny, domain.RoleAdmin, true},
		{ResourceRequest, ActionApprove, ScopeAny, domain.RoleUser, false},
		{ResourceRequest, ActionDecline, ScopeAny, domain.RoleAdmin, true},
		{ResourceRequest, ActionDecline, ScopeAny, domain.RoleUser, false},

		// Loans: nobody creates directly, not even admins
		{ResourceLoan, ActionCreate, ScopeOwn, domain.RoleAdmin, false},
		{ResourceLoan, ActionCreate, ScopeAny, domain.RoleAdmin, false},
		{ResourceLoan, ActionCreate, ScopeAny, domain.RoleUser, false},
		{ResourceLoan, ActionEdit, ScopeOwn, domain.RoleUser, false},
		{ResourceLoan, ActionEdit, ScopeAny, domain.RoleAdmin, true},
		{ResourceLoan, ActionPay, ScopeAny, domain.RoleAdmin, true},
		{ResourceLoan, ActionPay, ScopeOwn, domain.RoleAdmin, true},
		{ResourceLoan, ActionPay, ScopeAny, domain.RoleUser, false},
		{ResourceLoan, ActionList, ScopeOwn, domain.RoleUser, true},
	}

	for _, tt := range tests {
		got := IsAllowed(tt.resource, tt.action, tt.scope, tt.role)
		if got != tt.want {
			t.Errorf("IsAllowed(%s, %s, %s, %s) = %v, want %v",
				tt.resource, tt.action, tt.scope, tt.role, got, tt.want)
		}
	}
}

// A role allowed at one scope must not leak into a sibling scope: every
// (action, scope, role) grant is independent.
func TestIsAllowed_NoCrossScopeLeakage(t *testing.T) {
	// user may read own user account but not any
	if !IsAllowed(ResourceUser, ActionRead, ScopeOwn, domain.RoleUser) {
		t.Fatal("expected user to read own account")
	}
	if IsAllowed(ResourceUser, ActionRead, ScopeAny, domain.RoleUser) {
		t.Error("own grant leaked into any scope")
	}

	// admin may create any request but not own
	if !IsAllowed(ResourceRequest, ActionCreate, ScopeAny, domain.RoleAdmin) {
		t.Fatal("expected admin to create any request")
	}
	if IsAllowed(ResourceRequest, ActionCreate, ScopeOwn, domain.RoleAdmin) {
		t.Error("any grant leaked into own scope")
	}
}

func TestIsAllowed_UndefinedEntryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for undefined (resource, action, scope)")
		}
	}()
	// approve has no "own" variant
	IsAllowed(ResourceRequest, ActionApprove, ScopeOwn, domain.RoleAdmin)
}

func TestDefined(t *testing.T) {
	if !Defined(ResourceLoan, ActionPay, ScopeOwn) {
		t.Error("pay own should be a defined entry")
	}
	if Defined(ResourceLoan, ActionPay, ScopeAll) {
		t.Error("pay all should be undefined")
	}
	if Defined(ResourceUser, ActionApprove, ScopeAny) {
		t.Error("users have no approve action")
	}
}
