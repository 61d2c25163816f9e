package services

import (
	"context"
	"errors"
	"testing"

	"topcoop-lending/internal/adapters/persistence/models"
	"topcoop-lending/internal/adapters/persistence/repositories"
	"topcoop-lending/internal/core/authz"
	"topcoop-lending/internal/core/domain"
	"topcoop-lending/internal/testutil/usermock"
)

func userCap(scope authz.Scope, callerID, targetID uint) authz.Capability {
	role := domain.RoleUser
	if scope != authz.ScopeOwn {
		role = domain.RoleAdmin
	}
	return authz.Capability{
		Resource:     authz.ResourceUser,
		Action:       authz.ActionEdit,
		Scope:        scope,
		Role:         role,
		CallerID:     callerID,
		TargetUserID: targetID,
	}
}

func TestUserService_List_ScopesFilter(t *testing.T) {
	var gotFilter repositories.UserFilter
	users := &usermock.Repo{
		ListFn: func(ctx context.Context, filter repositories.UserFilter, offset, limit int) ([]*models.User, int64, error) {
			gotFilter = filter
			return []*models.User{}, 0, nil
		},
	}
	svc := NewUserService(users)

	ownCap := authz.Capability{Resource: authz.ResourceUser, Action: authz.ActionList, Scope: authz.ScopeOwn, Role: domain.RoleUser, CallerID: 7, TargetUserID: 7}
	if _, err := svc.List(context.Background(), ownCap, &ListUsersInput{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFilter.ID != 7 {
		t.Errorf("own-scope filter id = %d, want 7", gotFilter.ID)
	}

	adminCap := authz.Capability{Resource: authz.ResourceUser, Action: authz.ActionList, Scope: authz.ScopeAll, Role: domain.RoleAdmin, CallerID: 99}
	if _, err := svc.List(context.Background(), adminCap, &ListUsersInput{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFilter.ID != 0 {
		t.Errorf("all-scope filter id = %d, want unrestricted", gotFilter.ID)
	}
}

func TestUserService_GetByID_ForeignAccountIsUnauthorized(t *testing.T) {
	users := &usermock.Repo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.User, error) {
			t.Error("foreign account must be denied before the read")
			return nil, nil
		},
	}
	svc := NewUserService(users)

	_, err := svc.GetByID(context.Background(), userCap(authz.ScopeOwn, 7, 7), 42)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestUserService_Update(t *testing.T) {
	existing := func(ctx context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Email: "a@example.com", Role: string(domain.RoleUser)}, nil
	}

	t.Run("self-service edit cannot touch role or the loanable gate", func(t *testing.T) {
		users := &usermock.Repo{GetByIDFn: existing}
		svc := NewUserService(users)

		adminRole := string(domain.RoleAdmin)
		_, err := svc.Update(context.Background(), userCap(authz.ScopeOwn, 7, 7), 7, &UpdateUserInput{Role: &adminRole})
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("role edit err = %v, want ErrUnauthorized", err)
		}

		loanable := true
		_, err = svc.Update(context.Background(), userCap(authz.ScopeOwn, 7, 7), 7, &UpdateUserInput{IsLoanable: &loanable})
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("loanable edit err = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("admin edits role and gate", func(t *testing.T) {
		var updated *models.User
		users := &usermock.Repo{
			GetByIDFn: existing,
			UpdateFn: func(ctx context.Context, user *models.User) error {
				updated = user
				return nil
			},
		}
		svc := NewUserService(users)

		adminRole := string(domain.RoleAdmin)
		loanable := false
		_, err := svc.Update(context.Background(), userCap(authz.ScopeAny, 99, 7), 7, &UpdateUserInput{Role: &adminRole, IsLoanable: &loanable})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Role != string(domain.RoleAdmin) {
			t.Errorf("role = %s, want admin", updated.Role)
		}
		if updated.IsLoanable {
			t.Error("loanable gate should be closed")
		}
	})

	t.Run("unknown role is invalid input", func(t *testing.T) {
		users := &usermock.Repo{GetByIDFn: existing}
		svc := NewUserService(users)

		bogus := "superuser"
		_, err := svc.Update(context.Background(), userCap(authz.ScopeAny, 99, 7), 7, &UpdateUserInput{Role: &bogus})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("taken email is rejected", func(t *testing.T) {
		users := &usermock.Repo{
			GetByIDFn: existing,
			ExistsByEmailFn: func(ctx context.Context, email string) (bool, error) {
				return true, nil
			},
		}
		svc := NewUserService(users)

		email := "b@example.com"
		_, err := svc.Update(context.Background(), userCap(authz.ScopeOwn, 7, 7), 7, &UpdateUserInput{Email: &email})
		if !errors.Is(err, domain.ErrEmailTaken) {
			t.Fatalf("err = %v, want ErrEmailTaken", err)
		}
	})
}

func TestUserService_Delete_ForeignAccountIsUnauthorized(t *testing.T) {
	users := &usermock.Repo{
		DeleteFn: func(ctx context.Context, id uint) error {
			t.Error("foreign account must not be deleted")
			return nil
		},
	}
	svc := NewUserService(users)

	err := svc.Delete(context.Background(), userCap(authz.ScopeOwn, 7, 7), 42)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
