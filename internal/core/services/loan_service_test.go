package services

import (
	"context"
	"errors"
	"testing"

	"topcoop-lending/internal/adapters/persistence/models"
	"topcoop-lending/internal/adapters/persistence/repositories"
	"topcoop-lending/internal/core/authz"
	"topcoop-lending/internal/core/domain"
	"topcoop-lending/internal/testutil/loanmock"
	"topcoop-lending/internal/testutil/requestmock"
	"topcoop-lending/internal/testutil/uowmock"
	"topcoop-lending/internal/testutil/usermock"
)

func newLoanService(users *usermock.Repo, requests *requestmock.Repo, loans *loanmock.Repo) *LoanService {
	uow := uowmock.Pass(repositories.Repos{Users: users, Requests: requests, Loans: loans})
	return NewLoanService(users, requests, loans, uow)
}

func loanOwnCap(userID uint) authz.Capability {
	return authz.Capability{
		Resource:     authz.ResourceLoan,
		Action:       authz.ActionRead,
		Scope:        authz.ScopeOwn,
		Role:         domain.RoleUser,
		CallerID:     userID,
		TargetUserID: userID,
	}
}

func TestLoanService_List_TwoStepOwnership(t *testing.T) {
	t.Run("user-scoped listing matches loans on the user's request ids", func(t *testing.T) {
		requests := &requestmock.Repo{
			ListIDsByUserFn: func(ctx context.Context, userID uint) ([]uint, error) {
				if userID != 7 {
					t.Errorf("resolved ids for user %d, want 7", userID)
				}
				return []uint{3, 5}, nil
			},
		}
		var gotFilter repositories.LoanFilter
		loans := &loanmock.Repo{
			ListFn: func(ctx context.Context, filter repositories.LoanFilter, offset, limit int) ([]*models.Loan, int64, error) {
				gotFilter = filter
				return []*models.Loan{}, 0, nil
			},
		}
		svc := newLoanService(&usermock.Repo{}, requests, loans)

		if _, err := svc.List(context.Background(), loanOwnCap(7), &ListLoansInput{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(gotFilter.RequestIDs) != 2 || gotFilter.RequestIDs[0] != 3 || gotFilter.RequestIDs[1] != 5 {
			t.Errorf("filter requestIDs = %v, want [3 5]", gotFilter.RequestIDs)
		}
	})

	t.Run("user with no requests gets an empty restriction, not an unrestricted one", func(t *testing.T) {
		requests := &requestmock.Repo{
			ListIDsByUserFn: func(ctx context.Context, userID uint) ([]uint, error) {
				return nil, nil
			},
		}
		var gotFilter repositories.LoanFilter
		loans := &loanmock.Repo{
			ListFn: func(ctx context.Context, filter repositories.LoanFilter, offset, limit int) ([]*models.Loan, int64, error) {
				gotFilter = filter
				return []*models.Loan{}, 0, nil
			},
		}
		svc := newLoanService(&usermock.Repo{}, requests, loans)

		if _, err := svc.List(context.Background(), loanOwnCap(7), &ListLoansInput{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotFilter.RequestIDs == nil {
			t.Error("filter requestIDs is nil; an empty slice must restrict the query to nothing")
		}
		if len(gotFilter.RequestIDs) != 0 {
			t.Errorf("filter requestIDs = %v, want empty", gotFilter.RequestIDs)
		}
	})

	t.Run("all-scoped listing skips the indirection", func(t *testing.T) {
		requests := &requestmock.Repo{
			ListIDsByUserFn: func(ctx context.Context, userID uint) ([]uint, error) {
				t.Error("all scope must not resolve request ids")
				return nil, nil
			},
		}
		var gotFilter repositories.LoanFilter
		loans := &loanmock.Repo{
			ListFn: func(ctx context.Context, filter repositories.LoanFilter, offset, limit int) ([]*models.Loan, int64, error) {
				gotFilter = filter
				return []*models.Loan{}, 0, nil
			},
		}
		svc := newLoanService(&usermock.Repo{}, requests, loans)

		cap := authz.Capability{Resource: authz.ResourceLoan, Action: authz.ActionList, Scope: authz.ScopeAll, Role: domain.RoleAdmin, CallerID: 99}
		if _, err := svc.List(context.Background(), cap, &ListLoansInput{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotFilter.RequestIDs != nil {
			t.Errorf("filter requestIDs = %v, want unrestricted", gotFilter.RequestIDs)
		}
	})
}

func TestLoanService_GetByID(t *testing.T) {
	t.Run("user reads own loan through the parent request", func(t *testing.T) {
		loans := &loanmock.Repo{
			GetByIDFn: func(ctx context.Context, id uint) (*models.Loan, error) {
				return &models.Loan{ID: id, RequestID: 3}, nil
			},
		}
		requests := &requestmock.Repo{
			GetByIDFn: func(ctx context.Context, id uint) (*models.LoanRequest, error) {
				return &models.LoanRequest{ID: id, UserID: 7}, nil
			},
		}
		svc := newLoanService(&usermock.Repo{}, requests, loans)

		loan, err := svc.GetByID(context.Background(), loanOwnCap(7), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loan.ID != 1 {
			t.Errorf("loan id = %d, want 1", loan.ID)
		}
	})

	t.Run("foreign loan is unauthorized", func(t *testing.T) {
		loans := &loanmock.Repo{
			GetByIDFn: func(ctx context.Context, id uint) (*models.Loan, error) {
				return &models.Loan{ID: id, RequestID: 3}, nil
			},
		}
		requests := &requestmock.Repo{
			GetByIDFn: func(ctx context.Context, id uint) (*models.LoanRequest, error) {
				return &models.LoanRequest{ID: id, UserID: 42}, nil
			},
		}
		svc := newLoanService(&usermock.Repo{}, requests, loans)

		_, err := svc.GetByID(context.Background(), loanOwnCap(7), 1)
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("err = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("loan with missing parent request is a data integrity fault", func(t *testing.T) {
		loans := &loanmock.Repo{
			GetByIDFn: func(ctx context.Context, id uint) (*models.Loan, error) {
				return &models.Loan{ID: id, RequestID: 3}, nil
			},
		}
		svc := newLoanService(&usermock.Repo{}, &requestmock.Repo{}, loans)

		_, err := svc.GetByID(context.Background(), loanOwnCap(7), 1)
		if !errors.Is(err, domain.ErrOrphanedLoan) {
			t.Fatalf("err = %v, want ErrOrphanedLoan", err)
		}
		if domain.KindOf(err) != domain.KindDataIntegrity {
			t.Errorf("kind = %s, want data_integrity", domain.KindOf(err))
		}
	})
}

func TestLoanService_Pay(t *testing.T) {
	t.Run("unpaid loan settles for the full repayable amount and reopens the gate", func(t *testing.T) {
		loans := &loanmock.Repo{
			GetByIDFn: func(ctx context.Context, id uint) (*models.Loan, error) {
				return &models.Loan{ID: id, RequestID: 3, HasPaid: false}, nil
			},
		}
		requests := &requestmock.Repo{
			GetByIDFn: func(ctx context.Context, id uint) (*models.LoanRequest, error) {
				return &models.LoanRequest{ID: id, UserID: 7, AmountRepayable: 1100}, nil
			},
		}
		var gateOpenedFor uint
		users := &usermock.Repo{
			SetLoanableFn: func(ctx context.Context, userID uint, loanable bool) error {
				if !loanable {
					t.Error("pay must reopen the gate")
				}
				gateOpenedFor = userID
				return nil
			},
		}
		svc := newLoanService(users, requests, loans)

		loan, err := svc.Pay(context.Background(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !loan.HasPaid {
			t.Error("loan not marked paid")
		}
		if loan.AmountPaid != 1100 {
			t.Errorf("amountPaid = %v, want full repayable 1100", loan.AmountPaid)
		}
		if gateOpenedFor != 7 {
			t.Errorf("gate reopened for %d, want owner 7", gateOpenedFor)
		}
	})

	t.Run("paying a settled loan is an invalid transition with no side effects", func(t *testing.T) {
		loans := &loanmock.Repo{
			GetByIDFn: func(ctx context.Context, id uint) (*models.Loan, error) {
				return &models.Loan{ID: id, RequestID: 3, HasPaid: true, AmountPaid: 1100}, nil
			},
			UpdateFn: func(ctx context.Context, loan *models.Loan) error {
				t.Error("settled loan must not be rewritten")
				return nil
			},
		}
		users := &usermock.Repo{
			SetLoanableFn: func(ctx context.Context, userID uint, loanable bool) error {
				t.Error("gate must not flip on a repeated pay")
				return nil
			},
		}
		svc := newLoanService(users, &requestmock.Repo{}, loans)

		_, err := svc.Pay(context.Background(), 1)
		if !errors.Is(err, domain.ErrLoanAlreadyPaid) {
			t.Fatalf("err = %v, want ErrLoanAlreadyPaid", err)
		}
	})

	t.Run("paying an orphaned loan reports the integrity fault", func(t *testing.T) {
		loans := &loanmock.Repo{
			GetByIDFn: func(ctx context.Context, id uint) (*models.Loan, error) {
				return &models.Loan{ID: id, RequestID: 3, HasPaid: false}, nil
			},
		}
		svc := newLoanService(&usermock.Repo{}, &requestmock.Repo{}, loans)

		_, err := svc.Pay(context.Background(), 1)
		if !errors.Is(err, domain.ErrOrphanedLoan) {
			t.Fatalf("err = %v, want ErrOrphanedLoan", err)
		}
	})

	t.Run("missing loan", func(t *testing.T) {
		svc := newLoanService(&usermock.Repo{}, &requestmock.Repo{}, &loanmock.Repo{})
		_, err := svc.Pay(context.Background(), 404)
		if !errors.Is(err, domain.ErrLoanNotFound) {
			t.Fatalf("err = %v, want ErrLoanNotFound", err)
		}
	})
}
