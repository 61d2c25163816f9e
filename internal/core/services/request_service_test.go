package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"topcoop-lending/internal/adapters/persistence/models"
	"topcoop-lending/internal/adapters/persistence/repositories"
	"topcoop-lending/internal/core/authz"
	"topcoop-lending/internal/core/domain"
	"topcoop-lending/internal/testutil/loanmock"
	"topcoop-lending/internal/testutil/requestmock"
	"topcoop-lending/internal/testutil/uowmock"
	"topcoop-lending/internal/testutil/usermock"
)

func ownCap(userID uint) authz.Capability {
	return authz.Capability{
		Resource:     authz.ResourceRequest,
		Action:       authz.ActionRead,
		Scope:        authz.ScopeOwn,
		Role:         domain.RoleUser,
		CallerID:     userID,
		TargetUserID: userID,
	}
}

func allCap() authz.Capability {
	return authz.Capability{
		Resource: authz.ResourceRequest,
		Action:   authz.ActionList,
		Scope:    authz.ScopeAll,
		Role:     domain.RoleAdmin,
		CallerID: 99,
	}
}

func newRequestService(users *usermock.Repo, requests *requestmock.Repo, loans *loanmock.Repo) *RequestService {
	uow := uowmock.Pass(repositories.Repos{Users: users, Requests: requests, Loans: loans})
	return NewRequestService(users, requests, loans, uow)
}

func TestRequestService_Create(t *testing.T) {
	input := &CreateRequestInput{AmountRequested: 1000, AmountRepayable: 1100, Tenure: 6}

	t.Run("loanable user creates pending request and closes gate", func(t *testing.T) {
		var gateClosedFor uint
		users := &usermock.Repo{
			GetByIDFn: func(ctx context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id, IsLoanable: true}, nil
			},
			SetLoanableFn: func(ctx context.Context, userID uint, loanable bool) error {
				if loanable {
					t.Error("create must close the gate, not open it")
				}
				gateClosedFor = userID
				return nil
			},
		}
		var created *models.LoanRequest
		requests := &requestmock.Repo{
			CreateFn: func(ctx context.Context, r *models.LoanRequest) error {
				created = r
				return nil
			},
		}
		svc := newRequestService(users, requests, &loanmock.Repo{})

		request, err := svc.Create(context.Background(), ownCap(7), input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if request.Status != string(domain.StatusPending) {
			t.Errorf("status = %s, want pending", request.Status)
		}
		if request.UserID != 7 {
			t.Errorf("owner = %d, want 7", request.UserID)
		}
		if created == nil {
			t.Fatal("request was not persisted")
		}
		if gateClosedFor != 7 {
			t.Errorf("loanable gate closed for %d, want 7", gateClosedFor)
		}
	})

	t.Run("non-loanable user is rejected before persisting", func(t *testing.T) {
		users := &usermock.Repo{
			GetByIDFn: func(ctx context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id, IsLoanable: false}, nil
			},
		}
		requests := &requestmock.Repo{
			CreateFn: func(ctx context.Context, r *models.LoanRequest) error {
				t.Error("no request may be persisted for a non-loanable user")
				return nil
			},
		}
		svc := newRequestService(users, requests, &loanmock.Repo{})

		_, err := svc.Create(context.Background(), ownCap(7), input)
		if !errors.Is(err, domain.ErrUserNotLoanable) {
			t.Fatalf("err = %v, want ErrUserNotLoanable", err)
		}
		if domain.KindOf(err) != domain.KindPreconditionFailed {
			t.Errorf("kind = %s, want precondition_failed", domain.KindOf(err))
		}
	})

	t.Run("missing target user", func(t *testing.T) {
		svc := newRequestService(&usermock.Repo{}, &requestmock.Repo{}, &loanmock.Repo{})
		_, err := svc.Create(context.Background(), ownCap(7), input)
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("err = %v, want ErrUserNotFound", err)
		}
	})
}

func TestRequestService_List_ScopesFilter(t *testing.T) {
	var gotFilter repositories.RequestFilter
	requests := &requestmock.Repo{
		ListFn: func(ctx context.Context, filter repositories.RequestFilter, offset, limit int) ([]*models.LoanRequest, int64, error) {
			gotFilter = filter
			return []*models.LoanRequest{}, 0, nil
		},
	}
	svc := newRequestService(&usermock.Repo{}, requests, &loanmock.Repo{})

	// scope=own pins the filter to the target user
	if _, err := svc.List(context.Background(), ownCap(1), &ListRequestsInput{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFilter.UserID != 1 {
		t.Errorf("own-scope filter userID = %d, want 1", gotFilter.UserID)
	}

	// scope=all leaves the filter unrestricted
	if _, err := svc.List(context.Background(), allCap(), &ListRequestsInput{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFilter.UserID != 0 {
		t.Errorf("all-scope filter userID = %d, want unrestricted", gotFilter.UserID)
	}
}

func TestRequestService_GetByID_OwnershipMismatchIsUnauthorized(t *testing.T) {
	requests := &requestmock.Repo{
		GetByIDFn: func(ctx context.Context, id uint) (*models.LoanRequest, error) {
			return &models.LoanRequest{ID: id, UserID: 42}, nil
		},
	}
	svc := newRequestService(&usermock.Repo{}, requests, &loanmock.Repo{})

	_, err := svc.GetByID(context.Background(), ownCap(1), 5)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized (not a not-found leak)", err)
	}
}

func TestRequestService_Approve(t *testing.T) {
	t.Run("pending request approved and loan spawned", func(t *testing.T) {
		pending := &models.LoanRequest{ID: 3, UserID: 7, Tenure: 6, AmountRepayable: 1100, Status: string(domain.StatusPending)}
		requests := &requestmock.Repo{
			UpdateStatusIfPendingFn: func(ctx context.Context, id uint, status string) (bool, error) {
				if status != string(domain.StatusApproved) {
					t.Errorf("status = %s, want approved", status)
				}
				pending.Status = status
				return true, nil
			},
			GetByIDFn: func(ctx context.Context, id uint) (*models.LoanRequest, error) {
				return pending, nil
			},
		}
		var spawned *models.Loan
		loans := &loanmock.Repo{
			CreateFn: func(ctx context.Context, l *models.Loan) error {
				spawned = l
				return nil
			},
		}
		svc := newRequestService(&usermock.Repo{}, requests, loans)

		before := time.Now()
		request, loan, err := svc.Approve(context.Background(), 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if request.Status != string(domain.StatusApproved) {
			t.Errorf("status = %s, want approved", request.Status)
		}
		if spawned == nil || loan.RequestID != 3 {
			t.Fatalf("loan = %+v, want one loan with requestID=3", loan)
		}
		wantDue := before.AddDate(0, 6, 0)
		if loan.DueDate.Before(wantDue.Add(-time.Minute)) || loan.DueDate.After(wantDue.Add(time.Minute)) {
			t.Errorf("dueDate = %v, want ~%v (now + tenure months)", loan.DueDate, wantDue)
		}
	})

	t.Run("non-pending request is an invalid transition", func(t *testing.T) {
		requests := &requestmock.Repo{
			UpdateStatusIfPendingFn: func(ctx context.Context, id uint, status string) (bool, error) {
				return false, nil
			},
			GetByIDFn: func(ctx context.Context, id uint) (*models.LoanRequest, error) {
				return &models.LoanRequest{ID: id, Status: string(domain.StatusApproved)}, nil
			},
		}
		loans := &loanmock.Repo{
			CreateFn: func(ctx context.Context, l *models.Loan) error {
				t.Error("re-approval must not spawn a second loan")
				return nil
			},
		}
		svc := newRequestService(&usermock.Repo{}, requests, loans)

		_, _, err := svc.Approve(context.Background(), 3)
		if !errors.Is(err, domain.ErrRequestNotPending) {
			t.Fatalf("err = %v, want ErrRequestNotPending", err)
		}
	})

	t.Run("missing request", func(t *testing.T) {
		requests := &requestmock.Repo{
			UpdateStatusIfPendingFn: func(ctx context.Context, id uint, status string) (bool, error) {
				return false, nil
			},
		}
		svc := newRequestService(&usermock.Repo{}, requests, &loanmock.Repo{})

		_, _, err := svc.Approve(context.Background(), 404)
		if !errors.Is(err, domain.ErrRequestNotFound) {
			t.Fatalf("err = %v, want ErrRequestNotFound", err)
		}
	})
}

func TestRequestService_Decline(t *testing.T) {
	t.Run("pending request declined and gate reopened", func(t *testing.T) {
		var gateOpenedFor uint
		users := &usermock.Repo{
			SetLoanableFn: func(ctx context.Context, userID uint, loanable bool) error {
				if !loanable {
					t.Error("decline must reopen the gate")
				}
				gateOpenedFor = userID
				return nil
			},
		}
		requests := &requestmock.Repo{
			UpdateStatusIfPendingFn: func(ctx context.Context, id uint, status string) (bool, error) {
				if status != string(domain.StatusDeclined) {
					t.Errorf("status = %s, want declined", status)
				}
				return true, nil
			},
			GetByIDFn: func(ctx context.Context, id uint) (*models.LoanRequest, error) {
				return &models.LoanRequest{ID: id, UserID: 7, Status: string(domain.StatusDeclined)}, nil
			},
		}
		svc := newRequestService(users, requests, &loanmock.Repo{})

		request, err := svc.Decline(context.Background(), 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if request.Status != string(domain.StatusDeclined) {
			t.Errorf("status = %s, want declined", request.Status)
		}
		if gateOpenedFor != 7 {
			t.Errorf("gate reopened for %d, want owner 7", gateOpenedFor)
		}
	})

	t.Run("declining an already-declined request does not re-flip the gate", func(t *testing.T) {
		users := &usermock.Repo{
			SetLoanableFn: func(ctx context.Context, userID uint, loanable bool) error {
				t.Error("gate must not flip on an invalid transition")
				return nil
			},
		}
		requests := &requestmock.Repo{
			UpdateStatusIfPendingFn: func(ctx context.Context, id uint, status string) (bool, error) {
				return false, nil
			},
			GetByIDFn: func(ctx context.Context, id uint) (*models.LoanRequest, error) {
				return &models.LoanRequest{ID: id, Status: string(domain.StatusDeclined)}, nil
			},
		}
		svc := newRequestService(users, requests, &loanmock.Repo{})

		_, err := svc.Decline(context.Background(), 3)
		if !errors.Is(err, domain.ErrRequestNotPending) {
			t.Fatalf("err = %v, want ErrRequestNotPending", err)
		}
	})
}

func TestRequestService_Delete(t *testing.T) {
	t.Run("request with linked loan cannot be deleted", func(t *testing.T) {
		requests := &requestmock.Repo{
			GetByIDFn: func(ctx context.Context, id uint) (*models.LoanRequest, error) {
				return &models.LoanRequest{ID: id, UserID: 1}, nil
			},
			DeleteFn: func(ctx context.Context, id uint) error {
				t.Error("no deletion may occur with a linked loan")
				return nil
			},
		}
		loans := &loanmock.Repo{
			ExistsByRequestIDFn: func(ctx context.Context, requestID uint) (bool, error) {
				return true, nil
			},
		}
		svc := newRequestService(&usermock.Repo{}, requests, loans)

		err := svc.Delete(context.Background(), ownCap(1), 3)
		if !errors.Is(err, domain.ErrRequestHasLoan) {
			t.Fatalf("err = %v, want ErrRequestHasLoan", err)
		}
	})

	t.Run("unlinked request deletes", func(t *testing.T) {
		deleted := uint(0)
		requests := &requestmock.Repo{
			GetByIDFn: func(ctx context.Context, id uint) (*models.LoanRequest, error) {
				return &models.LoanRequest{ID: id, UserID: 1}, nil
			},
			DeleteFn: func(ctx context.Context, id uint) error {
				deleted = id
				return nil
			},
		}
		svc := newRequestService(&usermock.Repo{}, requests, &loanmock.Repo{})

		if err := svc.Delete(context.Background(), ownCap(1), 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deleted != 3 {
			t.Errorf("deleted id = %d, want 3", deleted)
		}
	})
}
