package services

import (
	"context"
	"testing"
	"time"

	"topcoop-lending/internal/adapters/persistence/models"
	"topcoop-lending/internal/testutil/loanmock"
	"topcoop-lending/internal/testutil/requestmock"
)

func TestReminderService_RunScan(t *testing.T) {
	t.Run("flags every unpaid loan inside the window", func(t *testing.T) {
		var gotCutoff time.Time
		loans := &loanmock.Repo{
			ListUnpaidDueBeforeFn: func(ctx context.Context, cutoff time.Time) ([]*models.Loan, error) {
				gotCutoff = cutoff
				return []*models.Loan{
					{ID: 1, RequestID: 3, DueDate: time.Now().AddDate(0, 0, -1)},
					{ID: 2, RequestID: 4, DueDate: time.Now().AddDate(0, 0, 2)},
				}, nil
			},
		}
		requests := &requestmock.Repo{
			GetByIDFn: func(ctx context.Context, id uint) (*models.LoanRequest, error) {
				return &models.LoanRequest{ID: id, UserID: 7}, nil
			},
		}
		svc := NewReminderService(loans, requests)

		flagged := svc.RunScan(context.Background())
		if flagged != 2 {
			t.Errorf("flagged = %d, want 2", flagged)
		}

		wantCutoff := time.Now().Add(DueSoonWindow)
		if gotCutoff.Before(wantCutoff.Add(-time.Minute)) || gotCutoff.After(wantCutoff.Add(time.Minute)) {
			t.Errorf("cutoff = %v, want ~now + window", gotCutoff)
		}
	})

	t.Run("an orphaned loan is skipped, not fatal", func(t *testing.T) {
		loans := &loanmock.Repo{
			ListUnpaidDueBeforeFn: func(ctx context.Context, cutoff time.Time) ([]*models.Loan, error) {
				return []*models.Loan{{ID: 1, RequestID: 404, DueDate: time.Now()}}, nil
			},
		}
		svc := NewReminderService(loans, &requestmock.Repo{})

		flagged := svc.RunScan(context.Background())
		if flagged != 1 {
			t.Errorf("flagged = %d, want the scan to keep going", flagged)
		}
	})
}
