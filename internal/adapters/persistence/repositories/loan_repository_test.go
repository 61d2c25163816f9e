package repositories

import (
	"context"
	"testing"
	"time"

	"topcoop-lending/internal/adapters/persistence/models"
	"topcoop-lending/internal/core/domain"

	"gorm.io/gorm"
)

func seedLoan(t *testing.T, db *gorm.DB, requestID uint, hasPaid bool, due time.Time) *models.Loan {
	t.Helper()
	loan := &models.Loan{
		RequestID: requestID,
		HasPaid:   hasPaid,
		DueDate:   due,
	}
	if err := db.Create(loan).Error; err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	return loan
}

func TestLoanRepository_List_RequestIDFilter(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewLoanRepository(db)

	owner := seedUser(t, db, "owner@example.com")
	other := seedUser(t, db, "other@example.com")
	ownRequest := seedRequest(t, db, owner.ID, string(domain.StatusApproved))
	otherRequest := seedRequest(t, db, other.ID, string(domain.StatusApproved))
	ownLoan := seedLoan(t, db, ownRequest.ID, false, time.Now().AddDate(0, 6, 0))
	seedLoan(t, db, otherRequest.ID, false, time.Now().AddDate(0, 6, 0))

	t.Run("restricts to the given request ids", func(t *testing.T) {
		loans, total, err := repo.List(ctx, LoanFilter{RequestIDs: []uint{ownRequest.ID}}, 0, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if total != 1 || len(loans) != 1 {
			t.Fatalf("got %d/%d loans, want exactly 1", len(loans), total)
		}
		if loans[0].ID != ownLoan.ID {
			t.Errorf("leaked a foreign loan: %+v", loans[0])
		}
	})

	t.Run("empty non-nil id slice matches nothing", func(t *testing.T) {
		loans, total, err := repo.List(ctx, LoanFilter{RequestIDs: []uint{}}, 0, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if total != 0 || len(loans) != 0 {
			t.Fatalf("got %d/%d loans, want none for a user with no requests", len(loans), total)
		}
	})

	t.Run("nil id slice is unrestricted", func(t *testing.T) {
		loans, total, err := repo.List(ctx, LoanFilter{}, 0, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if total != 2 || len(loans) != 2 {
			t.Fatalf("got %d/%d loans, want both", len(loans), total)
		}
	})
}

func TestLoanRepository_ListUnpaidDueBefore(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewLoanRepository(db)

	owner := seedUser(t, db, "owner@example.com")
	request := seedRequest(t, db, owner.ID, string(domain.StatusApproved))

	overdue := seedLoan(t, db, request.ID, false, time.Now().AddDate(0, 0, -1))
	seedLoan(t, db, request.ID, true, time.Now().AddDate(0, 0, -1))  // paid, skipped
	seedLoan(t, db, request.ID, false, time.Now().AddDate(0, 6, 0)) // far future, skipped

	loans, err := repo.ListUnpaidDueBefore(ctx, time.Now().Add(72*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loans) != 1 {
		t.Fatalf("got %d loans, want just the overdue unpaid one", len(loans))
	}
	if loans[0].ID != overdue.ID {
		t.Errorf("got loan %d, want %d", loans[0].ID, overdue.ID)
	}
}

func TestLoanRepository_ExistsByRequestID(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewLoanRepository(db)

	owner := seedUser(t, db, "owner@example.com")
	linked := seedRequest(t, db, owner.ID, string(domain.StatusApproved))
	unlinked := seedRequest(t, db, owner.ID, string(domain.StatusPending))
	seedLoan(t, db, linked.ID, false, time.Now().AddDate(0, 6, 0))

	exists, err := repo.ExistsByRequestID(ctx, linked.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("linked request should report a loan")
	}

	exists, err = repo.ExistsByRequestID(ctx, unlinked.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("unlinked request should report no loan")
	}
}
