package loanmock

import (
	"context"
	"time"

	"topcoop-lending/internal/adapters/persistence/models"
	"topcoop-lending/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Ensure compile-time compliance
var _ repositories.LoanRepository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies repositories.LoanRepository.
type Repo struct {
	CreateFn              func(ctx context.Context, loan *models.Loan) error
	GetByIDFn             func(ctx context.Context, id uint) (*models.Loan, error)
	ListFn                func(ctx context.Context, filter repositories.LoanFilter, offset, limit int) ([]*models.Loan, int64, error)
	ListUnpaidDueBeforeFn func(ctx context.Context, cutoff time.Time) ([]*models.Loan, error)
	UpdateFn              func(ctx context.Context, loan *models.Loan) error
	DeleteFn              func(ctx context.Context, id uint) error
	ExistsByRequestIDFn   func(ctx context.Context, requestID uint) (bool, error)
}

func (m *Repo) Create(ctx context.Context, loan *models.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, loan)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) List(ctx context.Context, filter repositories.LoanFilter, offset, limit int) ([]*models.Loan, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter, offset, limit)
	}
	return nil, 0, nil
}

func (m *Repo) ListUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]*models.Loan, error) {
	if m.ListUnpaidDueBeforeFn != nil {
		return m.ListUnpaidDueBeforeFn(ctx, cutoff)
	}
	return nil, nil
}

func (m *Repo) Update(ctx context.Context, loan *models.Loan) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, loan)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, id uint) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *Repo) ExistsByRequestID(ctx context.Context, requestID uint) (bool, error) {
	if m.ExistsByRequestIDFn != nil {
		return m.ExistsByRequestIDFn(ctx, requestID)
	}
	return false, nil
}
