package usermock

import (
	"context"

	"topcoop-lending/internal/adapters/persistence/models"
	"topcoop-lending/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Ensure compile-time compliance
var _ repositories.UserRepository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies repositories.UserRepository.
// Fill in the function fields a test needs; unfilled getters report
// record-not-found and unfilled writers succeed.
type Repo struct {
	CreateFn          func(ctx context.Context, user *models.User) error
	CreateInBatchesFn func(ctx context.Context, users []*models.User) error
	GetByIDFn         func(ctx context.Context, id uint) (*models.User, error)
	GetByEmailFn      func(ctx context.Context, email string) (*models.User, error)
	ListFn            func(ctx context.Context, filter repositories.UserFilter, offset, limit int) ([]*models.User, int64, error)
	UpdateFn          func(ctx context.Context, user *models.User) error
	SetLoanableFn     func(ctx context.Context, userID uint, loanable bool) error
	DeleteFn          func(ctx context.Context, id uint) error
	ExistsByEmailFn   func(ctx context.Context, email string) (bool, error)
	CountByRoleFn     func(ctx context.Context, role string) (int64, error)
}

func (m *Repo) Create(ctx context.Context, user *models.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return nil
}

func (m *Repo) CreateInBatches(ctx context.Context, users []*models.User) error {
	if m.CreateInBatchesFn != nil {
		return m.CreateInBatchesFn(ctx, users)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) List(ctx context.Context, filter repositories.UserFilter, offset, limit int) ([]*models.User, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter, offset, limit)
	}
	return nil, 0, nil
}

func (m *Repo) Update(ctx context.Context, user *models.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	return nil
}

func (m *Repo) SetLoanable(ctx context.Context, userID uint, loanable bool) error {
	if m.SetLoanableFn != nil {
		return m.SetLoanableFn(ctx, userID, loanable)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, id uint) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *Repo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFn != nil {
		return m.ExistsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *Repo) CountByRole(ctx context.Context, role string) (int64, error) {
	if m.CountByRoleFn != nil {
		return m.CountByRoleFn(ctx, role)
	}
	return 0, nil
}
