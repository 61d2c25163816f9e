package requestmock

import (
	"context"

	"topcoop-lending/internal/adapters/persistence/models"
	"topcoop-lending/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Ensure compile-time compliance
var _ repositories.RequestRepository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies
// repositories.RequestRepository.
type Repo struct {
	CreateFn                func(ctx context.Context, request *models.LoanRequest) error
	GetByIDFn               func(ctx context.Context, id uint) (*models.LoanRequest, error)
	ListFn                  func(ctx context.Context, filter repositories.RequestFilter, offset, limit int) ([]*models.LoanRequest, int64, error)
	ListIDsByUserFn         func(ctx context.Context, userID uint) ([]uint, error)
	UpdateFn                func(ctx context.Context, request *models.LoanRequest) error
	UpdateStatusIfPendingFn func(ctx context.Context, id uint, status string) (bool, error)
	DeleteFn                func(ctx context.Context, id uint) error
}

func (m *Repo) Create(ctx context.Context, request *models.LoanRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, request)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint) (*models.LoanRequest, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) List(ctx context.Context, filter repositories.RequestFilter, offset, limit int) ([]*models.LoanRequest, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter, offset, limit)
	}
	return nil, 0, nil
}

func (m *Repo) ListIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	if m.ListIDsByUserFn != nil {
		return m.ListIDsByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *Repo) Update(ctx context.Context, request *models.LoanRequest) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, request)
	}
	return nil
}

func (m *Repo) UpdateStatusIfPending(ctx context.Context, id uint, status string) (bool, error) {
	if m.UpdateStatusIfPendingFn != nil {
		return m.UpdateStatusIfPendingFn(ctx, id, status)
	}
	return false, nil
}

func (m *Repo) Delete(ctx context.Context, id uint) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}
