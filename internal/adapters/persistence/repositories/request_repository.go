package repositories

import (
	"context"

	"topcoop-lending/internal/adapters/persistence/models"
	"topcoop-lending/internal/core/domain"

	"gorm.io/gorm"
)

// requestRepository implements RequestRepository interface
type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new loan request repository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// Create creates a new loan request
func (r *requestRepository) Create(ctx context.Context, request *models.LoanRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// GetByID gets a loan request by ID
func (r *requestRepository) GetByID(ctx context.Context, id uint) (*models.LoanRequest, error) {
	var request models.LoanRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// List lists loan requests matching the filter, with pagination
func (r *requestRepository) List(ctx context.Context, filter RequestFilter, offset, limit int) ([]*models.LoanRequest, int64, error) {
	var requests []*models.LoanRequest
	var total int64

	q := r.db.WithContext(ctx).Model(&models.LoanRequest{})
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// ListIDsByUser returns the ids of all requests owned by a user. Loan
// ownership checks go through this: loans reference requests, not users.
func (r *requestRepository) ListIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.LoanRequest{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Update updates a loan request
func (r *requestRepository) Update(ctx context.Context, request *models.LoanRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// UpdateStatusIfPending transitions status only when the request is still
// pending. Returns false when the row was not in pending state, which is
// how concurrent double-approval is kept out.
func (r *requestRepository) UpdateStatusIfPending(ctx context.Context, id uint, status string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.LoanRequest{}).
		Where("id = ?", id).
		Where("status = ?", string(domain.StatusPending)).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete soft deletes a loan request
func (r *requestRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.LoanRequest{}, id).Error
}
