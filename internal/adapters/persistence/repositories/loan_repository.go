package repositories

import (
	"context"
	"time"

	"topcoop-lending/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// loanRepository implements LoanRepository interface
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Create creates a new loan
func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan by ID
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// List lists loans matching the filter, with pagination. A non-nil
// RequestIDs restricts to those parent requests; an empty non-nil slice
// matches nothing rather than everything.
func (r *loanRepository) List(ctx context.Context, filter LoanFilter, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	if filter.RequestIDs != nil && len(filter.RequestIDs) == 0 {
		return []*models.Loan{}, 0, nil
	}

	q := r.db.WithContext(ctx).Model(&models.Loan{})
	if filter.RequestIDs != nil {
		q = q.Where("request_id IN ?", filter.RequestIDs)
	}
	if filter.HasPaid != nil {
		q = q.Where("has_paid = ?", *filter.HasPaid)
	}
	if filter.DueBefore != nil {
		q = q.Where("due_date < ?", *filter.DueBefore)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&loans).Error; err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}

// ListUnpaidDueBefore returns unpaid loans due before the cutoff (reminder job)
func (r *loanRepository) ListUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Where("has_paid = ?", false).
		Where("due_date < ?", cutoff).
		Order("due_date ASC").
		Find(&loans).Error
	if err != nil {
		return nil, err
	}
	return loans, nil
}

// Update updates a loan
func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// Delete soft deletes a loan
func (r *loanRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Loan{}, id).Error
}

// ExistsByRequestID checks whether a loan is linked to the request
func (r *loanRepository) ExistsByRequestID(ctx context.Context, requestID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("request_id = ?", requestID).
		Count(&count).Error
	return count > 0, err
}
