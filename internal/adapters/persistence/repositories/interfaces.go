package repositories

import (
	"context"
	"time"

	"topcoop-lending/internal/adapters/persistence/models"
)

// UserFilter narrows user list queries. Zero values mean "no constraint".
type UserFilter struct {
	ID         uint
	Email      string
	Role       string
	IsLoanable *bool
}

// RequestFilter narrows loan request list queries.
type RequestFilter struct {
	UserID uint
	Status string
}

// LoanFilter narrows loan list queries. RequestIDs is how ownership
// scoping reaches loans: a loan row has no user id, so callers first
// resolve the owner's request ids and pass them here. A non-nil empty
// slice matches nothing.
type LoanFilter struct {
	RequestIDs []uint
	HasPaid    *bool
	DueBefore  *time.Time
}

// UserRepository defines user persistence operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	CreateInBatches(ctx context.Context, users []*models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter UserFilter, offset, limit int) ([]*models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	SetLoanable(ctx context.Context, userID uint, loanable bool) error
	Delete(ctx context.Context, id uint) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

// RequestRepository defines loan request persistence operations
type RequestRepository interface {
	Create(ctx context.Context, request *models.LoanRequest) error
	GetByID(ctx context.Context, id uint) (*models.LoanRequest, error)
	List(ctx context.Context, filter RequestFilter, offset, limit int) ([]*models.LoanRequest, int64, error)
	ListIDsByUser(ctx context.Context, userID uint) ([]uint, error)
	Update(ctx context.Context, request *models.LoanRequest) error
	UpdateStatusIfPending(ctx context.Context, id uint, status string) (bool, error)
	Delete(ctx context.Context, id uint) error
}

// LoanRepository defines loan persistence operations
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	List(ctx context.Context, filter LoanFilter, offset, limit int) ([]*models.Loan, int64, error)
	ListUnpaidDueBefore(ctx context.Context, cutoff time.Time) ([]*models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	Delete(ctx context.Context, id uint) error
	ExistsByRequestID(ctx context.Context, requestID uint) (bool, error)
}

// RefreshTokenRepository defines refresh token persistence operations
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}
