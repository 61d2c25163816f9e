package services

import (
	"context"
	"errors"
	"time"

	"topcoop-lending/internal/adapters/persistence/models"
	"topcoop-lending/internal/adapters/persistence/repositories"
	"topcoop-lending/internal/core/authz"
	"topcoop-lending/internal/core/domain"

	"gorm.io/gorm"
)

// LoanService handles loan reads and the repayment transition. Loans are
// never created here; they exist only as approval side effects.
type LoanService struct {
	userRepo    repositories.UserRepository
	requestRepo repositories.RequestRepository
	loanRepo    repositories.LoanRepository
	uow         repositories.UnitOfWork
}

// NewLoanService creates a new loan service
func NewLoanService(
	userRepo repositories.UserRepository,
	requestRepo repositories.RequestRepository,
	loanRepo repositories.LoanRepository,
	uow repositories.UnitOfWork,
) *LoanService {
	return &LoanService{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		loanRepo:    loanRepo,
		uow:         uow,
	}
}

// ListLoansInput represents list loans input
type ListLoansInput struct {
	Page    int
	Limit   int
	HasPaid *bool
}

// ListLoansOutput represents list loans output
type ListLoansOutput struct {
	Loans      []*models.Loan `json:"loans"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// UpdateLoanInput represents partial loan update input
type UpdateLoanInput struct {
	AmountPaid *float64   `json:"amount_paid"`
	DueDate    *time.Time `json:"due_date"`
}

// List lists loans visible to the capability. Loans carry no user id, so
// user-scoped listing is two-step: resolve the target user's request ids,
// then match loans on request_id.
func (s *LoanService) List(ctx context.Context, cap authz.Capability, input *ListLoansInput) (*ListLoansOutput, error) {
	page, limit := normalizePage(input.Page, input.Limit)

	filter := repositories.LoanFilter{HasPaid: input.HasPaid}
	if !cap.ReadAll() {
		ids, err := s.requestRepo.ListIDsByUser(ctx, cap.TargetUserID)
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = []uint{}
		}
		filter.RequestIDs = ids
	}

	loans, total, err := s.loanRepo.List(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	return &ListLoansOutput{
		Loans:      loans,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// GetByID gets one loan, walking up to the parent request to check
// ownership for user-scoped capabilities.
func (s *LoanService) GetByID(ctx context.Context, cap authz.Capability, id uint) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	if !cap.ReadAll() {
		request, err := s.requestRepo.GetByID(ctx, loan.RequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrOrphanedLoan
			}
			return nil, err
		}
		if !cap.Owns(request.UserID) {
			return nil, domain.ErrUnauthorized
		}
	}

	return loan, nil
}

// Edit partially updates a loan's repayment fields
func (s *LoanService) Edit(ctx context.Context, cap authz.Capability, id uint, input *UpdateLoanInput) (*models.Loan, error) {
	loan, err := s.GetByID(ctx, cap, id)
	if err != nil {
		return nil, err
	}

	if input.AmountPaid != nil {
		loan.AmountPaid = *input.AmountPaid
	}
	if input.DueDate != nil {
		loan.DueDate = *input.DueDate
	}

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, err
	}

	return loan, nil
}

// Pay settles a loan: marks it paid for the full repayable amount and
// reopens the owner's loanable gate, in one transaction. Paying an
// already-paid loan is an invalid transition so the gate and amount are
// never re-applied. A loan whose parent request is gone is a data
// integrity fault, reported rather than swallowed.
func (s *LoanService) Pay(ctx context.Context, id uint) (*models.Loan, error) {
	var loan *models.Loan

	err := s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		var err error
		loan, err = r.Loans.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return err
		}

		if loan.HasPaid {
			return domain.ErrLoanAlreadyPaid
		}

		request, err := r.Requests.GetByID(ctx, loan.RequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrphanedLoan
			}
			return err
		}

		loan.HasPaid = true
		loan.AmountPaid = request.AmountRepayable
		if err := r.Loans.Update(ctx, loan); err != nil {
			return err
		}

		return r.Users.SetLoanable(ctx, request.UserID, true)
	})
	if err != nil {
		return nil, err
	}

	return loan, nil
}

// Delete removes a loan
func (s *LoanService) Delete(ctx context.Context, cap authz.Capability, id uint) error {
	loan, err := s.GetByID(ctx, cap, id)
	if err != nil {
		return err
	}
	return s.loanRepo.Delete(ctx, loan.ID)
}
