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

// RequestService drives the loan request lifecycle:
// pending -> approved (spawns a loan) | declined (terminal).
type RequestService struct {
	userRepo    repositories.UserRepository
	requestRepo repositories.RequestRepository
	loanRepo    repositories.LoanRepository
	uow         repositories.UnitOfWork
}

// NewRequestService creates a new request service
func NewRequestService(
	userRepo repositories.UserRepository,
	requestRepo repositories.RequestRepository,
	loanRepo repositories.LoanRepository,
	uow repositories.UnitOfWork,
) *RequestService {
	return &RequestService{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		loanRepo:    loanRepo,
		uow:         uow,
	}
}

// CreateRequestInput represents create request input
type CreateRequestInput struct {
	AmountRequested float64 `json:"amount_requested" validate:"required,gt=0"`
	AmountRepayable float64 `json:"amount_repayable" validate:"required,gt=0"`
	Tenure          int     `json:"tenure" validate:"required,gt=0"`
}

// ListRequestsInput represents list requests input
type ListRequestsInput struct {
	Page   int
	Limit  int
	Status string
}

// ListRequestsOutput represents list requests output
type ListRequestsOutput struct {
	Requests   []*models.LoanRequest `json:"requests"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
}

// UpdateRequestInput represents partial request update input.
// Status and owner are immutable through edit; they move only via the
// approve/decline transitions.
type UpdateRequestInput struct {
	AmountRequested *float64 `json:"amount_requested"`
	AmountRepayable *float64 `json:"amount_repayable"`
	Tenure          *int     `json:"tenure"`
}

// Create opens a new loan request for the capability's target user.
// The target must be loanable; creating the request closes the gate until
// the request is declined or its loan repaid.
func (s *RequestService) Create(ctx context.Context, cap authz.Capability, input *CreateRequestInput) (*models.LoanRequest, error) {
	user, err := s.userRepo.GetByID(ctx, cap.TargetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if !user.IsLoanable {
		return nil, domain.ErrUserNotLoanable
	}

	request := &models.LoanRequest{
		UserID:          user.ID,
		AmountRequested: input.AmountRequested,
		AmountRepayable: input.AmountRepayable,
		Tenure:          input.Tenure,
		Status:          string(domain.StatusPending),
	}

	err = s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		if err := r.Requests.Create(ctx, request); err != nil {
			return err
		}
		return r.Users.SetLoanable(ctx, user.ID, false)
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// List lists requests visible to the capability. Own/any scope pins the
// filter to the target user; all scope leaves it unrestricted.
func (s *RequestService) List(ctx context.Context, cap authz.Capability, input *ListRequestsInput) (*ListRequestsOutput, error) {
	page, limit := normalizePage(input.Page, input.Limit)

	filter := repositories.RequestFilter{Status: input.Status}
	if !cap.ReadAll() {
		filter.UserID = cap.TargetUserID
	}

	requests, total, err := s.requestRepo.List(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	return &ListRequestsOutput{
		Requests:   requests,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// GetByID gets one request. A capability scoped to a user must actually
// cover the request's owner; the mismatch is reported as unauthorized, not
// as not-found, so callers cannot probe for existence.
func (s *RequestService) GetByID(ctx context.Context, cap authz.Capability, id uint) (*models.LoanRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}

	if !cap.Owns(request.UserID) {
		return nil, domain.ErrUnauthorized
	}

	return request, nil
}

// Edit partially updates a request's amounts and tenure
func (s *RequestService) Edit(ctx context.Context, cap authz.Capability, id uint, input *UpdateRequestInput) (*models.LoanRequest, error) {
	request, err := s.GetByID(ctx, cap, id)
	if err != nil {
		return nil, err
	}

	if input.AmountRequested != nil {
		request.AmountRequested = *input.AmountRequested
	}
	if input.AmountRepayable != nil {
		request.AmountRepayable = *input.AmountRepayable
	}
	if input.Tenure != nil {
		request.Tenure = *input.Tenure
	}

	if err := s.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

// Approve transitions a pending request to approved and spawns its loan,
// due tenure months from now. The status write is a compare-and-swap on
// pending, so two concurrent approvals cannot both spawn a loan; request
// update and loan insert share one transaction.
func (s *RequestService) Approve(ctx context.Context, id uint) (*models.LoanRequest, *models.Loan, error) {
	var request *models.LoanRequest
	var loan *models.Loan

	err := s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		swapped, err := r.Requests.UpdateStatusIfPending(ctx, id, string(domain.StatusApproved))
		if err != nil {
			return err
		}
		if !swapped {
			return s.notPendingErr(ctx, r, id)
		}

		request, err = r.Requests.GetByID(ctx, id)
		if err != nil {
			return err
		}

		loan = &models.Loan{
			RequestID: request.ID,
			DueDate:   time.Now().AddDate(0, request.Tenure, 0),
		}
		return r.Loans.Create(ctx, loan)
	})
	if err != nil {
		return nil, nil, err
	}

	return request, loan, nil
}

// Decline transitions a pending request to declined and reopens the
// owner's loanable gate, in one transaction. Declining an already-declined
// (or approved) request is an invalid transition, not a no-op, so the gate
// is never double-flipped.
func (s *RequestService) Decline(ctx context.Context, id uint) (*models.LoanRequest, error) {
	var request *models.LoanRequest

	err := s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		swapped, err := r.Requests.UpdateStatusIfPending(ctx, id, string(domain.StatusDeclined))
		if err != nil {
			return err
		}
		if !swapped {
			return s.notPendingErr(ctx, r, id)
		}

		request, err = r.Requests.GetByID(ctx, id)
		if err != nil {
			return err
		}

		return r.Users.SetLoanable(ctx, request.UserID, true)
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// Delete removes a request that has no spawned loan. A request with a
// linked loan cannot be deleted directly.
func (s *RequestService) Delete(ctx context.Context, cap authz.Capability, id uint) error {
	request, err := s.GetByID(ctx, cap, id)
	if err != nil {
		return err
	}

	linked, err := s.loanRepo.ExistsByRequestID(ctx, request.ID)
	if err != nil {
		return err
	}
	if linked {
		return domain.ErrRequestHasLoan
	}

	return s.requestRepo.Delete(ctx, request.ID)
}

// notPendingErr distinguishes a missing request from a non-pending one
// after a failed compare-and-swap.
func (s *RequestService) notPendingErr(ctx context.Context, r repositories.Repos, id uint) error {
	if _, err := r.Requests.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRequestNotFound
		}
		return err
	}
	return domain.ErrRequestNotPending
}

// normalizePage clamps pagination inputs to sane bounds
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// totalPages computes the page count for a total and limit
func totalPages(total int64, limit int) int {
	pages := int(total) / limit
	if int(total)%limit > 0 {
		pages++
	}
	return pages
}
