package services

import (
	"context"
	"errors"

	"topcoop-lending/internal/adapters/persistence/models"
	"topcoop-lending/internal/adapters/persistence/repositories"
	"topcoop-lending/internal/core/authz"
	"topcoop-lending/internal/core/domain"

	"gorm.io/gorm"
)

// UserService handles user account management
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsersInput represents list users input
type ListUsersInput struct {
	Page  int
	Limit int
	Role  string
}

// ListUsersOutput represents list users output
type ListUsersOutput struct {
	Users      []*models.UserResponse `json:"users"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// UpdateUserInput represents partial user update input. Role and the
// loanable gate may only be touched by an any-scoped (admin) capability.
type UpdateUserInput struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	IsLoanable *bool   `json:"is_loanable"`
}

// List lists user accounts visible to the capability. Non-admin callers
// see exactly one account: their own.
func (s *UserService) List(ctx context.Context, cap authz.Capability, input *ListUsersInput) (*ListUsersOutput, error) {
	page, limit := normalizePage(input.Page, input.Limit)

	filter := repositories.UserFilter{Role: input.Role}
	if !cap.ReadAll() {
		filter.ID = cap.TargetUserID
	}

	users, total, err := s.userRepo.List(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}

	return &ListUsersOutput{
		Users:      responses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// GetByID gets one user account covered by the capability
func (s *UserService) GetByID(ctx context.Context, cap authz.Capability, id uint) (*models.User, error) {
	if !cap.Owns(id) {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// Update partially updates a user account
func (s *UserService) Update(ctx context.Context, cap authz.Capability, id uint, input *UpdateUserInput) (*models.User, error) {
	user, err := s.GetByID(ctx, cap, id)
	if err != nil {
		return nil, err
	}

	// Privileged fields: self-service edits cannot escalate their own role
	// or reopen their own loanable gate.
	if (input.Role != nil || input.IsLoanable != nil) && cap.Scope == authz.ScopeOwn {
		return nil, domain.ErrUnauthorized
	}

	if input.Email != nil && *input.Email != user.Email {
		taken, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.ErrEmailTaken
		}
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Role != nil {
		role := domain.Role(*input.Role)
		if !role.Valid() {
			return nil, domain.ErrInvalidInput
		}
		user.Role = string(role)
	}
	if input.IsLoanable != nil {
		user.IsLoanable = *input.IsLoanable
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes a user account covered by the capability
func (s *UserService) Delete(ctx context.Context, cap authz.Capability, id uint) error {
	user, err := s.GetByID(ctx, cap, id)
	if err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, user.ID)
}

// GetMe returns the authenticated user's own account
func (s *UserService) GetMe(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
