package models

import (
	"time"

	"gorm.io/gorm"

	"topcoop-lending/internal/core/domain"
)

// User represents the users table
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	FirstName  string         `gorm:"size:50;not null" json:"first_name"`
	LastName   string         `gorm:"size:50;not null" json:"last_name"`
	Email      string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password   string         `gorm:"size:255;not null" json:"-"`
	Role       string         `gorm:"size:20;default:'user'" json:"role"`
	IsLoanable bool           `gorm:"default:true" json:"is_loanable"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID         uint      `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsLoanable bool      `json:"is_loanable"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Role:       u.Role,
		IsLoanable: u.IsLoanable,
		CreatedAt:  u.CreatedAt,
	}
}

// LoanRequest represents the loan_requests table
type LoanRequest struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"index;not null" json:"user_id"`
	AmountRequested float64        `gorm:"type:decimal(12,2);not null" json:"amount_requested"`
	AmountRepayable float64        `gorm:"type:decimal(12,2);not null" json:"amount_repayable"`
	Tenure          int            `gorm:"not null" json:"tenure"`
	Status          string         `gorm:"size:20;default:'pending';index" json:"status"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	User            User           `gorm:"foreignKey:UserID" json:"-"`
}

func (LoanRequest) TableName() string {
	return "loan_requests"
}

func (r *LoanRequest) IsPending() bool {
	return r.Status == string(domain.StatusPending)
}

// Loan represents the loans table. A loan carries no user id of its own;
// ownership goes through the parent request.
type Loan struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	RequestID  uint           `gorm:"index;not null" json:"request_id"`
	HasPaid    bool           `gorm:"default:false" json:"has_paid"`
	AmountPaid float64        `gorm:"type:decimal(12,2);default:0" json:"amount_paid"`
	DueDate    time.Time      `gorm:"not null" json:"due_date"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Request    LoanRequest    `gorm:"foreignKey:RequestID" json:"-"`
}

func (Loan) TableName() string {
	return "loans"
}

// RefreshToken represents the refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&LoanRequest{},
		&Loan{},
		&RefreshToken{},
	)
}
