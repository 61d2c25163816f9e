package domain

import "time"

// Role represents a user role in the system
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// RequestStatus represents the lifecycle state of a loan request
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusDeclined RequestStatus = "declined"
)

// User represents a user in the domain layer
type User struct {
	ID         uint
	FirstName  string
	LastName   string
	Email      string
	Password   string // Hashed
	Role       Role
	IsLoanable bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LoanRequest represents a loan application.
// Status moves pending -> approved | declined; both are terminal.
// UserID is immutable after creation.
type LoanRequest struct {
	ID              uint
	UserID          uint
	AmountRequested float64
	AmountRepayable float64
	Tenure          int // months
	Status          RequestStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Loan represents a disbursed loan spawned by an approved request.
// Ownership is indirect: Loan -> LoanRequest.UserID.
type Loan struct {
	ID         uint
	RequestID  uint
	HasPaid    bool
	AmountPaid float64
	DueDate    time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RefreshToken represents a refresh token in the domain
type RefreshToken struct {
	ID        uint
	UserID    uint
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
