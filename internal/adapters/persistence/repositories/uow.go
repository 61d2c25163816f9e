package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repos bundles the repositories participating in a transaction.
type Repos struct {
	Users    UserRepository
	Requests RequestRepository
	Loans    LoanRepository
}

// UnitOfWork runs a function with all repositories bound to one database
// transaction. The lifecycle transitions (approve -> create loan, decline
// and pay -> flip loanable) are multi-write, so they go through here: a
// failure in any step rolls back the whole transition.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}

// gormUnitOfWork implements UnitOfWork over a gorm transaction
type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a gorm-backed unit of work
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repos{
			Users:    &userRepository{db: tx},
			Requests: &requestRepository{db: tx},
			Loans:    &loanRepository{db: tx},
		})
	})
}
