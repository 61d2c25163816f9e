package uowmock

import (
	"context"

	"topcoop-lending/internal/adapters/persistence/repositories"
)

// Ensure compile-time compliance
var _ repositories.UnitOfWork = (*UoW)(nil)

// UoW is a mock unit of work that runs the transaction body against the
// given repositories with no real transaction semantics.
type UoW struct {
	Repos      repositories.Repos
	WithinTxFn func(ctx context.Context, fn func(r repositories.Repos) error) error
}

// Pass builds a UoW that simply passes the given repos to the body.
func Pass(r repositories.Repos) *UoW {
	return &UoW{Repos: r}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r repositories.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return fn(m.Repos)
}
