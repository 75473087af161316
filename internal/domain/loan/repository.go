package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	ListByBorrowerID(ctx context.Context, borrowerID string) ([]*Loan, error)
	ListByStatus(ctx context.Context, status Status) ([]*Loan, error)
	Save(ctx context.Context, l *Loan) error
	// TransitionStatus applies a status change guarded by the state machine
	// and an optimistic version check. Losers of a concurrent race get
	// ErrConcurrentModification; on success l.Status and l.Version are
	// refreshed in place.
	TransitionStatus(ctx context.Context, l *Loan, to Status) error
}
