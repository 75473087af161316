package endorsement

import "context"

type Repository interface {
	Create(ctx context.Context, e *Endorsement) error
	GetByEndorsementID(ctx context.Context, endorsementID string) (*Endorsement, error)
	ListByLoanID(ctx context.Context, loanID string) ([]*Endorsement, error)
	ListValidUnprocessedByLoanID(ctx context.Context, loanID string) ([]*Endorsement, error)
	CountValidByBorrowerID(ctx context.Context, borrowerID string) (int64, error)
	Save(ctx context.Context, e *Endorsement) error
	// MarkProcessed flips is_processed and records the deducted amount with
	// a conditional update on is_processed = false. A second caller gets
	// ErrAlreadyProcessed, no matter how the calls interleave.
	MarkProcessed(ctx context.Context, e *Endorsement, amountDeducted float64) error
}
