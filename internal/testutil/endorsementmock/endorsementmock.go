package endorsementmock

import (
	"context"

	domain "github.com/lawrencezcl/GeminiLendX/internal/domain/endorsement"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn                       func(ctx context.Context, e *domain.Endorsement) error
	GetByEndorsementIDFn           func(ctx context.Context, endorsementID string) (*domain.Endorsement, error)
	ListByLoanIDFn                 func(ctx context.Context, loanID string) ([]*domain.Endorsement, error)
	ListValidUnprocessedByLoanIDFn func(ctx context.Context, loanID string) ([]*domain.Endorsement, error)
	CountValidByBorrowerIDFn       func(ctx context.Context, borrowerID string) (int64, error)
	SaveFn                         func(ctx context.Context, e *domain.Endorsement) error
	MarkProcessedFn                func(ctx context.Context, e *domain.Endorsement, amountDeducted float64) error
}

func (m *Repo) Create(ctx context.Context, e *domain.Endorsement) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, e)
	}
	return nil
}

func (m *Repo) GetByEndorsementID(ctx context.Context, endorsementID string) (*domain.Endorsement, error) {
	if m.GetByEndorsementIDFn != nil {
		return m.GetByEndorsementIDFn(ctx, endorsementID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByLoanID(ctx context.Context, loanID string) ([]*domain.Endorsement, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, nil
}

func (m *Repo) ListValidUnprocessedByLoanID(ctx context.Context, loanID string) ([]*domain.Endorsement, error) {
	if m.ListValidUnprocessedByLoanIDFn != nil {
		return m.ListValidUnprocessedByLoanIDFn(ctx, loanID)
	}
	return nil, nil
}

func (m *Repo) CountValidByBorrowerID(ctx context.Context, borrowerID string) (int64, error) {
	if m.CountValidByBorrowerIDFn != nil {
		return m.CountValidByBorrowerIDFn(ctx, borrowerID)
	}
	return 0, nil
}

func (m *Repo) Save(ctx context.Context, e *domain.Endorsement) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, e)
	}
	return nil
}

// MarkProcessed's default behaves like the real conditional update.
func (m *Repo) MarkProcessed(ctx context.Context, e *domain.Endorsement, amountDeducted float64) error {
	if m.MarkProcessedFn != nil {
		return m.MarkProcessedFn(ctx, e, amountDeducted)
	}
	if e.IsProcessed {
		return domain.ErrAlreadyProcessed
	}
	e.IsProcessed = true
	e.AmountDeducted = amountDeducted
	return nil
}
