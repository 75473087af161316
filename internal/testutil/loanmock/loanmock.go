package loanmock

import (
	"context"

	domain "github.com/lawrencezcl/GeminiLendX/internal/domain/loan"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListByBorrowerIDFn     func(ctx context.Context, borrowerID string) ([]*domain.Loan, error)
	ListByStatusFn         func(ctx context.Context, status domain.Status) ([]*domain.Loan, error)
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	TransitionStatusFn     func(ctx context.Context, l *domain.Loan, to domain.Status) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByBorrowerID(ctx context.Context, borrowerID string) ([]*domain.Loan, error) {
	if m.ListByBorrowerIDFn != nil {
		return m.ListByBorrowerIDFn(ctx, borrowerID)
	}
	return nil, nil
}

func (m *Repo) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Loan, error) {
	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, status)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

// TransitionStatus's default mirrors the real repository: the state machine
// is enforced and the in-memory loan is updated, so happy-path tests don't
// need to wire a func.
func (m *Repo) TransitionStatus(ctx context.Context, l *domain.Loan, to domain.Status) error {
	if m.TransitionStatusFn != nil {
		return m.TransitionStatusFn(ctx, l, to)
	}
	if l.Status.IsTerminal() {
		return domain.ErrTerminalState
	}
	if !l.Status.CanTransitionTo(to) {
		return domain.ErrInvalidTransition
	}
	l.Status = to
	l.Version++
	return nil
}
