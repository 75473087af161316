package uow

import (
	"context"

	"github.com/lawrencezcl/GeminiLendX/internal/domain/endorsement"
	"github.com/lawrencezcl/GeminiLendX/internal/domain/loan"
)

type Repos struct {
	Loans        loan.Repository
	Endorsements endorsement.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
