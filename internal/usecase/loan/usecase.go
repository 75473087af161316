package loan

import (
	"context"
	"log/slog"
	"time"

	domain "github.com/lawrencezcl/GeminiLendX/internal/domain/loan"
	"github.com/lawrencezcl/GeminiLendX/internal/domain/uow"
	"github.com/lawrencezcl/GeminiLendX/pkg/id"
)

// Engine owns the loan state machine. It is the only writer of a loan's
// status; every transition goes through the repository's version-guarded
// update, so a lost race surfaces as ErrConcurrentModification and state is
// never left partially applied. The engine performs no retries of its own.
type Engine struct {
	repo domain.Repository
	uow  uow.UnitOfWork
	log  *slog.Logger
}

func NewEngine(repo domain.Repository, u uow.UnitOfWork, log *slog.Logger) *Engine {
	return &Engine{repo: repo, uow: u, log: log}
}

type EvaluateInput struct {
	BorrowerID       string
	CollateralAsset  string
	CollateralChain  string
	CollateralAmount float64
	BorrowAsset      string
	BorrowChain      string
	Principal        float64
	TermDays         int
	InterestRate     float64
}

// Evaluate creates the loan in pending state and approves it iff the
// collateral value clears the 120% origination coverage gate. On rejection
// the loan record stays pending and ErrInsufficientCollateral is returned.
func (e *Engine) Evaluate(ctx context.Context, in EvaluateInput, collateralValueUSD float64) (*domain.Loan, error) {
	if in.Principal <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if in.TermDays <= 0 {
		return nil, domain.ErrInvalidTerm
	}

	l := &domain.Loan{
		LoanID:           id.NewID32(),
		BorrowerID:       in.BorrowerID,
		CollateralAsset:  in.CollateralAsset,
		CollateralChain:  in.CollateralChain,
		CollateralAmount: in.CollateralAmount,
		BorrowAsset:      in.BorrowAsset,
		BorrowChain:      in.BorrowChain,
		Principal:        in.Principal,
		TermDays:         in.TermDays,
		InterestRate:     in.InterestRate,
		Status:           domain.StatusPending,
		StatusUpdatedAt:  time.Now().UTC(),
	}
	if err := e.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	if collateralValueUSD <= in.Principal*domain.OriginationCoverage {
		e.log.Info("loan rejected: insufficient collateral",
			slog.String("loan_id", l.LoanID),
			slog.Float64("collateral_value_usd", collateralValueUSD),
			slog.Float64("principal", in.Principal))
		return l, domain.ErrInsufficientCollateral
	}

	if err := e.repo.TransitionStatus(ctx, l, domain.StatusApproved); err != nil {
		return nil, err
	}
	e.log.Info("loan approved",
		slog.String("loan_id", l.LoanID),
		slog.Float64("health_factor", l.HealthFactor(collateralValueUSD)))
	return l, nil
}

// Disburse confirms a successful cross-chain fund transfer by moving the
// loan approved -> active. Until this commits, the loan stays approved and
// disbursement remains retryable.
func (e *Engine) Disburse(ctx context.Context, loanID string) (*domain.Loan, error) {
	var out *domain.Loan
	err := e.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if err := r.Loans.TransitionStatus(ctx, l, domain.StatusActive); err != nil {
			return err
		}
		out = l
		return nil
	})
	return out, err
}

type RepayResult struct {
	LoanID           string  `json:"loan_id"`
	RemainingBalance float64 `json:"remaining_balance"`
	Status           string  `json:"status"`
}

// Repay settles an active loan. This is one-shot settlement: any accepted
// repayment transitions active -> repaid and the remaining balance
// max(0, principal - amount) is reported for reconciliation.
func (e *Engine) Repay(ctx context.Context, loanID string, amount float64, asset string) (*RepayResult, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	var out *RepayResult
	err := e.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if err := r.Loans.TransitionStatus(ctx, l, domain.StatusRepaid); err != nil {
			return err
		}
		remaining := l.Principal - amount
		if remaining < 0 {
			remaining = 0
		}
		out = &RepayResult{LoanID: l.LoanID, RemainingBalance: remaining, Status: string(l.Status)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("loan repaid",
		slog.String("loan_id", loanID),
		slog.String("asset", asset),
		slog.Float64("remaining_balance", out.RemainingBalance))
	return out, nil
}

type LiquidationResult struct {
	LoanID          string  `json:"loan_id"`
	Principal       float64 `json:"principal"`
	AmountRecovered float64 `json:"amount_recovered"`
	Status          string  `json:"status"`
}

// TriggerLiquidation moves an active (or defaulted) loan to liquidated and
// reports the recovered amount at the fixed recovery rate.
func (e *Engine) TriggerLiquidation(ctx context.Context, loanID string) (*LiquidationResult, error) {
	var out *LiquidationResult
	err := e.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if err := r.Loans.TransitionStatus(ctx, l, domain.StatusLiquidated); err != nil {
			return err
		}
		out = &LiquidationResult{
			LoanID:          l.LoanID,
			Principal:       l.Principal,
			AmountRecovered: l.Principal * domain.RecoveryRate,
			Status:          string(l.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("loan liquidated",
		slog.String("loan_id", loanID),
		slog.Float64("amount_recovered", out.AmountRecovered))
	return out, nil
}

// MarkDefaulted flags a matured, unpaid loan ahead of settlement.
func (e *Engine) MarkDefaulted(ctx context.Context, loanID string) error {
	return e.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		return r.Loans.TransitionStatus(ctx, l, domain.StatusDefaulted)
	})
}

type DetailsDTO struct {
	LoanID          string    `json:"loan_id"`
	BorrowerID      string    `json:"borrower_id"`
	CollateralAsset string    `json:"collateral_asset"`
	BorrowAsset     string    `json:"borrow_asset"`
	Principal       float64   `json:"principal"`
	TermDays        int       `json:"term_days"`
	InterestRate    float64   `json:"interest_rate"`
	Interest        float64   `json:"interest"`
	TotalRepayment  float64   `json:"total_repayment"`
	Status          string    `json:"status"`
	HealthFactor    float64   `json:"health_factor"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Details loads a loan and derives its financials against a fresh
// collateral valuation. Health factor is never cached across price changes.
func (e *Engine) Details(ctx context.Context, loanID string, collateralValueUSD float64) (*DetailsDTO, error) {
	l, err := e.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return &DetailsDTO{
		LoanID:          l.LoanID,
		BorrowerID:      l.BorrowerID,
		CollateralAsset: l.CollateralAsset,
		BorrowAsset:     l.BorrowAsset,
		Principal:       l.Principal,
		TermDays:        l.TermDays,
		InterestRate:    l.InterestRate,
		Interest:        l.Interest(),
		TotalRepayment:  l.TotalRepayment(),
		Status:          string(l.Status),
		HealthFactor:    l.HealthFactor(collateralValueUSD),
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}, nil
}
