package risk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lawrencezcl/GeminiLendX/internal/domain/ccm"
	endorsementdomain "github.com/lawrencezcl/GeminiLendX/internal/domain/endorsement"
	loandomain "github.com/lawrencezcl/GeminiLendX/internal/domain/loan"
	"github.com/lawrencezcl/GeminiLendX/internal/usecase/creditscore"
	endorsementuc "github.com/lawrencezcl/GeminiLendX/internal/usecase/endorsement"
	loanuc "github.com/lawrencezcl/GeminiLendX/internal/usecase/loan"
)

var (
	// ErrDisbursementPending: the loan is approved but fund disbursement has
	// not been confirmed. Resume by loan id; collateral is not re-evaluated.
	ErrDisbursementPending = errors.New("disbursement pending")
	// ErrSettlementPending: the authoritative state transition committed but
	// a follow-up cross-chain settlement has not been confirmed.
	ErrSettlementPending = errors.New("settlement pending")
)

// PriceOracle supplies point-in-time USD prices. Missing assets price at 0.
type PriceOracle interface {
	Prices(ctx context.Context, assets []string) (map[string]float64, error)
	Volatility(ctx context.Context, asset string) (float64, error)
}

// Messenger dispatches cross-chain messages, idempotency-keyed by
// (loan id, action). A ccm.ErrTimeout outcome is Unknown, not failed.
type Messenger interface {
	Send(ctx context.Context, msg ccm.Message) (*ccm.Receipt, error)
}

// Engine composes credit scoring, the endorsement manager and the loan
// lifecycle engine, and sequences cross-chain operations with compensating
// actions on partial failure.
type Engine struct {
	lifecycle    *loanuc.Engine
	endorsements *endorsementuc.Manager
	loans        loandomain.Repository
	endorseRepo  endorsementdomain.Repository
	oracle       PriceOracle
	messenger    Messenger
	log          *slog.Logger
}

func NewEngine(
	lifecycle *loanuc.Engine,
	endorsements *endorsementuc.Manager,
	loans loandomain.Repository,
	endorseRepo endorsementdomain.Repository,
	oracle PriceOracle,
	messenger Messenger,
	log *slog.Logger,
) *Engine {
	return &Engine{
		lifecycle:    lifecycle,
		endorsements: endorsements,
		loans:        loans,
		endorseRepo:  endorseRepo,
		oracle:       oracle,
		messenger:    messenger,
		log:          log,
	}
}

// LoanRequest is the already-structured output of the request parser.
type LoanRequest struct {
	BorrowerID       string
	CollateralAsset  string
	CollateralChain  string
	CollateralAmount float64
	BorrowAsset      string
	BorrowChain      string
	Amount           float64
	TermDays         int
}

type LoanResult struct {
	LoanID         string    `json:"loan_id"`
	Status         string    `json:"status"`
	Principal      float64   `json:"principal"`
	InterestRate   float64   `json:"interest_rate"`
	Interest       float64   `json:"interest"`
	TotalRepayment float64   `json:"total_repayment"`
	HealthFactor   float64   `json:"health_factor"`
	CreditScore    int       `json:"credit_score"`
	DisbursementTx string    `json:"disbursement_tx,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// rateForScore maps a credit score to the annual interest rate the borrower
// is offered.
func rateForScore(score int) float64 {
	switch {
	case score >= 750:
		return 4.5
	case score >= 650:
		return 5.5
	case score >= 550:
		return 7.0
	default:
		return 9.0
	}
}

// InitiateLoan runs the origination sequence: score the borrower, price the
// collateral, evaluate, lock collateral, disburse funds, activate. A
// messenger fault after approval surfaces ErrDisbursementPending with the
// loan id so ResumeDisbursement can pick up at the lock step without
// re-evaluating collateral.
func (e *Engine) InitiateLoan(ctx context.Context, req LoanRequest) (*LoanResult, error) {
	profile, err := e.BuildProfile(ctx, req.BorrowerID, req.CollateralAsset)
	if err != nil {
		return nil, err
	}
	score := creditscore.Score(profile)

	prices, err := e.oracle.Prices(ctx, []string{req.CollateralAsset})
	if err != nil {
		return nil, fmt.Errorf("price lookup: %w", err)
	}
	collateralValue := prices[req.CollateralAsset] * req.CollateralAmount

	l, err := e.lifecycle.Evaluate(ctx, loanuc.EvaluateInput{
		BorrowerID:       req.BorrowerID,
		CollateralAsset:  req.CollateralAsset,
		CollateralChain:  req.CollateralChain,
		CollateralAmount: req.CollateralAmount,
		BorrowAsset:      req.BorrowAsset,
		BorrowChain:      req.BorrowChain,
		Principal:        req.Amount,
		TermDays:         req.TermDays,
		InterestRate:     rateForScore(score.Score),
	}, collateralValue)
	if err != nil {
		return nil, err
	}

	receipt, err := e.disburse(ctx, l)
	if err != nil {
		// The loan stays approved; the remote side-effects are idempotency
		// keyed, so resuming cannot double-execute.
		e.log.Warn("disbursement incomplete",
			slog.String("loan_id", l.LoanID), slog.Any("error", err))
		return e.result(l, collateralValue, score.Score, nil), fmt.Errorf("%w: loan %s", ErrDisbursementPending, l.LoanID)
	}

	l, err = e.lifecycle.Disburse(ctx, l.LoanID)
	if err != nil {
		return nil, err
	}
	return e.result(l, collateralValue, score.Score, receipt), nil
}

// ResumeDisbursement retries the cross-chain leg for a loan stuck in
// approved, then activates it. Idempotent by loan id.
func (e *Engine) ResumeDisbursement(ctx context.Context, loanID string) (*LoanResult, error) {
	l, err := e.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != loandomain.StatusApproved {
		return nil, loandomain.ErrInvalidTransition
	}
	receipt, err := e.disburse(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("%w: loan %s", ErrDisbursementPending, l.LoanID)
	}
	l, err = e.lifecycle.Disburse(ctx, l.LoanID)
	if err != nil {
		return nil, err
	}
	// Re-price for reporting only; approval is not re-evaluated.
	collateralValue := 0.0
	if prices, perr := e.oracle.Prices(ctx, []string{l.CollateralAsset}); perr == nil {
		collateralValue = prices[l.CollateralAsset] * l.CollateralAmount
	}
	return e.result(l, collateralValue, 0, receipt), nil
}

// disburse performs the two cross-chain legs of origination in order:
// collateral lock on the source chain, then fund disbursement on the
// borrower's target chain.
func (e *Engine) disburse(ctx context.Context, l *loandomain.Loan) (*ccm.Receipt, error) {
	if _, err := e.messenger.Send(ctx, ccm.Message{
		LoanID:      l.LoanID,
		SourceChain: l.CollateralChain,
		TargetChain: "zetachain",
		Action:      ccm.ActionLockAndMint,
		Payload: map[string]any{
			"asset":        l.CollateralAsset,
			"amount":       l.CollateralAmount,
			"user_address": l.BorrowerID,
		},
	}); err != nil {
		return nil, err
	}

	receipt, err := e.messenger.Send(ctx, ccm.Message{
		LoanID:      l.LoanID,
		SourceChain: "base",
		TargetChain: l.BorrowChain,
		Action:      ccm.ActionDisburseFunds,
		Payload: map[string]any{
			"asset":        l.BorrowAsset,
			"amount":       l.Principal,
			"user_address": l.BorrowerID,
		},
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

type RepayLoanResult struct {
	LoanID           string  `json:"loan_id"`
	RemainingBalance float64 `json:"remaining_balance"`
	Status           string  `json:"status"`
	AmountApplied    float64 `json:"amount_applied"`
	CollateralTx     string  `json:"collateral_tx,omitempty"`
}

// RepayLoan converts a non-matching repayment asset at oracle prices,
// settles the loan, then releases the collateral. A failed release is
// reported as ErrSettlementPending alongside the result; repayment is the
// authoritative event and is never rolled back.
func (e *Engine) RepayLoan(ctx context.Context, loanID string, amount float64, asset string) (*RepayLoanResult, error) {
	if amount <= 0 {
		return nil, loandomain.ErrInvalidAmount
	}
	l, err := e.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	applied := amount
	if asset != l.BorrowAsset {
		applied, err = e.convert(ctx, amount, asset, l.BorrowAsset)
		if err != nil {
			return nil, err
		}
	}

	res, err := e.lifecycle.Repay(ctx, loanID, applied, l.BorrowAsset)
	if err != nil {
		return nil, err
	}
	out := &RepayLoanResult{
		LoanID:           res.LoanID,
		RemainingBalance: res.RemainingBalance,
		Status:           res.Status,
		AmountApplied:    applied,
	}

	receipt, err := e.messenger.Send(ctx, ccm.Message{
		LoanID:      l.LoanID,
		SourceChain: "zetachain",
		TargetChain: l.CollateralChain,
		Action:      ccm.ActionBurnAndUnlock,
		Payload: map[string]any{
			"asset":        l.CollateralAsset,
			"amount":       l.CollateralAmount,
			"user_address": l.BorrowerID,
		},
	})
	if err != nil {
		e.log.Warn("collateral unlock pending",
			slog.String("loan_id", l.LoanID), slog.Any("error", err))
		return out, fmt.Errorf("%w: collateral unlock for loan %s", ErrSettlementPending, l.LoanID)
	}
	out.CollateralTx = receipt.TransactionID
	return out, nil
}

// convert exchanges amount of `from` into `to` at oracle spot prices.
func (e *Engine) convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	prices, err := e.oracle.Prices(ctx, []string{from, to})
	if err != nil {
		return 0, fmt.Errorf("conversion price lookup: %w", err)
	}
	if prices[to] == 0 {
		return 0, fmt.Errorf("no price for asset %s", to)
	}
	return amount * prices[from] / prices[to], nil
}

type LiquidationOutcome struct {
	LoanID          string                          `json:"loan_id"`
	AmountRecovered float64                         `json:"amount_recovered"`
	Shortfall       float64                         `json:"shortfall"`
	SettlementTx    string                          `json:"settlement_tx,omitempty"`
	RiskShares      []endorsementuc.RiskShareResult `json:"risk_shares,omitempty"`
}

// LiquidateLoan sells the collateral and settles the recovered funds
// cross-chain, commits the liquidated state, and spreads the unrecovered
// shortfall across valid, unprocessed endorsements. The status CAS is the
// commit point: if a concurrent repayment already won, the transition fails
// and the (idempotency-keyed) settlement message is never duplicated.
func (e *Engine) LiquidateLoan(ctx context.Context, loanID string) (*LiquidationOutcome, error) {
	l, err := e.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != loandomain.StatusActive && l.Status != loandomain.StatusDefaulted {
		return nil, loandomain.ErrInvalidTransition
	}

	recovered := l.Principal * loandomain.RecoveryRate
	receipt, err := e.messenger.Send(ctx, ccm.Message{
		LoanID:      l.LoanID,
		SourceChain: l.CollateralChain,
		TargetChain: l.BorrowChain,
		Action:      ccm.ActionSettleLiquidation,
		Payload: map[string]any{
			"loan_id": l.LoanID,
			"amount":  recovered,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: liquidation settlement for loan %s", ErrSettlementPending, l.LoanID)
	}

	liq, err := e.lifecycle.TriggerLiquidation(ctx, loanID)
	if err != nil {
		return nil, err
	}

	out := &LiquidationOutcome{
		LoanID:          liq.LoanID,
		AmountRecovered: liq.AmountRecovered,
		Shortfall:       liq.Principal - liq.AmountRecovered,
		SettlementTx:    receipt.TransactionID,
	}
	if out.Shortfall > 0 {
		out.RiskShares = e.applyRiskSharing(ctx, l, out.Shortfall)
	}
	return out, nil
}

// applyRiskSharing debits each endorser's staked balance for their share of
// the shortfall. One endorsement's failure does not block the others.
func (e *Engine) applyRiskSharing(ctx context.Context, l *loandomain.Loan, shortfall float64) []endorsementuc.RiskShareResult {
	list, err := e.endorseRepo.ListValidUnprocessedByLoanID(ctx, l.LoanID)
	if err != nil {
		e.log.Error("listing endorsements failed",
			slog.String("loan_id", l.LoanID), slog.Any("error", err))
		return nil
	}
	var shares []endorsementuc.RiskShareResult
	for _, end := range list {
		res, err := e.endorsements.ApplyRiskSharing(ctx, end.EndorsementID, shortfall)
		if err != nil {
			e.log.Error("risk sharing failed",
				slog.String("endorsement_id", end.EndorsementID), slog.Any("error", err))
			continue
		}
		if _, err := e.messenger.Send(ctx, ccm.Message{
			LoanID:      l.LoanID,
			SourceChain: "zetachain",
			TargetChain: l.CollateralChain,
			Action:      ccm.ActionBurnAndUnlock,
			Payload: map[string]any{
				"endorsement_id": end.EndorsementID,
				"endorser":       end.EndorserID,
				"amount":         res.AmountDeducted,
				"reason":         "risk_share_debit",
			},
		}); err != nil {
			e.log.Warn("endorser stake debit pending",
				slog.String("endorsement_id", end.EndorsementID), slog.Any("error", err))
		}
		shares = append(shares, *res)
	}
	return shares
}

type ScoreResult struct {
	BorrowerID  string `json:"borrower_id"`
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// CreditScore assembles a fresh profile from the borrower's history and
// scores it.
func (e *Engine) CreditScore(ctx context.Context, borrowerID, collateralAsset string) (*ScoreResult, error) {
	profile, err := e.BuildProfile(ctx, borrowerID, collateralAsset)
	if err != nil {
		return nil, err
	}
	res := creditscore.Score(profile)
	return &ScoreResult{BorrowerID: borrowerID, Score: res.Score, Explanation: res.Explanation}, nil
}

// BuildProfile derives the scoring inputs from persisted history: repayment
// rate over terminal loans, valid endorsement count, distinct chains used,
// and the oracle's volatility figure for the collateral asset (treated as
// maximally volatile when unavailable, which simply earns no bonus).
func (e *Engine) BuildProfile(ctx context.Context, borrowerID, collateralAsset string) (creditscore.Profile, error) {
	history, err := e.loans.ListByBorrowerID(ctx, borrowerID)
	if err != nil {
		return creditscore.Profile{}, err
	}

	var repaid, terminal int
	chains := map[string]struct{}{}
	for _, l := range history {
		chains[l.CollateralChain] = struct{}{}
		chains[l.BorrowChain] = struct{}{}
		switch l.Status {
		case loandomain.StatusRepaid:
			repaid++
			terminal++
		case loandomain.StatusDefaulted, loandomain.StatusLiquidated:
			terminal++
		}
	}
	rate := 0.0
	if terminal > 0 {
		rate = float64(repaid) / float64(terminal)
	}

	endorsed, err := e.endorseRepo.CountValidByBorrowerID(ctx, borrowerID)
	if err != nil {
		return creditscore.Profile{}, err
	}

	vol, err := e.oracle.Volatility(ctx, collateralAsset)
	if err != nil {
		e.log.Warn("volatility unavailable",
			slog.String("asset", collateralAsset), slog.Any("error", err))
		vol = 1.0
	}

	return creditscore.Profile{
		RepaymentRate:        rate,
		CollateralVolatility: vol,
		Endorsements:         int(endorsed),
		ChainsUsed:           len(chains),
	}, nil
}

func (e *Engine) result(l *loandomain.Loan, collateralValue float64, score int, receipt *ccm.Receipt) *LoanResult {
	out := &LoanResult{
		LoanID:         l.LoanID,
		Status:         string(l.Status),
		Principal:      l.Principal,
		InterestRate:   l.InterestRate,
		Interest:       l.Interest(),
		TotalRepayment: l.TotalRepayment(),
		HealthFactor:   l.HealthFactor(collateralValue),
		CreditScore:    score,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
	if receipt != nil {
		out.DisbursementTx = receipt.TransactionID
	}
	return out
}
