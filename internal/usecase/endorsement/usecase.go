package endorsement

import (
	"context"
	"fmt"
	"log/slog"

	domain "github.com/lawrencezcl/GeminiLendX/internal/domain/endorsement"
)

// Verifier checks an ECDSA signature. A (false, nil) return is a
// validly-checked-but-wrong signature; a non-nil error means the check
// itself could not complete.
type Verifier interface {
	Verify(ctx context.Context, signerID, message, signature string) (bool, error)
}

type Manager struct {
	repo     domain.Repository
	verifier Verifier
	log      *slog.Logger
}

func NewManager(repo domain.Repository, verifier Verifier, log *slog.Logger) *Manager {
	return &Manager{repo: repo, verifier: verifier, log: log}
}

type CreateInput struct {
	EndorsementID string
	LoanID        string
	EndorserID    string
	BorrowerID    string
	Percentage    float64
	Signature     string
}

// Create stores a new, not-yet-validated endorsement. Percentage bounds are
// enforced at construction.
func (m *Manager) Create(ctx context.Context, in CreateInput) (*domain.Endorsement, error) {
	e, err := domain.New(in.EndorsementID, in.LoanID, in.EndorserID, in.BorrowerID, in.Percentage, in.Signature)
	if err != nil {
		return nil, err
	}
	if err := m.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate delegates signature verification and persists the outcome. An
// infrastructure failure of the check surfaces as ErrVerification and never
// silently defaults to valid.
func (m *Manager) Validate(ctx context.Context, endorsementID string) (bool, error) {
	e, err := m.repo.GetByEndorsementID(ctx, endorsementID)
	if err != nil {
		return false, err
	}
	if e.Percentage < domain.MinPercentage || e.Percentage > domain.MaxPercentage {
		return false, domain.ErrInvalidPercentage
	}

	ok, err := m.verifier.Verify(ctx, e.EndorserID, e.SignedMessage(), e.Signature)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrVerification, err)
	}

	e.IsValid = ok
	if err := m.repo.Save(ctx, e); err != nil {
		return false, err
	}
	m.log.Info("endorsement validated",
		slog.String("endorsement_id", e.EndorsementID),
		slog.String("loan_id", e.LoanID),
		slog.Bool("is_valid", ok))
	return ok, nil
}

type RiskShareResult struct {
	EndorsementID  string  `json:"endorsement_id"`
	EndorserID     string  `json:"endorser_id"`
	AmountDeducted float64 `json:"amount_deducted"`
	Status         string  `json:"status"`
}

// ApplyRiskSharing computes the endorser's share of a defaulted amount and
// marks the endorsement processed. At most one invocation succeeds per
// endorsement: the processed flag is flipped with a conditional update, so
// repeated calls fail with ErrAlreadyProcessed rather than double-debiting.
// The actual stake debit is executed by the cross-chain messenger.
func (m *Manager) ApplyRiskSharing(ctx context.Context, endorsementID string, defaultedAmount float64) (*RiskShareResult, error) {
	e, err := m.repo.GetByEndorsementID(ctx, endorsementID)
	if err != nil {
		return nil, err
	}
	if !e.IsValid {
		return nil, domain.ErrInvalidEndorsement
	}
	if e.IsProcessed {
		return nil, domain.ErrAlreadyProcessed
	}

	amount := e.Percentage / 100 * defaultedAmount
	if err := m.repo.MarkProcessed(ctx, e, amount); err != nil {
		return nil, err
	}
	m.log.Info("risk sharing applied",
		slog.String("endorsement_id", e.EndorsementID),
		slog.String("endorser_id", e.EndorserID),
		slog.Float64("amount_deducted", amount))
	return &RiskShareResult{
		EndorsementID:  e.EndorsementID,
		EndorserID:     e.EndorserID,
		AmountDeducted: amount,
		Status:         "processed",
	}, nil
}
