package endorsement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	domain "github.com/lawrencezcl/GeminiLendX/internal/domain/endorsement"
	"github.com/lawrencezcl/GeminiLendX/internal/testutil/endorsementmock"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type verifierFunc func(ctx context.Context, signerID, message, signature string) (bool, error)

func (f verifierFunc) Verify(ctx context.Context, signerID, message, signature string) (bool, error) {
	return f(ctx, signerID, message, signature)
}

func okVerifier(ok bool) Verifier {
	return verifierFunc(func(context.Context, string, string, string) (bool, error) { return ok, nil })
}

func TestCreate_RejectsBadPercentage(t *testing.T) {
	m := NewManager(&endorsementmock.Repo{}, okVerifier(true), discard())
	_, err := m.Create(context.Background(), CreateInput{
		EndorsementID: "e1", LoanID: "l1", EndorserID: "x", BorrowerID: "y",
		Percentage: 45, Signature: "0xsig",
	})
	if !errors.Is(err, domain.ErrInvalidPercentage) {
		t.Fatalf("want ErrInvalidPercentage, got %v", err)
	}
}

func TestCreate_Persists(t *testing.T) {
	var created *domain.Endorsement
	repo := &endorsementmock.Repo{
		CreateFn: func(_ context.Context, e *domain.Endorsement) error {
			created = e
			return nil
		},
	}
	m := NewManager(repo, okVerifier(true), discard())
	e, err := m.Create(context.Background(), CreateInput{
		EndorsementID: "e1", LoanID: "l1", EndorserID: "x", BorrowerID: "y",
		Percentage: 20, Signature: "0xsig",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created != e {
		t.Fatal("endorsement not handed to repository")
	}
	if e.IsValid || e.IsProcessed {
		t.Fatal("new endorsement must start unvalidated and unprocessed")
	}
}

func TestValidate_PersistsOutcome(t *testing.T) {
	stored := &domain.Endorsement{EndorsementID: "e1", LoanID: "l1", EndorserID: "0xabc", Percentage: 20, Signature: "0xsig"}
	var saved *domain.Endorsement
	repo := &endorsementmock.Repo{
		GetByEndorsementIDFn: func(_ context.Context, id string) (*domain.Endorsement, error) {
			if id != "e1" {
				return nil, domain.ErrNotFound
			}
			return stored, nil
		},
		SaveFn: func(_ context.Context, e *domain.Endorsement) error {
			saved = e
			return nil
		},
	}

	var gotMessage string
	v := verifierFunc(func(_ context.Context, signerID, message, signature string) (bool, error) {
		gotMessage = message
		return true, nil
	})
	m := NewManager(repo, v, discard())

	ok, err := m.Validate(context.Background(), "e1")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !ok || !saved.IsValid {
		t.Fatal("valid signature should mark endorsement valid")
	}
	if gotMessage != "endorsement for loan l1" {
		t.Fatalf("verified message = %q", gotMessage)
	}

	// a wrong-signer check persists invalid, no error
	m = NewManager(repo, okVerifier(false), discard())
	ok, err = m.Validate(context.Background(), "e1")
	if err != nil {
		t.Fatalf("Validate wrong signer: %v", err)
	}
	if ok || saved.IsValid {
		t.Fatal("wrong signer should mark endorsement invalid")
	}
}

func TestValidate_VerifierFailureIsNotInvalid(t *testing.T) {
	stored := &domain.Endorsement{EndorsementID: "e1", LoanID: "l1", Percentage: 20, Signature: "junk"}
	repo := &endorsementmock.Repo{
		GetByEndorsementIDFn: func(context.Context, string) (*domain.Endorsement, error) { return stored, nil },
		SaveFn: func(context.Context, *domain.Endorsement) error {
			t.Fatal("must not persist an outcome when verification errors")
			return nil
		},
	}
	v := verifierFunc(func(context.Context, string, string, string) (bool, error) {
		return false, errors.New("malformed signature")
	})
	m := NewManager(repo, v, discard())

	_, err := m.Validate(context.Background(), "e1")
	if !errors.Is(err, domain.ErrVerification) {
		t.Fatalf("want ErrVerification, got %v", err)
	}
}

func TestApplyRiskSharing(t *testing.T) {
	stored := &domain.Endorsement{
		EndorsementID: "e1", LoanID: "l1", EndorserID: "0xabc",
		Percentage: 20, IsValid: true,
	}
	repo := &endorsementmock.Repo{
		GetByEndorsementIDFn: func(context.Context, string) (*domain.Endorsement, error) { return stored, nil },
	}
	m := NewManager(repo, okVerifier(true), discard())

	res, err := m.ApplyRiskSharing(context.Background(), "e1", 1000)
	if err != nil {
		t.Fatalf("ApplyRiskSharing: %v", err)
	}
	if res.AmountDeducted != 200 {
		t.Fatalf("deducted = %v, want 200 (20%% of 1000)", res.AmountDeducted)
	}
	if res.Status != "processed" {
		t.Fatalf("status = %q", res.Status)
	}

	// second application is refused
	if _, err := m.ApplyRiskSharing(context.Background(), "e1", 1000); !errors.Is(err, domain.ErrAlreadyProcessed) {
		t.Fatalf("want ErrAlreadyProcessed, got %v", err)
	}
}

func TestApplyRiskSharing_RequiresValid(t *testing.T) {
	stored := &domain.Endorsement{EndorsementID: "e1", Percentage: 20, IsValid: false}
	repo := &endorsementmock.Repo{
		GetByEndorsementIDFn: func(context.Context, string) (*domain.Endorsement, error) { return stored, nil },
	}
	m := NewManager(repo, okVerifier(true), discard())
	if _, err := m.ApplyRiskSharing(context.Background(), "e1", 1000); !errors.Is(err, domain.ErrInvalidEndorsement) {
		t.Fatalf("want ErrInvalidEndorsement, got %v", err)
	}
}
