package endorsement

import (
	"errors"
	"testing"
)

func TestNew_PercentageBounds(t *testing.T) {
	for _, pct := range []float64{10, 20, 30} {
		if _, err := New("e1", "l1", "endorser", "borrower", pct, "0xsig"); err != nil {
			t.Fatalf("percentage %v should be accepted: %v", pct, err)
		}
	}
	for _, pct := range []float64{0, 9.99, 30.01, -5, 100} {
		if _, err := New("e1", "l1", "endorser", "borrower", pct, "0xsig"); !errors.Is(err, ErrInvalidPercentage) {
			t.Fatalf("percentage %v should be rejected with ErrInvalidPercentage, got %v", pct, err)
		}
	}
}

func TestSignedMessage(t *testing.T) {
	e, err := New("e1", "loan-abc", "endorser", "borrower", 15, "0xsig")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := e.SignedMessage(); got != "endorsement for loan loan-abc" {
		t.Fatalf("SignedMessage = %q", got)
	}
}
