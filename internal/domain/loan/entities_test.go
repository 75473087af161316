package loan

import (
	"math"
	"testing"
)

func TestHealthFactor(t *testing.T) {
	l := &Loan{Principal: 1000}

	// 1500 collateral value * 0.8 LTV / 1000 principal = 1.2
	if got := l.HealthFactor(1500); math.Abs(got-1.2) > 1e-9 {
		t.Fatalf("HealthFactor(1500) = %v, want 1.2", got)
	}

	// below par
	if got := l.HealthFactor(1000); got >= 1.0 {
		t.Fatalf("HealthFactor(1000) = %v, want < 1.0", got)
	}

	// zero collateral value
	if got := l.HealthFactor(0); got != 0 {
		t.Fatalf("HealthFactor(0) = %v, want 0", got)
	}

	// no outstanding principal is infinitely healthy
	z := &Loan{Principal: 0}
	if got := z.HealthFactor(1500); !math.IsInf(got, 1) {
		t.Fatalf("HealthFactor with zero principal = %v, want +Inf", got)
	}
}

func TestInterestAndTotalRepayment(t *testing.T) {
	l := &Loan{Principal: 1000, InterestRate: 7.0, TermDays: 365}
	if got := l.Interest(); math.Abs(got-70) > 1e-9 {
		t.Fatalf("Interest = %v, want 70", got)
	}
	if got := l.TotalRepayment(); math.Abs(got-1070) > 1e-9 {
		t.Fatalf("TotalRepayment = %v, want 1070", got)
	}

	half := &Loan{Principal: 1000, InterestRate: 7.0, TermDays: 182}
	want := 1000 * 0.07 * (182.0 / 365.0)
	if got := half.Interest(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("Interest half term = %v, want %v", got, want)
	}
}

func TestStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to Status
	}{
		{StatusPending, StatusApproved},
		{StatusApproved, StatusActive},
		{StatusActive, StatusRepaid},
		{StatusActive, StatusDefaulted},
		{StatusActive, StatusLiquidated},
		{StatusDefaulted, StatusLiquidated},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to Status
	}{
		{StatusPending, StatusActive},
		{StatusApproved, StatusRepaid},
		{StatusRepaid, StatusActive},
		{StatusLiquidated, StatusActive},
		{StatusDefaulted, StatusRepaid},
		{StatusActive, StatusPending},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be denied", tc.from, tc.to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !StatusRepaid.IsTerminal() || !StatusLiquidated.IsTerminal() {
		t.Fatal("repaid and liquidated must be terminal")
	}
	for _, s := range []Status{StatusPending, StatusApproved, StatusActive, StatusDefaulted} {
		if s.IsTerminal() {
			t.Fatalf("%s must not be terminal", s)
		}
	}
}
