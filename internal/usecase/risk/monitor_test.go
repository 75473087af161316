package risk

import (
	"context"
	"testing"
	"time"

	loandomain "github.com/lawrencezcl/GeminiLendX/internal/domain/loan"
)

func monitorHarness(t *testing.T, h *harness, threshold float64) *Monitor {
	t.Helper()
	return NewMonitor(h.engine, h.engine.loans, h.oracle, time.Minute, 5*time.Second, threshold, discard())
}

func TestSweep_LiquidatesBreachedLoans(t *testing.T) {
	h := newHarness(t)
	res, err := h.engine.InitiateLoan(context.Background(), ethLoanRequest(1000))
	if err != nil {
		t.Fatalf("InitiateLoan: %v", err)
	}

	m := monitorHarness(t, h, 1.0)

	// collateral crash: 1 ETH now worth 1000, HF = 1000*0.8/1000 = 0.8 < 1.0
	h.oracle.prices["ETH"] = 1000
	m.Sweep(context.Background())

	if h.loans[res.LoanID].Status != loandomain.StatusLiquidated {
		t.Fatalf("status = %s, want liquidated after breach", h.loans[res.LoanID].Status)
	}
}

func TestSweep_LeavesHealthyLoansAlone(t *testing.T) {
	h := newHarness(t)
	res, err := h.engine.InitiateLoan(context.Background(), ethLoanRequest(1000))
	if err != nil {
		t.Fatalf("InitiateLoan: %v", err)
	}
	m := monitorHarness(t, h, 1.0)

	// HF = 2000*0.8/1000 = 1.6, above both threshold and warning band
	m.Sweep(context.Background())
	if h.loans[res.LoanID].Status != loandomain.StatusActive {
		t.Fatalf("status = %s, healthy loan must stay active", h.loans[res.LoanID].Status)
	}

	// HF inside the warning band (1.0..1.5) is logged, not liquidated
	h.oracle.prices["ETH"] = 1500 // HF = 1.2
	m.Sweep(context.Background())
	if h.loans[res.LoanID].Status != loandomain.StatusActive {
		t.Fatalf("status = %s, warn-band loan must stay active", h.loans[res.LoanID].Status)
	}
}

func TestSweep_PriceFailureSkipsLoan(t *testing.T) {
	h := newHarness(t)
	res, err := h.engine.InitiateLoan(context.Background(), ethLoanRequest(1000))
	if err != nil {
		t.Fatalf("InitiateLoan: %v", err)
	}
	m := monitorHarness(t, h, 1.0)

	h.oracle.priceErr = context.DeadlineExceeded
	m.Sweep(context.Background())
	if h.loans[res.LoanID].Status != loandomain.StatusActive {
		t.Fatal("a failed price fetch must not change loan state")
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	h := newHarness(t)
	m := NewMonitor(h.engine, h.engine.loans, h.oracle, 5*time.Millisecond, time.Second, 1.0, discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
