package risk

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	loandomain "github.com/lawrencezcl/GeminiLendX/internal/domain/loan"
)

// warnBand is the upper edge of the health-factor warning band; loans
// between the liquidation threshold and this value are logged but left
// alone.
const warnBand = 1.5

// Monitor periodically re-prices every active loan and routes
// under-collateralized ones to liquidation. Each loan is checked in its own
// goroutine with its own timeout, so one slow price fetch never delays or
// aborts the rest of the sweep.
type Monitor struct {
	engine    *Engine
	loans     loandomain.Repository
	oracle    PriceOracle
	interval  time.Duration
	timeout   time.Duration
	threshold float64
	log       *slog.Logger
}

func NewMonitor(engine *Engine, loans loandomain.Repository, oracle PriceOracle, interval, timeout time.Duration, threshold float64, log *slog.Logger) *Monitor {
	if threshold <= 0 {
		threshold = 1.0
	}
	return &Monitor{
		engine:    engine,
		loans:     loans,
		oracle:    oracle,
		interval:  interval,
		timeout:   timeout,
		threshold: threshold,
		log:       log,
	}
}

// Run blocks until ctx is cancelled, sweeping at the configured interval.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep checks every active loan once and waits for all checks to finish.
func (m *Monitor) Sweep(ctx context.Context) {
	active, err := m.loans.ListByStatus(ctx, loandomain.StatusActive)
	if err != nil {
		m.log.Error("monitor: listing active loans failed", slog.Any("error", err))
		return
	}

	var wg sync.WaitGroup
	for _, l := range active {
		wg.Add(1)
		go func(l *loandomain.Loan) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()
			m.checkLoan(checkCtx, l)
		}(l)
	}
	wg.Wait()
}

func (m *Monitor) checkLoan(ctx context.Context, l *loandomain.Loan) {
	prices, err := m.oracle.Prices(ctx, []string{l.CollateralAsset})
	if err != nil {
		m.log.Error("monitor: price fetch failed",
			slog.String("loan_id", l.LoanID), slog.Any("error", err))
		return
	}
	hf := l.HealthFactor(prices[l.CollateralAsset] * l.CollateralAmount)

	switch {
	case hf < m.threshold:
		m.log.Warn("monitor: health factor breach, liquidating",
			slog.String("loan_id", l.LoanID), slog.Float64("health_factor", hf))
		if _, err := m.engine.LiquidateLoan(ctx, l.LoanID); err != nil {
			// A concurrent repayment winning the race is a normal outcome.
			if errors.Is(err, loandomain.ErrConcurrentModification) || errors.Is(err, loandomain.ErrInvalidTransition) {
				m.log.Info("monitor: loan transitioned elsewhere",
					slog.String("loan_id", l.LoanID), slog.Any("error", err))
				return
			}
			m.log.Error("monitor: liquidation failed",
				slog.String("loan_id", l.LoanID), slog.Any("error", err))
		}
	case hf < warnBand:
		m.log.Warn("monitor: health factor in warning band",
			slog.String("loan_id", l.LoanID), slog.Float64("health_factor", hf))
	}
}
