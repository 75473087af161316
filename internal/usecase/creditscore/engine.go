// Package creditscore converts a borrower's behavioral history into a
// bounded numeric score with a weighted explanation. Pure and deterministic:
// no I/O, no clock, no randomness.
package creditscore

import (
	"fmt"
	"math"
	"strings"
)

const (
	BaseScore = 600
	MinScore  = 300
	MaxScore  = 850
)

// Profile carries the behavioral inputs, assembled fresh per call by the
// risk engine. It is never persisted here.
type Profile struct {
	RepaymentRate        float64 // fraction in [0,1]
	CollateralVolatility float64 // fraction, lower is better
	Endorsements         int     // count of valid peer endorsements
	ChainsUsed           int     // distinct chains in the borrower's history
}

type Result struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// Score applies four weighted tiers over the 550-point range above base:
// repayment rate 40%, collateral volatility 30%, endorsements 20%, chain
// diversity 10%. The result is clamped to [300, 850].
func Score(p Profile) Result {
	score := float64(BaseScore)
	parts := []string{"Base credit score of 600"}

	switch {
	case p.RepaymentRate >= 0.95:
		score += 170
		parts = append(parts, "high repayment rate (40%)")
	case p.RepaymentRate >= 0.85:
		score += 110
		parts = append(parts, "good repayment rate (40%)")
	case p.RepaymentRate >= 0.75:
		score += 55
		parts = append(parts, "average repayment rate (40%)")
	}

	switch {
	case p.CollateralVolatility <= 0.10:
		score += 110
		parts = append(parts, "low collateral volatility (30%)")
	case p.CollateralVolatility <= 0.25:
		score += 77
		parts = append(parts, "moderate collateral volatility (30%)")
	}

	switch {
	case p.Endorsements >= 3:
		score += 90
		parts = append(parts, "multiple endorsers (20%)")
	case p.Endorsements >= 1:
		score += 45
		parts = append(parts, "some endorsers (20%)")
	}

	switch {
	case p.ChainsUsed >= 3:
		score += 55
		parts = append(parts, "diversified chain usage (10%)")
	case p.ChainsUsed >= 2:
		score += 28
		parts = append(parts, "moderate chain usage (10%)")
	}

	rounded := int(math.Round(math.Max(MinScore, math.Min(MaxScore, score))))
	return Result{
		Score:       rounded,
		Explanation: fmt.Sprintf("Your score is %d - %s", rounded, strings.Join(parts, ", ")),
	}
}
