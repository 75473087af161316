package loan

import (
	"math"
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusActive     Status = "active"
	StatusRepaid     Status = "repaid"
	StatusDefaulted  Status = "defaulted"
	StatusLiquidated Status = "liquidated"
)

// Risk constants shared by origination and ongoing solvency checks.
const (
	// LTVRatio is the permitted borrowed fraction of collateral value.
	LTVRatio = 0.8
	// OriginationCoverage gates approval: collateral value must exceed
	// principal * 1.2 at request time.
	OriginationCoverage = 1.2
	// RecoveryRate is the fraction of principal recouped on liquidation
	// (fixed 5% penalty/slippage assumption).
	RecoveryRate = 0.95
)

type Loan struct {
	ID               uint64         `gorm:"primaryKey;column:id" json:"-"`
	LoanID           string         `gorm:"size:32;uniqueIndex:ux_loans_loan_id_active" json:"loan_id"`
	BorrowerID       string         `gorm:"size:64;index:idx_loans_borrower_active" json:"borrower_id"`
	CollateralAsset  string         `gorm:"size:16" json:"collateral_asset"`
	CollateralChain  string         `gorm:"size:32" json:"collateral_chain"`
	CollateralAmount float64        `gorm:"type:decimal(24,8)" json:"collateral_amount"`
	BorrowAsset      string         `gorm:"size:16" json:"borrow_asset"`
	BorrowChain      string         `gorm:"size:32" json:"borrow_chain"`
	Principal        float64        `gorm:"type:decimal(18,2)" json:"principal"`
	TermDays         int            `gorm:"column:term_days" json:"term_days"`
	InterestRate     float64        `gorm:"type:decimal(6,4)" json:"interest_rate"`
	Status           Status         `gorm:"size:16;default:'pending'" json:"status"`
	Version          uint64         `gorm:"default:0" json:"-"`
	StatusUpdatedAt  time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// transitions is the full state machine. pending is initial; repaid and
// liquidated are terminal. defaulted loans still settle into liquidated.
var transitions = map[Status][]Status{
	StatusPending:   {StatusApproved},
	StatusApproved:  {StatusActive},
	StatusActive:    {StatusRepaid, StatusDefaulted, StatusLiquidated},
	StatusDefaulted: {StatusLiquidated},
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusRepaid || s == StatusLiquidated
}

// HealthFactor = (collateralValueUSD * LTV) / principal. A loan with no
// outstanding principal is infinitely healthy.
func (l *Loan) HealthFactor(collateralValueUSD float64) float64 {
	if l.Principal == 0 {
		return math.Inf(1)
	}
	return (collateralValueUSD * LTVRatio) / l.Principal
}

// Interest is simple interest: principal * (APR/100) * (termDays/365).
func (l *Loan) Interest() float64 {
	return l.Principal * (l.InterestRate / 100) * (float64(l.TermDays) / 365)
}

func (l *Loan) TotalRepayment() float64 {
	return l.Principal + l.Interest()
}
