package endorsement

import (
	"time"

	"gorm.io/gorm"
)

// Percentage bounds for a peer guarantee.
const (
	MinPercentage = 10.0
	MaxPercentage = 30.0
)

// Endorsement is a third party's partial risk guarantee for a borrower's
// loan. The endorser absorbs percentage/100 of the defaulted amount.
type Endorsement struct {
	ID             uint64         `gorm:"primaryKey;column:id" json:"-"`
	EndorsementID  string         `gorm:"size:32;uniqueIndex:ux_endorsements_endorsement_id" json:"endorsement_id"`
	LoanID         string         `gorm:"size:32;index:idx_endorsements_loan" json:"loan_id"`
	EndorserID     string         `gorm:"size:64" json:"endorser_id"`
	BorrowerID     string         `gorm:"size:64;index:idx_endorsements_borrower" json:"borrower_id"`
	Percentage     float64        `gorm:"type:decimal(5,2)" json:"percentage"`
	Signature      string         `gorm:"type:text" json:"-"`
	IsValid        bool           `gorm:"default:false" json:"is_valid"`
	IsProcessed    bool           `gorm:"default:false" json:"is_processed"`
	AmountDeducted float64        `gorm:"type:decimal(18,2);default:0" json:"amount_deducted"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Endorsement) TableName() string { return "endorsements" }

// New builds an unvalidated endorsement, rejecting out-of-bounds percentages
// at construction time.
func New(endorsementID, loanID, endorserID, borrowerID string, percentage float64, signature string) (*Endorsement, error) {
	if percentage < MinPercentage || percentage > MaxPercentage {
		return nil, ErrInvalidPercentage
	}
	return &Endorsement{
		EndorsementID: endorsementID,
		LoanID:        loanID,
		EndorserID:    endorserID,
		BorrowerID:    borrowerID,
		Percentage:    percentage,
		Signature:     signature,
	}, nil
}

// SignedMessage is the canonical payload the endorser is expected to have
// signed.
func (e *Endorsement) SignedMessage() string {
	return "endorsement for loan " + e.LoanID
}
