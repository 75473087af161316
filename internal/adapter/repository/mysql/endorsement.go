package mysql

import (
	"context"
	"errors"
	"time"

	endorsementdomain "github.com/lawrencezcl/GeminiLendX/internal/domain/endorsement"

	"gorm.io/gorm"
)

type EndorsementRepository struct{ db *gorm.DB }

func NewEndorsementRepository(db *gorm.DB) *EndorsementRepository {
	return &EndorsementRepository{db: db}
}

func (r *EndorsementRepository) Create(ctx context.Context, e *endorsementdomain.Endorsement) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EndorsementRepository) Save(ctx context.Context, e *endorsementdomain.Endorsement) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *EndorsementRepository) GetByEndorsementID(ctx context.Context, endorsementID string) (*endorsementdomain.Endorsement, error) {
	var out endorsementdomain.Endorsement
	res := r.db.WithContext(ctx).Where("endorsement_id = ?", endorsementID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, endorsementdomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *EndorsementRepository) ListByLoanID(ctx context.Context, loanID string) ([]*endorsementdomain.Endorsement, error) {
	var out []*endorsementdomain.Endorsement
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *EndorsementRepository) ListValidUnprocessedByLoanID(ctx context.Context, loanID string) ([]*endorsementdomain.Endorsement, error) {
	var out []*endorsementdomain.Endorsement
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND is_valid = ? AND is_processed = ?", loanID, true, false).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *EndorsementRepository) CountValidByBorrowerID(ctx context.Context, borrowerID string) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&endorsementdomain.Endorsement{}).
		Where("borrower_id = ? AND is_valid = ?", borrowerID, true).
		Count(&n)
	return n, res.Error
}

// MarkProcessed flips the processed flag with a conditional update so the
// debit amount is recorded at most once per endorsement, regardless of how
// many callers race.
func (r *EndorsementRepository) MarkProcessed(ctx context.Context, e *endorsementdomain.Endorsement, amountDeducted float64) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&endorsementdomain.Endorsement{}).
		Where("endorsement_id = ? AND is_processed = ?", e.EndorsementID, false).
		Updates(map[string]any{
			"is_processed":    true,
			"amount_deducted": amountDeducted,
			"updated_at":      now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return endorsementdomain.ErrAlreadyProcessed
	}
	e.IsProcessed = true
	e.AmountDeducted = amountDeducted
	e.UpdatedAt = now
	return nil
}
