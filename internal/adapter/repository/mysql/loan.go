package mysql

import (
	"context"
	"errors"
	"time"

	loandomain "github.com/lawrencezcl/GeminiLendX/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loandomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loandomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loandomain.Loan, error) {
	var out loandomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, loandomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loandomain.Loan, error) {
	var out loandomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, loandomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *LoanRepository) ListByBorrowerID(ctx context.Context, borrowerID string) ([]*loandomain.Loan, error) {
	var out []*loandomain.Loan
	res := r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListByStatus(ctx context.Context, status loandomain.Status) ([]*loandomain.Loan, error) {
	var out []*loandomain.Loan
	res := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

// TransitionStatus is the single write path for loan status. The state
// machine is checked first, then the row is updated with a version guard so
// exactly one of two racing writers commits; the loser sees 0 rows affected.
func (r *LoanRepository) TransitionStatus(ctx context.Context, l *loandomain.Loan, to loandomain.Status) error {
	if l.Status.IsTerminal() {
		return loandomain.ErrTerminalState
	}
	if !l.Status.CanTransitionTo(to) {
		return loandomain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&loandomain.Loan{}).
		Where("loan_id = ? AND version = ?", l.LoanID, l.Version).
		Updates(map[string]any{
			"status":            to,
			"version":           l.Version + 1,
			"status_updated_at": now,
			"updated_at":        now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return loandomain.ErrConcurrentModification
	}

	l.Status = to
	l.Version++
	l.StatusUpdatedAt = now
	l.UpdatedAt = now
	return nil
}
