package gormrepo

import (
	"context"

	loanDomain "coopfin-loan-engine/internal/domain/loan"

	"gorm.io/gorm"
)

var terminalStatuses = []loanDomain.Status{
	loanDomain.StatusRejected,
	loanDomain.StatusCancelled,
	loanDomain.StatusClosed,
	loanDomain.StatusDefaulted,
}

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

// Save bumps the version; a stale version means someone else wrote first.
func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	prev := l.Version
	l.Version = prev + 1
	res := r.db.WithContext(ctx).
		Model(l).
		Where("version = ?", prev).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(l)
	if res.Error != nil {
		l.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		l.Version = prev
		return loanDomain.ErrConcurrentUpdate
	}
	return nil
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	if err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out).Error; err != nil {
		return nil, notFound(err, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("loan_id = ?", loanID).
		First(&out).Error
	if err != nil {
		return nil, notFound(err, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) GetOpenLoanByBorrowerID(ctx context.Context, borrowerID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("borrower_id = ? AND status NOT IN ?", borrowerID, terminalStatuses).
		Order("requested_at DESC, id DESC").
		First(&out).Error
	if err != nil {
		return nil, notFound(err, loanDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LoanRepository) List(ctx context.Context, f loanDomain.Filter) ([]loanDomain.Loan, error) {
	q := r.db.WithContext(ctx).Model(&loanDomain.Loan{})
	if f.BorrowerID != "" {
		q = q.Where("borrower_id = ?", f.BorrowerID)
	}
	if f.GuarantorID != "" {
		q = q.Where("guarantor_id = ?", f.GuarantorID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []loanDomain.Loan
	err := q.Order("requested_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *LoanRepository) Delete(ctx context.Context, l *loanDomain.Loan, deletedBy string) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(l).Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return db.Delete(l).Error
}
