package gormrepo

import (
	"context"

	approvalDomain "coopfin-loan-engine/internal/domain/approval"

	"gorm.io/gorm"
)

type DecisionRepository struct{ db *gorm.DB }

func NewDecisionRepository(db *gorm.DB) *DecisionRepository { return &DecisionRepository{db: db} }

func (r *DecisionRepository) Create(ctx context.Context, d *approvalDomain.Decision) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DecisionRepository) GetByLoanAndGuarantor(ctx context.Context, loanID, guarantorID string) (*approvalDomain.Decision, error) {
	var out approvalDomain.Decision
	err := r.db.WithContext(ctx).
		Where("loan_id = ? AND guarantor_id = ?", loanID, guarantorID).
		First(&out).Error
	if err != nil {
		return nil, notFound(err, approvalDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *DecisionRepository) ListByLoanID(ctx context.Context, loanID string) ([]approvalDomain.Decision, error) {
	var out []approvalDomain.Decision
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("decided_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
