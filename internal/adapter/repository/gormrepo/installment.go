package gormrepo

import (
	"context"

	"coopfin-loan-engine/internal/domain/installment"

	"gorm.io/gorm"
)

type InstallmentRepository struct{ db *gorm.DB }

func NewInstallmentRepository(db *gorm.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

func (r *InstallmentRepository) CreateBatch(ctx context.Context, items []installment.Installment) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *InstallmentRepository) GetByInstallmentID(ctx context.Context, installmentID string) (*installment.Installment, error) {
	var out installment.Installment
	if err := r.db.WithContext(ctx).Where("installment_id = ?", installmentID).First(&out).Error; err != nil {
		return nil, notFound(err, installment.ErrNotFound)
	}
	return &out, nil
}

func (r *InstallmentRepository) GetByInstallmentIDForUpdate(ctx context.Context, installmentID string) (*installment.Installment, error) {
	var out installment.Installment
	err := r.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("installment_id = ?", installmentID).
		First(&out).Error
	if err != nil {
		return nil, notFound(err, installment.ErrNotFound)
	}
	return &out, nil
}

func (r *InstallmentRepository) ListByLoan(ctx context.Context, loanID string) ([]installment.Installment, error) {
	var out []installment.Installment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("due_date ASC, number ASC").
		Find(&out).Error
	return out, err
}

func (r *InstallmentRepository) Save(ctx context.Context, i *installment.Installment) error {
	return r.db.WithContext(ctx).Save(i).Error
}

func (r *InstallmentRepository) DeleteByLoan(ctx context.Context, loanID string) error {
	return r.db.WithContext(ctx).Where("loan_id = ?", loanID).Delete(&installment.Installment{}).Error
}
