package gormrepo

import (
	"context"

	"coopfin-loan-engine/internal/domain/plan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlanRepository struct{ db *gorm.DB }

func NewPlanRepository(db *gorm.DB) *PlanRepository { return &PlanRepository{db: db} }

func (r *PlanRepository) GetByPlanID(ctx context.Context, planID string) (*plan.Plan, error) {
	var out plan.Plan
	if err := r.db.WithContext(ctx).Where("plan_id = ?", planID).First(&out).Error; err != nil {
		return nil, notFound(err, plan.ErrNotFound)
	}
	return &out, nil
}

func (r *PlanRepository) List(ctx context.Context) ([]plan.Plan, error) {
	var out []plan.Plan
	err := r.db.WithContext(ctx).Order("installment_count ASC, plan_id ASC").Find(&out).Error
	return out, err
}

func (r *PlanRepository) Upsert(ctx context.Context, p *plan.Plan) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "plan_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "installment_count", "interest_rate", "penalty_fee", "active", "updated_at"}),
		}).
		Create(p).Error
}
