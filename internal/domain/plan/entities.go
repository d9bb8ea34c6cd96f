package plan

import (
	"context"
	"fmt"
	"time"

	"coopfin-loan-engine/internal/domain/errs"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = fmt.Errorf("repayment plan %w", errs.ErrNotFound)
	ErrInactive = fmt.Errorf("%w: repayment plan is not offered", errs.ErrValidation)
)

// Table: repayment_plans
type Plan struct {
	ID               uint64 `gorm:"primaryKey;column:id" json:"-"`
	PlanID           string `gorm:"size:32;uniqueIndex:ux_repayment_plans_plan_id" json:"plan_id"`
	Name             string `gorm:"size:128;not null" json:"name"`
	InstallmentCount int    `gorm:"not null" json:"installment_count"`
	// Flat interest for the whole term, e.g. 0.10 = 10% of principal
	InterestRate decimal.Decimal `gorm:"type:decimal(8,6);not null" json:"interest_rate"`
	// Penalty total in minor units, split across installments as contractual late fees
	PenaltyFee int64     `gorm:"not null;default:0" json:"penalty_fee"`
	Active     bool      `gorm:"not null" json:"active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Plan) TableName() string { return "repayment_plans" }

func (p Plan) Validate() error {
	if p.PlanID == "" {
		return errs.Validation("plan id is required")
	}
	if p.InstallmentCount < 1 {
		return errs.Validation("plan %s: installment count must be at least 1", p.PlanID)
	}
	if p.InterestRate.IsNegative() {
		return errs.Validation("plan %s: interest rate must not be negative", p.PlanID)
	}
	if p.PenaltyFee < 0 {
		return errs.Validation("plan %s: penalty fee must not be negative", p.PlanID)
	}
	return nil
}

type Repository interface {
	GetByPlanID(ctx context.Context, planID string) (*Plan, error)
	List(ctx context.Context) ([]Plan, error)
	// Upsert keyed by PlanID
	Upsert(ctx context.Context, p *Plan) error
}
