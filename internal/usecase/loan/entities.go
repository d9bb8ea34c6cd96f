package loan

import (
	"coopfin-loan-engine/internal/domain/approval"
	domainLedger "coopfin-loan-engine/internal/domain/ledger"
	domainLoan "coopfin-loan-engine/internal/domain/loan"
	"coopfin-loan-engine/internal/domain/plan"
	"coopfin-loan-engine/internal/usecase/repayment"

	"github.com/shopspring/decimal"
)

type RequestInput struct {
	BorrowerID  string `json:"borrower_id"`
	GuarantorID string `json:"guarantor_id" validate:"required"`
	Principal   int64  `json:"principal" validate:"gt=0"`
	PlanID      string `json:"plan_id" validate:"required"`
	Purpose     string `json:"purpose" validate:"max=1000"`
}

type LoanDetail struct {
	*domainLoan.Loan
	Decisions []approval.Decision `json:"guarantor_decisions"`
}

type RepayResult struct {
	Loan       *domainLoan.Loan      `json:"loan"`
	Entry      *domainLedger.Entry   `json:"entry"`
	Allocation *repayment.Allocation `json:"allocation"`
}

// DefaultPlans are offered when no plan table has been configured.
func DefaultPlans() []plan.Plan {
	return []plan.Plan{
		{PlanID: "PLAN-3M", Name: "3 monthly installments", InstallmentCount: 3, InterestRate: decimal.RequireFromString("0.03"), PenaltyFee: 0, Active: true},
		{PlanID: "PLAN-6M", Name: "6 monthly installments", InstallmentCount: 6, InterestRate: decimal.RequireFromString("0.06"), PenaltyFee: 600, Active: true},
		{PlanID: "PLAN-12M", Name: "12 monthly installments", InstallmentCount: 12, InterestRate: decimal.RequireFromString("0.12"), PenaltyFee: 1200, Active: true},
	}
}
