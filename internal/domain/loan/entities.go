package loan

import (
	"fmt"
	"time"

	"coopfin-loan-engine/internal/domain/errs"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound             = fmt.Errorf("loan %w", errs.ErrNotFound)
	ErrInvalidTransition    = errs.ErrInvalidStateTransition
	ErrAlreadyReviewed      = fmt.Errorf("loan already reviewed: %w", errs.ErrDuplicateState)
	ErrAlreadyDisbursed     = fmt.Errorf("loan already disbursed: %w", errs.ErrDuplicateState)
	ErrConcurrentUpdate     = fmt.Errorf("loan was modified concurrently: %w", errs.ErrInvalidStateTransition)
	ErrSelfGuarantee        = fmt.Errorf("%w: guarantor must differ from borrower", errs.ErrValidation)
	ErrOpenLoanExists       = fmt.Errorf("%w: borrower already has an open loan", errs.ErrValidation)
	ErrNotDeletable         = fmt.Errorf("%w: only pre-disbursement loans can be deleted", errs.ErrInvalidStateTransition)
	ErrScheduleHasPayments  = fmt.Errorf("%w: schedule already has payments", errs.ErrInvalidStateTransition)
	ErrRepaymentExceedsDebt = fmt.Errorf("%w: repayment exceeds outstanding amount", errs.ErrValidation)
)

type Status string

const (
	StatusPendingAdminReview          Status = "PENDING_ADMIN_REVIEW"
	StatusPendingGuarantorApproval    Status = "PENDING_GUARANTOR_APPROVAL"
	StatusPendingBorrowerConfirmation Status = "PENDING_BORROWER_CONFIRMATION"
	StatusApprovedForDisbursement     Status = "APPROVED_FOR_DISBURSEMENT"
	StatusActive                      Status = "ACTIVE"
	StatusClosed                      Status = "CLOSED"
	StatusRejected                    Status = "REJECTED"
	StatusCancelled                   Status = "CANCELLED"
	StatusDefaulted                   Status = "DEFAULTED"
)

// AllStatuses lists every lifecycle state in graph order.
var AllStatuses = []Status{
	StatusPendingAdminReview,
	StatusPendingGuarantorApproval,
	StatusPendingBorrowerConfirmation,
	StatusApprovedForDisbursement,
	StatusActive,
	StatusClosed,
	StatusRejected,
	StatusCancelled,
	StatusDefaulted,
}

// transitions is the whole lifecycle graph; anything absent is illegal.
var transitions = map[Status][]Status{
	StatusPendingAdminReview:          {StatusPendingGuarantorApproval, StatusRejected, StatusCancelled},
	StatusPendingGuarantorApproval:    {StatusPendingBorrowerConfirmation, StatusRejected, StatusCancelled},
	StatusPendingBorrowerConfirmation: {StatusApprovedForDisbursement, StatusCancelled},
	StatusApprovedForDisbursement:     {StatusActive, StatusCancelled},
	StatusActive:                      {StatusClosed, StatusDefaulted},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusClosed, StatusDefaulted:
		return true
	}
	return false
}

// PreFinancial reports whether no money has moved for a loan in this state.
func (s Status) PreFinancial() bool {
	switch s {
	case StatusPendingAdminReview, StatusPendingGuarantorApproval, StatusPendingBorrowerConfirmation,
		StatusApprovedForDisbursement, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Loan struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID           string          `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	BorrowerID       string          `gorm:"size:64;not null;index:idx_loans_borrower" json:"borrower_id"`
	GuarantorID      string          `gorm:"size:64;not null;index:idx_loans_guarantor" json:"guarantor_id"`
	PlanID           string          `gorm:"size:32;not null" json:"plan_id"`
	InstallmentCount int             `gorm:"not null" json:"installment_count"`
	Principal        int64           `gorm:"not null" json:"principal"`
	InterestRate     decimal.Decimal `gorm:"type:decimal(8,6);not null" json:"interest_rate"`
	InterestTotal    int64           `gorm:"not null" json:"interest_total"`
	PenaltyFee       int64           `gorm:"not null;default:0" json:"penalty_fee"`
	TotalRepayable   int64           `gorm:"not null" json:"total_repayable"`
	LateFeesAccrued  int64           `gorm:"not null;default:0" json:"late_fees_accrued"`
	AmountPaid       int64           `gorm:"not null;default:0" json:"amount_paid"`
	Currency         string          `gorm:"size:3;not null" json:"currency"`
	Status           Status          `gorm:"size:40;not null;index:idx_loans_status" json:"status"`
	Purpose          string          `gorm:"type:text" json:"purpose"`
	AdminComment     string          `gorm:"type:text" json:"admin_comment,omitempty"`
	CancelReason     string          `gorm:"type:text" json:"cancel_reason,omitempty"`
	CancelledBy      string          `gorm:"size:64" json:"cancelled_by,omitempty"`
	DefaultReason    string          `gorm:"type:text" json:"default_reason,omitempty"`

	DisbursementEntryID          string `gorm:"size:32" json:"disbursement_entry_id,omitempty"`
	ScheduleRegenerationRequired bool   `gorm:"not null;default:false" json:"schedule_regeneration_required"`

	RequestedAt     time.Time      `json:"requested_at"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	DisbursedAt     *time.Time     `json:"disbursed_at,omitempty"`
	ClosedAt        *time.Time     `json:"closed_at,omitempty"`
	StatusUpdatedAt time.Time      `json:"status_updated_at"`
	Version         int64          `gorm:"not null;default:0" json:"version"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	DeletedBy       string         `gorm:"size:64" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// TransitionTo moves the loan along the lifecycle graph.
func (l *Loan) TransitionTo(to Status, at time.Time) error {
	if !CanTransition(l.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Status, to)
	}
	l.Status = to
	l.StatusUpdatedAt = at
	return nil
}

// RequireStatus guards an operation that is only legal from the given states,
// independent of which edges the lifecycle graph allows.
func (l *Loan) RequireStatus(op string, from ...Status) error {
	for _, s := range from {
		if l.Status == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s on %s loan", ErrInvalidTransition, op, l.Status)
}

// Outstanding is what the borrower still owes, late fees included.
func (l Loan) Outstanding() int64 { return l.TotalRepayable + l.LateFeesAccrued - l.AmountPaid }
