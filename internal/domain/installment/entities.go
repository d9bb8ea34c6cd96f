package installment

import (
	"context"
	"fmt"
	"time"

	"coopfin-loan-engine/internal/domain/errs"
)

var (
	ErrNotFound     = fmt.Errorf("installment %w", errs.ErrNotFound)
	ErrNotPayable   = fmt.Errorf("%w: installment is not open for payment", errs.ErrInvalidStateTransition)
	ErrAlreadyPaid  = fmt.Errorf("installment already paid: %w", errs.ErrDuplicateState)
	ErrInvalidFee   = fmt.Errorf("%w: late fee must be a positive number of minor units", errs.ErrValidation)
	ErrScheduleSize = fmt.Errorf("%w: installment count must be at least 1", errs.ErrValidation)
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusLate      Status = "late"
	StatusDefaulted Status = "defaulted"
	StatusCancelled Status = "cancelled"
)

// Table: installments
type Installment struct {
	ID                uint64     `gorm:"primaryKey;column:id" json:"-"`
	InstallmentID     string     `gorm:"size:32;uniqueIndex:ux_installments_installment_id" json:"installment_id"`
	LoanID            string     `gorm:"size:32;not null;uniqueIndex:ux_installments_loan_number" json:"loan_id"`
	Number            int        `gorm:"not null;uniqueIndex:ux_installments_loan_number" json:"number"`
	TotalInstallments int        `gorm:"not null" json:"total_installments"`
	DueDate           time.Time  `gorm:"type:date;not null" json:"due_date"`
	Principal         int64      `gorm:"not null" json:"principal"`
	Interest          int64      `gorm:"not null" json:"interest"`
	LateFee           int64      `gorm:"not null;default:0" json:"late_fee"`
	PenaltyFee        int64      `gorm:"not null;default:0" json:"penalty_fee"`
	TotalAmount       int64      `gorm:"not null" json:"total_amount"`
	PaidAmount        int64      `gorm:"not null;default:0" json:"paid_amount"`
	Status            Status     `gorm:"size:16;not null;index" json:"status"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	SettledByEntryID  string     `gorm:"size:32" json:"settled_by_entry_id,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Installment) TableName() string { return "installments" }

// Recompute restores TotalAmount = Principal + Interest + LateFee.
func (i *Installment) Recompute() { i.TotalAmount = i.Principal + i.Interest + i.LateFee }

func (i Installment) Remaining() int64 { return i.TotalAmount - i.PaidAmount }

// Open reports whether the installment still accepts payments.
func (i Installment) Open() bool { return i.Status == StatusPending || i.Status == StatusLate }

type Repository interface {
	CreateBatch(ctx context.Context, items []Installment) error
	GetByInstallmentID(ctx context.Context, installmentID string) (*Installment, error)
	GetByInstallmentIDForUpdate(ctx context.Context, installmentID string) (*Installment, error)
	// ListByLoan returns installments ordered by due date then number.
	ListByLoan(ctx context.Context, loanID string) ([]Installment, error)
	Save(ctx context.Context, i *Installment) error
	DeleteByLoan(ctx context.Context, loanID string) error
}
