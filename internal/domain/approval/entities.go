package approval

import (
	"fmt"
	"time"

	"coopfin-loan-engine/internal/domain/errs"
)

var (
	ErrNotFound       = fmt.Errorf("guarantor decision %w", errs.ErrNotFound)
	ErrAlreadyDecided = fmt.Errorf("guarantor already decided: %w", errs.ErrDuplicateState)
)

type Verdict string

const (
	VerdictApprove Verdict = "APPROVE"
	VerdictReject  Verdict = "REJECT"
)

func VerdictOf(approve bool) Verdict {
	if approve {
		return VerdictApprove
	}
	return VerdictReject
}

// Table: guarantor_decisions (append-only, one per loan per guarantor)
type Decision struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	DecisionID  string    `gorm:"column:decision_id;size:32;not null;uniqueIndex:ux_guarantor_decisions_decision_id" json:"decision_id"`
	LoanID      string    `gorm:"column:loan_id;size:32;not null;uniqueIndex:ux_guarantor_decisions_loan_guarantor" json:"loan_id"`
	GuarantorID string    `gorm:"column:guarantor_id;size:64;not null;uniqueIndex:ux_guarantor_decisions_loan_guarantor" json:"guarantor_id"`
	Verdict     Verdict   `gorm:"column:verdict;size:8;not null" json:"verdict"`
	Comment     string    `gorm:"column:comment;type:text" json:"comment,omitempty"`
	DecidedAt   time.Time `gorm:"column:decided_at;not null" json:"decided_at"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Decision) TableName() string { return "guarantor_decisions" }
