package repayment

import (
	"context"
	"strconv"
	"time"

	"coopfin-loan-engine/internal/domain/actor"
	"coopfin-loan-engine/internal/domain/errs"
	"coopfin-loan-engine/internal/domain/event"
	"coopfin-loan-engine/internal/domain/installment"
	"coopfin-loan-engine/internal/domain/ledger"
	"coopfin-loan-engine/internal/domain/loan"
	"coopfin-loan-engine/internal/domain/uow"
	"coopfin-loan-engine/pkg/logger"
)

type Recorder interface {
	ObserveLateMark()
}

type Usecase struct {
	uow          uow.UnitOfWork
	loans        loan.Repository
	installments installment.Repository
	pub          event.Publisher
	rec          Recorder
}

func NewUsecase(tx uow.UnitOfWork, loans loan.Repository, installments installment.Repository, pub event.Publisher, rec Recorder) *Usecase {
	return &Usecase{uow: tx, loans: loans, installments: installments, pub: pub, rec: rec}
}

// MarkLate adds a late fee to an open installment of an active loan and
// re-issues the demand for the new remaining amount. No money moves.
func (u *Usecase) MarkLate(ctx context.Context, a actor.Actor, installmentID string, lateFee int64) (*installment.Installment, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if !a.IsAdmin() {
		return nil, errs.Forbidden("only admins mark installments late")
	}
	if lateFee <= 0 {
		return nil, installment.ErrInvalidFee
	}
	return u.addFee(ctx, a, installmentID, func(*installment.Installment) int64 { return lateFee })
}

// ApplyContractualPenalty charges the installment's share of the plan penalty as a late fee.
func (u *Usecase) ApplyContractualPenalty(ctx context.Context, a actor.Actor, installmentID string) (*installment.Installment, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if !a.IsAdmin() {
		return nil, errs.Forbidden("only admins apply penalties")
	}
	return u.addFee(ctx, a, installmentID, func(it *installment.Installment) int64 { return it.PenaltyFee })
}

func (u *Usecase) addFee(ctx context.Context, a actor.Actor, installmentID string, feeOf func(*installment.Installment) int64) (*installment.Installment, error) {
	// loan row first, same order as repay
	peek, err := u.installments.GetByInstallmentID(ctx, installmentID)
	if err != nil {
		return nil, err
	}

	var out *installment.Installment
	var fee int64
	err = u.uow.WithinLoanTx(ctx, peek.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.Status != loan.StatusActive {
			return errs.Validation("loan %s is %s, late fees apply to active loans only", l.LoanID, l.Status)
		}
		it, err := r.Installments.GetByInstallmentIDForUpdate(ctx, installmentID)
		if err != nil {
			return err
		}
		switch {
		case it.Status == installment.StatusPaid:
			return installment.ErrAlreadyPaid
		case !it.Open():
			return installment.ErrNotPayable
		}
		fee = feeOf(it)
		if fee <= 0 {
			return installment.ErrInvalidFee
		}

		it.LateFee += fee
		it.Recompute()
		it.Status = installment.StatusLate
		if err := r.Installments.Save(ctx, it); err != nil {
			return err
		}
		l.LateFeesAccrued += fee
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}

	if u.rec != nil {
		u.rec.ObserveLateMark()
	}
	logger.WithFields(map[string]any{
		"loan_id":        out.LoanID,
		"installment_id": out.InstallmentID,
		"late_fee":       fee,
		"remaining":      out.Remaining(),
		"actor":          a.String(),
	}).Info("repayment: installment marked late")

	evt := event.New(event.TypeDemandReissued, out.InstallmentID, map[string]string{
		"loan_id":  out.LoanID,
		"number":   strconv.Itoa(out.Number),
		"due_date": out.DueDate.Format("2006-01-02"),
		"late_fee": strconv.FormatInt(out.LateFee, 10),
	})
	evt.Amount = out.Remaining()
	u.publish(ctx, evt)
	return out, nil
}

func (u *Usecase) publish(ctx context.Context, events ...event.Event) {
	if u.pub == nil {
		return
	}
	if err := u.pub.Publish(ctx, events...); err != nil {
		logger.Errorf("repayment: publish events: %v", err)
	}
}

// Settle marks an open installment fully paid by the given entry.
func (u *Usecase) Settle(ctx context.Context, r uow.Repos, it *installment.Installment, entry *ledger.Entry) error {
	switch {
	case it.Status == installment.StatusPaid:
		return installment.ErrAlreadyPaid
	case !it.Open():
		return installment.ErrNotPayable
	}
	now := time.Now().UTC()
	it.PaidAmount = it.TotalAmount
	it.Status = installment.StatusPaid
	it.PaidAt = &now
	if entry != nil {
		it.SettledByEntryID = entry.EntryID
	}
	return r.Installments.Save(ctx, it)
}

// Allocate spends amount on the earliest open installments by due date.
// Fully covered ones are settled; the first one that cannot be covered takes
// the rest as a partial payment and allocation stops there.
func (u *Usecase) Allocate(ctx context.Context, r uow.Repos, l *loan.Loan, amount int64, entry *ledger.Entry) (*Allocation, error) {
	items, err := r.Installments.ListByLoan(ctx, l.LoanID)
	if err != nil {
		return nil, err
	}

	res := &Allocation{}
	remaining := amount
	for i := range items {
		it := &items[i]
		if !it.Open() {
			continue
		}
		if remaining == 0 {
			break
		}
		due := it.Remaining()
		if remaining >= due {
			if err := u.Settle(ctx, r, it, entry); err != nil {
				return nil, err
			}
			res.Settled = append(res.Settled, it.InstallmentID)
			remaining -= due
			continue
		}
		it.PaidAmount += remaining
		if err := r.Installments.Save(ctx, it); err != nil {
			return nil, err
		}
		res.PartialID = it.InstallmentID
		res.PartialAmount = remaining
		remaining = 0
		break
	}
	res.Unallocated = remaining

	res.AllPaid = len(items) > 0
	for _, it := range items {
		if it.Status != installment.StatusPaid {
			res.AllPaid = false
			break
		}
	}
	return res, nil
}

// GetSchedule lists a loan's installments for its borrower, guarantor or an admin.
func (u *Usecase) GetSchedule(ctx context.Context, a actor.Actor, loanID string) ([]installment.Installment, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !a.IsAdmin() && !a.Is(l.BorrowerID) && !a.Is(l.GuarantorID) {
		return nil, errs.Forbidden("schedule of loan %s", loanID)
	}
	return u.installments.ListByLoan(ctx, loanID)
}
