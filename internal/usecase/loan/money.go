package loan

import (
	"context"
	"fmt"
	"strconv"

	"coopfin-loan-engine/internal/domain/actor"
	"coopfin-loan-engine/internal/domain/errs"
	"coopfin-loan-engine/internal/domain/event"
	"coopfin-loan-engine/internal/domain/installment"
	domainLedger "coopfin-loan-engine/internal/domain/ledger"
	domainLoan "coopfin-loan-engine/internal/domain/loan"
	"coopfin-loan-engine/internal/domain/uow"
	ledgerUC "coopfin-loan-engine/internal/usecase/ledger"
	"coopfin-loan-engine/internal/usecase/repayment"
	"coopfin-loan-engine/internal/usecase/schedule"
	"coopfin-loan-engine/pkg/logger"
)

func loanCorrelation(loanID string) domainLedger.Correlation {
	return domainLedger.Correlation{Type: domainLedger.CorrelationLoan, ID: loanID}
}

func (u *Usecase) scheduleInput(l *domainLoan.Loan) schedule.Input {
	// first installment falls due one month after the money went out
	return schedule.Input{
		LoanID:           l.LoanID,
		Principal:        l.Principal,
		InterestTotal:    l.InterestTotal,
		PenaltyTotal:     l.PenaltyFee,
		InstallmentCount: l.InstallmentCount,
		StartDate:        schedule.AddMonths(*l.DisbursedAt, 1),
	}
}

// lockBorrowerWallet resolves the borrower's wallet and takes its movement lock.
func (u *Usecase) lockBorrowerWallet(ctx context.Context, borrowerID string) (*domainLedger.Wallet, func(), error) {
	w, err := u.ledger.GetWalletByOwner(ctx, borrowerID)
	if err != nil {
		return nil, nil, err
	}
	release, err := u.ledger.LockWallets(ctx, w.WalletID)
	if err != nil {
		return nil, nil, err
	}
	return w, release, nil
}

// Disburse credits the principal to the borrower's wallet, builds the
// schedule and activates the loan in one unit of work. A schedule failure
// does not undo the credit: the loan goes ACTIVE flagged for regeneration.
func (u *Usecase) Disburse(ctx context.Context, a actor.Actor, loanID string) (*domainLoan.Loan, error) {
	if err := requireAdmin(a, "disburse loans"); err != nil {
		return nil, err
	}
	peek, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if peek.DisbursedAt != nil {
		return nil, domainLoan.ErrAlreadyDisbursed
	}
	wallet, release, err := u.lockBorrowerWallet(ctx, peek.BorrowerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		out         *domainLoan.Loan
		from        domainLoan.Status
		entry       *domainLedger.Entry
		scheduleErr error
	)
	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		from = l.Status
		if l.DisbursedAt != nil {
			return domainLoan.ErrAlreadyDisbursed
		}
		if err := l.RequireStatus("disbursement", domainLoan.StatusApprovedForDisbursement); err != nil {
			return err
		}

		e, err := u.ledger.Post(ctx, r, ledgerUC.Movement{
			WalletID:    wallet.WalletID,
			Amount:      l.Principal,
			Direction:   domainLedger.Credit,
			Category:    domainLedger.CategoryLoanDisbursement,
			Correlation: loanCorrelation(l.LoanID),
			Actor:       a,
			Description: "loan disbursement " + l.LoanID,
		})
		if err != nil {
			return err
		}
		entry = e
		at := now()
		l.DisbursementEntryID = e.EntryID
		l.DisbursedAt = &at

		scheduleErr = r.Savepoint(ctx, func(sr uow.Repos) error {
			items, err := u.generate(u.scheduleInput(l))
			if err != nil {
				return err
			}
			return sr.Installments.CreateBatch(ctx, items)
		})
		l.ScheduleRegenerationRequired = scheduleErr != nil

		if err := l.TransitionTo(domainLoan.StatusActive, at); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.ledger.Observe(entry)
	u.transitioned(ctx, a, from, out)

	disbursed := event.New(event.TypeLoanDisbursed, out.LoanID, map[string]string{
		"borrower_id": out.BorrowerID,
		"wallet_id":   wallet.WalletID,
		"entry_id":    entry.EntryID,
	})
	disbursed.Amount = out.Principal
	events := []event.Event{disbursed}

	if scheduleErr != nil {
		if u.rec != nil {
			u.rec.ObserveScheduleFailure()
		}
		logger.WithFields(map[string]any{
			"loan_id":  out.LoanID,
			"entry_id": entry.EntryID,
		}).Errorf("loan: schedule generation failed after disbursement, flagged for regeneration: %v", scheduleErr)
		events = append(events, event.New(event.TypeScheduleGenerationFailed, out.LoanID, map[string]string{
			"error": scheduleErr.Error(),
		}))
	}
	u.publish(ctx, events...)
	return out, nil
}

// Repay debits the borrower's wallet and applies the payment to the
// earliest open installments. The loan closes once every installment is paid.
func (u *Usecase) Repay(ctx context.Context, a actor.Actor, loanID string, amount int64) (*RepayResult, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, domainLedger.ErrInvalidAmount
	}
	peek, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !a.Is(peek.BorrowerID) {
		return nil, errs.Forbidden("only the borrower may repay loan %s", loanID)
	}
	wallet, release, err := u.lockBorrowerWallet(ctx, peek.BorrowerID)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		res  = &RepayResult{}
		from domainLoan.Status
	)
	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		from = l.Status
		if err := l.RequireStatus("repayment", domainLoan.StatusActive); err != nil {
			return err
		}
		if l.ScheduleRegenerationRequired {
			return errs.Validation("loan %s has no schedule; regenerate it before repaying", l.LoanID)
		}
		items, err := r.Installments.ListByLoan(ctx, l.LoanID)
		if err != nil {
			return err
		}
		if owed := repayment.Outstanding(items); amount > owed {
			return fmt.Errorf("%w: %d > %d", domainLoan.ErrRepaymentExceedsDebt, amount, owed)
		}

		e, err := u.ledger.Post(ctx, r, ledgerUC.Movement{
			WalletID:    wallet.WalletID,
			Amount:      amount,
			Direction:   domainLedger.Debit,
			Category:    domainLedger.CategoryLoanRepayment,
			Correlation: loanCorrelation(l.LoanID),
			Actor:       a,
			Description: "loan repayment " + l.LoanID,
		})
		if err != nil {
			return err
		}
		alloc, err := u.repay.Allocate(ctx, r, l, amount, e)
		if err != nil {
			return err
		}

		l.AmountPaid += amount
		if alloc.AllPaid {
			at := now()
			if err := l.TransitionTo(domainLoan.StatusClosed, at); err != nil {
				return err
			}
			l.ClosedAt = &at
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		res.Loan, res.Entry, res.Allocation = l, e, alloc
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.ledger.Observe(res.Entry)
	u.transitioned(ctx, a, from, res.Loan)

	received := event.New(event.TypeRepaymentReceived, loanID, map[string]string{
		"entry_id": res.Entry.EntryID,
		"settled":  strconv.Itoa(len(res.Allocation.Settled)),
	})
	received.Amount = amount
	u.publish(ctx, received)
	return res, nil
}

// RegenerateSchedule replaces the schedule of an active loan that has no
// payments recorded against it.
func (u *Usecase) RegenerateSchedule(ctx context.Context, a actor.Actor, loanID string) ([]installment.Installment, error) {
	if err := requireAdmin(a, "regenerate schedules"); err != nil {
		return nil, err
	}
	var out []installment.Installment
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusActive || l.DisbursedAt == nil {
			return fmt.Errorf("%w: schedule regeneration on %s loan", domainLoan.ErrInvalidTransition, l.Status)
		}
		existing, err := r.Installments.ListByLoan(ctx, l.LoanID)
		if err != nil {
			return err
		}
		for _, it := range existing {
			if it.Status == installment.StatusPaid || it.PaidAmount > 0 {
				return domainLoan.ErrScheduleHasPayments
			}
		}

		items, err := u.generate(u.scheduleInput(l))
		if err != nil {
			return err
		}
		if err := r.Installments.DeleteByLoan(ctx, l.LoanID); err != nil {
			return err
		}
		if err := r.Installments.CreateBatch(ctx, items); err != nil {
			return err
		}
		// fees lived on the discarded installments
		l.LateFeesAccrued = 0
		l.ScheduleRegenerationRequired = false
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.WithFields(map[string]any{
		"loan_id":      loanID,
		"installments": len(out),
		"actor":        a.String(),
	}).Info("loan: schedule regenerated")
	return out, nil
}
