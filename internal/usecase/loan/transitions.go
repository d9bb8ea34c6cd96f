package loan

import (
	"context"
	"errors"
	"fmt"

	"coopfin-loan-engine/internal/domain/actor"
	"coopfin-loan-engine/internal/domain/approval"
	"coopfin-loan-engine/internal/domain/errs"
	"coopfin-loan-engine/internal/domain/installment"
	domainLoan "coopfin-loan-engine/internal/domain/loan"
	"coopfin-loan-engine/internal/domain/uow"
	"coopfin-loan-engine/pkg/id"
)

func requireAdmin(a actor.Actor, action string) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return errs.Forbidden("only admins may %s", action)
	}
	return nil
}

// AdminReview approves a pending application for guarantor approval or rejects it.
func (u *Usecase) AdminReview(ctx context.Context, a actor.Actor, loanID string, approve bool, comment string) (*domainLoan.Loan, error) {
	if err := requireAdmin(a, "review loans"); err != nil {
		return nil, err
	}
	return u.transition(ctx, a, loanID, func(_ uow.Repos, l *domainLoan.Loan) error {
		if err := l.RequireStatus("admin review", domainLoan.StatusPendingAdminReview); err != nil {
			if l.ApprovedAt != nil {
				return domainLoan.ErrAlreadyReviewed
			}
			return err
		}
		at := now()
		l.AdminComment = comment
		if !approve {
			return l.TransitionTo(domainLoan.StatusRejected, at)
		}
		if err := l.TransitionTo(domainLoan.StatusPendingGuarantorApproval, at); err != nil {
			return err
		}
		l.ApprovedAt = &at
		return nil
	})
}

// GuarantorDecide records the named guarantor's decision. Only that guarantor
// may decide, and only once.
func (u *Usecase) GuarantorDecide(ctx context.Context, a actor.Actor, loanID string, approve bool, comment string) (*domainLoan.Loan, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return u.transition(ctx, a, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if !a.Is(l.GuarantorID) {
			return errs.Forbidden("only the named guarantor may decide on loan %s", l.LoanID)
		}
		if err := l.RequireStatus("guarantor decision", domainLoan.StatusPendingGuarantorApproval); err != nil {
			if _, derr := r.Decisions.GetByLoanAndGuarantor(ctx, l.LoanID, a.ID); derr == nil {
				return approval.ErrAlreadyDecided
			}
			return err
		}
		_, err := r.Decisions.GetByLoanAndGuarantor(ctx, l.LoanID, a.ID)
		switch {
		case err == nil:
			return approval.ErrAlreadyDecided
		case !errors.Is(err, approval.ErrNotFound):
			return err
		}

		at := now()
		to := domainLoan.StatusPendingBorrowerConfirmation
		if !approve {
			to = domainLoan.StatusRejected
		}
		if err := l.TransitionTo(to, at); err != nil {
			return err
		}
		return r.Decisions.Create(ctx, &approval.Decision{
			DecisionID:  id.NewID32(),
			LoanID:      l.LoanID,
			GuarantorID: a.ID,
			Verdict:     approval.VerdictOf(approve),
			Comment:     comment,
			DecidedAt:   at,
		})
	})
}

// BorrowerConfirm accepts the approved terms, or declines and cancels the loan.
func (u *Usecase) BorrowerConfirm(ctx context.Context, a actor.Actor, loanID string, confirm bool) (*domainLoan.Loan, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return u.transition(ctx, a, loanID, func(_ uow.Repos, l *domainLoan.Loan) error {
		if !a.Is(l.BorrowerID) {
			return errs.Forbidden("only the borrower may confirm loan %s", l.LoanID)
		}
		at := now()
		if confirm {
			if l.Status == domainLoan.StatusApprovedForDisbursement {
				return fmt.Errorf("loan already confirmed: %w", errs.ErrDuplicateState)
			}
			return l.TransitionTo(domainLoan.StatusApprovedForDisbursement, at)
		}
		if err := l.RequireStatus("borrower decline", domainLoan.StatusPendingBorrowerConfirmation); err != nil {
			return err
		}
		if err := l.TransitionTo(domainLoan.StatusCancelled, at); err != nil {
			return err
		}
		l.CancelledBy = a.ID
		l.CancelReason = "declined by borrower"
		return nil
	})
}

// Cancel withdraws a loan that has not been disbursed yet.
func (u *Usecase) Cancel(ctx context.Context, a actor.Actor, loanID, reason string) (*domainLoan.Loan, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return u.transition(ctx, a, loanID, func(_ uow.Repos, l *domainLoan.Loan) error {
		if !a.IsAdmin() && !a.Is(l.BorrowerID) {
			return errs.Forbidden("only an admin or the borrower may cancel loan %s", l.LoanID)
		}
		if l.Status == domainLoan.StatusCancelled {
			return fmt.Errorf("loan already cancelled: %w", errs.ErrDuplicateState)
		}
		if err := l.TransitionTo(domainLoan.StatusCancelled, now()); err != nil {
			return err
		}
		l.CancelledBy = a.ID
		l.CancelReason = reason
		return nil
	})
}

// MarkDefaulted writes off an active loan; its open installments become defaulted.
func (u *Usecase) MarkDefaulted(ctx context.Context, a actor.Actor, loanID, reason string) (*domainLoan.Loan, error) {
	if err := requireAdmin(a, "mark loans defaulted"); err != nil {
		return nil, err
	}
	return u.transition(ctx, a, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status == domainLoan.StatusDefaulted {
			return fmt.Errorf("loan already defaulted: %w", errs.ErrDuplicateState)
		}
		if err := l.TransitionTo(domainLoan.StatusDefaulted, now()); err != nil {
			return err
		}
		l.DefaultReason = reason

		items, err := r.Installments.ListByLoan(ctx, l.LoanID)
		if err != nil {
			return err
		}
		for i := range items {
			if !items[i].Open() {
				continue
			}
			items[i].Status = installment.StatusDefaulted
			if err := r.Installments.Save(ctx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete soft-deletes a loan on which no money has moved.
func (u *Usecase) Delete(ctx context.Context, a actor.Actor, loanID string) error {
	if err := requireAdmin(a, "delete loans"); err != nil {
		return err
	}
	return u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if !l.Status.PreFinancial() || l.DisbursedAt != nil {
			return domainLoan.ErrNotDeletable
		}
		return r.Loans.Delete(ctx, l, a.ID)
	})
}
