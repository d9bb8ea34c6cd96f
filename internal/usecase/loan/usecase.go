package loan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coopfin-loan-engine/internal/domain/actor"
	"coopfin-loan-engine/internal/domain/approval"
	"coopfin-loan-engine/internal/domain/errs"
	"coopfin-loan-engine/internal/domain/event"
	"coopfin-loan-engine/internal/domain/installment"
	domainLoan "coopfin-loan-engine/internal/domain/loan"
	"coopfin-loan-engine/internal/domain/plan"
	"coopfin-loan-engine/internal/domain/uow"
	ledgerUC "coopfin-loan-engine/internal/usecase/ledger"
	"coopfin-loan-engine/internal/usecase/repayment"
	"coopfin-loan-engine/internal/usecase/schedule"
	"coopfin-loan-engine/pkg/id"
	"coopfin-loan-engine/pkg/logger"
	"coopfin-loan-engine/pkg/money"
)

type Recorder interface {
	ObserveTransition(from, to string)
	ObserveScheduleFailure()
}

type Deps struct {
	UoW       uow.UnitOfWork
	Loans     domainLoan.Repository
	Decisions approval.Repository
	Plans     plan.Repository
	Ledger    *ledgerUC.Service
	Repayment *repayment.Usecase
	Publisher event.Publisher
	Metrics   Recorder
}

// Usecase is the loan lifecycle. Every operation takes the caller's actor
// and runs as one unit of work with the loan row locked.
type Usecase struct {
	uow       uow.UnitOfWork
	loans     domainLoan.Repository
	decisions approval.Repository
	plans     plan.Repository
	ledger    *ledgerUC.Service
	repay     *repayment.Usecase
	pub       event.Publisher
	rec       Recorder

	generate func(schedule.Input) ([]installment.Installment, error)
}

func NewUsecase(d Deps) *Usecase {
	return &Usecase{
		uow:       d.UoW,
		loans:     d.Loans,
		decisions: d.Decisions,
		plans:     d.Plans,
		ledger:    d.Ledger,
		repay:     d.Repayment,
		pub:       d.Publisher,
		rec:       d.Metrics,
		generate:  schedule.Generate,
	}
}

func now() time.Time { return time.Now().UTC() }

func (u *Usecase) publish(ctx context.Context, events ...event.Event) {
	if u.pub == nil || len(events) == 0 {
		return
	}
	if err := u.pub.Publish(ctx, events...); err != nil {
		logger.Errorf("loan: publish events: %v", err)
	}
}

// transition runs fn on the locked loan and saves it with a version check.
func (u *Usecase) transition(ctx context.Context, a actor.Actor, loanID string, fn func(r uow.Repos, l *domainLoan.Loan) error) (*domainLoan.Loan, error) {
	var (
		out  *domainLoan.Loan
		from domainLoan.Status
	)
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		from = l.Status
		if err := fn(r, l); err != nil {
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
	u.transitioned(ctx, a, from, out)
	return out, nil
}

func (u *Usecase) transitioned(ctx context.Context, a actor.Actor, from domainLoan.Status, l *domainLoan.Loan) {
	if from == l.Status {
		return
	}
	if u.rec != nil {
		u.rec.ObserveTransition(string(from), string(l.Status))
	}
	logger.WithFields(map[string]any{
		"loan_id": l.LoanID,
		"from":    from,
		"to":      l.Status,
		"actor":   a.String(),
	}).Info("loan: status changed")
	u.publish(ctx, event.New(event.TypeLoanTransitioned, l.LoanID, map[string]string{
		"from":        string(from),
		"to":          string(l.Status),
		"actor_id":    a.ID,
		"borrower_id": l.BorrowerID,
	}))
}

// RequestLoan opens a loan application in PENDING_ADMIN_REVIEW.
func (u *Usecase) RequestLoan(ctx context.Context, a actor.Actor, in RequestInput) (*domainLoan.Loan, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if in.BorrowerID == "" {
		in.BorrowerID = a.ID
	}
	if !a.IsAdmin() && !a.Is(in.BorrowerID) {
		return nil, errs.Forbidden("members request loans for themselves only")
	}
	if strings.TrimSpace(in.GuarantorID) == "" {
		return nil, errs.Validation("guarantor is required")
	}
	if in.GuarantorID == in.BorrowerID {
		return nil, domainLoan.ErrSelfGuarantee
	}
	if in.Principal <= 0 {
		return nil, errs.Validation("principal must be a positive number of minor units")
	}

	var out *domainLoan.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Plans.GetByPlanID(ctx, in.PlanID)
		if err != nil {
			return err
		}
		if !p.Active {
			return plan.ErrInactive
		}

		open, err := r.Loans.GetOpenLoanByBorrowerID(ctx, in.BorrowerID)
		switch {
		case err == nil:
			return fmt.Errorf("%w (loan %s is %s)", domainLoan.ErrOpenLoanExists, open.LoanID, open.Status)
		case !errors.Is(err, domainLoan.ErrNotFound):
			return err
		}

		// disbursement needs somewhere to land
		wallet, err := r.Wallets.GetByOwnerID(ctx, in.BorrowerID)
		if err != nil {
			return err
		}

		at := now()
		interest := money.ApplyRate(in.Principal, p.InterestRate)
		l := &domainLoan.Loan{
			LoanID:           id.NewID32(),
			BorrowerID:       in.BorrowerID,
			GuarantorID:      in.GuarantorID,
			PlanID:           p.PlanID,
			InstallmentCount: p.InstallmentCount,
			Principal:        in.Principal,
			InterestRate:     p.InterestRate,
			InterestTotal:    interest,
			PenaltyFee:       p.PenaltyFee,
			TotalRepayable:   in.Principal + interest,
			Currency:         wallet.Currency,
			Status:           domainLoan.StatusPendingAdminReview,
			Purpose:          in.Purpose,
			RequestedAt:      at,
			StatusUpdatedAt:  at,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]any{
		"loan_id":   out.LoanID,
		"borrower":  out.BorrowerID,
		"guarantor": out.GuarantorID,
		"principal": money.Format(out.Principal, out.Currency),
		"plan_id":   out.PlanID,
		"actor":     a.String(),
	}).Info("loan: requested")
	u.publish(ctx, event.New(event.TypeLoanTransitioned, out.LoanID, map[string]string{
		"to":          string(out.Status),
		"actor_id":    a.ID,
		"borrower_id": out.BorrowerID,
	}))
	return out, nil
}

func canView(a actor.Actor, l *domainLoan.Loan) bool {
	return a.IsAdmin() || a.Is(l.BorrowerID) || a.Is(l.GuarantorID)
}

// Get returns a loan with its guarantor decisions to an admin or a party of the loan.
func (u *Usecase) Get(ctx context.Context, a actor.Actor, loanID string) (*LoanDetail, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !canView(a, l) {
		return nil, errs.Forbidden("loan %s", loanID)
	}
	decisions, err := u.decisions.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return &LoanDetail{Loan: l, Decisions: decisions}, nil
}

// List scopes members to loans they borrow or guarantee.
func (u *Usecase) List(ctx context.Context, a actor.Actor, f domainLoan.Filter) ([]domainLoan.Loan, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, errs.Validation("unknown status %q", f.Status)
	}
	if !a.IsAdmin() {
		switch {
		case f.BorrowerID == "" && f.GuarantorID == "":
			f.BorrowerID = a.ID
		case f.BorrowerID != "" && !a.Is(f.BorrowerID),
			f.GuarantorID != "" && !a.Is(f.GuarantorID):
			return nil, errs.Forbidden("members list their own loans only")
		}
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	return u.loans.List(ctx, f)
}

func (u *Usecase) Plans(ctx context.Context) ([]plan.Plan, error) { return u.plans.List(ctx) }

// SeedPlans upserts the configured repayment plans.
func (u *Usecase) SeedPlans(ctx context.Context, plans []plan.Plan) error {
	for i := range plans {
		p := plans[i]
		if err := p.Validate(); err != nil {
			return err
		}
		if err := u.plans.Upsert(ctx, &p); err != nil {
			return err
		}
	}
	logger.Infof("loan: %d repayment plans seeded", len(plans))
	return nil
}

// SeedDefaultPlans upserts DefaultPlans.
func (u *Usecase) SeedDefaultPlans(ctx context.Context) error {
	return u.SeedPlans(ctx, DefaultPlans())
}
