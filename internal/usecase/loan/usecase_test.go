package loan

import (
	"context"
	"errors"
	"sync"
	"testing"

	"coopfin-loan-engine/internal/adapter/repository/gormrepo"
	"coopfin-loan-engine/internal/domain/approval"
	"coopfin-loan-engine/internal/domain/errs"
	"coopfin-loan-engine/internal/domain/event"
	"coopfin-loan-engine/internal/domain/installment"
	domainLedger "coopfin-loan-engine/internal/domain/ledger"
	domainLoan "coopfin-loan-engine/internal/domain/loan"
	"coopfin-loan-engine/internal/domain/plan"
	ledgerUC "coopfin-loan-engine/internal/usecase/ledger"
	"coopfin-loan-engine/internal/usecase/schedule"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLoan_ComputesTerms(t *testing.T) {
	e := newEnv(t)
	l := e.request(t)

	assert.Len(t, l.LoanID, 32)
	assert.Equal(t, domainLoan.StatusPendingAdminReview, l.Status)
	assert.Equal(t, 3, l.InstallmentCount)
	assert.Equal(t, int64(12_000), l.InterestTotal)
	assert.Equal(t, int64(132_000), l.TotalRepayable)
	assert.Equal(t, int64(300), l.PenaltyFee)
	assert.Equal(t, "IDR", l.Currency)
	assert.Len(t, e.events.OfType(event.TypeLoanTransitioned), 1)
}

func TestRequestLoan_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		a    func() error
		want error
	}{
		{"self guarantee", func() error {
			_, err := e.uc.RequestLoan(ctx, borrower, RequestInput{GuarantorID: borrowerID, Principal: 1, PlanID: "PLAN-3"})
			return err
		}, domainLoan.ErrSelfGuarantee},
		{"no guarantor", func() error {
			_, err := e.uc.RequestLoan(ctx, borrower, RequestInput{Principal: 1, PlanID: "PLAN-3"})
			return err
		}, errs.ErrValidation},
		{"zero principal", func() error {
			_, err := e.uc.RequestLoan(ctx, borrower, RequestInput{GuarantorID: guarantorID, PlanID: "PLAN-3"})
			return err
		}, errs.ErrValidation},
		{"unknown plan", func() error {
			_, err := e.uc.RequestLoan(ctx, borrower, RequestInput{GuarantorID: guarantorID, Principal: 1, PlanID: "PLAN-X"})
			return err
		}, plan.ErrNotFound},
		{"inactive plan", func() error {
			_, err := e.uc.RequestLoan(ctx, borrower, RequestInput{GuarantorID: guarantorID, Principal: 1, PlanID: "PLAN-OFF"})
			return err
		}, plan.ErrInactive},
		{"member for someone else", func() error {
			_, err := e.uc.RequestLoan(ctx, stranger, RequestInput{BorrowerID: borrowerID, GuarantorID: guarantorID, Principal: 1, PlanID: "PLAN-3"})
			return err
		}, errs.ErrForbidden},
		{"borrower without wallet", func() error {
			_, err := e.uc.RequestLoan(ctx, stranger, RequestInput{GuarantorID: guarantorID, Principal: 1, PlanID: "PLAN-3"})
			return err
		}, domainLedger.ErrWalletNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.ErrorIs(t, c.a(), c.want)
		})
	}
}

func TestRequestLoan_OneOpenLoanPerBorrower(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first := e.request(t)

	_, err := e.uc.RequestLoan(ctx, borrower, RequestInput{GuarantorID: guarantorID, Principal: 5_000, PlanID: "PLAN-3"})
	assert.ErrorIs(t, err, domainLoan.ErrOpenLoanExists)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = e.uc.Cancel(ctx, borrower, first.LoanID, "changed my mind")
	require.NoError(t, err)
	_, err = e.uc.RequestLoan(ctx, admin, RequestInput{BorrowerID: borrowerID, GuarantorID: guarantorID, Principal: 5_000, PlanID: "PLAN-3"})
	assert.NoError(t, err)
}

func TestLifecycle_FullRepaymentClosesLoan(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.deposit(t, 12_000)

	l := e.advance(t, domainLoan.StatusActive)
	require.NotNil(t, l.DisbursedAt)
	require.NotNil(t, l.ApprovedAt)
	assert.NotEmpty(t, l.DisbursementEntryID)
	assert.False(t, l.ScheduleRegenerationRequired)
	assert.Equal(t, int64(132_000), e.balance(t))

	items, err := e.repay.GetSchedule(ctx, borrower, l.LoanID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	first := schedule.AddMonths(*l.DisbursedAt, 1)
	assert.Equal(t, first.Year(), items[0].DueDate.Year())
	assert.Equal(t, first.Month(), items[0].DueDate.Month())
	assert.Equal(t, first.Day(), items[0].DueDate.Day())
	for _, it := range items {
		assert.Equal(t, int64(44_000), it.TotalAmount)
		assert.Equal(t, int64(100), it.PenaltyFee)
	}

	for i := 0; i < 3; i++ {
		res, err := e.uc.Repay(ctx, borrower, l.LoanID, 44_000)
		require.NoError(t, err)
		assert.Len(t, res.Allocation.Settled, 1)
		assert.Equal(t, domainLedger.CategoryLoanRepayment, res.Entry.Category)
		l = res.Loan
	}
	assert.Equal(t, domainLoan.StatusClosed, l.Status)
	assert.NotNil(t, l.ClosedAt)
	assert.Equal(t, int64(132_000), l.AmountPaid)
	assert.Equal(t, int64(0), e.balance(t))
	e.assertBalanced(t)

	items, _ = e.repay.GetSchedule(ctx, admin, l.LoanID)
	for _, it := range items {
		assert.Equal(t, installment.StatusPaid, it.Status)
		assert.NotEmpty(t, it.SettledByEntryID)
		assert.NotNil(t, it.PaidAt)
	}

	entries, err := e.ledger.EntriesByCorrelation(ctx, domainLedger.Correlation{Type: domainLedger.CorrelationLoan, ID: l.LoanID})
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	assert.Len(t, e.events.OfType(event.TypeLoanDisbursed), 1)
	assert.Len(t, e.events.OfType(event.TypeRepaymentReceived), 3)
	assert.Equal(t, float64(1), promtest.ToFloat64(e.metrics.LoanTransitions.WithLabelValues("ACTIVE", "CLOSED")))
	assert.Equal(t, float64(1), promtest.ToFloat64(e.metrics.LoanTransitions.WithLabelValues("APPROVED_FOR_DISBURSEMENT", "ACTIVE")))
}

func TestGuarantorRejection(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.advance(t, domainLoan.StatusPendingGuarantorApproval)

	_, err := e.uc.GuarantorDecide(ctx, stranger, l.LoanID, false, "not me")
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = e.uc.GuarantorDecide(ctx, borrower, l.LoanID, true, "")
	assert.ErrorIs(t, err, errs.ErrForbidden)

	got, err := e.uc.GuarantorDecide(ctx, guarantor, l.LoanID, false, "cannot cover")
	require.NoError(t, err)
	assert.Equal(t, domainLoan.StatusRejected, got.Status)

	detail, err := e.uc.Get(ctx, admin, l.LoanID)
	require.NoError(t, err)
	require.Len(t, detail.Decisions, 1)
	assert.Equal(t, approval.VerdictReject, detail.Decisions[0].Verdict)
	assert.Equal(t, guarantorID, detail.Decisions[0].GuarantorID)

	_, err = e.uc.GuarantorDecide(ctx, guarantor, l.LoanID, true, "changed my mind")
	assert.ErrorIs(t, err, errs.ErrDuplicateState)
}

func TestAdminReview(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	l := e.request(t)
	_, err := e.uc.AdminReview(ctx, borrower, l.LoanID, true, "")
	assert.ErrorIs(t, err, errs.ErrForbidden)

	got, err := e.uc.AdminReview(ctx, admin, l.LoanID, true, "fine")
	require.NoError(t, err)
	assert.Equal(t, "fine", got.AdminComment)

	_, err = e.uc.AdminReview(ctx, admin, l.LoanID, true, "again")
	assert.ErrorIs(t, err, domainLoan.ErrAlreadyReviewed)
	assert.ErrorIs(t, err, errs.ErrInvalidStateTransition)

	_, err = e.uc.AdminReview(ctx, admin, "missing", true, "")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAdminReview_RejectIsTerminal(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.request(t)

	got, err := e.uc.AdminReview(ctx, admin, l.LoanID, false, "income too low")
	require.NoError(t, err)
	assert.Equal(t, domainLoan.StatusRejected, got.Status)
	assert.Equal(t, "income too low", got.AdminComment)
	assert.Nil(t, got.ApprovedAt)

	_, err = e.uc.Cancel(ctx, borrower, l.LoanID, "")
	assert.ErrorIs(t, err, errs.ErrInvalidStateTransition)
}

func TestBorrowerConfirm_DeclineCancels(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.advance(t, domainLoan.StatusPendingBorrowerConfirmation)

	_, err := e.uc.BorrowerConfirm(ctx, guarantor, l.LoanID, true)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	got, err := e.uc.BorrowerConfirm(ctx, borrower, l.LoanID, false)
	require.NoError(t, err)
	assert.Equal(t, domainLoan.StatusCancelled, got.Status)
	assert.Equal(t, borrowerID, got.CancelledBy)
}

func TestDisburse_NoDoubleDisbursement(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.advance(t, domainLoan.StatusActive)

	_, err := e.uc.Disburse(ctx, admin, l.LoanID)
	assert.ErrorIs(t, err, errs.ErrInvalidStateTransition)
	assert.ErrorIs(t, err, domainLoan.ErrAlreadyDisbursed)

	assert.Equal(t, int64(120_000), e.balance(t))
	assertOneDisbursement(t, e, l.LoanID)
}

func TestDisburse_ConcurrentCallsCreditOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.advance(t, domainLoan.StatusApprovedForDisbursement)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		ok     int
		failed int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.uc.Disburse(ctx, admin, l.LoanID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, errs.ErrInvalidStateTransition):
				failed++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 4, failed)
	assert.Equal(t, int64(120_000), e.balance(t))
	assertOneDisbursement(t, e, l.LoanID)
	e.assertBalanced(t)
}

func assertOneDisbursement(t *testing.T, e env, loanID string) {
	t.Helper()
	entries, err := e.ledger.EntriesByCorrelation(context.Background(), domainLedger.Correlation{Type: domainLedger.CorrelationLoan, ID: loanID})
	require.NoError(t, err)
	n := 0
	for _, en := range entries {
		if en.Category == domainLedger.CategoryLoanDisbursement {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestDisburse_RequiresAdmin(t *testing.T) {
	e := newEnv(t)
	l := e.advance(t, domainLoan.StatusApprovedForDisbursement)
	_, err := e.uc.Disburse(context.Background(), borrower, l.LoanID)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	assert.Equal(t, int64(0), e.balance(t))
}

func TestDisburse_ScheduleFailureKeepsDisbursement(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.advance(t, domainLoan.StatusApprovedForDisbursement)

	e.uc.generate = func(schedule.Input) ([]installment.Installment, error) {
		return nil, errors.New("calendar service unavailable")
	}
	got, err := e.uc.Disburse(ctx, admin, l.LoanID)
	require.NoError(t, err)
	assert.Equal(t, domainLoan.StatusActive, got.Status)
	assert.True(t, got.ScheduleRegenerationRequired)
	assert.Equal(t, int64(120_000), e.balance(t))

	items, err := e.repay.GetSchedule(ctx, admin, l.LoanID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, float64(1), promtest.ToFloat64(e.metrics.ScheduleFailures))
	assert.Len(t, e.events.OfType(event.TypeScheduleGenerationFailed), 1)

	_, err = e.uc.Repay(ctx, borrower, l.LoanID, 1_000)
	assert.ErrorIs(t, err, errs.ErrValidation)

	e.uc.generate = schedule.Generate
	regenerated, err := e.uc.RegenerateSchedule(ctx, admin, l.LoanID)
	require.NoError(t, err)
	assert.Len(t, regenerated, 3)

	after, err := e.uc.Get(ctx, admin, l.LoanID)
	require.NoError(t, err)
	assert.False(t, after.ScheduleRegenerationRequired)

	_, err = e.uc.Repay(ctx, borrower, l.LoanID, 44_000)
	assert.NoError(t, err)
}

func TestRepay_InsufficientFunds(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.advance(t, domainLoan.StatusActive)

	// leave 50 in the wallet
	_, err := e.ledger.ApplyMovement(ctx, ledgerUC.Movement{
		WalletID: e.wallet.WalletID, Amount: 119_950, Direction: domainLedger.Debit,
		Category: domainLedger.CategoryWithdrawal, Actor: admin,
	})
	require.NoError(t, err)
	require.Equal(t, int64(50), e.balance(t))

	_, err = e.uc.Repay(ctx, borrower, l.LoanID, 100)
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)

	assert.Equal(t, int64(50), e.balance(t))
	items, _ := e.repay.GetSchedule(ctx, admin, l.LoanID)
	for _, it := range items {
		assert.Equal(t, installment.StatusPending, it.Status)
		assert.Equal(t, int64(0), it.PaidAmount)
	}
	got, _ := e.uc.Get(ctx, admin, l.LoanID)
	assert.Equal(t, int64(0), got.AmountPaid)
	e.assertBalanced(t)
}

func TestRepay_PartialPaymentStopsAtNextInstallment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.advance(t, domainLoan.StatusActive)

	res, err := e.uc.Repay(ctx, borrower, l.LoanID, 50_000)
	require.NoError(t, err)
	assert.Len(t, res.Allocation.Settled, 1)
	assert.Equal(t, int64(6_000), res.Allocation.PartialAmount)
	assert.Equal(t, domainLoan.StatusActive, res.Loan.Status)

	items, _ := e.repay.GetSchedule(ctx, admin, l.LoanID)
	assert.Equal(t, installment.StatusPaid, items[0].Status)
	assert.Equal(t, installment.StatusPending, items[1].Status)
	assert.Equal(t, int64(6_000), items[1].PaidAmount)
	assert.Equal(t, int64(38_000), items[1].Remaining())
	assert.Equal(t, int64(0), items[2].PaidAmount)

	res, err = e.uc.Repay(ctx, borrower, l.LoanID, 38_000)
	require.NoError(t, err)
	assert.Equal(t, []string{items[1].InstallmentID}, res.Allocation.Settled)
	assert.Empty(t, res.Allocation.PartialID)

	items, _ = e.repay.GetSchedule(ctx, admin, l.LoanID)
	assert.Equal(t, installment.StatusPaid, items[1].Status)
	assert.Equal(t, installment.StatusPending, items[2].Status)
}

func TestRepay_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.advance(t, domainLoan.StatusActive)

	_, err := e.uc.Repay(ctx, borrower, l.LoanID, 0)
	assert.ErrorIs(t, err, domainLedger.ErrInvalidAmount)
	_, err = e.uc.Repay(ctx, guarantor, l.LoanID, 100)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = e.uc.Repay(ctx, admin, l.LoanID, 100)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = e.uc.Repay(ctx, borrower, l.LoanID, 132_001)
	assert.ErrorIs(t, err, domainLoan.ErrRepaymentExceedsDebt)
	assert.Equal(t, int64(120_000), e.balance(t))
}

func TestRepay_IncludesLateFees(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.deposit(t, 20_000)
	l := e.advance(t, domainLoan.StatusActive)

	items, _ := e.repay.GetSchedule(ctx, admin, l.LoanID)
	_, err := e.repay.MarkLate(ctx, admin, items[0].InstallmentID, 2_500)
	require.NoError(t, err)

	// 44,000 no longer covers the late installment
	res, err := e.uc.Repay(ctx, borrower, l.LoanID, 44_000)
	require.NoError(t, err)
	assert.Empty(t, res.Allocation.Settled)
	assert.Equal(t, items[0].InstallmentID, res.Allocation.PartialID)

	res, err = e.uc.Repay(ctx, borrower, l.LoanID, 132_000+2_500-44_000)
	require.NoError(t, err)
	assert.Equal(t, domainLoan.StatusClosed, res.Loan.Status)
	assert.Equal(t, int64(2_500), res.Loan.LateFeesAccrued)
	assert.Equal(t, int64(0), res.Loan.Outstanding())
}

func TestCancel(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	l := e.advance(t, domainLoan.StatusApprovedForDisbursement)
	_, err := e.uc.Cancel(ctx, guarantor, l.LoanID, "")
	assert.ErrorIs(t, err, errs.ErrForbidden)

	got, err := e.uc.Cancel(ctx, admin, l.LoanID, "fraud review")
	require.NoError(t, err)
	assert.Equal(t, domainLoan.StatusCancelled, got.Status)
	assert.Equal(t, "fraud review", got.CancelReason)
	assert.Equal(t, admin.ID, got.CancelledBy)

	_, err = e.uc.Cancel(ctx, admin, l.LoanID, "again")
	assert.ErrorIs(t, err, errs.ErrDuplicateState)

	active := e.advance(t, domainLoan.StatusActive)
	_, err = e.uc.Cancel(ctx, admin, active.LoanID, "too late")
	assert.ErrorIs(t, err, errs.ErrInvalidStateTransition)
}

func TestMarkDefaulted(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.advance(t, domainLoan.StatusActive)
	_, err := e.uc.Repay(ctx, borrower, l.LoanID, 44_000)
	require.NoError(t, err)

	_, err = e.uc.MarkDefaulted(ctx, borrower, l.LoanID, "")
	assert.ErrorIs(t, err, errs.ErrForbidden)

	got, err := e.uc.MarkDefaulted(ctx, admin, l.LoanID, "unreachable for 90 days")
	require.NoError(t, err)
	assert.Equal(t, domainLoan.StatusDefaulted, got.Status)
	assert.Equal(t, "unreachable for 90 days", got.DefaultReason)

	items, _ := e.repay.GetSchedule(ctx, admin, l.LoanID)
	assert.Equal(t, installment.StatusPaid, items[0].Status)
	assert.Equal(t, installment.StatusDefaulted, items[1].Status)
	assert.Equal(t, installment.StatusDefaulted, items[2].Status)

	_, err = e.uc.MarkDefaulted(ctx, admin, l.LoanID, "")
	assert.ErrorIs(t, err, errs.ErrDuplicateState)
}

func TestDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	pending := e.request(t)
	assert.ErrorIs(t, e.uc.Delete(ctx, borrower, pending.LoanID), errs.ErrForbidden)
	require.NoError(t, e.uc.Delete(ctx, admin, pending.LoanID))
	_, err := e.uc.Get(ctx, admin, pending.LoanID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	active := e.advance(t, domainLoan.StatusActive)
	assert.ErrorIs(t, e.uc.Delete(ctx, admin, active.LoanID), domainLoan.ErrNotDeletable)
}

func TestRegenerateSchedule_RefusedOncePaid(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.advance(t, domainLoan.StatusActive)

	before, _ := e.repay.GetSchedule(ctx, admin, l.LoanID)
	fresh, err := e.uc.RegenerateSchedule(ctx, admin, l.LoanID)
	require.NoError(t, err)
	assert.NotEqual(t, before[0].InstallmentID, fresh[0].InstallmentID)
	after, _ := e.repay.GetSchedule(ctx, admin, l.LoanID)
	assert.Len(t, after, 3)

	_, err = e.uc.Repay(ctx, borrower, l.LoanID, 1_000)
	require.NoError(t, err)
	_, err = e.uc.RegenerateSchedule(ctx, admin, l.LoanID)
	assert.ErrorIs(t, err, domainLoan.ErrScheduleHasPayments)

	_, err = e.uc.RegenerateSchedule(ctx, borrower, l.LoanID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	pending := e.seed(t, domainLoan.StatusPendingAdminReview)
	_, err = e.uc.RegenerateSchedule(ctx, admin, pending.LoanID)
	assert.ErrorIs(t, err, errs.ErrInvalidStateTransition)
}

func TestGetAndList_Visibility(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := e.request(t)

	_, err := e.uc.Get(ctx, borrower, l.LoanID)
	assert.NoError(t, err)
	_, err = e.uc.Get(ctx, guarantor, l.LoanID)
	assert.NoError(t, err)
	_, err = e.uc.Get(ctx, stranger, l.LoanID)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = e.repay.GetSchedule(ctx, stranger, l.LoanID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	mine, err := e.uc.List(ctx, borrower, domainLoan.Filter{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	guaranteed, err := e.uc.List(ctx, guarantor, domainLoan.Filter{GuarantorID: guarantorID})
	require.NoError(t, err)
	assert.Len(t, guaranteed, 1)

	_, err = e.uc.List(ctx, stranger, domainLoan.Filter{BorrowerID: borrowerID})
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = e.uc.List(ctx, admin, domainLoan.Filter{Status: "BOGUS"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	all, err := e.uc.List(ctx, admin, domainLoan.Filter{Status: domainLoan.StatusPendingAdminReview})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	plans, err := e.uc.Plans(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 2)
}

func TestSeedDefaultPlans(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.uc.SeedDefaultPlans(ctx))
	require.NoError(t, e.uc.SeedDefaultPlans(ctx))

	p, err := gormrepo.NewPlanRepository(e.db).GetByPlanID(ctx, "PLAN-12M")
	require.NoError(t, err)
	assert.Equal(t, 12, p.InstallmentCount)

	err = e.uc.SeedPlans(ctx, []plan.Plan{{PlanID: "BROKEN", InstallmentCount: 0}})
	assert.ErrorIs(t, err, errs.ErrValidation)
}
