package loan

import (
	"context"
	"testing"
	"time"

	"coopfin-loan-engine/internal/adapter/lock"
	"coopfin-loan-engine/internal/adapter/notify"
	"coopfin-loan-engine/internal/adapter/repository/gormrepo"
	"coopfin-loan-engine/internal/domain/actor"
	domainLedger "coopfin-loan-engine/internal/domain/ledger"
	domainLoan "coopfin-loan-engine/internal/domain/loan"
	"coopfin-loan-engine/internal/domain/plan"
	"coopfin-loan-engine/internal/infrastructure/metrics"
	"coopfin-loan-engine/internal/testutil/dbtest"
	ledgerUC "coopfin-loan-engine/internal/usecase/ledger"
	"coopfin-loan-engine/internal/usecase/repayment"
	"coopfin-loan-engine/internal/usecase/schedule"
	"coopfin-loan-engine/pkg/id"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	borrowerID  = "member-borrower"
	guarantorID = "member-guarantor"
)

var (
	admin     = actor.Admin("admin-1")
	borrower  = actor.Member(borrowerID)
	guarantor = actor.Member(guarantorID)
	stranger  = actor.Member("member-stranger")
)

type env struct {
	uc      *Usecase
	ledger  *ledgerUC.Service
	repay   *repayment.Usecase
	db      *gorm.DB
	events  *notify.Recorder
	metrics *metrics.Metrics
	wallet  *domainLedger.Wallet
}

func newEnv(t *testing.T) env {
	t.Helper()
	ctx := context.Background()
	db := dbtest.Open(t)
	tx := gormrepo.NewGormUoW(db)
	m := metrics.New()
	rec := &notify.Recorder{}

	loans := gormrepo.NewLoanRepository(db)
	led := ledgerUC.NewService(tx, gormrepo.NewWalletRepository(db), gormrepo.NewEntryRepository(db), lock.NewLocalLocker(), m, "IDR")
	rp := repayment.NewUsecase(tx, loans, gormrepo.NewInstallmentRepository(db), rec, m)
	uc := NewUsecase(Deps{
		UoW:       tx,
		Loans:     loans,
		Decisions: gormrepo.NewDecisionRepository(db),
		Plans:     gormrepo.NewPlanRepository(db),
		Ledger:    led,
		Repayment: rp,
		Publisher: rec,
		Metrics:   m,
	})

	require.NoError(t, uc.SeedPlans(ctx, []plan.Plan{
		{PlanID: "PLAN-3", Name: "Three months", InstallmentCount: 3, InterestRate: decimal.RequireFromString("0.1"), PenaltyFee: 300, Active: true},
		{PlanID: "PLAN-OFF", Name: "Withdrawn", InstallmentCount: 6, InterestRate: decimal.RequireFromString("0.2"), Active: false},
	}))

	w, err := led.OpenWallet(ctx, admin, borrowerID, "IDR")
	require.NoError(t, err)
	_, err = led.OpenWallet(ctx, admin, guarantorID, "IDR")
	require.NoError(t, err)

	return env{uc: uc, ledger: led, repay: rp, db: db, events: rec, metrics: m, wallet: w}
}

func (e env) deposit(t *testing.T, amount int64) {
	t.Helper()
	_, err := e.ledger.ApplyMovement(context.Background(), ledgerUC.Movement{
		WalletID: e.wallet.WalletID, Amount: amount, Direction: domainLedger.Credit,
		Category: domainLedger.CategoryDeposit, Actor: admin,
	})
	require.NoError(t, err)
}

func (e env) balance(t *testing.T) int64 {
	t.Helper()
	w, err := e.ledger.GetWallet(context.Background(), admin, e.wallet.WalletID)
	require.NoError(t, err)
	return w.Balance
}

func (e env) assertBalanced(t *testing.T) {
	t.Helper()
	_, err := e.ledger.Reconcile(context.Background(), admin, e.wallet.WalletID)
	require.NoError(t, err)
}

// request opens a PLAN-3 loan of 1,200.00 for the borrower.
func (e env) request(t *testing.T) *domainLoan.Loan {
	t.Helper()
	l, err := e.uc.RequestLoan(context.Background(), borrower, RequestInput{
		GuarantorID: guarantorID,
		Principal:   120_000,
		PlanID:      "PLAN-3",
		Purpose:     "sewing machine",
	})
	require.NoError(t, err)
	return l
}

// advance drives a fresh loan through the happy path up to status to.
func (e env) advance(t *testing.T, to domainLoan.Status) *domainLoan.Loan {
	t.Helper()
	ctx := context.Background()
	l := e.request(t)
	steps := []struct {
		status domainLoan.Status
		run    func() (*domainLoan.Loan, error)
	}{
		{domainLoan.StatusPendingGuarantorApproval, func() (*domainLoan.Loan, error) {
			return e.uc.AdminReview(ctx, admin, l.LoanID, true, "ok")
		}},
		{domainLoan.StatusPendingBorrowerConfirmation, func() (*domainLoan.Loan, error) {
			return e.uc.GuarantorDecide(ctx, guarantor, l.LoanID, true, "I vouch")
		}},
		{domainLoan.StatusApprovedForDisbursement, func() (*domainLoan.Loan, error) {
			return e.uc.BorrowerConfirm(ctx, borrower, l.LoanID, true)
		}},
		{domainLoan.StatusActive, func() (*domainLoan.Loan, error) {
			return e.uc.Disburse(ctx, admin, l.LoanID)
		}},
	}
	for _, s := range steps {
		if l.Status == to {
			return l
		}
		next, err := s.run()
		require.NoError(t, err)
		require.Equal(t, s.status, next.Status)
		l = next
	}
	require.Equal(t, to, l.Status)
	return l
}

// seed writes a loan straight into storage in any status, bypassing the lifecycle.
func (e env) seed(t *testing.T, status domainLoan.Status) *domainLoan.Loan {
	t.Helper()
	ctx := context.Background()
	at := time.Now().UTC()
	l := &domainLoan.Loan{
		LoanID:           id.NewID32(),
		BorrowerID:       borrowerID,
		GuarantorID:      guarantorID,
		PlanID:           "PLAN-3",
		InstallmentCount: 3,
		Principal:        120_000,
		InterestRate:     decimal.RequireFromString("0.1"),
		InterestTotal:    12_000,
		PenaltyFee:       300,
		TotalRepayable:   132_000,
		Currency:         "IDR",
		Status:           status,
		RequestedAt:      at,
		StatusUpdatedAt:  at,
	}
	switch status {
	case domainLoan.StatusActive, domainLoan.StatusClosed, domainLoan.StatusDefaulted:
		l.DisbursedAt = &at
	}
	require.NoError(t, gormrepo.NewLoanRepository(e.db).Create(ctx, l))

	if status == domainLoan.StatusActive {
		items, err := schedule.Generate(e.uc.scheduleInput(l))
		require.NoError(t, err)
		require.NoError(t, gormrepo.NewInstallmentRepository(e.db).CreateBatch(ctx, items))
	}
	return l
}
