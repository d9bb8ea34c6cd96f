package uow

import (
	"context"

	"coopfin-loan-engine/internal/domain/approval"
	"coopfin-loan-engine/internal/domain/installment"
	"coopfin-loan-engine/internal/domain/ledger"
	"coopfin-loan-engine/internal/domain/loan"
	"coopfin-loan-engine/internal/domain/plan"
)

// Repos are bound to one transaction.
type Repos struct {
	Loans        loan.Repository
	Decisions    approval.Repository
	Installments installment.Repository
	Wallets      ledger.WalletRepository
	Entries      ledger.EntryRepository
	Plans        plan.Repository

	// Savepoint runs fn in a nested unit; its failure rolls back only fn's writes.
	Savepoint func(ctx context.Context, fn func(r Repos) error) error
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
