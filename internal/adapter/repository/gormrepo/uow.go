package gormrepo

import (
	"context"

	"coopfin-loan-engine/internal/domain/loan"
	"coopfin-loan-engine/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func bind(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:        &LoanRepository{db: tx},
		Decisions:    &DecisionRepository{db: tx},
		Installments: &InstallmentRepository{db: tx},
		Wallets:      &WalletRepository{db: tx},
		Entries:      &EntryRepository{db: tx},
		Plans:        &PlanRepository{db: tx},
		// gorm turns a Transaction inside a transaction into a SAVEPOINT
		Savepoint: func(ctx context.Context, fn func(r uow.Repos) error) error {
			return tx.WithContext(ctx).Transaction(func(nested *gorm.DB) error {
				return fn(bind(nested))
			})
		},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(bind(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := bind(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
