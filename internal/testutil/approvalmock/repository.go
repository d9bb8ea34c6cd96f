package approvalmock

import (
	"context"

	domain "coopfin-loan-engine/internal/domain/approval"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                func(ctx context.Context, d *domain.Decision) error
	GetByLoanAndGuarantorFn func(ctx context.Context, loanID, guarantorID string) (*domain.Decision, error)
	ListByLoanIDFn          func(ctx context.Context, loanID string) ([]domain.Decision, error)
}

func (m *Repo) Create(ctx context.Context, d *domain.Decision) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByLoanAndGuarantor(ctx context.Context, loanID, guarantorID string) (*domain.Decision, error) {
	if m.GetByLoanAndGuarantorFn != nil {
		return m.GetByLoanAndGuarantorFn(ctx, loanID, guarantorID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByLoanID(ctx context.Context, loanID string) ([]domain.Decision, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, nil
}
