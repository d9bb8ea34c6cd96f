package approval

import "context"

type Repository interface {
	// Create a new decision (DB uniqueness ensures at most one per loan per guarantor)
	Create(ctx context.Context, d *Decision) error

	// Get decision by loan and guarantor
	GetByLoanAndGuarantor(ctx context.Context, loanID, guarantorID string) (*Decision, error)

	// List all decisions recorded for a loan
	ListByLoanID(ctx context.Context, loanID string) ([]Decision, error)
}
