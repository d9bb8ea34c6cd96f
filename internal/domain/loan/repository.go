package loan

import "context"

// Filter narrows List; empty fields are ignored.
type Filter struct {
	BorrowerID  string
	GuarantorID string
	Status      Status
	Limit       int
}

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// Lock loan row for the remainder of the transaction
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	// Open = any non-terminal status
	GetOpenLoanByBorrowerID(ctx context.Context, borrowerID string) (*Loan, error)
	List(ctx context.Context, f Filter) ([]Loan, error)
	// Save persists l only if its stored version still equals l.Version.
	Save(ctx context.Context, l *Loan) error
	Delete(ctx context.Context, l *Loan, deletedBy string) error
}
