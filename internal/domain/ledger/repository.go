package ledger

import "context"

type WalletRepository interface {
	Create(ctx context.Context, w *Wallet) error
	GetByWalletID(ctx context.Context, walletID string) (*Wallet, error)
	GetByOwnerID(ctx context.Context, ownerID string) (*Wallet, error)
	// Lock wallet row for the remainder of the transaction
	GetByWalletIDForUpdate(ctx context.Context, walletID string) (*Wallet, error)
	// UpdateBalance writes the new balance only if the stored version still equals w.Version.
	UpdateBalance(ctx context.Context, w *Wallet, newBalance int64) error
}

// EntryRepository is append-only: entries are never updated or deleted.
type EntryRepository interface {
	Create(ctx context.Context, e *Entry) error
	ListByWallet(ctx context.Context, walletID string) ([]Entry, error)
	ListByCorrelation(ctx context.Context, corrType, corrID string) ([]Entry, error)
	// SumSigned totals confirmed entries for a wallet (credits minus debits).
	SumSigned(ctx context.Context, walletID string) (int64, error)
}
