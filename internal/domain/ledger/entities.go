package ledger

import (
	"fmt"
	"time"

	"coopfin-loan-engine/internal/domain/errs"
)

var (
	ErrWalletNotFound     = fmt.Errorf("wallet %w", errs.ErrNotFound)
	ErrInvalidAmount      = fmt.Errorf("%w: amount must be a positive number of minor units", errs.ErrValidation)
	ErrInsufficientFunds  = fmt.Errorf("wallet balance: %w", errs.ErrInsufficientFunds)
	ErrInvalidCategory    = fmt.Errorf("%w: unknown ledger category", errs.ErrValidation)
	ErrInvalidDirection   = fmt.Errorf("%w: direction must be DEBIT or CREDIT", errs.ErrValidation)
	ErrSameWallet         = fmt.Errorf("%w: transfer source and destination are the same wallet", errs.ErrValidation)
	ErrConcurrentMovement = fmt.Errorf("wallet balance changed during movement")
	ErrBalanceDrift       = fmt.Errorf("wallet balance does not match ledger entries")
)

type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

func (d Direction) Valid() bool { return d == Debit || d == Credit }

// Sign returns +1 for credits and -1 for debits.
func (d Direction) Sign() int64 {
	if d == Debit {
		return -1
	}
	return 1
}

type Category string

const (
	CategoryDeposit           Category = "deposit"
	CategoryWithdrawal        Category = "withdrawal"
	CategoryTransferOut       Category = "transfer-out"
	CategoryTransferIn        Category = "transfer-in"
	CategoryLoanDisbursement  Category = "loan-disbursement"
	CategoryLoanRepayment     Category = "loan-repayment"
	CategoryContribution      Category = "contribution"
	CategoryPenaltyAdjustment Category = "penalty-adjustment"
	CategoryRefund            Category = "refund"
)

var categories = map[Category]struct{}{
	CategoryDeposit:           {},
	CategoryWithdrawal:        {},
	CategoryTransferOut:       {},
	CategoryTransferIn:        {},
	CategoryLoanDisbursement:  {},
	CategoryLoanRepayment:     {},
	CategoryContribution:      {},
	CategoryPenaltyAdjustment: {},
	CategoryRefund:            {},
}

func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

type EntryStatus string

const (
	EntryPending   EntryStatus = "pending"
	EntryConfirmed EntryStatus = "confirmed"
	EntryRejected  EntryStatus = "rejected"
)

// Correlation points from an entry to the business event that caused it.
type Correlation struct {
	Type string // loan, installment, transfer, ...
	ID   string
}

const (
	CorrelationLoan     = "loan"
	CorrelationTransfer = "transfer"
)

// Table: wallets
type Wallet struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	WalletID  string    `gorm:"size:32;uniqueIndex:ux_wallets_wallet_id" json:"wallet_id"`
	OwnerID   string    `gorm:"size:64;uniqueIndex:ux_wallets_owner_id" json:"owner_id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	Currency  string    `gorm:"size:3;not null" json:"currency"`
	Version   int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string { return "wallets" }

// Table: wallet_entries (append-only)
type Entry struct {
	ID              uint64      `gorm:"primaryKey;column:id" json:"-"`
	EntryID         string      `gorm:"size:32;uniqueIndex:ux_wallet_entries_entry_id" json:"entry_id"`
	WalletID        string      `gorm:"size:32;not null;index:idx_wallet_entries_wallet" json:"wallet_id"`
	Amount          int64       `gorm:"not null" json:"amount"`
	Direction       Direction   `gorm:"size:6;not null" json:"direction"`
	Category        Category    `gorm:"size:32;not null" json:"category"`
	BalanceBefore   int64       `gorm:"not null" json:"balance_before"`
	BalanceAfter    int64       `gorm:"not null" json:"balance_after"`
	CorrelationType string      `gorm:"size:32;index:idx_wallet_entries_correlation" json:"correlation_type,omitempty"`
	CorrelationID   string      `gorm:"size:64;index:idx_wallet_entries_correlation" json:"correlation_id,omitempty"`
	RequestID       string      `gorm:"size:36;index:idx_wallet_entries_request" json:"request_id,omitempty"`
	Status          EntryStatus `gorm:"size:16;not null" json:"status"`
	CreatedBy       string      `gorm:"size:64" json:"created_by"`
	VerifiedBy      string      `gorm:"size:64" json:"verified_by,omitempty"`
	Description     string      `gorm:"type:text" json:"description,omitempty"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string { return "wallet_entries" }

// Signed returns the entry's effect on its wallet balance.
func (e Entry) Signed() int64 { return e.Direction.Sign() * e.Amount }

// Consistent checks the before/after snapshot against amount and direction.
func (e Entry) Consistent() bool {
	return e.BalanceAfter == e.BalanceBefore+e.Signed()
}
