package gormrepo

import (
	"context"
	"time"

	"coopfin-loan-engine/internal/domain/ledger"

	"gorm.io/gorm"
)

type WalletRepository struct{ db *gorm.DB }

func NewWalletRepository(db *gorm.DB) *WalletRepository { return &WalletRepository{db: db} }

func (r *WalletRepository) Create(ctx context.Context, w *ledger.Wallet) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *WalletRepository) GetByWalletID(ctx context.Context, walletID string) (*ledger.Wallet, error) {
	var out ledger.Wallet
	if err := r.db.WithContext(ctx).Where("wallet_id = ?", walletID).First(&out).Error; err != nil {
		return nil, notFound(err, ledger.ErrWalletNotFound)
	}
	return &out, nil
}

func (r *WalletRepository) GetByOwnerID(ctx context.Context, ownerID string) (*ledger.Wallet, error) {
	var out ledger.Wallet
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&out).Error; err != nil {
		return nil, notFound(err, ledger.ErrWalletNotFound)
	}
	return &out, nil
}

func (r *WalletRepository) GetByWalletIDForUpdate(ctx context.Context, walletID string) (*ledger.Wallet, error) {
	var out ledger.Wallet
	err := r.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("wallet_id = ?", walletID).
		First(&out).Error
	if err != nil {
		return nil, notFound(err, ledger.ErrWalletNotFound)
	}
	return &out, nil
}

// UpdateBalance is a conditional write keyed on the version read by the caller.
func (r *WalletRepository) UpdateBalance(ctx context.Context, w *ledger.Wallet, newBalance int64) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&ledger.Wallet{}).
		Where("id = ? AND version = ?", w.ID, w.Version).
		Updates(map[string]any{
			"balance":    newBalance,
			"version":    w.Version + 1,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ledger.ErrConcurrentMovement
	}
	w.Balance = newBalance
	w.Version++
	w.UpdatedAt = now
	return nil
}

type EntryRepository struct{ db *gorm.DB }

func NewEntryRepository(db *gorm.DB) *EntryRepository { return &EntryRepository{db: db} }

func (r *EntryRepository) Create(ctx context.Context, e *ledger.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EntryRepository) ListByWallet(ctx context.Context, walletID string) ([]ledger.Entry, error) {
	var out []ledger.Entry
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *EntryRepository) ListByCorrelation(ctx context.Context, corrType, corrID string) ([]ledger.Entry, error) {
	var out []ledger.Entry
	err := r.db.WithContext(ctx).
		Where("correlation_type = ? AND correlation_id = ?", corrType, corrID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *EntryRepository) SumSigned(ctx context.Context, walletID string) (int64, error) {
	var row struct{ Total int64 }
	err := r.db.WithContext(ctx).
		Model(&ledger.Entry{}).
		Select("COALESCE(SUM(CASE WHEN direction = ? THEN amount ELSE -amount END), 0) AS total", ledger.Credit).
		Where("wallet_id = ? AND status = ?", walletID, ledger.EntryConfirmed).
		Scan(&row).Error
	return row.Total, err
}
