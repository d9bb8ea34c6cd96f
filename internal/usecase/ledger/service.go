package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"coopfin-loan-engine/internal/domain/actor"
	"coopfin-loan-engine/internal/domain/errs"
	"coopfin-loan-engine/internal/domain/ledger"
	"coopfin-loan-engine/internal/domain/uow"
	"coopfin-loan-engine/pkg/id"
	"coopfin-loan-engine/pkg/logger"
)

// Locker serializes work per wallet id.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type Recorder interface {
	ObserveMovement(category, direction string, amount int64)
}

// loan movements belong to the lifecycle engine and never come in through ApplyMovement
var reservedCategories = map[ledger.Category]bool{
	ledger.CategoryLoanDisbursement: true,
	ledger.CategoryLoanRepayment:    true,
}

type Service struct {
	uow      uow.UnitOfWork
	wallets  ledger.WalletRepository
	entries  ledger.EntryRepository
	locker   Locker
	rec      Recorder
	currency string
}

func NewService(tx uow.UnitOfWork, wallets ledger.WalletRepository, entries ledger.EntryRepository, locker Locker, rec Recorder, currency string) *Service {
	return &Service{uow: tx, wallets: wallets, entries: entries, locker: locker, rec: rec, currency: currency}
}

// LockWallets takes the per-wallet locks in sorted order and returns one release func.
func (s *Service) LockWallets(ctx context.Context, walletIDs ...string) (func(), error) {
	ids := append([]string(nil), walletIDs...)
	sort.Strings(ids)

	var releases []func()
	unlock := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for i, wid := range ids {
		if i > 0 && ids[i-1] == wid {
			continue
		}
		release, err := s.locker.Acquire(ctx, wid)
		if err != nil {
			unlock()
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: wallet %s: %v", ledger.ErrConcurrentMovement, wid, err)
		}
		releases = append(releases, release)
	}
	return unlock, nil
}

func validate(m Movement) error {
	switch {
	case m.Amount <= 0:
		return ledger.ErrInvalidAmount
	case !m.Direction.Valid():
		return ledger.ErrInvalidDirection
	case !m.Category.Valid():
		return ledger.ErrInvalidCategory
	case strings.TrimSpace(m.WalletID) == "":
		return errs.Validation("wallet id is required")
	}
	return nil
}

// Post writes one movement inside the caller's unit of work. The caller must
// hold the wallet lock and call Observe after commit.
func (s *Service) Post(ctx context.Context, r uow.Repos, m Movement) (*ledger.Entry, error) {
	if err := validate(m); err != nil {
		return nil, err
	}
	w, err := r.Wallets.GetByWalletIDForUpdate(ctx, m.WalletID)
	if err != nil {
		return nil, err
	}
	if m.Direction == ledger.Debit && w.Balance < m.Amount {
		return nil, fmt.Errorf("%w: wallet %s has %d, needs %d", ledger.ErrInsufficientFunds, w.WalletID, w.Balance, m.Amount)
	}

	before := w.Balance
	after := before + m.Direction.Sign()*m.Amount
	if err := r.Wallets.UpdateBalance(ctx, w, after); err != nil {
		return nil, err
	}

	e := &ledger.Entry{
		EntryID:         id.NewID32(),
		WalletID:        w.WalletID,
		Amount:          m.Amount,
		Direction:       m.Direction,
		Category:        m.Category,
		BalanceBefore:   before,
		BalanceAfter:    after,
		CorrelationType: m.Correlation.Type,
		CorrelationID:   m.Correlation.ID,
		RequestID:       ledger.RequestIDFrom(ctx),
		Status:          ledger.EntryConfirmed,
		CreatedBy:       m.Actor.ID,
		VerifiedBy:      m.Actor.ID,
		Description:     m.Description,
		CreatedAt:       time.Now().UTC(),
	}
	if err := r.Entries.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Observe records committed entries.
func (s *Service) Observe(entries ...*ledger.Entry) {
	for _, e := range entries {
		if e == nil {
			continue
		}
		if s.rec != nil {
			s.rec.ObserveMovement(string(e.Category), string(e.Direction), e.Amount)
		}
		logger.WithFields(map[string]any{
			"wallet_id":  e.WalletID,
			"entry_id":   e.EntryID,
			"category":   e.Category,
			"direction":  e.Direction,
			"amount":     e.Amount,
			"balance":    e.BalanceAfter,
			"created_by": e.CreatedBy,
		}).Info("ledger: movement posted")
	}
}

// ApplyMovement is the standalone movement operation (deposits, withdrawals,
// contributions, adjustments). Admin only.
func (s *Service) ApplyMovement(ctx context.Context, m Movement) (*ledger.Entry, error) {
	if err := m.Actor.Validate(); err != nil {
		return nil, err
	}
	if !m.Actor.IsAdmin() {
		return nil, errs.Forbidden("only admins post wallet movements")
	}
	if reservedCategories[m.Category] {
		return nil, errs.Validation("category %s is posted by the loan lifecycle only", m.Category)
	}
	if err := validate(m); err != nil {
		return nil, err
	}

	release, err := s.LockWallets(ctx, m.WalletID)
	if err != nil {
		return nil, err
	}
	defer release()

	var out *ledger.Entry
	err = s.uow.WithinTx(ctx, func(r uow.Repos) error {
		e, err := s.Post(ctx, r, m)
		out = e
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Observe(out)
	return out, nil
}

// TransferMovement debits one wallet and credits another atomically. Admins
// may move between any wallets, members only out of their own.
func (s *Service) TransferMovement(ctx context.Context, t Transfer) (debit, credit *ledger.Entry, err error) {
	if err := t.Actor.Validate(); err != nil {
		return nil, nil, err
	}
	if t.Amount <= 0 {
		return nil, nil, ledger.ErrInvalidAmount
	}
	if t.FromWalletID == t.ToWalletID {
		return nil, nil, ledger.ErrSameWallet
	}
	if t.Correlation.ID == "" {
		t.Correlation = ledger.Correlation{Type: ledger.CorrelationTransfer, ID: id.NewID32()}
	}

	release, err := s.LockWallets(ctx, t.FromWalletID, t.ToWalletID)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	err = s.uow.WithinTx(ctx, func(r uow.Repos) error {
		from, err := r.Wallets.GetByWalletID(ctx, t.FromWalletID)
		if err != nil {
			return err
		}
		to, err := r.Wallets.GetByWalletID(ctx, t.ToWalletID)
		if err != nil {
			return err
		}
		if !t.Actor.IsAdmin() && !t.Actor.Is(from.OwnerID) {
			return errs.Forbidden("members may only transfer out of their own wallet")
		}
		if from.Currency != to.Currency {
			return errs.Validation("currency mismatch: %s -> %s", from.Currency, to.Currency)
		}

		debit, err = s.Post(ctx, r, Movement{
			WalletID: from.WalletID, Amount: t.Amount, Direction: ledger.Debit,
			Category: ledger.CategoryTransferOut, Correlation: t.Correlation,
			Actor: t.Actor, Description: t.Description,
		})
		if err != nil {
			return err
		}
		credit, err = s.Post(ctx, r, Movement{
			WalletID: to.WalletID, Amount: t.Amount, Direction: ledger.Credit,
			Category: ledger.CategoryTransferIn, Correlation: t.Correlation,
			Actor: t.Actor, Description: t.Description,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	s.Observe(debit, credit)
	return debit, credit, nil
}

// OpenWallet returns the owner's wallet, creating it on first call.
func (s *Service) OpenWallet(ctx context.Context, a actor.Actor, ownerID, currency string) (*ledger.Wallet, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, errs.Validation("owner id is required")
	}
	if !a.IsAdmin() && !a.Is(ownerID) {
		return nil, errs.Forbidden("cannot open a wallet for another member")
	}
	if currency == "" {
		currency = s.currency
	}
	currency = strings.ToUpper(currency)
	if len(currency) != 3 {
		return nil, errs.Validation("currency must be a 3-letter code")
	}

	existing, err := s.wallets.GetByOwnerID(ctx, ownerID)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, ledger.ErrWalletNotFound):
		return nil, err
	}

	w := &ledger.Wallet{WalletID: id.NewID32(), OwnerID: ownerID, Currency: currency}
	if err := s.wallets.Create(ctx, w); err != nil {
		return nil, err
	}
	logger.WithFields(map[string]any{"wallet_id": w.WalletID, "owner_id": ownerID}).Info("ledger: wallet opened")
	return w, nil
}

func (s *Service) authorizedWallet(ctx context.Context, a actor.Actor, walletID string) (*ledger.Wallet, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	w, err := s.wallets.GetByWalletID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !a.IsAdmin() && !a.Is(w.OwnerID) {
		return nil, errs.Forbidden("wallet %s belongs to another member", walletID)
	}
	return w, nil
}

func (s *Service) GetWallet(ctx context.Context, a actor.Actor, walletID string) (*ledger.Wallet, error) {
	return s.authorizedWallet(ctx, a, walletID)
}

func (s *Service) GetWalletByOwner(ctx context.Context, ownerID string) (*ledger.Wallet, error) {
	return s.wallets.GetByOwnerID(ctx, ownerID)
}

func (s *Service) Entries(ctx context.Context, a actor.Actor, walletID string) ([]ledger.Entry, error) {
	if _, err := s.authorizedWallet(ctx, a, walletID); err != nil {
		return nil, err
	}
	return s.entries.ListByWallet(ctx, walletID)
}

func (s *Service) EntriesByCorrelation(ctx context.Context, c ledger.Correlation) ([]ledger.Entry, error) {
	return s.entries.ListByCorrelation(ctx, c.Type, c.ID)
}

// Reconcile compares the stored balance with the sum of confirmed entries.
func (s *Service) Reconcile(ctx context.Context, a actor.Actor, walletID string) (*Reconciliation, error) {
	w, err := s.authorizedWallet(ctx, a, walletID)
	if err != nil {
		return nil, err
	}
	sum, err := s.entries.SumSigned(ctx, walletID)
	if err != nil {
		return nil, err
	}
	rec := &Reconciliation{WalletID: walletID, Balance: w.Balance, LedgerSum: sum, Drift: w.Balance - sum}
	if rec.Drift != 0 {
		logger.WithFields(map[string]any{"wallet_id": walletID, "drift": rec.Drift}).Error("ledger: balance drift")
		return rec, fmt.Errorf("%w: wallet %s drift %d", ledger.ErrBalanceDrift, walletID, rec.Drift)
	}
	return rec, nil
}
