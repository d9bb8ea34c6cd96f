package ledger

import (
	"coopfin-loan-engine/internal/domain/actor"
	"coopfin-loan-engine/internal/domain/ledger"
)

// Movement is one balance change on one wallet.
type Movement struct {
	WalletID    string
	Amount      int64
	Direction   ledger.Direction
	Category    ledger.Category
	Correlation ledger.Correlation
	Actor       actor.Actor
	Description string
}

type Transfer struct {
	FromWalletID string
	ToWalletID   string
	Amount       int64
	Correlation  ledger.Correlation
	Actor        actor.Actor
	Description  string
}

type Reconciliation struct {
	WalletID  string `json:"wallet_id"`
	Balance   int64  `json:"balance"`
	LedgerSum int64  `json:"ledger_sum"`
	Drift     int64  `json:"drift"`
}
