package http

import (
	"errors"
	"net/http"

	"coopfin-loan-engine/internal/domain/ledger"
	ledgerUC "coopfin-loan-engine/internal/usecase/ledger"

	"github.com/labstack/echo/v4"
)

type WalletHandler struct{ svc *ledgerUC.Service }

func NewWalletHandler(svc *ledgerUC.Service) *WalletHandler { return &WalletHandler{svc: svc} }

type openWalletReq struct {
	OwnerID  string `json:"owner_id" validate:"omitempty,memberid"`
	Currency string `json:"currency" validate:"omitempty,iso4217"`
}

type movementReq struct {
	Amount          int64  `json:"amount" validate:"gt=0"`
	Direction       string `json:"direction" validate:"required,oneof=DEBIT CREDIT"`
	Category        string `json:"category" validate:"required"`
	CorrelationType string `json:"correlation_type" validate:"max=32"`
	CorrelationID   string `json:"correlation_id" validate:"max=64"`
	Description     string `json:"description" validate:"max=1000"`
}

type transferReq struct {
	FromWalletID string `json:"from_wallet_id" validate:"required,hex32"`
	ToWalletID   string `json:"to_wallet_id" validate:"required,hex32"`
	Amount       int64  `json:"amount" validate:"gt=0"`
	Description  string `json:"description" validate:"max=1000"`
}

func (h *WalletHandler) OpenWallet(c echo.Context) error {
	var req openWalletReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	a := actorOf(c)
	if req.OwnerID == "" {
		req.OwnerID = a.ID
	}
	w, err := h.svc.OpenWallet(c.Request().Context(), a, req.OwnerID, req.Currency)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *WalletHandler) GetWallet(c echo.Context) error {
	w, err := h.svc.GetWallet(c.Request().Context(), actorOf(c), c.Param("wallet_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *WalletHandler) Entries(c echo.Context) error {
	entries, err := h.svc.Entries(c.Request().Context(), actorOf(c), c.Param("wallet_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": entries})
}

func (h *WalletHandler) Movement(c echo.Context) error {
	var req movementReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	e, err := h.svc.ApplyMovement(c.Request().Context(), ledgerUC.Movement{
		WalletID:    c.Param("wallet_id"),
		Amount:      req.Amount,
		Direction:   ledger.Direction(req.Direction),
		Category:    ledger.Category(req.Category),
		Correlation: ledger.Correlation{Type: req.CorrelationType, ID: req.CorrelationID},
		Actor:       actorOf(c),
		Description: req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *WalletHandler) Transfer(c echo.Context) error {
	var req transferReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	debit, credit, err := h.svc.TransferMovement(c.Request().Context(), ledgerUC.Transfer{
		FromWalletID: req.FromWalletID,
		ToWalletID:   req.ToWalletID,
		Amount:       req.Amount,
		Actor:        actorOf(c),
		Description:  req.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"debit": debit, "credit": credit})
}

func (h *WalletHandler) Reconcile(c echo.Context) error {
	rec, err := h.svc.Reconcile(c.Request().Context(), actorOf(c), c.Param("wallet_id"))
	switch {
	case errors.Is(err, ledger.ErrBalanceDrift):
		return c.JSON(http.StatusConflict, map[string]any{"error": err.Error(), "reconciliation": rec})
	case err != nil:
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}
