package http

import (
	"net/http"

	"coopfin-loan-engine/internal/usecase/repayment"

	"github.com/labstack/echo/v4"
)

type InstallmentHandler struct{ uc *repayment.Usecase }

func NewInstallmentHandler(uc *repayment.Usecase) *InstallmentHandler {
	return &InstallmentHandler{uc: uc}
}

type markLateReq struct {
	LateFee int64 `json:"late_fee" validate:"gt=0"`
}

func (h *InstallmentHandler) MarkLate(c echo.Context) error {
	var req markLateReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	it, err := h.uc.MarkLate(c.Request().Context(), actorOf(c), c.Param("installment_id"), req.LateFee)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, it)
}

func (h *InstallmentHandler) ApplyPenalty(c echo.Context) error {
	it, err := h.uc.ApplyContractualPenalty(c.Request().Context(), actorOf(c), c.Param("installment_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, it)
}
