package http

import (
	"net/http"
	"strconv"

	domainLoan "coopfin-loan-engine/internal/domain/loan"
	"coopfin-loan-engine/internal/usecase/loan"
	"coopfin-loan-engine/internal/usecase/repayment"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct {
	uc    *loan.Usecase
	repay *repayment.Usecase
}

func NewLoanHandler(uc *loan.Usecase, repay *repayment.Usecase) *LoanHandler {
	return &LoanHandler{uc: uc, repay: repay}
}

type decisionReq struct {
	Approve *bool  `json:"approve" validate:"required"`
	Comment string `json:"comment" validate:"max=1000"`
}

type confirmReq struct {
	Confirm *bool `json:"confirm" validate:"required"`
}

type repayReq struct {
	Amount int64 `json:"amount" validate:"gt=0"`
}

type reasonReq struct {
	Reason string `json:"reason" validate:"max=1000"`
}

func (h *LoanHandler) RequestLoan(c echo.Context) error {
	var req loan.RequestInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	l, err := h.uc.RequestLoan(c.Request().Context(), actorOf(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), actorOf(c), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ListLoans(c echo.Context) error {
	f := domainLoan.Filter{
		BorrowerID:  c.QueryParam("borrower_id"),
		GuarantorID: c.QueryParam("guarantor_id"),
		Status:      domainLoan.Status(c.QueryParam("status")),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be an integer"})
		}
		f.Limit = n
	}
	loans, err := h.uc.List(c.Request().Context(), actorOf(c), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": loans})
}

func (h *LoanHandler) Review(c echo.Context) error {
	var req decisionReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	l, err := h.uc.AdminReview(c.Request().Context(), actorOf(c), c.Param("loan_id"), *req.Approve, req.Comment)
	return h.loanResult(c, l, err)
}

func (h *LoanHandler) GuarantorDecision(c echo.Context) error {
	var req decisionReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	l, err := h.uc.GuarantorDecide(c.Request().Context(), actorOf(c), c.Param("loan_id"), *req.Approve, req.Comment)
	return h.loanResult(c, l, err)
}

func (h *LoanHandler) Confirm(c echo.Context) error {
	var req confirmReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	l, err := h.uc.BorrowerConfirm(c.Request().Context(), actorOf(c), c.Param("loan_id"), *req.Confirm)
	return h.loanResult(c, l, err)
}

func (h *LoanHandler) Disburse(c echo.Context) error {
	l, err := h.uc.Disburse(c.Request().Context(), actorOf(c), c.Param("loan_id"))
	return h.loanResult(c, l, err)
}

func (h *LoanHandler) Repay(c echo.Context) error {
	var req repayReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	res, err := h.uc.Repay(c.Request().Context(), actorOf(c), c.Param("loan_id"), req.Amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) Cancel(c echo.Context) error {
	var req reasonReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	l, err := h.uc.Cancel(c.Request().Context(), actorOf(c), c.Param("loan_id"), req.Reason)
	return h.loanResult(c, l, err)
}

func (h *LoanHandler) MarkDefaulted(c echo.Context) error {
	var req reasonReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	l, err := h.uc.MarkDefaulted(c.Request().Context(), actorOf(c), c.Param("loan_id"), req.Reason)
	return h.loanResult(c, l, err)
}

func (h *LoanHandler) Delete(c echo.Context) error {
	if err := h.uc.Delete(c.Request().Context(), actorOf(c), c.Param("loan_id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LoanHandler) RegenerateSchedule(c echo.Context) error {
	items, err := h.uc.RegenerateSchedule(c.Request().Context(), actorOf(c), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"installments": items})
}

func (h *LoanHandler) Schedule(c echo.Context) error {
	items, err := h.repay.GetSchedule(c.Request().Context(), actorOf(c), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"installments": items})
}

func (h *LoanHandler) Plans(c echo.Context) error {
	plans, err := h.uc.Plans(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"plans": plans})
}

func (h *LoanHandler) loanResult(c echo.Context, l *domainLoan.Loan, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}
