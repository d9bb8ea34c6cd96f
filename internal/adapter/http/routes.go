package http

import "github.com/labstack/echo/v4"

type Routes struct {
	Health       *Handler
	Loans        *LoanHandler
	Installments *InstallmentHandler
	Wallets      *WalletHandler
	// Idempotency guards mutating routes; nil disables it.
	Idempotency echo.MiddlewareFunc
}

// Register mounts the API on e. Everything except health and metrics
// requires the actor headers.
func Register(e *echo.Echo, r Routes) {
	e.GET("/health", r.Health.Health)
	e.GET("/metrics", r.Health.Metrics)

	mw := []echo.MiddlewareFunc{ActorMiddleware()}
	if r.Idempotency != nil {
		mw = append(mw, r.Idempotency)
	}
	api := e.Group("", mw...)

	api.GET("/plans", r.Loans.Plans)
	api.POST("/loans", r.Loans.RequestLoan)
	api.GET("/loans", r.Loans.ListLoans)
	api.GET("/loans/:loan_id", r.Loans.GetLoan)
	api.DELETE("/loans/:loan_id", r.Loans.Delete)
	api.POST("/loans/:loan_id/review", r.Loans.Review)
	api.POST("/loans/:loan_id/guarantor-decision", r.Loans.GuarantorDecision)
	api.POST("/loans/:loan_id/confirm", r.Loans.Confirm)
	api.POST("/loans/:loan_id/disburse", r.Loans.Disburse)
	api.POST("/loans/:loan_id/repay", r.Loans.Repay)
	api.POST("/loans/:loan_id/cancel", r.Loans.Cancel)
	api.POST("/loans/:loan_id/default", r.Loans.MarkDefaulted)
	api.POST("/loans/:loan_id/schedule/regenerate", r.Loans.RegenerateSchedule)
	api.GET("/loans/:loan_id/schedule", r.Loans.Schedule)

	api.POST("/installments/:installment_id/late", r.Installments.MarkLate)
	api.POST("/installments/:installment_id/penalty", r.Installments.ApplyPenalty)

	api.POST("/wallets", r.Wallets.OpenWallet)
	api.GET("/wallets/:wallet_id", r.Wallets.GetWallet)
	api.GET("/wallets/:wallet_id/entries", r.Wallets.Entries)
	api.GET("/wallets/:wallet_id/reconcile", r.Wallets.Reconcile)
	api.POST("/wallets/:wallet_id/movements", r.Wallets.Movement)
	api.POST("/transfers", r.Wallets.Transfer)
}
