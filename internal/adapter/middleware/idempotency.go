package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"coopfin-loan-engine/internal/domain/ledger"
	"coopfin-loan-engine/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MoneyRoutes move wallet balances; a retried call without a request id could
// post the same movement twice, so they refuse to run without one.
var MoneyRoutes = []string{
	"POST /loans/:loan_id/disburse",
	"POST /loans/:loan_id/repay",
	"POST /wallets/:wallet_id/movements",
	"POST /transfers",
}

type capture struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (c *capture) Write(b []byte) (int, error) {
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *capture) WriteHeader(code int) {
	c.code = code
	c.ResponseWriter.WriteHeader(code)
}

func reject(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// Idempotency deduplicates mutating requests by (method, route, actor,
// Ax-Request-Id). Routes listed in required must carry a request id; other
// mutating routes are deduplicated only when the client sends one.
//
// The request id is also put on the request context, and ledger entries
// posted while serving it record it. A replayed response carries
// Ax-Idempotent-Replayed. Server errors are forgotten so the client can retry.
func Idempotency(store *Store, required ...string) echo.MiddlewareFunc {
	must := make(map[string]bool, len(required))
	for _, r := range required {
		must[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID := strings.ToLower(strings.TrimSpace(req.Header.Get(HeaderRequestID)))
			if reqID == "" {
				if must[req.Method+" "+c.Path()] {
					return reject(c, http.StatusBadRequest, HeaderRequestID+" is required when moving money")
				}
				return next(c)
			}
			if !validRequestID(reqID) {
				return reject(c, http.StatusBadRequest, "invalid "+HeaderRequestID+" format")
			}
			at, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return reject(c, http.StatusBadRequest, err.Error())
			}
			if !withinSkew(at, time.Now().UTC()) {
				return reject(c, http.StatusBadRequest, HeaderRequestAt+" too skewed")
			}
			actorID := strings.TrimSpace(req.Header.Get(HeaderActorID))
			if !validActorID(actorID) {
				return reject(c, http.StatusBadRequest, "missing or invalid "+HeaderActorID)
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			hash := bodyHash(body)

			key := storeKey(req.Method, c.Path(), actorID, reqID)
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			cur, err := store.reserve(ctx, key, hash)
			cancel()
			if err != nil {
				logger.WithField("key", key).Warnf("idempotency: reserve: %v", err)
				return reject(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if cur != nil {
				switch {
				case cur.BodyHash != hash:
					return reject(c, http.StatusConflict, HeaderRequestID+" reused with a different body")
				case cur.Pending:
					return reject(c, http.StatusConflict, "request is already in progress")
				}
				c.Response().Header().Set(HeaderReplayed, "true")
				return c.Blob(cur.Status, echo.MIMEApplicationJSON, cur.Body)
			}

			c.SetRequest(req.WithContext(ledger.WithRequestID(req.Context(), reqID)))
			w := &capture{ResponseWriter: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = w
			if err := next(c); err != nil {
				c.Error(err)
			}

			if w.code >= http.StatusInternalServerError {
				if err := store.release(context.Background(), key); err != nil {
					logger.WithField("key", key).Warnf("idempotency: release: %v", err)
				}
				return nil
			}
			if err := store.complete(context.Background(), key, record{Status: w.code, Body: w.buf.Bytes(), BodyHash: hash}); err != nil {
				logger.WithField("key", key).Warnf("idempotency: store: %v", err)
			}
			return nil
		}
	}
}
