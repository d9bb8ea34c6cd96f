package ledger

import "context"

type requestIDKey struct{}

// WithRequestID tags ctx with the client request that is moving money, so
// every entry it posts can be traced back to that request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}
