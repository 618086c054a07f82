package utils

import "context"

type ctxKey struct{}

func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, reqID)
}

// RequestID returns the id stored by WithRequestID, or nil.
func RequestID(ctx context.Context) *string {
	if reqID, ok := ctx.Value(ctxKey{}).(string); ok {
		return &reqID
	}
	return nil
}
