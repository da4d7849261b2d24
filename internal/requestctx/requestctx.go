package requestctx

import "context"

type requestIDKey struct{}

// WithRequestID stamps the correlation id the handlers echo back inside
// response envelopes.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
