package auth

import "context"

// Identity is the authenticated taker as carried by the token.
type Identity struct {
	Sub   string
	Name  string
	Email string
}

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

func IdentityFromContext(ctx context.Context) Identity {
	if v := ctx.Value(ctxKeyIdentity); v != nil {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}
