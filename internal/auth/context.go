package auth

import "context"

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

// ContextKeyAccount is the key for the signed-in account in request context
const ContextKeyAccount ContextKey = "account"

// ContextWithAccount returns a new context with the account set
func ContextWithAccount(ctx context.Context, a Account) context.Context {
	return context.WithValue(ctx, ContextKeyAccount, a)
}

// AccountFromContext extracts the account from context
func AccountFromContext(ctx context.Context) (Account, bool) {
	a, ok := ctx.Value(ContextKeyAccount).(Account)
	return a, ok
}
