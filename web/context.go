package web

import (
	"context"

	"github.com/artpar/launchpad/domain/account"
)

type ctxKey string

const actorKey ctxKey = "actor"

// withActor adds the authenticated account to the context.
func withActor(ctx context.Context, a account.Account) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// actorFrom retrieves the authenticated account from context.
func actorFrom(ctx context.Context) (account.Account, bool) {
	a, ok := ctx.Value(actorKey).(account.Account)
	return a, ok
}
