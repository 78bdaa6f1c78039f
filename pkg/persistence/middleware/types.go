package middleware

import (
	"context"

	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/aretw0/leadwizard/pkg/ports"
)

// Middleware allows wrapping a SessionStore to add behavior.
type Middleware func(ports.SessionStore) ports.SessionStore

// Wrap applies the middlewares so that the first one is the outermost.
func Wrap(store ports.SessionStore, mws ...Middleware) ports.SessionStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

// deleteSession forwards Delete when the wrapped store supports it.
func deleteSession(ctx context.Context, next ports.SessionStore, sessionID string) error {
	d, ok := next.(ports.SessionDeleter)
	if !ok {
		return domain.ErrSessionDeleteUnsupported
	}
	return d.Delete(ctx, sessionID)
}
