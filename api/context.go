package api

import (
	"context"

	"github.com/tonypoem-foundation/site-backend/auth"
)

type keyType string

const sessionKey keyType = "session"

// ctxWithSession adds the admin session to the context
func ctxWithSession(ctx context.Context, session auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// ctxGetSession retrieves the admin session placed by the auth middleware
func ctxGetSession(ctx context.Context) (auth.Session, bool) {
	session, ok := ctx.Value(sessionKey).(auth.Session)
	return session, ok
}
