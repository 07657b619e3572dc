package utils

import (
	"context"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

type rqIDKey struct{}

type sessionKey struct{}

// SystemScope is the cache scope for work not bound to a user session (jobs, bot, cli).
const SystemScope = "system"

func GetRequestIDFromCtx(ctx context.Context) string {
	rqID, ok := ctx.Value(rqIDKey{}).(string)
	if !ok {
		return ""
	}
	return rqID
}

func WithRequestID(ctx context.Context, rqID string) context.Context {
	if rqID == "" {
		rqID = uuid.NewString()
	}
	return context.WithValue(ctx, rqIDKey{}, rqID)
}

func CreateCtxWithRqID(c tele.Context) context.Context {
	rqId, ok := c.Get("rqID").(string)
	if !ok {
		return context.WithValue(context.Background(), rqIDKey{}, uuid.NewString())
	}
	return context.WithValue(context.Background(), rqIDKey{}, rqId)
}

func WithSession(ctx context.Context, session model.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func GetSessionFromCtx(ctx context.Context) (model.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(model.Session)
	return session, ok
}

// GetCacheScopeFromCtx returns the query-cache scope: the session id for signed-in users,
// otherwise the system scope.
func GetCacheScopeFromCtx(ctx context.Context) string {
	if session, ok := GetSessionFromCtx(ctx); ok && session.ID != "" {
		return session.ID
	}
	return SystemScope
}
