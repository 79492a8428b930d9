package middleware

import (
	"context"

	pkgerrors "github.com/mahafpc/agrichain-backend/pkg/errors"
	"github.com/mahafpc/agrichain-backend/pkg/scope"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
	ctxScope  contextKey = "actor_scope"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// ScopeFromContext returns the caller's scope seeded by the auth middleware.
func ScopeFromContext(ctx context.Context) (scope.Scope, error) {
	if ctx != nil {
		if sc, ok := ctx.Value(ctxScope).(scope.Scope); ok {
			return sc, nil
		}
	}
	return scope.Scope{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
}

// WithScope injects the caller's scope into the context.
func WithScope(ctx context.Context, sc scope.Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, sc.UserID.String())
	ctx = context.WithValue(ctx, ctxRole, string(sc.Role))
	return context.WithValue(ctx, ctxScope, sc)
}
