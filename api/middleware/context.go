package middleware

import (
	"context"

	"github.com/angelmondragon/quotedesk-backend/pkg/db/models"
)

type contextKey string

const (
	ctxUser      contextKey = "user"
	ctxToken     contextKey = "session_token"
	ctxRequestID contextKey = "request_id"
)

// UserFromContext returns the authenticated user, or nil on public routes.
func UserFromContext(ctx context.Context) *models.User {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxUser).(*models.User); ok {
		return v
	}
	return nil
}

// TokenFromContext returns the bearer token the request authenticated with.
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxToken).(string); ok {
		return v
	}
	return ""
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRequestID).(string); ok {
		return v
	}
	return ""
}

// WithUser injects the authenticated user and token into the context.
func WithUser(ctx context.Context, user *models.User, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUser, user)
	return context.WithValue(ctx, ctxToken, token)
}
