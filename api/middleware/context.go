package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/pawfund/pawfund-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxAccessID contextKey = "access_id"
)

// Actor is the authenticated caller.
type Actor struct {
	UserID   uuid.UUID
	Role     enums.Role
	AccessID string
}

// WithActor seeds the context with the caller identity.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, actor.UserID)
	ctx = context.WithValue(ctx, ctxRole, actor.Role)
	return context.WithValue(ctx, ctxAccessID, actor.AccessID)
}

// ActorFromContext returns the caller and whether the request is authenticated.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	id, ok := ctx.Value(ctxUserID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return Actor{}, false
	}
	role, _ := ctx.Value(ctxRole).(enums.Role)
	access, _ := ctx.Value(ctxAccessID).(string)
	return Actor{UserID: id, Role: role, AccessID: access}, true
}

// UserIDFromContext returns the caller id as a string, empty for guests.
func UserIDFromContext(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.UserID.String()
	}
	return ""
}
