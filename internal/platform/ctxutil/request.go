package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData rides on every API request. The request-id middleware creates
// it and the auth middleware fills in the caller once a bearer token verifies.
type RequestData struct {
	TraceID   string
	RequestID string
	UserID    uuid.UUID
	Role      string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// WithUser attaches the verified caller, keeping trace and request ids already on ctx.
func WithUser(ctx context.Context, userID uuid.UUID, role string) context.Context {
	var rd RequestData
	if cur := GetRequestData(ctx); cur != nil {
		rd = *cur
	}
	rd.UserID = userID
	rd.Role = role
	return WithRequestData(ctx, &rd)
}

// UserID returns uuid.Nil when the request is unauthenticated.
func UserID(ctx context.Context) uuid.UUID {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.UserID
	}
	return uuid.Nil
}

func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
