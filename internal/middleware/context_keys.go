package middleware

import "context"

// ContextKey is the type of keys this package stores in request contexts.
type ContextKey string

const (
	UserIDCtxKey    = ContextKey("user_id")
	UserRoleCtxKey  = ContextKey("user_role")
	RequestIDCtxKey = ContextKey("request_id")
)

const roleAdmin = "admin"

func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(UserIDCtxKey).(string)
	return id
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleCtxKey).(string)
	return role
}

func IsAdmin(ctx context.Context) bool {
	return RoleFromContext(ctx) == roleAdmin
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDCtxKey).(string)
	return id
}

// WithIdentity returns a context carrying an authenticated user.
func WithIdentity(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDCtxKey, userID)
	return context.WithValue(ctx, UserRoleCtxKey, role)
}
