package auth

import "context"

type userIDContextKey struct{}

// ContextWithUserID stores the authenticated user id in the request
// context (set by the auth middleware after token verification).
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey{}).(string)
	return userID, ok && userID != ""
}
