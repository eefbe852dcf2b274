package auth

import "context"

var _ Checker = (*TokenChecker)(nil)
var _ Checker = (*TestChecker)(nil)

// Checker resolves a bearer token to the authenticated user id.
type Checker interface {
	UserID(ctx context.Context, token string) (string, error)
}
