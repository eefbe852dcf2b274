package auth

import "context"

// TestChecker is used in unit and development testing.
type TestChecker struct {
	// token -> user id
	Sessions map[string]string
}

func NewTestChecker(sessions map[string]string) *TestChecker {
	if sessions == nil {
		sessions = map[string]string{}
	}
	return &TestChecker{
		Sessions: sessions,
	}
}

func (tc *TestChecker) UserID(_ context.Context, token string) (string, error) {
	userID, ok := tc.Sessions[token]
	if !ok {
		return "", ErrSessionNotFound
	}
	return userID, nil
}
