package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/fittrack/backend/internal/auth"
	"github.com/fittrack/backend/internal/middleware"
)

func TestAuthMiddlewareHandler_AuthCheck(t *testing.T) {
	tokenChecker := &auth.TestChecker{
		Sessions: map[string]string{
			"valid-token": "user1",
		},
	}
	authMiddleware := middleware.NewAuthMiddlewareHandler(tokenChecker)

	testCases := []struct {
		name               string
		path               string
		method             string
		authHeader         string
		expectedStatusCode int
		expectedUserID     string
	}{
		{
			name:               "AllowedPathWithoutToken",
			path:               "/version",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "ProtectedPathWithoutToken",
			path:               "/fitstats/update",
			method:             "POST",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "ValidToken",
			path:               "/fitstats/progress",
			method:             "GET",
			authHeader:         "Bearer valid-token",
			expectedStatusCode: http.StatusOK,
			expectedUserID:     "user1",
		},
		{
			name:               "InvalidToken",
			path:               "/fitstats/progress",
			method:             "GET",
			authHeader:         "Bearer bogus-token",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "MalformedAuthorizationHeader",
			path:               "/fitstats/progress",
			method:             "GET",
			authHeader:         "valid-token",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "OptionsPreflight",
			path:               "/fitstats/update",
			method:             "OPTIONS",
			expectedStatusCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotUserID string
			var nextCalled bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				gotUserID, _ = auth.UserIDFromContext(r.Context())
			})

			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rr := httptest.NewRecorder()

			authMiddleware.AuthCheck()(next).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			if tc.expectedUserID != "" {
				assert.True(t, nextCalled)
				assert.Equal(t, tc.expectedUserID, gotUserID)
			}
		})
	}
}

// a failing token lookup (redis down) must not let the request through
func TestAuthMiddlewareHandler_AuthCheck_checkerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockChecker := NewMockChecker(ctrl)
	mockChecker.
		EXPECT().
		UserID(gomock.Any(), "some-token").
		Return("", assert.AnError)

	authMiddleware := middleware.NewAuthMiddlewareHandler(mockChecker)

	var nextCalled bool
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		nextCalled = true
	})

	req := httptest.NewRequest("GET", "/fitstats/progress", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rr := httptest.NewRecorder()

	authMiddleware.AuthCheck()(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, nextCalled)
}
