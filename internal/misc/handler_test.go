package misc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v9"
	"github.com/go-redis/redismock/v8"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fittrack/backend/internal/auth"
	"github.com/fittrack/backend/internal/telemetry/metrics"
)

type invalidatorMock struct {
	invalidated []string
}

func (i *invalidatorMock) Invalidate(token string) {
	i.invalidated = append(i.invalidated, token)
}

type rateLimiterMock struct{}

func (rl *rateLimiterMock) Allow(_ context.Context, _ string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	return &redis_rate.Result{Allowed: 1}, nil
}

func newMiscTestRouter(t *testing.T) (*mux.Router, redismock.ClientMock, *invalidatorMock) {
	t.Helper()

	redisClient, redisMock := redismock.NewClientMock()
	authService := auth.NewService(auth.DefaultTTL, redisClient)
	invalidator := &invalidatorMock{}
	handler := NewHandler("v1.2.3", authService, invalidator)

	router := mux.NewRouter()
	handler.SetupRoutes(router, &rateLimiterMock{}, metrics.NewTestManager())
	return router, redisMock, invalidator
}

func TestHandler_root(t *testing.T) {
	router, _, _ := newMiscTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "I'm OK, thanks ;)", rr.Body.String())
}

func TestHandler_version(t *testing.T) {
	router, _, _ := newMiscTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/version", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "v1.2.3", rr.Body.String())
}

func TestHandler_ping(t *testing.T) {
	router, _, _ := newMiscTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/ping", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", rr.Body.String())
}

func TestHandler_logout(t *testing.T) {
	router, redisMock, invalidator := newMiscTestRouter(t)

	token := "test-token"
	sessionKey := "fittrack-session||" + token
	sessionValue := fmt.Sprintf("user1::%d", time.Now().Unix())
	redisMock.ExpectGet(sessionKey).SetVal(sessionValue)
	redisMock.ExpectDel(sessionKey).SetVal(1)
	redisMock.ExpectSRem("fittrack-sessions", token).SetVal(1)

	req := httptest.NewRequest("GET", "/a/logout", nil)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "logged-out", rr.Body.String())
	assert.Equal(t, []string{token}, invalidator.invalidated)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_logout_missingToken(t *testing.T) {
	router, _, invalidator := newMiscTestRouter(t)

	req := httptest.NewRequest("GET", "/a/logout", nil)
	req.Header.Set("User-Agent", "test-agent")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, invalidator.invalidated)
}

func TestHandler_logout_unknownToken(t *testing.T) {
	router, redisMock, invalidator := newMiscTestRouter(t)

	redisMock.ExpectGet("fittrack-session||bogus").RedisNil()

	req := httptest.NewRequest("GET", "/a/logout", nil)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Authorization", "Bearer bogus")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, invalidator.invalidated)
}
