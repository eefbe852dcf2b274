package fitstats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fittrack/backend/internal/auth"
	"github.com/fittrack/backend/internal/telemetry/metrics"
)

type rateLimiterMock struct {
	denyAll bool
}

func (rl *rateLimiterMock) Allow(_ context.Context, _ string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	if rl.denyAll {
		return &redis_rate.Result{Allowed: 0, RetryAfter: 30 * time.Second}, nil
	}
	return &redis_rate.Result{Allowed: 1}, nil
}

type sleepSourceMock struct {
	hours     float64
	forcedErr error
}

func (s *sleepSourceMock) SleepHoursOn(_ context.Context, _ string, _ time.Time) (float64, error) {
	if s.forcedErr != nil {
		return 0, s.forcedErr
	}
	return s.hours, nil
}

type handlerTestDeps struct {
	router      *mux.Router
	store       *storeMock
	sleep       *sleepSourceMock
	rateLimiter *rateLimiterMock
}

func newTestHandler(t *testing.T) handlerTestDeps {
	t.Helper()

	store := NewMockStore()
	require.NoError(t, store.Create(context.Background(), &UserRecord{
		UserID: "user1",
		Totals: Totals{
			Steps:          4000,
			CaloriesBurned: 250,
			CaloriesEaten:  1500,
		},
		CalorieGoal: 2000,
		SleepGoal:   8,
	}))

	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	sleep := &sleepSourceMock{hours: 6}
	handler := NewHandler(
		NewIncrementProcessor(store, time.Second),
		store,
		sleep,
		loc,
		metrics.NewTestManager(),
	)

	rateLimiter := &rateLimiterMock{}
	router := mux.NewRouter()
	handler.SetupRoutes(router, rateLimiter, 60)

	return handlerTestDeps{router: router, store: store, sleep: sleep, rateLimiter: rateLimiter}
}

func newUpdateRequest(t *testing.T, authUserID string, updateReq UpdateRequest) *http.Request {
	t.Helper()
	reqJson, err := json.Marshal(updateReq)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/fitstats/update", strings.NewReader(string(reqJson)))
	req.Header.Set("Content-Type", "application/json")
	if authUserID != "" {
		req = req.WithContext(auth.ContextWithUserID(req.Context(), authUserID))
	}
	return req
}

func TestHandler_Update(t *testing.T) {
	deps := newTestHandler(t)

	req := newUpdateRequest(t, "user1", UpdateRequest{
		UserID:              "user1",
		StepsDelta:          500,
		CaloriesBurnedDelta: 50,
		CaloriesEatenDelta:  300,
	})
	rr := httptest.NewRecorder()
	deps.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var updateResp UpdateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updateResp))
	assert.Equal(t, UpdateResponse{
		NewSteps:          4500,
		NewCaloriesBurned: 300,
		NewCaloriesEaten:  1800,
	}, updateResp)

	record, err := deps.store.Get(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, Totals{Steps: 4500, CaloriesBurned: 300, CaloriesEaten: 1800}, record.Totals)
}

func TestHandler_Update_invalidContentType(t *testing.T) {
	deps := newTestHandler(t)

	req := newUpdateRequest(t, "user1", UpdateRequest{UserID: "user1", StepsDelta: 1})
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	deps.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Update_contentTypeWithCharset(t *testing.T) {
	deps := newTestHandler(t)

	req := newUpdateRequest(t, "user1", UpdateRequest{UserID: "user1", StepsDelta: 100})
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rr := httptest.NewRecorder()
	deps.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	record, err := deps.store.Get(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, 4100, record.Totals.Steps)
}

func TestHandler_Update_invalidJson(t *testing.T) {
	deps := newTestHandler(t)

	req := httptest.NewRequest("POST", "/fitstats/update", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
	rr := httptest.NewRecorder()
	deps.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Update_negativeDelta(t *testing.T) {
	deps := newTestHandler(t)

	req := newUpdateRequest(t, "user1", UpdateRequest{UserID: "user1", StepsDelta: -5})
	rr := httptest.NewRecorder()
	deps.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Update_unauthenticated(t *testing.T) {
	deps := newTestHandler(t)

	req := newUpdateRequest(t, "", UpdateRequest{UserID: "user1", StepsDelta: 1})
	rr := httptest.NewRecorder()
	deps.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_Update_identityMismatch(t *testing.T) {
	deps := newTestHandler(t)

	req := newUpdateRequest(t, "user2", UpdateRequest{UserID: "user1", StepsDelta: 1})
	rr := httptest.NewRecorder()
	deps.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// the claimed user's totals are untouched
	record, err := deps.store.Get(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, 4000, record.Totals.Steps)
}

func TestHandler_Update_userNotFound(t *testing.T) {
	deps := newTestHandler(t)

	req := newUpdateRequest(t, "ghost", UpdateRequest{UserID: "ghost", StepsDelta: 1})
	rr := httptest.NewRecorder()
	deps.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_Update_storeOutage(t *testing.T) {
	deps := newTestHandler(t)
	deps.store.ForcedErr = errors.New("connection refused")

	req := newUpdateRequest(t, "user1", UpdateRequest{UserID: "user1", StepsDelta: 1})
	rr := httptest.NewRecorder()
	deps.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHandler_Update_rateLimited(t *testing.T) {
	deps := newTestHandler(t)
	deps.rateLimiter.denyAll = true

	req := newUpdateRequest(t, "user1", UpdateRequest{UserID: "user1", StepsDelta: 1})
	rr := httptest.NewRecorder()
	deps.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestHandler_Update_methodNotAllowed(t *testing.T) {
	deps := newTestHandler(t)

	req := httptest.NewRequest("GET", "/fitstats/update", nil)
	rr := httptest.NewRecorder()
	deps.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandler_GetProgress(t *testing.T) {
	deps := newTestHandler(t)

	req := httptest.NewRequest("GET", "/fitstats/progress", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
	rr := httptest.NewRecorder()
	deps.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var snapshot ProgressSnapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snapshot))

	assert.Equal(t, 4000, snapshot.TotalSteps)
	assert.Equal(t, 1500, snapshot.CaloriesEatenToday)
	assert.Equal(t, 250, snapshot.CaloriesBurnedToday)
	assert.InDelta(t, 750, snapshot.CaloriesLeft, 0.0001)
	assert.InDelta(t, 0.75, snapshot.CalorieProgress, 0.0001)
	assert.InDelta(t, 6, snapshot.SleepDurationToday, 0.0001)
	assert.InDelta(t, 0.75, snapshot.SleepProgress, 0.0001)
	assert.InDelta(t, 2000, snapshot.CalorieGoal, 0.0001)
	assert.InDelta(t, 8, snapshot.SleepGoal, 0.0001)
}

func TestHandler_GetProgress_unauthenticated(t *testing.T) {
	deps := newTestHandler(t)

	req := httptest.NewRequest("GET", "/fitstats/progress", nil)
	rr := httptest.NewRecorder()
	deps.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_GetProgress_userNotFound(t *testing.T) {
	deps := newTestHandler(t)

	req := httptest.NewRequest("GET", "/fitstats/progress", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "ghost"))
	rr := httptest.NewRecorder()
	deps.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_GetProgress_sleepSourceFailure(t *testing.T) {
	deps := newTestHandler(t)
	deps.sleep.forcedErr = fmt.Errorf("diary store: %w", context.DeadlineExceeded)

	req := httptest.NewRequest("GET", "/fitstats/progress", nil)
	req = req.WithContext(auth.ContextWithUserID(req.Context(), "user1"))
	rr := httptest.NewRecorder()
	deps.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
