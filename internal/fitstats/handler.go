package fitstats

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/fittrack/backend/internal/auth"
	"github.com/fittrack/backend/internal/middleware"
	"github.com/fittrack/backend/internal/telemetry/metrics"
	"github.com/fittrack/backend/internal/telemetry/tracing"
	"github.com/fittrack/backend/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type incrementProcessor interface {
	Apply(ctx context.Context, userID string, deltas Totals) (*Totals, error)
}

type recordGetter interface {
	Get(ctx context.Context, userID string) (*UserRecord, error)
}

type sleepSource interface {
	SleepHoursOn(ctx context.Context, userID string, day time.Time) (float64, error)
}

type Handler struct {
	processor incrementProcessor
	store     recordGetter
	sleep     sleepSource
	location  *time.Location
	metrics   *metrics.Manager
}

func NewHandler(
	processor incrementProcessor,
	store recordGetter,
	sleep sleepSource,
	location *time.Location,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		processor: processor,
		store:     store,
		sleep:     sleep,
		location:  location,
		metrics:   metricsManager,
	}
}

// SetupRoutes registers the metric routes. Only the update route is
// rate limited, reads stay cheap and unthrottled.
func (h *Handler) SetupRoutes(
	router *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	updateAllowedPerMin int,
) {
	router.Handle(
		"/fitstats/update",
		middleware.RateLimit(rateLimiter, "update-totals", updateAllowedPerMin, h.metrics)(
			http.HandlerFunc(h.HandleUpdate),
		),
	).Methods("POST", "OPTIONS").Name("update-totals")
	router.HandleFunc("/fitstats/progress", h.HandleGetProgress).Methods("GET", "OPTIONS").Name("get-progress")
}

type UpdateRequest struct {
	UserID              string `json:"userId"`
	StepsDelta          int    `json:"stepsDelta"`
	CaloriesBurnedDelta int    `json:"caloriesBurnedDelta"`
	CaloriesEatenDelta  int    `json:"caloriesEatenDelta"`
}

type UpdateResponse struct {
	NewSteps          int `json:"newSteps"`
	NewCaloriesBurned int `json:"newCaloriesBurned"`
	NewCaloriesEaten  int `json:"newCaloriesEaten"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitstats.update")
	defer span.End()

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var updateReq UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		log.Errorf("update totals, unmarshal json params: %s", err)
		http.Error(w, "update totals failed", http.StatusBadRequest)
		return
	}

	authUserID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		span.SetStatus(codes.Error, "missing-identity")
		return
	}

	// the token subject must match the user whose totals are changed
	if updateReq.UserID != authUserID {
		reqIp, _ := pkg.ReadUserIP(r)
		log.Warnf(
			"update totals: identity mismatch, claimed [%s] vs authenticated [%s], from %s",
			updateReq.UserID, authUserID, reqIp,
		)
		http.Error(w, "no can do", http.StatusUnauthorized)
		span.SetStatus(codes.Error, "identity-mismatch")
		return
	}

	span.SetAttributes(attribute.String("user.id", authUserID))

	newTotals, err := h.processor.Apply(ctx, authUserID, Totals{
		Steps:          updateReq.StepsDelta,
		CaloriesBurned: updateReq.CaloriesBurnedDelta,
		CaloriesEaten:  updateReq.CaloriesEatenDelta,
	})
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, ErrInvalidInput):
			http.Error(w, "invalid input", http.StatusBadRequest)
		case errors.Is(err, ErrUserNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		case errors.Is(err, ErrStoreUnavailable):
			log.Errorf("update totals for %s: %s", authUserID, err)
			http.Error(w, "try again later", http.StatusServiceUnavailable)
		default:
			log.Errorf("update totals for %s: %s", authUserID, err)
			http.Error(w, "update totals failed", http.StatusInternalServerError)
		}
		return
	}

	h.metrics.CounterIncrements.WithLabelValues("steps").Add(float64(updateReq.StepsDelta))
	h.metrics.CounterIncrements.WithLabelValues("calories_burned").Add(float64(updateReq.CaloriesBurnedDelta))
	h.metrics.CounterIncrements.WithLabelValues("calories_eaten").Add(float64(updateReq.CaloriesEatenDelta))

	respJson, err := json.Marshal(UpdateResponse{
		NewSteps:          newTotals.Steps,
		NewCaloriesBurned: newTotals.CaloriesBurned,
		NewCaloriesEaten:  newTotals.CaloriesEaten,
	})
	if err != nil {
		log.Errorf("failed to marshal updated totals: %s", err)
		http.Error(w, "update totals failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (h *Handler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fitstats.progress")
	defer span.End()

	authUserID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		span.SetStatus(codes.Error, "missing-identity")
		return
	}
	span.SetAttributes(attribute.String("user.id", authUserID))

	record, err := h.store.Get(ctx, authUserID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("get progress for %s: %s", authUserID, err)
		http.Error(w, "get progress failed", http.StatusInternalServerError)
		return
	}

	today := time.Now().In(h.location)
	sleepHours, err := h.sleep.SleepHoursOn(ctx, authUserID, today)
	if err != nil {
		span.RecordError(err)
		log.Errorf("get sleep hours for %s: %s", authUserID, err)
		http.Error(w, "get progress failed", http.StatusInternalServerError)
		return
	}

	calorieProgress := CalculateCalorieProgress(
		record.Totals.CaloriesBurned,
		record.Totals.CaloriesEaten,
		record.CalorieGoal,
	)

	snapshot := ProgressSnapshot{
		TotalSteps:          record.Totals.Steps,
		CaloriesEatenToday:  record.Totals.CaloriesEaten,
		CaloriesBurnedToday: record.Totals.CaloriesBurned,
		CaloriesLeft:        calorieProgress.CaloriesLeft,
		CalorieProgress:     calorieProgress.Fraction,
		SleepDurationToday:  sleepHours,
		SleepProgress:       CalculateSleepProgress(sleepHours, record.SleepGoal),
		CalorieGoal:         record.CalorieGoal,
		SleepGoal:           record.SleepGoal,
	}

	snapshotJson, err := json.Marshal(snapshot)
	if err != nil {
		log.Errorf("failed to marshal progress snapshot: %s", err)
		http.Error(w, "get progress failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, snapshotJson)
}
