package diary

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fittrack/backend/internal/auth"
	"github.com/fittrack/backend/internal/telemetry/metrics"
	"github.com/fittrack/backend/internal/telemetry/tracing"
	"github.com/fittrack/backend/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Handler struct {
	service  *Service
	location *time.Location
	metrics  *metrics.Manager
}

func NewHandler(service *Service, location *time.Location, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:  service,
		location: location,
		metrics:  metricsManager,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/nutrition", h.HandleAddNutrition).Methods("POST", "OPTIONS").Name("add-nutrition")
	router.HandleFunc("/sleep", h.HandleAddSleep).Methods("POST", "OPTIONS").Name("add-sleep")
	router.HandleFunc("/steps", h.HandleAddSteps).Methods("POST", "OPTIONS").Name("add-steps")
	router.HandleFunc("/workout", h.HandleAddWorkout).Methods("POST", "OPTIONS").Name("add-workout")
	router.HandleFunc("/day/{date}", h.HandleListDay).Methods("GET", "OPTIONS").Name("list-day")
}

type AddNutritionRequest struct {
	FoodItem         string `json:"foodItem"`
	MealType         string `json:"mealType"`
	ServingSize      string `json:"servingSize"`
	CaloriesConsumed int    `json:"caloriesConsumed"`
}

type AddSleepRequest struct {
	DurationHours float64 `json:"durationHours"`
	Note          string  `json:"note"`
}

type AddStepsRequest struct {
	StepsCount int `json:"stepsCount"`
}

type AddWorkoutRequest struct {
	ActivityType    string  `json:"activityType"`
	DurationMinutes int     `json:"durationMinutes"`
	DistanceMiles   float64 `json:"distanceMiles"`
	CaloriesBurned  int     `json:"caloriesBurned"`
}

func (h *Handler) HandleAddNutrition(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diary.addnutrition")
	defer span.End()

	authUserID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		span.SetStatus(codes.Error, "missing-identity")
		return
	}
	span.SetAttributes(attribute.String("user.id", authUserID))

	var addReq AddNutritionRequest
	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil {
		log.Errorf("add nutrition entry, unmarshal json params: %s", err)
		http.Error(w, "add entry failed", http.StatusBadRequest)
		return
	}

	entry := &NutritionEntry{
		UserID:      authUserID,
		FoodItem:    addReq.FoodItem,
		MealType:    addReq.MealType,
		ServingSize: addReq.ServingSize,
		Calories:    addReq.CaloriesConsumed,
	}
	if err := h.service.AddNutrition(ctx, entry); err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrInvalidEntry) {
			http.Error(w, "invalid entry", http.StatusBadRequest)
			return
		}
		log.Errorf("add nutrition entry for %s: %s", authUserID, err)
		http.Error(w, "add entry failed", http.StatusInternalServerError)
		return
	}

	h.metrics.CounterDiaryEntries.Inc()

	entryJson, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("failed to marshal nutrition entry: %s", err)
		http.Error(w, "add entry failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusCreated)
}

func (h *Handler) HandleAddSleep(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diary.addsleep")
	defer span.End()

	authUserID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		span.SetStatus(codes.Error, "missing-identity")
		return
	}
	span.SetAttributes(attribute.String("user.id", authUserID))

	var addReq AddSleepRequest
	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil {
		log.Errorf("add sleep entry, unmarshal json params: %s", err)
		http.Error(w, "add entry failed", http.StatusBadRequest)
		return
	}

	entry := &SleepEntry{
		UserID:        authUserID,
		DurationHours: addReq.DurationHours,
		Note:          addReq.Note,
	}
	if err := h.service.AddSleep(ctx, entry); err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrInvalidEntry) {
			http.Error(w, "invalid entry", http.StatusBadRequest)
			return
		}
		log.Errorf("add sleep entry for %s: %s", authUserID, err)
		http.Error(w, "add entry failed", http.StatusInternalServerError)
		return
	}

	h.metrics.CounterDiaryEntries.Inc()

	entryJson, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("failed to marshal sleep entry: %s", err)
		http.Error(w, "add entry failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusCreated)
}

func (h *Handler) HandleAddSteps(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diary.addsteps")
	defer span.End()

	authUserID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		span.SetStatus(codes.Error, "missing-identity")
		return
	}
	span.SetAttributes(attribute.String("user.id", authUserID))

	var addReq AddStepsRequest
	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil {
		log.Errorf("add steps entry, unmarshal json params: %s", err)
		http.Error(w, "add entry failed", http.StatusBadRequest)
		return
	}

	entry := &StepsEntry{
		UserID:     authUserID,
		StepsCount: addReq.StepsCount,
	}
	if err := h.service.AddSteps(ctx, entry); err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrInvalidEntry) {
			http.Error(w, "invalid entry", http.StatusBadRequest)
			return
		}
		log.Errorf("add steps entry for %s: %s", authUserID, err)
		http.Error(w, "add entry failed", http.StatusInternalServerError)
		return
	}

	h.metrics.CounterDiaryEntries.Inc()

	entryJson, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("failed to marshal steps entry: %s", err)
		http.Error(w, "add entry failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusCreated)
}

func (h *Handler) HandleAddWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diary.addworkout")
	defer span.End()

	authUserID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		span.SetStatus(codes.Error, "missing-identity")
		return
	}
	span.SetAttributes(attribute.String("user.id", authUserID))

	var addReq AddWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil {
		log.Errorf("add workout entry, unmarshal json params: %s", err)
		http.Error(w, "add entry failed", http.StatusBadRequest)
		return
	}

	entry := &WorkoutEntry{
		UserID:          authUserID,
		ActivityType:    addReq.ActivityType,
		DurationMinutes: addReq.DurationMinutes,
		DistanceMiles:   addReq.DistanceMiles,
		CaloriesBurned:  addReq.CaloriesBurned,
	}
	if err := h.service.AddWorkout(ctx, entry); err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrInvalidEntry) {
			http.Error(w, "invalid entry", http.StatusBadRequest)
			return
		}
		log.Errorf("add workout entry for %s: %s", authUserID, err)
		http.Error(w, "add entry failed", http.StatusInternalServerError)
		return
	}

	h.metrics.CounterDiaryEntries.Inc()

	entryJson, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("failed to marshal workout entry: %s", err)
		http.Error(w, "add entry failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusCreated)
}

func (h *Handler) HandleListDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.diary.listday")
	defer span.End()

	authUserID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		span.SetStatus(codes.Error, "missing-identity")
		return
	}
	span.SetAttributes(attribute.String("user.id", authUserID))

	vars := mux.Vars(r)
	day, err := time.ParseInLocation("2006-01-02", vars["date"], h.location)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	dayEntries, err := h.service.ListDay(ctx, authUserID, day)
	if err != nil {
		span.RecordError(err)
		log.Errorf("list diary day for %s: %s", authUserID, err)
		http.Error(w, "list diary failed", http.StatusInternalServerError)
		return
	}

	entriesJson, err := json.Marshal(dayEntries)
	if err != nil {
		log.Errorf("failed to marshal diary day: %s", err)
		http.Error(w, "list diary failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, entriesJson)
}
