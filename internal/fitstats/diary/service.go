package diary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fittrack/backend/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Service validates and scopes diary operations. Days are resolved in
// a fixed timezone, the same one the daily reset sweep is anchored to,
// so the diary page and the running totals agree on when "today" ends.
type Service struct {
	store    Store
	location *time.Location
}

func NewService(store Store, location *time.Location) *Service {
	return &Service{
		store:    store,
		location: location,
	}
}

func (s *Service) AddNutrition(ctx context.Context, entry *NutritionEntry) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.diary.addnutrition")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if entry.UserID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidEntry)
	}
	if strings.TrimSpace(entry.FoodItem) == "" {
		return fmt.Errorf("%w: empty food item", ErrInvalidEntry)
	}
	if entry.Calories <= 0 {
		return fmt.Errorf("%w: calories must be positive", ErrInvalidEntry)
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now().In(s.location)
	}

	return s.store.AddNutrition(ctx, entry)
}

func (s *Service) AddSleep(ctx context.Context, entry *SleepEntry) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.diary.addsleep")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if entry.UserID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidEntry)
	}
	if entry.DurationHours <= 0 || entry.DurationHours > 24 {
		return fmt.Errorf("%w: duration out of range", ErrInvalidEntry)
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now().In(s.location)
	}

	return s.store.AddSleep(ctx, entry)
}

// AddSteps logs a batch of taken steps. The matching running-totals
// increment is a separate call, the diary only keeps the history.
func (s *Service) AddSteps(ctx context.Context, entry *StepsEntry) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.diary.addsteps")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if entry.UserID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidEntry)
	}
	if entry.StepsCount <= 0 {
		return fmt.Errorf("%w: steps count must be positive", ErrInvalidEntry)
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now().In(s.location)
	}

	return s.store.AddSteps(ctx, entry)
}

func (s *Service) AddWorkout(ctx context.Context, entry *WorkoutEntry) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.diary.addworkout")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if entry.UserID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidEntry)
	}
	if strings.TrimSpace(entry.ActivityType) == "" {
		return fmt.Errorf("%w: empty activity type", ErrInvalidEntry)
	}
	if entry.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidEntry)
	}
	if entry.DistanceMiles < 0 {
		return fmt.Errorf("%w: negative distance", ErrInvalidEntry)
	}
	if entry.CaloriesBurned < 0 {
		return fmt.Errorf("%w: negative calories burned", ErrInvalidEntry)
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now().In(s.location)
	}

	return s.store.AddWorkout(ctx, entry)
}

// ListDay returns the full diary page of one calendar day.
func (s *Service) ListDay(ctx context.Context, userID string, day time.Time) (_ *DayEntries, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.diary.listday")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	from, to := s.dayBounds(day)

	nutrition, err := s.store.ListNutritionBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list nutrition entries: %w", err)
	}
	sleep, err := s.store.ListSleepBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sleep entries: %w", err)
	}
	steps, err := s.store.ListStepsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list steps entries: %w", err)
	}
	workouts, err := s.store.ListWorkoutsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list workout entries: %w", err)
	}

	return &DayEntries{
		Date:      from.Format("2006-01-02"),
		Nutrition: nutrition,
		Sleep:     sleep,
		Steps:     steps,
		Workouts:  workouts,
	}, nil
}

// SleepHoursOn sums the sleep entries logged on the given calendar
// day. It feeds the sleep figures of the progress snapshot.
func (s *Service) SleepHoursOn(ctx context.Context, userID string, day time.Time) (_ float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.diary.sleephourson")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	from, to := s.dayBounds(day)
	entries, err := s.store.ListSleepBetween(ctx, userID, from, to)
	if err != nil {
		return 0, fmt.Errorf("list sleep entries: %w", err)
	}

	var hours float64
	for _, entry := range entries {
		hours += entry.DurationHours
	}
	return hours, nil
}

func (s *Service) dayBounds(day time.Time) (from, to time.Time) {
	local := day.In(s.location)
	from = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	return from, from.AddDate(0, 0, 1)
}
