package diary

import (
	"context"
	"time"

	"github.com/fittrack/backend/internal/telemetry/tracing"
	"github.com/fittrack/backend/pkg"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Store interface {
	AddNutrition(ctx context.Context, entry *NutritionEntry) error
	AddSleep(ctx context.Context, entry *SleepEntry) error
	AddSteps(ctx context.Context, entry *StepsEntry) error
	AddWorkout(ctx context.Context, entry *WorkoutEntry) error
	ListNutritionBetween(ctx context.Context, userID string, from, to time.Time) ([]NutritionEntry, error)
	ListSleepBetween(ctx context.Context, userID string, from, to time.Time) ([]SleepEntry, error)
	ListStepsBetween(ctx context.Context, userID string, from, to time.Time) ([]StepsEntry, error)
	ListWorkoutsBetween(ctx context.Context, userID string, from, to time.Time) ([]WorkoutEntry, error)
}

var _ Store = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// AddNutrition inserts the entry and sets its generated ID.
func (r *Repo) AddNutrition(ctx context.Context, entry *NutritionEntry) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diary.addnutrition")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", entry.UserID))

	err = r.db.
		QueryRow(ctx, `
			INSERT INTO diary_nutrition (user_id, food_item, meal_type, serving_size, calories, logged_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`,
			entry.UserID, entry.FoodItem, entry.MealType, entry.ServingSize, entry.Calories, entry.LoggedAt,
		).
		Scan(&entry.ID)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return ErrInvalidEntry
		}
		return err
	}
	return nil
}

func (r *Repo) AddSleep(ctx context.Context, entry *SleepEntry) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diary.addsleep")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", entry.UserID))

	err = r.db.
		QueryRow(ctx, `
			INSERT INTO diary_sleep (user_id, duration_hours, note, logged_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`,
			entry.UserID, entry.DurationHours, entry.Note, entry.LoggedAt,
		).
		Scan(&entry.ID)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return ErrInvalidEntry
		}
		return err
	}
	return nil
}

func (r *Repo) AddSteps(ctx context.Context, entry *StepsEntry) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diary.addsteps")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", entry.UserID))

	err = r.db.
		QueryRow(ctx, `
			INSERT INTO diary_steps (user_id, steps_count, logged_at)
			VALUES ($1, $2, $3)
			RETURNING id
		`,
			entry.UserID, entry.StepsCount, entry.LoggedAt,
		).
		Scan(&entry.ID)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return ErrInvalidEntry
		}
		return err
	}
	return nil
}

func (r *Repo) AddWorkout(ctx context.Context, entry *WorkoutEntry) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diary.addworkout")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", entry.UserID))

	err = r.db.
		QueryRow(ctx, `
			INSERT INTO diary_workouts (user_id, activity_type, duration_minutes, distance_miles, calories_burned, logged_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`,
			entry.UserID, entry.ActivityType, entry.DurationMinutes, entry.DistanceMiles, entry.CaloriesBurned, entry.LoggedAt,
		).
		Scan(&entry.ID)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return ErrInvalidEntry
		}
		return err
	}
	return nil
}

func (r *Repo) ListNutritionBetween(
	ctx context.Context,
	userID string,
	from, to time.Time,
) (_ []NutritionEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diary.listnutrition")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, food_item, meal_type, serving_size, calories, logged_at
		FROM diary_nutrition
		WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
		ORDER BY logged_at
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]NutritionEntry, 0)
	for rows.Next() {
		var entry NutritionEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.FoodItem,
			&entry.MealType,
			&entry.ServingSize,
			&entry.Calories,
			&entry.LoggedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repo) ListSleepBetween(
	ctx context.Context,
	userID string,
	from, to time.Time,
) (_ []SleepEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diary.listsleep")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, duration_hours, note, logged_at
		FROM diary_sleep
		WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
		ORDER BY logged_at
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]SleepEntry, 0)
	for rows.Next() {
		var entry SleepEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.DurationHours,
			&entry.Note,
			&entry.LoggedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repo) ListStepsBetween(
	ctx context.Context,
	userID string,
	from, to time.Time,
) (_ []StepsEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diary.liststeps")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, steps_count, logged_at
		FROM diary_steps
		WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
		ORDER BY logged_at
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]StepsEntry, 0)
	for rows.Next() {
		var entry StepsEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.StepsCount,
			&entry.LoggedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repo) ListWorkoutsBetween(
	ctx context.Context,
	userID string,
	from, to time.Time,
) (_ []WorkoutEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.diary.listworkouts")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, activity_type, duration_minutes, distance_miles, calories_burned, logged_at
		FROM diary_workouts
		WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3
		ORDER BY logged_at
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]WorkoutEntry, 0)
	for rows.Next() {
		var entry WorkoutEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.ActivityType,
			&entry.DurationMinutes,
			&entry.DistanceMiles,
			&entry.CaloriesBurned,
			&entry.LoggedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
