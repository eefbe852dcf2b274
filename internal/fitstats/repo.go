package fitstats

import (
	"context"
	"errors"
	"time"

	"github.com/fittrack/backend/internal/telemetry/tracing"
	"github.com/fittrack/backend/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Store is the key-value persistence contract of the metric core:
// one record per user, no multi-key transactions assumed. Per-user
// write serialization is NOT the store's job (see IncrementProcessor).
type Store interface {
	Get(ctx context.Context, userID string) (*UserRecord, error)
	Create(ctx context.Context, record *UserRecord) error
	UpdateTotals(ctx context.Context, userID string, totals Totals) error
	ResetTotals(ctx context.Context, userID string, resetDate time.Time) error
	ListAll(ctx context.Context) ([]UserRecord, error)
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

func (r *Repo) Get(ctx context.Context, userID string) (_ *UserRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.fitstats.get")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	record := &UserRecord{}
	err = r.db.
		QueryRow(ctx, `
			SELECT
				user_id, total_steps, total_calories_burned, total_calories_eaten,
				calorie_goal, sleep_goal, password_hash, last_reset_date, created_at
			FROM user_metrics
			WHERE user_id = $1
		`, userID).
		Scan(
			&record.UserID,
			&record.Totals.Steps,
			&record.Totals.CaloriesBurned,
			&record.Totals.CaloriesEaten,
			&record.CalorieGoal,
			&record.SleepGoal,
			&record.PasswordHash,
			&record.LastResetDate,
			&record.CreatedAt,
		)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *Repo) Create(ctx context.Context, record *UserRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.fitstats.create")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	_, err = r.db.Exec(ctx, `
		INSERT INTO user_metrics (
			user_id, total_steps, total_calories_burned, total_calories_eaten,
			calorie_goal, sleep_goal, password_hash, last_reset_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		record.UserID,
		record.Totals.Steps,
		record.Totals.CaloriesBurned,
		record.Totals.CaloriesEaten,
		record.CalorieGoal,
		record.SleepGoal,
		record.PasswordHash,
		record.LastResetDate,
		record.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

func (r *Repo) UpdateTotals(ctx context.Context, userID string, totals Totals) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.fitstats.updatetotals")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	tag, err := r.db.Exec(ctx, `
		UPDATE user_metrics
		SET total_steps = $1, total_calories_burned = $2, total_calories_eaten = $3
		WHERE user_id = $4
	`,
		totals.Steps, totals.CaloriesBurned, totals.CaloriesEaten, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *Repo) ResetTotals(ctx context.Context, userID string, resetDate time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.fitstats.resettotals")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	tag, err := r.db.Exec(ctx, `
		UPDATE user_metrics
		SET total_steps = 0, total_calories_burned = 0, total_calories_eaten = 0,
			last_reset_date = $1
		WHERE user_id = $2
	`,
		resetDate, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListAll is used only by the daily reset sweep.
func (r *Repo) ListAll(ctx context.Context) (_ []UserRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.fitstats.listall")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	rows, err := r.db.Query(ctx, `
		SELECT
			user_id, total_steps, total_calories_burned, total_calories_eaten,
			calorie_goal, sleep_goal, password_hash, last_reset_date, created_at
		FROM user_metrics
		ORDER BY user_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]UserRecord, 0)
	for rows.Next() {
		var record UserRecord
		if err := rows.Scan(
			&record.UserID,
			&record.Totals.Steps,
			&record.Totals.CaloriesBurned,
			&record.Totals.CaloriesEaten,
			&record.CalorieGoal,
			&record.SleepGoal,
			&record.PasswordHash,
			&record.LastResetDate,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
