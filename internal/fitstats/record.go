package fitstats

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound     = errors.New("user record not found")
	ErrUserExists       = errors.New("user record already exists")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("metric store unavailable")
)

// Totals holds the cumulative daily counters of one user. All three
// are non-negative and only ever grow between two resets.
type Totals struct {
	Steps          int `json:"steps"`
	CaloriesBurned int `json:"caloriesBurned"`
	CaloriesEaten  int `json:"caloriesEaten"`
}

func (t Totals) Add(other Totals) Totals {
	return Totals{
		Steps:          t.Steps + other.Steps,
		CaloriesBurned: t.CaloriesBurned + other.CaloriesBurned,
		CaloriesEaten:  t.CaloriesEaten + other.CaloriesEaten,
	}
}

// HasNegative reports whether any of the deltas is negative. The
// service only ever adds, negative corrections are rejected.
func (t Totals) HasNegative() bool {
	return t.Steps < 0 || t.CaloriesBurned < 0 || t.CaloriesEaten < 0
}

func (t Totals) IsZero() bool {
	return t == Totals{}
}

// UserRecord is the persisted per-user aggregate state: the running
// daily totals plus the static goals set at account creation.
type UserRecord struct {
	UserID      string  `json:"userId"`
	Totals      Totals  `json:"totals"`
	CalorieGoal float64 `json:"calorieGoal"`
	SleepGoal   float64 `json:"sleepGoal"`
	// set by the account provisioning flow, never exposed
	PasswordHash string `json:"-"`
	// calendar date (anchored to the sweep timezone) of the most
	// recent daily reset; the dedup key of the reset sweep
	LastResetDate time.Time `json:"lastResetDate"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ProgressSnapshot is derived on every read and never persisted.
type ProgressSnapshot struct {
	TotalSteps          int     `json:"totalSteps"`
	CaloriesEatenToday  int     `json:"caloriesEatenToday"`
	CaloriesBurnedToday int     `json:"caloriesBurnedToday"`
	CaloriesLeft        float64 `json:"caloriesLeft"`
	CalorieProgress     float64 `json:"calorieProgress"`
	SleepDurationToday  float64 `json:"sleepDurationToday"`
	SleepProgress       float64 `json:"sleepProgress"`
	CalorieGoal         float64 `json:"calorieGoal"`
	SleepGoal           float64 `json:"sleepGoal"`
}
