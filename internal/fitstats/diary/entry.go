package diary

import (
	"errors"
	"time"
)

var (
	ErrInvalidEntry  = errors.New("invalid diary entry")
	ErrEntryNotFound = errors.New("diary entry not found")
)

// NutritionEntry is one logged meal or snack.
type NutritionEntry struct {
	ID          int       `json:"id"`
	UserID      string    `json:"-"`
	FoodItem    string    `json:"foodItem"`
	MealType    string    `json:"mealType,omitempty"`
	ServingSize string    `json:"servingSize,omitempty"`
	Calories    int       `json:"caloriesConsumed"`
	LoggedAt    time.Time `json:"loggedAt"`
}

// SleepEntry is one logged sleep period. A single calendar day can
// hold several entries (naps), the daily duration is their sum.
type SleepEntry struct {
	ID            int       `json:"id"`
	UserID        string    `json:"-"`
	DurationHours float64   `json:"durationHours"`
	Note          string    `json:"note,omitempty"`
	LoggedAt      time.Time `json:"loggedAt"`
}

// StepsEntry is one logged batch of taken steps. The client reports
// the same count through the totals update separately.
type StepsEntry struct {
	ID         int       `json:"id"`
	UserID     string    `json:"-"`
	StepsCount int       `json:"stepsCount"`
	LoggedAt   time.Time `json:"loggedAt"`
}

// WorkoutEntry is one logged workout session.
type WorkoutEntry struct {
	ID              int       `json:"id"`
	UserID          string    `json:"-"`
	ActivityType    string    `json:"activityType"`
	DurationMinutes int       `json:"durationMinutes"`
	DistanceMiles   float64   `json:"distanceMiles,omitempty"`
	CaloriesBurned  int       `json:"caloriesBurned"`
	LoggedAt        time.Time `json:"loggedAt"`
}

// DayEntries is the full diary page of one calendar day.
type DayEntries struct {
	Date      string           `json:"date"`
	Nutrition []NutritionEntry `json:"nutrition"`
	Sleep     []SleepEntry     `json:"sleep"`
	Steps     []StepsEntry     `json:"steps"`
	Workouts  []WorkoutEntry   `json:"workouts"`
}
