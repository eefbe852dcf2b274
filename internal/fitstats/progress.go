package fitstats

// CalorieProgress is derived from the current totals and the calorie
// goal, never stored.
type CalorieProgress struct {
	CaloriesLeft float64 `json:"caloriesLeft"`
	Fraction     float64 `json:"fraction"`
}

// CalculateCalorieProgress derives the calories-left figure and the
// goal fraction. CaloriesLeft = goal - eaten + burned and is
// deliberately NOT clamped: it goes negative when consumption greatly
// exceeds goal plus burn. Only the fraction is clamped to [0, 1].
// A non-positive goal yields fraction 0 instead of dividing by zero.
func CalculateCalorieProgress(caloriesBurned, caloriesEaten int, calorieGoal float64) CalorieProgress {
	progress := CalorieProgress{
		CaloriesLeft: calorieGoal - float64(caloriesEaten) + float64(caloriesBurned),
	}
	if calorieGoal <= 0 {
		return progress
	}

	progress.Fraction = float64(caloriesEaten) / calorieGoal
	if progress.Fraction > 1 {
		progress.Fraction = 1
	}
	return progress
}

// CalculateSleepProgress derives the sleep goal fraction, clamped to
// [0, 1], with the same zero-goal guard as the calorie variant.
func CalculateSleepProgress(durationHours, sleepGoal float64) float64 {
	if sleepGoal <= 0 {
		return 0
	}

	fraction := durationHours / sleepGoal
	if fraction > 1 {
		fraction = 1
	}
	return fraction
}
