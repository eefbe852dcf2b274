package fitstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCalorieProgress(t *testing.T) {
	testCases := []struct {
		name             string
		caloriesBurned   int
		caloriesEaten    int
		calorieGoal      float64
		wantCaloriesLeft float64
		wantFraction     float64
	}{
		{
			name:             "midday, under goal",
			caloriesBurned:   0,
			caloriesEaten:    1500,
			calorieGoal:      2000,
			wantCaloriesLeft: 500,
			wantFraction:     0.75,
		},
		{
			name:             "over goal, burn keeps left positive",
			caloriesBurned:   300,
			caloriesEaten:    2200,
			calorieGoal:      2000,
			wantCaloriesLeft: 100,
			wantFraction:     1,
		},
		{
			name:             "far over goal, left goes negative",
			caloriesBurned:   0,
			caloriesEaten:    3500,
			calorieGoal:      2000,
			wantCaloriesLeft: -1500,
			wantFraction:     1,
		},
		{
			name:             "fresh day",
			caloriesBurned:   0,
			caloriesEaten:    0,
			calorieGoal:      2000,
			wantCaloriesLeft: 2000,
			wantFraction:     0,
		},
		{
			name:             "exactly at goal",
			caloriesBurned:   0,
			caloriesEaten:    2000,
			calorieGoal:      2000,
			wantCaloriesLeft: 0,
			wantFraction:     1,
		},
		{
			name:             "zero goal yields zero fraction",
			caloriesBurned:   100,
			caloriesEaten:    500,
			calorieGoal:      0,
			wantCaloriesLeft: -400,
			wantFraction:     0,
		},
		{
			name:             "negative goal yields zero fraction",
			caloriesBurned:   0,
			caloriesEaten:    500,
			calorieGoal:      -1,
			wantCaloriesLeft: -501,
			wantFraction:     0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			progress := CalculateCalorieProgress(tc.caloriesBurned, tc.caloriesEaten, tc.calorieGoal)
			assert.InDelta(t, tc.wantCaloriesLeft, progress.CaloriesLeft, 0.0001)
			assert.InDelta(t, tc.wantFraction, progress.Fraction, 0.0001)
		})
	}
}

func TestCalculateSleepProgress(t *testing.T) {
	assert.InDelta(t, 0.75, CalculateSleepProgress(6, 8), 0.0001)
	assert.InDelta(t, 1, CalculateSleepProgress(9, 8), 0.0001)
	assert.InDelta(t, 0, CalculateSleepProgress(0, 8), 0.0001)
	assert.InDelta(t, 0, CalculateSleepProgress(6, 0), 0.0001)
	assert.InDelta(t, 0, CalculateSleepProgress(6, -2), 0.0001)
}

func TestTotalsAdd(t *testing.T) {
	totals := Totals{Steps: 100, CaloriesBurned: 20, CaloriesEaten: 300}
	totals = totals.Add(Totals{Steps: 50, CaloriesEaten: 200})
	assert.Equal(t, Totals{Steps: 150, CaloriesBurned: 20, CaloriesEaten: 500}, totals)
}

func TestTotalsHasNegative(t *testing.T) {
	assert.False(t, Totals{}.HasNegative())
	assert.False(t, Totals{Steps: 1, CaloriesBurned: 2, CaloriesEaten: 3}.HasNegative())
	assert.True(t, Totals{Steps: -1}.HasNegative())
	assert.True(t, Totals{CaloriesBurned: -1}.HasNegative())
	assert.True(t, Totals{CaloriesEaten: -1}.HasNegative())
}
