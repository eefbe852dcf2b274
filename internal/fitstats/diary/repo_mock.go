package diary

import (
	"context"
	"sync"
	"time"
)

// storeMock is an in-memory Store used in unit and dev testing.
type storeMock struct {
	mutex     sync.Mutex
	nextID    int
	nutrition []NutritionEntry
	sleep     []SleepEntry
	steps     []StepsEntry
	workouts  []WorkoutEntry

	ForcedErr error
}

func NewMockStore() *storeMock {
	return &storeMock{}
}

func (s *storeMock) AddNutrition(_ context.Context, entry *NutritionEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	s.nextID++
	entry.ID = s.nextID
	s.nutrition = append(s.nutrition, *entry)
	return nil
}

func (s *storeMock) AddSleep(_ context.Context, entry *SleepEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	s.nextID++
	entry.ID = s.nextID
	s.sleep = append(s.sleep, *entry)
	return nil
}

func (s *storeMock) AddSteps(_ context.Context, entry *StepsEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	s.nextID++
	entry.ID = s.nextID
	s.steps = append(s.steps, *entry)
	return nil
}

func (s *storeMock) AddWorkout(_ context.Context, entry *WorkoutEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	s.nextID++
	entry.ID = s.nextID
	s.workouts = append(s.workouts, *entry)
	return nil
}

func (s *storeMock) ListNutritionBetween(
	_ context.Context,
	userID string,
	from, to time.Time,
) ([]NutritionEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	entries := make([]NutritionEntry, 0)
	for _, entry := range s.nutrition {
		if entry.UserID == userID && inRange(entry.LoggedAt, from, to) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *storeMock) ListSleepBetween(
	_ context.Context,
	userID string,
	from, to time.Time,
) ([]SleepEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	entries := make([]SleepEntry, 0)
	for _, entry := range s.sleep {
		if entry.UserID == userID && inRange(entry.LoggedAt, from, to) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *storeMock) ListStepsBetween(
	_ context.Context,
	userID string,
	from, to time.Time,
) ([]StepsEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	entries := make([]StepsEntry, 0)
	for _, entry := range s.steps {
		if entry.UserID == userID && inRange(entry.LoggedAt, from, to) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *storeMock) ListWorkoutsBetween(
	_ context.Context,
	userID string,
	from, to time.Time,
) ([]WorkoutEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	entries := make([]WorkoutEntry, 0)
	for _, entry := range s.workouts {
		if entry.UserID == userID && inRange(entry.LoggedAt, from, to) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func inRange(at, from, to time.Time) bool {
	return !at.Before(from) && at.Before(to)
}
