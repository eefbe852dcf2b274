package fitstats

import (
	"context"
	"sync"
	"time"
)

// storeMock is an in-memory Store used in unit and dev testing.
type storeMock struct {
	mutex   sync.Mutex
	records map[string]*UserRecord

	// when set, returned by every call (to simulate store outages)
	ForcedErr error
	// per-user forced errors, used by sweep partial failure tests
	ForcedUserErr map[string]error
}

func NewMockStore() *storeMock {
	return &storeMock{
		records:       make(map[string]*UserRecord),
		ForcedUserErr: make(map[string]error),
	}
}

func (s *storeMock) Get(_ context.Context, userID string) (*UserRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	record, ok := s.records[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	recordCopy := *record
	return &recordCopy, nil
}

func (s *storeMock) Create(_ context.Context, record *UserRecord) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	if _, ok := s.records[record.UserID]; ok {
		return ErrUserExists
	}
	recordCopy := *record
	s.records[record.UserID] = &recordCopy
	return nil
}

func (s *storeMock) UpdateTotals(_ context.Context, userID string, totals Totals) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	record, ok := s.records[userID]
	if !ok {
		return ErrUserNotFound
	}
	record.Totals = totals
	return nil
}

func (s *storeMock) ResetTotals(_ context.Context, userID string, resetDate time.Time) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	if err, ok := s.ForcedUserErr[userID]; ok {
		return err
	}
	record, ok := s.records[userID]
	if !ok {
		return ErrUserNotFound
	}
	record.Totals = Totals{}
	record.LastResetDate = resetDate
	return nil
}

func (s *storeMock) ListAll(_ context.Context) ([]UserRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	records := make([]UserRecord, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, *record)
	}
	return records, nil
}
