package store

import (
	"context"
	"sort"
	"sync"

	"certifier/internal/certificate/models"
	id "certifier/pkg/domain"
	"certifier/pkg/platform/sentinel"
)

// Error Contract:
// - Get and FindForCallback return sentinel.ErrNotFound when no record matches.
// - Whitelist and restriction lookups return false, not an error, for absent entries.

type recordKey struct {
	learner id.LearnerID
	course  models.CourseID
}

// InMemoryStore keeps certificate records, whitelist and restrictions in
// memory. Used in tests and when no database is configured.
type InMemoryStore struct {
	mu           sync.RWMutex
	records      map[recordKey]*models.Record
	whitelist    map[recordKey]bool
	restrictions map[id.LearnerID]string
}

// New constructs an empty in-memory certificate store.
func New() *InMemoryStore {
	return &InMemoryStore{
		records:      make(map[recordKey]*models.Record),
		whitelist:    make(map[recordKey]bool),
		restrictions: make(map[id.LearnerID]string),
	}
}

func (s *InMemoryStore) Get(_ context.Context, learnerID id.LearnerID, courseID models.CourseID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[recordKey{learnerID, courseID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copyRecord := *record
	return &copyRecord, nil
}

func (s *InMemoryStore) Save(_ context.Context, record *models.Record) error {
	if err := checkRecord(record); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey{record.LearnerID, record.CourseID}
	if existing, ok := s.records[key]; ok && !existing.CreatedAt.IsZero() {
		record.CreatedAt = existing.CreatedAt
	}
	copyRecord := *record
	s.records[key] = &copyRecord
	return nil
}

func (s *InMemoryStore) FindForCallback(_ context.Context, learnerID id.LearnerID, courseID models.CourseID, externalKey string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[recordKey{learnerID, courseID}]
	if !ok || externalKey == "" || record.ExternalKey != externalKey {
		return nil, sentinel.ErrNotFound
	}
	copyRecord := *record
	return &copyRecord, nil
}

func (s *InMemoryStore) ListByCourseStatus(_ context.Context, courseID models.CourseID, status models.Status) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Record
	for key, record := range s.records {
		if key.course != courseID || record.Status != status {
			continue
		}
		copyRecord := *record
		out = append(out, &copyRecord)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LearnerID.String() < out[j].LearnerID.String()
	})
	return out, nil
}

func (s *InMemoryStore) IsWhitelisted(_ context.Context, learnerID id.LearnerID, courseID models.CourseID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.whitelist[recordKey{learnerID, courseID}], nil
}

func (s *InMemoryStore) SetWhitelist(_ context.Context, entry models.WhitelistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.whitelist[recordKey{entry.LearnerID, entry.CourseID}] = entry.Whitelisted
	return nil
}

func (s *InMemoryStore) IsRestricted(_ context.Context, learnerID id.LearnerID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.restrictions[learnerID]
	return ok, nil
}

func (s *InMemoryStore) Restrict(_ context.Context, entry models.RestrictionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restrictions[entry.LearnerID] = entry.Reason
	return nil
}

func (s *InMemoryStore) Unrestrict(_ context.Context, learnerID id.LearnerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.restrictions, learnerID)
	return nil
}
