// Package adapters reads learner profiles, course metadata and grades from
// the learning platform's data. Both implementations satisfy the service's
// GradeEvaluator, CourseCatalog and LearnerDirectory.
package adapters

import (
	"context"
	"sync"

	"certifier/internal/certificate/models"
	id "certifier/pkg/domain"
	"certifier/pkg/platform/sentinel"
	strutil "certifier/pkg/platform/strings"
)

type gradeKey struct {
	learner id.LearnerID
	course  models.CourseID
}

// InMemory holds platform data in memory for tests and local runs.
type InMemory struct {
	mu         sync.RWMutex
	learners   map[id.LearnerID]models.Learner
	byUsername map[string]id.LearnerID
	courses    map[models.CourseID]models.Course
	grades     map[gradeKey]models.Grade
}

func NewInMemory() *InMemory {
	return &InMemory{
		learners:   make(map[id.LearnerID]models.Learner),
		byUsername: make(map[string]id.LearnerID),
		courses:    make(map[models.CourseID]models.Course),
		grades:     make(map[gradeKey]models.Grade),
	}
}

func (m *InMemory) PutLearner(_ context.Context, learner models.Learner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.learners[learner.ID] = learner
	m.byUsername[strutil.Fold(learner.Username)] = learner.ID
	return nil
}

func (m *InMemory) PutCourse(_ context.Context, course models.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[course.ID] = course
	return nil
}

func (m *InMemory) PutGrade(_ context.Context, learnerID id.LearnerID, courseID models.CourseID, grade models.Grade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grades[gradeKey{learnerID, courseID}] = grade
	return nil
}

func (m *InMemory) ByID(_ context.Context, learnerID id.LearnerID) (*models.Learner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	learner, ok := m.learners[learnerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &learner, nil
}

func (m *InMemory) ByUsername(ctx context.Context, username string) (*models.Learner, error) {
	m.mu.RLock()
	learnerID, ok := m.byUsername[strutil.Fold(username)]
	m.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return m.ByID(ctx, learnerID)
}

func (m *InMemory) Course(_ context.Context, courseID models.CourseID) (*models.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	course, ok := m.courses[courseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &course, nil
}

func (m *InMemory) Description(_ context.Context, courseID models.CourseID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	course, ok := m.courses[courseID]
	if !ok || course.Description == "" {
		return "", sentinel.ErrNotFound
	}
	return course.Description, nil
}

// Evaluate returns the stored grade, or zero for a learner never graded.
func (m *InMemory) Evaluate(_ context.Context, learnerID id.LearnerID, courseID models.CourseID) (models.Grade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.grades[gradeKey{learnerID, courseID}], nil
}
