// Package seeder loads demo learners, courses and grades for local runs.
package seeder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"certifier/internal/certificate/models"
	id "certifier/pkg/domain"
)

// PlatformStore receives the learning platform data the certifier reads.
type PlatformStore interface {
	PutLearner(ctx context.Context, learner models.Learner) error
	PutCourse(ctx context.Context, course models.Course) error
	PutGrade(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID, grade models.Grade) error
}

// PolicyStore receives whitelist and restriction entries.
type PolicyStore interface {
	SetWhitelist(ctx context.Context, entry models.WhitelistEntry) error
	Restrict(ctx context.Context, entry models.RestrictionEntry) error
}

// Seeder populates stores with demo data
type Seeder struct {
	platform PlatformStore
	policy   PolicyStore
	logger   *slog.Logger
}

func New(platform PlatformStore, policy PolicyStore, logger *slog.Logger) *Seeder {
	return &Seeder{
		platform: platform,
		policy:   policy,
		logger:   logger,
	}
}

// Demo course keys, one in each key format.
const (
	DemoCourse       models.CourseID = "course-v1:DemoX+CERT101+2026_T1"
	DemoLegacyCourse models.CourseID = "DemoX/CERT201/2025_Fall"
)

type demoLearner struct {
	username string
	fullName string
	email    string
	percent  float64
	letter   string
}

var demoNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:certifier:demo-learner"))

// DemoLearnerID is the stable id a demo learner is seeded with, so tokens
// minted outside the process keep working across restarts.
func DemoLearnerID(username string) id.LearnerID {
	return id.LearnerID(uuid.NewSHA1(demoNamespace, []byte(username)))
}

// Learner outcomes on DemoCourse (passing grade 0.6): alice and diana pass,
// bob fails, charlie fails but is whitelisted, eve passes but is restricted.
// frank passes but the mock provider rejects his address.
var demoLearners = []demoLearner{
	{"alice", "Alice Anderson", "alice@example.com", 0.9123, "A"},
	{"bob", "Bob Brown", "bob@example.com", 0.42, "F"},
	{"charlie", "Charlie Chen", "charlie@example.com", 0.55, "F"},
	{"diana", "Diana Davis", "diana@example.com", 0.6, "C"},
	{"eve", "Eve Evans", "eve@example.com", 0.88, "B"},
	{"frank", "Frank Fischer", "frank+fail@example.com", 0.75, "C"},
}

// SeedAll writes every demo fixture and returns the learners by username.
func (s *Seeder) SeedAll(ctx context.Context) (map[string]id.LearnerID, error) {
	s.logger.InfoContext(ctx, "seeding demo data...")

	courses := []models.Course{
		{ID: DemoCourse, DisplayName: "BETA Certificates 101", Description: "A short course on issuing certificates.", PassingGrade: 0.6},
		{ID: DemoLegacyCourse, DisplayName: "Certificates 201", PassingGrade: 0.7},
	}
	for _, course := range courses {
		if err := s.platform.PutCourse(ctx, course); err != nil {
			return nil, fmt.Errorf("failed to seed course %s: %w", course.ID, err)
		}
	}

	learners := make(map[string]id.LearnerID, len(demoLearners))
	for _, l := range demoLearners {
		learner := models.Learner{
			ID:       DemoLearnerID(l.username),
			Username: l.username,
			Email:    l.email,
			FullName: l.fullName,
		}
		if err := s.platform.PutLearner(ctx, learner); err != nil {
			return nil, fmt.Errorf("failed to seed learner %s: %w", l.username, err)
		}
		for _, course := range courses {
			if err := s.platform.PutGrade(ctx, learner.ID, course.ID, models.Grade{Percent: l.percent, Letter: l.letter}); err != nil {
				return nil, fmt.Errorf("failed to seed grade for %s: %w", l.username, err)
			}
		}
		learners[l.username] = learner.ID
	}

	if err := s.policy.SetWhitelist(ctx, models.WhitelistEntry{
		LearnerID:   learners["charlie"],
		CourseID:    DemoCourse,
		Whitelisted: true,
	}); err != nil {
		return nil, fmt.Errorf("failed to seed whitelist: %w", err)
	}
	if err := s.policy.Restrict(ctx, models.RestrictionEntry{LearnerID: learners["eve"], Reason: "embargoed region"}); err != nil {
		return nil, fmt.Errorf("failed to seed restriction: %w", err)
	}

	s.logger.InfoContext(ctx, "demo data seeded successfully",
		"learners", len(learners),
		"courses", len(courses),
	)
	return learners, nil
}
