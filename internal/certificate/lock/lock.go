// Package lock provides the per-(learner, course) issuance lease that keeps
// two issuance attempts for the same certificate from overlapping.
package lock

import (
	"time"

	"github.com/google/uuid"

	"certifier/internal/certificate/models"
	id "certifier/pkg/domain"
)

// Lease is a held lock. Token proves ownership on release so an expired
// lease cannot release a newer holder's lock.
type Lease struct {
	Key   string
	Token string
	TTL   time.Duration
}

// IssueKey is the lock key for issuing one learner's certificate in one course.
func IssueKey(learnerID id.LearnerID, courseID models.CourseID) string {
	return "certificate:issue:" + learnerID.String() + ":" + courseID.String()
}

func newLease(key string, ttl time.Duration) *Lease {
	return &Lease{Key: key, Token: uuid.NewString(), TTL: ttl}
}
