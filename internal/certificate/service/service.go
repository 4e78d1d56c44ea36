// Package service runs the certificate lifecycle: issuance, regeneration and
// bulk reconciliation against the credential provider.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"certifier/internal/certificate/lock"
	"certifier/internal/certificate/metrics"
	"certifier/internal/certificate/models"
	id "certifier/pkg/domain"
	dErrors "certifier/pkg/domain-errors"
	"certifier/pkg/platform/sentinel"
	"certifier/pkg/requestcontext"
)

// RecordStore persists certificate records.
// Error Contract:
// - Get returns sentinel.ErrNotFound when no record exists
// - Other methods return nil on success or wrapped errors on failure
type RecordStore interface {
	Get(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID) (*models.Record, error)
	Save(ctx context.Context, record *models.Record) error
	ListByCourseStatus(ctx context.Context, courseID models.CourseID, status models.Status) ([]*models.Record, error)
}

// PolicyStore answers the whitelist and restriction questions.
type PolicyStore interface {
	IsWhitelisted(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID) (bool, error)
	IsRestricted(ctx context.Context, learnerID id.LearnerID) (bool, error)
}

// Locker hands out issuance leases.
type Locker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (*lock.Lease, bool, error)
	Release(ctx context.Context, lease *lock.Lease) error
}

// EventPublisher publishes lifecycle events. Failures are logged and never
// undo a saved transition.
type EventPublisher interface {
	Publish(ctx context.Context, event models.LifecycleEvent) error
}

const defaultLockTTL = 30 * time.Second

type Option func(*Service)

// Service decides and applies certificate state transitions.
type Service struct {
	records     RecordStore
	policy      PolicyStore
	grades      GradeEvaluator
	catalog     CourseCatalog
	learners    LearnerDirectory
	credentials CredentialClient
	locker      Locker
	publisher   EventPublisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
	lockTTL     time.Duration
}

func New(
	records RecordStore,
	policy PolicyStore,
	grades GradeEvaluator,
	catalog CourseCatalog,
	learners LearnerDirectory,
	credentials CredentialClient,
	opts ...Option,
) *Service {
	svc := &Service{
		records:     records,
		policy:      policy,
		grades:      grades,
		catalog:     catalog,
		learners:    learners,
		credentials: credentials,
		locker:      lock.NewMemoryLocker(),
		publisher:   nopPublisher{},
		logger:      slog.Default(),
		lockTTL:     defaultLockTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithLocker replaces the in-process issuance lock, e.g. with a Redis locker
// shared by every instance.
func WithLocker(l Locker) Option {
	return func(s *Service) {
		if l != nil {
			s.locker = l
		}
	}
}

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithLockTTL bounds how long an issuance lease survives a crashed holder.
// It must exceed the credential provider timeout.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// Status returns the learner's certificate status in a course and the
// record, if one exists.
func (s *Service) Status(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID) (models.Status, *models.Record, error) {
	record, err := s.records.Get(ctx, learnerID, courseID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.StatusUnavailable, nil, nil
	}
	if err != nil {
		return 0, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certificate")
	}
	return record.Status, record, nil
}

// acquire takes the issuance lease for one learner and course. A held lease
// yields models.ErrBusy.
func (s *Service) acquire(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID) (func(), error) {
	lease, acquired, err := s.locker.TryAcquire(ctx, lock.IssueKey(learnerID, courseID), s.lockTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to acquire issuance lock")
	}
	if !acquired {
		return nil, dErrors.Wrap(models.ErrBusy, dErrors.CodeConflict, "certificate issuance already in progress")
	}
	return func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), lease); err != nil {
			s.logger.WarnContext(ctx, "failed to release issuance lock", "key", lease.Key, "error", err)
		}
	}, nil
}

// changedSince re-reads a record after a provider call and reports whether
// its status or external key moved away from what was read before the call.
// A missing record counts as unavailable with no key.
func (s *Service) changedSince(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID, status models.Status, externalKey string) (*models.Record, bool, error) {
	current, err := s.records.Get(ctx, learnerID, courseID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, status != models.StatusUnavailable || externalKey != "", nil
	}
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reload certificate")
	}
	return current, current.Status != status || current.ExternalKey != externalKey, nil
}

// publish snapshots record and sends it. Errors are logged only.
func (s *Service) publish(ctx context.Context, eventType models.EventType, record *models.Record) {
	event := models.NewLifecycleEvent(eventType, record, requestcontext.Now(ctx))
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish certificate event",
			"event", string(eventType),
			"learner_id", record.LearnerID.String(),
			"course_id", record.CourseID.String(),
			"error", err,
		)
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, models.LifecycleEvent) error { return nil }
