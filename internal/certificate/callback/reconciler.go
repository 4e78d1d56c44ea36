// Package callback applies the credential provider's asynchronous
// notifications to certificate records.
package callback

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"certifier/internal/certificate/lock"
	"certifier/internal/certificate/metrics"
	"certifier/internal/certificate/models"
	"certifier/internal/platform/logger"
	id "certifier/pkg/domain"
	dErrors "certifier/pkg/domain-errors"
	"certifier/pkg/platform/sentinel"
	"certifier/pkg/requestcontext"
)

// RecordStore is the subset of certificate storage callbacks need.
// FindForCallback returns sentinel.ErrNotFound unless learner, course and
// external key all match one record.
type RecordStore interface {
	FindForCallback(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID, externalKey string) (*models.Record, error)
	Save(ctx context.Context, record *models.Record) error
}

// LearnerDirectory resolves the username a callback carries.
type LearnerDirectory interface {
	ByUsername(ctx context.Context, username string) (*models.Learner, error)
}

// EventPublisher publishes lifecycle events after a callback is applied.
type EventPublisher interface {
	Publish(ctx context.Context, event models.LifecycleEvent) error
}

// Locker hands out the issuance lease shared with the certificate service.
type Locker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (*lock.Lease, bool, error)
	Release(ctx context.Context, lease *lock.Lease) error
}

const lockTTL = 10 * time.Second

type Option func(*Reconciler)

// WithLocker serializes callbacks with issuance and regeneration of the same
// certificate. Without it callbacks are applied unlocked.
func WithLocker(l Locker) Option {
	return func(r *Reconciler) {
		r.locker = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

func WithPublisher(p EventPublisher) Option {
	return func(r *Reconciler) {
		r.publisher = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = l
	}
}

// Reconciler applies provider notifications.
type Reconciler struct {
	records   RecordStore
	learners  LearnerDirectory
	locker    Locker
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewReconciler(records RecordStore, learners LearnerDirectory, opts ...Option) *Reconciler {
	r := &Reconciler{
		records:  records,
		learners: learners,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply moves the matching record to its terminal state:
//   - a failed notification moves any record to error;
//   - generating or regenerating records become downloadable;
//   - deleting records become deleted.
//
// Any other status, including a record a previous delivery already settled,
// yields models.ErrInvalidState without touching the record. A notification
// that matches no record yields models.ErrRecordNotFound, and one arriving
// while the certificate's issuance lease is held yields models.ErrBusy.
func (r *Reconciler) Apply(ctx context.Context, n Notification) (*models.Record, error) {
	learnerID, courseID, err := r.resolve(ctx, n)
	if err != nil {
		return nil, r.lookupFailed(ctx, n, err)
	}

	release, err := r.acquire(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}
	defer release()

	record, err := r.records.FindForCallback(ctx, learnerID, courseID, n.ExternalKey)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, r.lookupFailed(ctx, n, notFound())
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certificate")
	}

	now := requestcontext.Now(ctx)
	switch {
	case n.Failed:
		record.MarkError(n.ErrorReason, now)
	case record.Status == models.StatusGenerating || record.Status == models.StatusRegenerating:
		record.MarkDownloadable(n.URL, n.DownloadUUID, n.VerifyUUID, now)
	case record.Status == models.StatusDeleting:
		record.MarkDeleted(now)
	default:
		r.metrics.IncCallbackRejected("invalid_state")
		logger.Critical(ctx, r.logger, "invalid state for certificate callback",
			"learner_id", record.LearnerID.String(),
			"course_id", record.CourseID.String(),
			"external_key", record.ExternalKey,
			"status", record.Status.String(),
		)
		return nil, dErrors.Wrap(models.ErrInvalidState, dErrors.CodeInvariantViolation, "invalid cert status")
	}

	if err := r.records.Save(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save certificate")
	}

	r.metrics.IncCallbackApplied(record.CourseID.String(), record.Status.String())
	r.logger.InfoContext(ctx, "certificate callback applied",
		"learner_id", record.LearnerID.String(),
		"course_id", record.CourseID.String(),
		"external_key", record.ExternalKey,
		"status", record.Status.String(),
	)
	r.publish(ctx, record)
	return record, nil
}

func notFound() error {
	return dErrors.Wrap(models.ErrRecordNotFound, dErrors.CodeNotFound, "unable to lookup key")
}

func (r *Reconciler) lookupFailed(ctx context.Context, n Notification, err error) error {
	if errors.Is(err, models.ErrRecordNotFound) {
		r.metrics.IncCallbackRejected("not_found")
		logger.Critical(ctx, r.logger, "unable to lookup certificate for callback",
			"username", n.Username,
			"course_id", n.CourseID,
			"external_key", n.ExternalKey,
		)
	}
	return err
}

// resolve maps the notification's username and course onto ids.
func (r *Reconciler) resolve(ctx context.Context, n Notification) (id.LearnerID, models.CourseID, error) {
	courseID, err := models.ParseCourseID(n.CourseID)
	if err != nil || n.Username == "" || n.ExternalKey == "" {
		return id.LearnerID{}, "", notFound()
	}

	learner, err := r.learners.ByUsername(ctx, n.Username)
	if errors.Is(err, sentinel.ErrNotFound) {
		return id.LearnerID{}, "", notFound()
	}
	if err != nil {
		return id.LearnerID{}, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve learner")
	}
	return learner.ID, courseID, nil
}

// acquire holds the issuance lease while the record is read and saved. A
// held lease yields models.ErrBusy so the delivery is retried.
func (r *Reconciler) acquire(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID) (func(), error) {
	if r.locker == nil {
		return func() {}, nil
	}
	lease, acquired, err := r.locker.TryAcquire(ctx, lock.IssueKey(learnerID, courseID), lockTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to acquire issuance lock")
	}
	if !acquired {
		r.metrics.IncCallbackRejected("busy")
		return nil, dErrors.Wrap(models.ErrBusy, dErrors.CodeConflict, "certificate issuance in progress")
	}
	return func() {
		if err := r.locker.Release(context.WithoutCancel(ctx), lease); err != nil {
			r.logger.WarnContext(ctx, "failed to release issuance lock", "key", lease.Key, "error", err)
		}
	}, nil
}

func (r *Reconciler) publish(ctx context.Context, record *models.Record) {
	if r.publisher == nil {
		return
	}
	event := models.NewLifecycleEvent(models.EventCallback, record, requestcontext.Now(ctx))
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "failed to publish certificate event", "error", err)
	}
}
