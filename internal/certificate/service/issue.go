package service

import (
	"context"
	"errors"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"certifier/internal/certificate/credential"
	"certifier/internal/certificate/models"
	"certifier/internal/certificate/policy"
	"certifier/internal/platform/logger"
	id "certifier/pkg/domain"
	dErrors "certifier/pkg/domain-errors"
	"certifier/pkg/platform/sentinel"
	"certifier/pkg/requestcontext"
)

// AddRequest asks for a certificate to be issued.
type AddRequest struct {
	LearnerID id.LearnerID
	CourseID  models.CourseID
	// DefinedStatus is the status reached on success: StatusDownloadable
	// (the default when zero) or StatusGenerating, which asks the provider
	// to hold the credential unapproved.
	DefinedStatus models.Status
	// ForcedGrade skips grade computation when set. It must lie in 0..1.
	ForcedGrade *float64
}

func (r AddRequest) definedStatus() (models.Status, error) {
	switch r.DefinedStatus {
	case models.StatusUnavailable, models.StatusDownloadable:
		return models.StatusDownloadable, nil
	case models.StatusGenerating:
		return models.StatusGenerating, nil
	default:
		return 0, dErrors.New(dErrors.CodeValidation, "defined status must be downloadable or generating")
	}
}

func (r AddRequest) validateForcedGrade() error {
	if r.ForcedGrade == nil {
		return nil
	}
	g := *r.ForcedGrade
	if math.IsNaN(g) || g < 0 || g > 1 {
		return dErrors.New(dErrors.CodeValidation, "forced grade must be between 0 and 1")
	}
	return nil
}

// issuanceContext is everything gathered before deciding.
type issuanceContext struct {
	whitelisted bool
	grade       models.Grade
	learner     *models.Learner
	course      *models.Course
}

// Add evaluates the learner for a certificate and, when eligible, issues one
// through the credential provider. It returns the resulting status. Records
// outside the re-evaluable states are left untouched and their status is
// returned unchanged.
//
// A failed provider call is not an error: the record moves to StatusError
// and that status is returned.
func (s *Service) Add(ctx context.Context, req AddRequest) (models.Status, error) {
	start := time.Now()
	defer s.metrics.ObserveIssuanceLatency(start)

	if req.LearnerID.IsNil() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "learner required")
	}
	if req.CourseID == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "course_id is required")
	}
	defined, err := req.definedStatus()
	if err != nil {
		return 0, err
	}
	if err := req.validateForcedGrade(); err != nil {
		return 0, err
	}

	release, err := s.acquire(ctx, req.LearnerID, req.CourseID)
	if err != nil {
		if errors.Is(err, models.ErrBusy) {
			s.metrics.IncIssuance("busy")
		}
		return 0, err
	}
	defer release()

	record, err := s.records.Get(ctx, req.LearnerID, req.CourseID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certificate")
	}
	current := models.StatusUnavailable
	if record != nil {
		current = record.Status
	}
	if !current.IsReEvaluable() {
		s.metrics.IncIssuance("unchanged")
		return current, nil
	}

	now := requestcontext.Now(ctx)
	if record == nil {
		record = models.NewRecord(req.LearnerID, req.CourseID, now)
	}

	restricted, err := s.policy.IsRestricted(ctx, req.LearnerID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check restrictions")
	}
	if restricted {
		record.MarkRestricted(now)
		if err := s.save(ctx, record); err != nil {
			return 0, err
		}
		s.metrics.IncIssuance("restricted")
		s.publish(ctx, models.EventRestricted, record)
		return record.Status, nil
	}

	ic, err := s.gather(ctx, req)
	if err != nil {
		return 0, err
	}

	outcome := policy.Decide(policy.Input{
		Whitelisted:  ic.whitelisted,
		Grade:        ic.grade.Percent,
		PassingGrade: ic.course.PassingGrade,
	})
	if outcome != policy.OutcomeIssue {
		record.MarkNotPassing(ic.grade.Percent, now)
		if err := s.save(ctx, record); err != nil {
			return 0, err
		}
		s.metrics.IncIssuance("notpassing")
		s.publish(ctx, models.EventNotPassing, record)
		return record.Status, nil
	}

	return s.issue(ctx, record, ic, defined)
}

// gather reads learner, course, whitelist and grade concurrently. No
// transaction is held while the provider is called afterwards.
func (s *Service) gather(ctx context.Context, req AddRequest) (*issuanceContext, error) {
	ic := &issuanceContext{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ok, err := s.policy.IsWhitelisted(gctx, req.LearnerID, req.CourseID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check whitelist")
		}
		ic.whitelisted = ok
		return nil
	})
	g.Go(func() error {
		learner, err := s.learners.ByID(gctx, req.LearnerID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "learner not found")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load learner profile")
		}
		ic.learner = learner
		return nil
	})
	g.Go(func() error {
		course, err := s.catalog.Course(gctx, req.CourseID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "course not found")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load course")
		}
		description, err := s.catalog.Description(gctx, req.CourseID)
		if err != nil {
			s.logger.WarnContext(gctx, "course description unavailable, using fallback",
				"course_id", req.CourseID.String(),
				"error", err,
			)
			description = ""
		}
		course.Description = description
		ic.course = course
		return nil
	})
	if req.ForcedGrade != nil {
		ic.grade = models.Grade{Percent: *req.ForcedGrade}
	} else {
		g.Go(func() error {
			grade, err := s.grades.Evaluate(gctx, req.LearnerID, req.CourseID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to compute grade")
			}
			ic.grade = grade
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ic, nil
}

func (s *Service) issue(ctx context.Context, record *models.Record, ic *issuanceContext, defined models.Status) (models.Status, error) {
	seenStatus, seenKey := record.Status, record.ExternalKey
	issuance := policy.BuildIssuance(*ic.learner, *ic.course, ic.grade.Percent, defined)
	cred, err := s.credentials.Create(ctx, issuance)
	now := requestcontext.Now(ctx)

	current, changed, reloadErr := s.changedSince(ctx, record.LearnerID, record.CourseID, seenStatus, seenKey)
	if reloadErr != nil {
		return 0, reloadErr
	}
	if changed {
		status := models.StatusUnavailable
		if current != nil {
			status = current.Status
		}
		attrs := []any{
			"learner_id", record.LearnerID.String(),
			"course_id", record.CourseID.String(),
			"status", status.String(),
		}
		if cred != nil {
			attrs = append(attrs, "external_key", cred.ID.String())
		}
		logger.Critical(ctx, s.logger, "certificate changed during credential create, not overwritten", attrs...)
		s.metrics.IncIssuance("conflict")
		return status, nil
	}
	if current != nil {
		record = current
	}

	if err != nil {
		s.metrics.IncProviderError("create", string(credential.CategoryOf(err)))
		s.metrics.IncIssuance("error")
		s.logger.ErrorContext(ctx, "credential create failed",
			"learner_id", record.LearnerID.String(),
			"course_id", record.CourseID.String(),
			"error", err,
		)
		record.MarkError(err.Error(), now)
		if saveErr := s.save(ctx, record); saveErr != nil {
			return 0, saveErr
		}
		s.publish(ctx, models.EventIssueFailed, record)
		return record.Status, nil
	}

	record.MarkIssued(defined, cred.ID.String(), s.credentials.DownloadURL(cred), ic.learner.FullName, ic.grade.Percent, now)
	if err := s.save(ctx, record); err != nil {
		// The credential exists at the provider; the key is logged so the
		// record can be repaired by reconciliation.
		s.logger.ErrorContext(ctx, "credential issued but record not saved",
			"learner_id", record.LearnerID.String(),
			"course_id", record.CourseID.String(),
			"external_key", record.ExternalKey,
			"error", err,
		)
		return 0, err
	}

	s.metrics.IncIssuance("issued")
	s.logger.InfoContext(ctx, "certificate issued",
		"learner_id", record.LearnerID.String(),
		"course_id", record.CourseID.String(),
		"external_key", record.ExternalKey,
		"status", record.Status.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.publish(ctx, models.EventIssued, record)
	return record.Status, nil
}

func (s *Service) save(ctx context.Context, record *models.Record) error {
	if err := s.records.Save(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save certificate")
	}
	return nil
}
