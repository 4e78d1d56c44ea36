package service

import (
	"context"
	"errors"

	"certifier/internal/certificate/credential"
	"certifier/internal/certificate/models"
	"certifier/internal/certificate/policy"
	id "certifier/pkg/domain"
	dErrors "certifier/pkg/domain-errors"
	"certifier/pkg/platform/sentinel"
	"certifier/pkg/requestcontext"
)

// Regenerate pushes an improved grade to the learner's existing credential.
// It reports true only when the provider accepted the update. A grade that
// is not strictly higher, or a rejected update, reports false without error.
//
// A learner without a record gets models.ErrNoRecord; a failed search or a
// missing credential for the course aborts with an error and changes nothing.
// Only the grade is written back, and not at all when the record's status or
// key moved while the provider was being updated.
func (s *Service) Regenerate(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID) (bool, error) {
	release, err := s.acquire(ctx, learnerID, courseID)
	if err != nil {
		return false, err
	}
	defer release()

	record, err := s.records.Get(ctx, learnerID, courseID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, dErrors.Wrap(models.ErrNoRecord, dErrors.CodeNotFound, "no certificate to regenerate")
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load certificate")
	}

	seenStatus, seenKey := record.Status, record.ExternalKey

	learner, err := s.learners.ByID(ctx, learnerID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, dErrors.Wrap(err, dErrors.CodeNotFound, "learner not found")
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load learner profile")
	}

	creds, err := s.credentials.SearchByRecipient(ctx, learner.Email)
	if err != nil {
		s.metrics.IncProviderError("search", string(credential.CategoryOf(err)))
		s.metrics.IncRegeneration("failed")
		return false, dErrors.Wrap(err, credential.DomainCode(err), "credential search failed")
	}
	existing := findForCourse(creds, courseID)
	if existing == nil {
		s.metrics.IncRegeneration("failed")
		return false, dErrors.New(dErrors.CodeNotFound, "no issued credential found for course")
	}

	grade, err := s.grades.Evaluate(ctx, learnerID, courseID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to compute grade")
	}

	if !policy.ShouldRegenerate(grade.Percent, existing.Grade) {
		s.metrics.IncRegeneration("unchanged")
		return false, nil
	}

	update := credential.Update{Approve: true, Grade: models.ScaleGrade(grade.Percent)}
	if err := s.credentials.Update(ctx, existing.ID.String(), update); err != nil {
		s.metrics.IncProviderError("update", string(credential.CategoryOf(err)))
		s.metrics.IncRegeneration("failed")
		s.logger.ErrorContext(ctx, "credential update failed",
			"learner_id", learnerID.String(),
			"course_id", courseID.String(),
			"external_key", existing.ID.String(),
			"error", err,
		)
		return false, nil
	}

	s.metrics.IncRegeneration("updated")
	current, changed, err := s.changedSince(ctx, learnerID, courseID, seenStatus, seenKey)
	if err == nil && (changed || current == nil) {
		s.logger.WarnContext(ctx, "certificate changed during regeneration, local grade not saved",
			"learner_id", learnerID.String(),
			"course_id", courseID.String(),
			"external_key", existing.ID.String(),
		)
		return true, nil
	}
	if err == nil {
		current.Grade = grade.Percent
		current.UpdatedAt = requestcontext.Now(ctx)
		err = s.records.Save(ctx, current)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "credential regenerated but local grade not saved",
			"learner_id", learnerID.String(),
			"course_id", courseID.String(),
			"error", err,
		)
		return true, nil
	}
	s.publish(ctx, models.EventRegenerated, current)
	return true, nil
}

func findForCourse(creds []credential.Credential, courseID models.CourseID) *credential.Credential {
	for i := range creds {
		if courseID.LinkMatches(creds[i].CourseLink) {
			return &creds[i]
		}
	}
	return nil
}
