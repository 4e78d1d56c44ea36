package service

import (
	"context"

	"certifier/internal/certificate/credential"
	"certifier/internal/certificate/models"
	dErrors "certifier/pkg/domain-errors"
	strutil "certifier/pkg/platform/strings"
	"certifier/pkg/requestcontext"
)

// ReconcileResult summarizes one bulk reconciliation run.
type ReconcileResult struct {
	CourseID     models.CourseID
	Approved     int
	Checked      int
	Transitioned int
	Skipped      int
}

// ReconcileCourse moves generating records to downloadable when the provider
// already shows the learner's credential as approved. It repairs records
// whose confirmation callback never arrived.
func (s *Service) ReconcileCourse(ctx context.Context, courseID models.CourseID) (*ReconcileResult, error) {
	creds, err := s.credentials.ListByAchievement(ctx, courseID.String())
	if err != nil {
		s.metrics.IncProviderError("list", string(credential.CategoryOf(err)))
		return nil, dErrors.Wrap(err, credential.DomainCode(err), "failed to list provider credentials")
	}

	emails := make([]string, 0, len(creds))
	for _, c := range creds {
		if c.Approve {
			emails = append(emails, c.Recipient.Email)
		}
	}
	emails = strutil.DedupeAndTrimLower(emails)
	approved := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		approved[email] = struct{}{}
	}

	records, err := s.records.ListByCourseStatus(ctx, courseID, models.StatusGenerating)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list generating certificates")
	}

	result := &ReconcileResult{CourseID: courseID, Approved: len(approved), Checked: len(records)}
	for _, record := range records {
		learner, err := s.learners.ByID(ctx, record.LearnerID)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping certificate with unknown learner",
				"learner_id", record.LearnerID.String(),
				"course_id", courseID.String(),
				"error", err,
			)
			result.Skipped++
			continue
		}
		if _, ok := approved[strutil.Fold(learner.Email)]; !ok {
			continue
		}

		downloadURL := ""
		if record.ExternalKey != "" {
			downloadURL = s.credentials.ViewerURL(record.ExternalKey)
		}
		record.MarkDownloadable(downloadURL, "", "", requestcontext.Now(ctx))
		if err := s.records.Save(ctx, record); err != nil {
			return result, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save reconciled certificate")
		}
		result.Transitioned++
		s.publish(ctx, models.EventReconciled, record)
	}

	s.metrics.AddReconciled(courseID.String(), result.Transitioned)
	s.logger.InfoContext(ctx, "course reconciled",
		"course_id", courseID.String(),
		"checked", result.Checked,
		"transitioned", result.Transitioned,
		"skipped", result.Skipped,
	)
	return result, nil
}
