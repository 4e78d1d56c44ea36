package service

import (
	"context"
	"time"

	"go.uber.org/mock/gomock"

	"certifier/internal/certificate/credential"
	"certifier/internal/certificate/lock"
	"certifier/internal/certificate/models"
	dErrors "certifier/pkg/domain-errors"
	"certifier/pkg/platform/sentinel"
	testfixtures "certifier/pkg/testutil"
)

func (s *ServiceSuite) seedIssued(grade float64) {
	s.seedRecord(func(r *models.Record) {
		r.MarkIssued(models.StatusDownloadable, "cred_1", "https://www.credential.net/cred_1", "Ada Lovelace", grade, testfixtures.FixedTime)
	})
}

func (s *ServiceSuite) providerCredentials() []credential.Credential {
	return []credential.Credential{
		{ID: "cred_other", Grade: 10000, CourseLink: "/courses/MITx/6.002x/2013_Spring/about"},
		{ID: "cred_1", Grade: 9000, CourseLink: s.course.AboutPath()},
	}
}

func (s *ServiceSuite) TestRegenerateWithoutRecord() {
	updated, err := s.service.Regenerate(s.ctx, s.learner.ID, s.course)

	s.False(updated)
	s.ErrorIs(err, models.ErrNoRecord)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, getErr := s.store.Get(s.ctx, s.learner.ID, s.course)
	s.Error(getErr, "regeneration never creates a record")
}

func (s *ServiceSuite) TestRegenerateHigherGrade() {
	s.seedIssued(0.9)
	s.learners.EXPECT().ByID(gomock.Any(), s.learner.ID).Return(s.learner, nil)
	s.credentials.EXPECT().SearchByRecipient(gomock.Any(), "ada@example.com").Return(s.providerCredentials(), nil)
	s.grades.EXPECT().Evaluate(gomock.Any(), s.learner.ID, s.course).Return(models.Grade{Percent: 0.95}, nil)
	s.credentials.EXPECT().Update(gomock.Any(), "cred_1", credential.Update{Approve: true, Grade: 9500}).Return(nil)

	updated, err := s.service.Regenerate(s.ctx, s.learner.ID, s.course)

	s.Require().NoError(err)
	s.True(updated)
	record := s.storedRecord()
	s.InDelta(0.95, record.Grade, 1e-9)
	s.Equal(models.StatusDownloadable, record.Status)
	s.Equal("https://www.credential.net/cred_1", record.DownloadURL)
	s.Equal([]models.EventType{models.EventRegenerated}, s.events.types())
}

func (s *ServiceSuite) TestRegenerateEqualOrLowerGrade() {
	for name, percent := range map[string]float64{"equal": 0.9, "lower": 0.8} {
		s.Run(name, func() {
			s.seedIssued(0.9)
			s.learners.EXPECT().ByID(gomock.Any(), s.learner.ID).Return(s.learner, nil)
			s.credentials.EXPECT().SearchByRecipient(gomock.Any(), "ada@example.com").Return(s.providerCredentials(), nil)
			s.grades.EXPECT().Evaluate(gomock.Any(), s.learner.ID, s.course).Return(models.Grade{Percent: percent}, nil)

			updated, err := s.service.Regenerate(s.ctx, s.learner.ID, s.course)

			s.Require().NoError(err)
			s.False(updated)
			s.InDelta(0.9, s.storedRecord().Grade, 1e-9)
		})
	}
}

func (s *ServiceSuite) TestRegenerateSearchFailure() {
	s.seedIssued(0.9)
	s.learners.EXPECT().ByID(gomock.Any(), s.learner.ID).Return(s.learner, nil)
	s.credentials.EXPECT().SearchByRecipient(gomock.Any(), "ada@example.com").
		Return(nil, &credential.ServiceError{Op: "search", Category: credential.CategoryTimeout})

	updated, err := s.service.Regenerate(s.ctx, s.learner.ID, s.course)

	s.False(updated)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal(models.StatusDownloadable, s.storedRecord().Status)
}

func (s *ServiceSuite) TestRegenerateNoMatchingCredential() {
	s.seedIssued(0.9)
	s.learners.EXPECT().ByID(gomock.Any(), s.learner.ID).Return(s.learner, nil)
	s.credentials.EXPECT().SearchByRecipient(gomock.Any(), "ada@example.com").
		Return([]credential.Credential{{ID: "x", CourseLink: "/courses/other/about"}}, nil)

	updated, err := s.service.Regenerate(s.ctx, s.learner.ID, s.course)

	s.False(updated)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestRegenerateUpdateRejected() {
	s.seedIssued(0.9)
	s.learners.EXPECT().ByID(gomock.Any(), s.learner.ID).Return(s.learner, nil)
	s.credentials.EXPECT().SearchByRecipient(gomock.Any(), "ada@example.com").Return(s.providerCredentials(), nil)
	s.grades.EXPECT().Evaluate(gomock.Any(), s.learner.ID, s.course).Return(models.Grade{Percent: 0.99}, nil)
	s.credentials.EXPECT().Update(gomock.Any(), "cred_1", gomock.Any()).
		Return(&credential.ServiceError{Op: "update", Category: credential.CategoryStatus, StatusCode: 422})

	updated, err := s.service.Regenerate(s.ctx, s.learner.ID, s.course)

	s.Require().NoError(err)
	s.False(updated)
	s.InDelta(0.9, s.storedRecord().Grade, 1e-9)
	s.Empty(s.events.types())
}

func (s *ServiceSuite) TestRegenerateKeepsCallbackAppliedDuringUpdate() {
	s.seedIssued(0.9)
	s.learners.EXPECT().ByID(gomock.Any(), s.learner.ID).Return(s.learner, nil)
	s.credentials.EXPECT().SearchByRecipient(gomock.Any(), "ada@example.com").Return(s.providerCredentials(), nil)
	s.grades.EXPECT().Evaluate(gomock.Any(), s.learner.ID, s.course).Return(models.Grade{Percent: 0.95}, nil)
	s.credentials.EXPECT().Update(gomock.Any(), "cred_1", gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ credential.Update) error {
			record := s.storedRecord()
			record.MarkError("revoked upstream", testfixtures.FixedTime)
			s.Require().NoError(s.store.Save(ctx, record))
			return nil
		})

	updated, err := s.service.Regenerate(s.ctx, s.learner.ID, s.course)

	s.Require().NoError(err)
	s.True(updated, "the provider accepted the update")
	record := s.storedRecord()
	s.Equal(models.StatusError, record.Status)
	s.Equal("revoked upstream", record.ErrorReason)
	s.Empty(record.DownloadURL)
	s.InDelta(0.9, record.Grade, 1e-9)
	s.Empty(s.events.types())
}

func (s *ServiceSuite) TestRegenerateUnknownLearner() {
	s.seedIssued(0.9)
	s.learners.EXPECT().ByID(gomock.Any(), s.learner.ID).Return(nil, sentinel.ErrNotFound)

	updated, err := s.service.Regenerate(s.ctx, s.learner.ID, s.course)

	s.False(updated)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestRegenerateBusyWhileLockHeld() {
	s.seedIssued(0.9)
	_, ok, err := s.locker.TryAcquire(s.ctx, lock.IssueKey(s.learner.ID, s.course), time.Minute)
	s.Require().NoError(err)
	s.Require().True(ok)

	updated, err := s.service.Regenerate(s.ctx, s.learner.ID, s.course)

	s.False(updated)
	s.ErrorIs(err, models.ErrBusy)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}
