package service

import (
	"go.uber.org/mock/gomock"

	"certifier/internal/certificate/credential"
	"certifier/internal/certificate/models"
	dErrors "certifier/pkg/domain-errors"
	testfixtures "certifier/pkg/testutil"
)

func (s *ServiceSuite) TestReconcileCourse() {
	other := &models.Learner{ID: testfixtures.LearnerID2, Email: "grace@example.com"}
	for _, learner := range []models.Learner{*s.learner, *other} {
		record := models.NewRecord(learner.ID, s.course, testfixtures.FixedTime)
		record.MarkIssued(models.StatusGenerating, "cred_"+learner.ID.String()[:4], "", learner.FullName, 0.9, testfixtures.FixedTime)
		s.Require().NoError(s.store.Save(s.ctx, record))
	}

	s.credentials.EXPECT().ListByAchievement(gomock.Any(), s.course.String()).Return([]credential.Credential{
		{ID: "cred_1111", Approve: true, Recipient: credential.Recipient{Email: "ADA@example.com"}},
		{ID: "cred_2222", Approve: false, Recipient: credential.Recipient{Email: "grace@example.com"}},
	}, nil)
	s.learners.EXPECT().ByID(gomock.Any(), s.learner.ID).Return(s.learner, nil)
	s.learners.EXPECT().ByID(gomock.Any(), other.ID).Return(other, nil)
	s.credentials.EXPECT().ViewerURL("cred_1111").Return("https://www.credential.net/cred_1111")

	result, err := s.service.ReconcileCourse(s.ctx, s.course)

	s.Require().NoError(err)
	s.Equal(2, result.Checked)
	s.Equal(1, result.Transitioned)
	s.Equal(1, result.Approved)

	ada := s.storedRecord()
	s.Equal(models.StatusDownloadable, ada.Status)
	s.Equal("https://www.credential.net/cred_1111", ada.DownloadURL)

	grace, err := s.store.Get(s.ctx, other.ID, s.course)
	s.Require().NoError(err)
	s.Equal(models.StatusGenerating, grace.Status)
	s.Equal([]models.EventType{models.EventReconciled}, s.events.types())
}

func (s *ServiceSuite) TestReconcileCourseProviderFailure() {
	s.credentials.EXPECT().ListByAchievement(gomock.Any(), s.course.String()).
		Return(nil, &credential.ServiceError{Op: "list", Category: credential.CategoryTransport})

	result, err := s.service.ReconcileCourse(s.ctx, s.course)

	s.Nil(result)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}
