package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"certifier/internal/certificate/credential"
	"certifier/internal/certificate/lock"
	"certifier/internal/certificate/models"
	"certifier/internal/certificate/policy"
	dErrors "certifier/pkg/domain-errors"
	testfixtures "certifier/pkg/testutil"
)

func (s *ServiceSuite) TestAddLeavesSettledRecordsAlone() {
	for _, status := range []models.Status{
		models.StatusDownloadable,
		models.StatusRestricted,
		models.StatusRegenerating,
		models.StatusDeleting,
	} {
		s.Run(status.String(), func() {
			s.seedRecord(func(r *models.Record) {
				r.Status = status
			})

			got, err := s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID, CourseID: s.course})
			s.Require().NoError(err)
			s.Equal(status, got)
			s.Equal(status, s.storedRecord().Status)
		})
	}
	s.Empty(s.events.types())
}

func (s *ServiceSuite) TestAddRestrictedLearner() {
	s.Require().NoError(s.store.Restrict(s.ctx, models.RestrictionEntry{LearnerID: s.learner.ID, Reason: "embargo"}))
	s.Require().NoError(s.store.SetWhitelist(s.ctx, models.WhitelistEntry{LearnerID: s.learner.ID, CourseID: s.course, Whitelisted: true}))

	got, err := s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID, CourseID: s.course})

	s.Require().NoError(err)
	s.Equal(models.StatusRestricted, got)
	s.Equal(models.StatusRestricted, s.storedRecord().Status)
	s.Equal([]models.EventType{models.EventRestricted}, s.events.types())
}

func (s *ServiceSuite) TestAddNotPassing() {
	s.expectContext(0.5)
	s.grades.EXPECT().Evaluate(gomock.Any(), s.learner.ID, s.course).Return(models.Grade{Percent: 0.3}, nil)

	got, err := s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID, CourseID: s.course})

	s.Require().NoError(err)
	s.Equal(models.StatusNotPassing, got)
	record := s.storedRecord()
	s.Equal(models.StatusNotPassing, record.Status)
	s.InDelta(0.3, record.Grade, 1e-9)
	s.Empty(record.ExternalKey)
	s.InDelta(1, testutil.ToFloat64(s.metrics.IssuanceOutcomes.WithLabelValues("notpassing")), 0)
}

func (s *ServiceSuite) TestAddIssuesDownloadable() {
	// 91.23% issues with grade 9123 and the provider's id becomes the key.
	s.expectContext(0.5)
	s.grades.EXPECT().Evaluate(gomock.Any(), s.learner.ID, s.course).Return(models.Grade{Percent: 0.9123}, nil)

	var sent credential.Issuance
	cred := &credential.Credential{ID: "cred_1", Approve: true, Grade: 9123}
	s.credentials.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, issuance credential.Issuance) (*credential.Credential, error) {
			sent = issuance
			return cred, nil
		})
	s.credentials.EXPECT().DownloadURL(cred).Return("https://www.credential.net/cred_1")

	got, err := s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID, CourseID: s.course})

	s.Require().NoError(err)
	s.Equal(models.StatusDownloadable, got)

	s.Equal(9123, sent.Grade)
	s.True(sent.Approve)
	s.Equal("Demo Course", sent.Name)
	s.Equal("Learn the demo", sent.Description)
	s.Equal("/courses/"+s.course.String()+"/about", sent.CourseLink)
	s.Equal("ada@example.com", sent.Recipient.Email)

	record := s.storedRecord()
	s.Equal(models.StatusDownloadable, record.Status)
	s.Equal("cred_1", record.ExternalKey)
	s.Equal("https://www.credential.net/cred_1", record.DownloadURL)
	s.Equal("Ada Lovelace", record.Name)
	s.Equal(models.ModeHonor, record.Mode)
	s.Equal(testfixtures.FixedTime, record.UpdatedAt)
	s.Equal([]models.EventType{models.EventIssued}, s.events.types())
}

func (s *ServiceSuite) TestAddProviderFailure() {
	// A 500 from the provider leaves the record in error without a key.
	s.expectContext(0.5)
	s.grades.EXPECT().Evaluate(gomock.Any(), s.learner.ID, s.course).Return(models.Grade{Percent: 0.9}, nil)
	s.credentials.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, &credential.ServiceError{
		Op:         "create",
		Category:   credential.CategoryStatus,
		StatusCode: http.StatusInternalServerError,
		Message:    "unexpected status: boom",
	})

	got, err := s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID, CourseID: s.course})

	s.Require().NoError(err)
	s.Equal(models.StatusError, got)
	record := s.storedRecord()
	s.Equal(models.StatusError, record.Status)
	s.Empty(record.ExternalKey)
	s.Empty(record.DownloadURL)
	s.Contains(record.ErrorReason, "500")
	s.InDelta(1, testutil.ToFloat64(s.metrics.ProviderErrors.WithLabelValues("create", "status")), 0)
	s.Equal([]models.EventType{models.EventIssueFailed}, s.events.types())
}

func (s *ServiceSuite) TestAddRetriesFromError() {
	s.seedRecord(func(r *models.Record) {
		r.MarkError("timeout", testfixtures.FixedTime)
	})
	s.expectContext(0)
	s.grades.EXPECT().Evaluate(gomock.Any(), s.learner.ID, s.course).Return(models.Grade{Percent: 0}, nil)
	cred := &credential.Credential{ID: "cred_9"}
	s.credentials.EXPECT().Create(gomock.Any(), gomock.Any()).Return(cred, nil)
	s.credentials.EXPECT().DownloadURL(cred).Return("https://www.credential.net/cred_9")

	got, err := s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID, CourseID: s.course})

	s.Require().NoError(err)
	s.Equal(models.StatusDownloadable, got)
	s.Empty(s.storedRecord().ErrorReason)
}

func (s *ServiceSuite) TestAddGeneratingHoldsApproval() {
	s.expectContext(0.5)
	s.grades.EXPECT().Evaluate(gomock.Any(), s.learner.ID, s.course).Return(models.Grade{Percent: 0.8}, nil)
	cred := &credential.Credential{ID: "cred_2"}
	s.credentials.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, issuance credential.Issuance) (*credential.Credential, error) {
			s.False(issuance.Approve)
			return cred, nil
		})
	s.credentials.EXPECT().DownloadURL(cred).Return("https://www.credential.net/cred_2")

	got, err := s.service.Add(s.ctx, AddRequest{
		LearnerID:     s.learner.ID,
		CourseID:      s.course,
		DefinedStatus: models.StatusGenerating,
	})

	s.Require().NoError(err)
	s.Equal(models.StatusGenerating, got)
	record := s.storedRecord()
	s.Equal("cred_2", record.ExternalKey)
	s.Empty(record.DownloadURL)
}

func (s *ServiceSuite) TestAddWhitelistedBelowThreshold() {
	s.Require().NoError(s.store.SetWhitelist(s.ctx, models.WhitelistEntry{LearnerID: s.learner.ID, CourseID: s.course, Whitelisted: true}))
	s.expectContext(0.5)
	s.grades.EXPECT().Evaluate(gomock.Any(), s.learner.ID, s.course).Return(models.Grade{Percent: 0.1}, nil)
	cred := &credential.Credential{ID: "cred_3"}
	s.credentials.EXPECT().Create(gomock.Any(), gomock.Any()).Return(cred, nil)
	s.credentials.EXPECT().DownloadURL(cred).Return("https://www.credential.net/cred_3")

	got, err := s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID, CourseID: s.course})

	s.Require().NoError(err)
	s.Equal(models.StatusDownloadable, got)
}

func (s *ServiceSuite) TestAddForcedGradeSkipsGrading() {
	forced := 0.75
	s.expectContext(0.5)
	s.credentials.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, issuance credential.Issuance) (*credential.Credential, error) {
			s.Equal(7500, issuance.Grade)
			return &credential.Credential{ID: "cred_4"}, nil
		})
	s.credentials.EXPECT().DownloadURL(gomock.Any()).Return("https://www.credential.net/cred_4")

	got, err := s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID, CourseID: s.course, ForcedGrade: &forced})

	s.Require().NoError(err)
	s.Equal(models.StatusDownloadable, got)
}

func (s *ServiceSuite) TestAddDescriptionFallback() {
	s.learners.EXPECT().ByID(gomock.Any(), s.learner.ID).Return(s.learner, nil)
	s.catalog.EXPECT().Course(gomock.Any(), s.course).Return(&models.Course{ID: s.course, DisplayName: "Demo"}, nil)
	s.catalog.EXPECT().Description(gomock.Any(), s.course).Return("", errors.New("about page missing"))
	s.grades.EXPECT().Evaluate(gomock.Any(), s.learner.ID, s.course).Return(models.Grade{Percent: 0.9}, nil)
	s.credentials.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, issuance credential.Issuance) (*credential.Credential, error) {
			s.Equal(policy.DefaultDescription, issuance.Description)
			return &credential.Credential{ID: "cred_5"}, nil
		})
	s.credentials.EXPECT().DownloadURL(gomock.Any()).Return("https://www.credential.net/cred_5")

	_, err := s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID, CourseID: s.course})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestAddGradeFailureChangesNothing() {
	s.expectContext(0.5)
	s.grades.EXPECT().Evaluate(gomock.Any(), s.learner.ID, s.course).Return(models.Grade{}, errors.New("gradebook down"))

	_, err := s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID, CourseID: s.course})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	_, getErr := s.store.Get(s.ctx, s.learner.ID, s.course)
	s.Error(getErr, "no record is created when gathering fails")
}

func (s *ServiceSuite) TestAddValidation() {
	s.Run("anonymous", func() {
		_, err := s.service.Add(s.ctx, AddRequest{CourseID: s.course})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
	s.Run("missing course", func() {
		_, err := s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
	s.Run("unsupported defined status", func() {
		_, err := s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID, CourseID: s.course, DefinedStatus: models.StatusDeleted})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
	for name, grade := range map[string]float64{
		"negative grade":  -0.1,
		"grade above one": 1.5,
		"NaN grade":       math.NaN(),
		"infinite grade":  math.Inf(1),
	} {
		s.Run(name, func() {
			_, err := s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID, CourseID: s.course, ForcedGrade: &grade})
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
	_, getErr := s.store.Get(s.ctx, s.learner.ID, s.course)
	s.Error(getErr, "rejected requests create no record")
}

func (s *ServiceSuite) TestAddKeepsRecordChangedDuringCreate() {
	// A callback settles the earlier credential while the new create is in flight.
	s.seedRecord(func(r *models.Record) {
		r.MarkIssued(models.StatusGenerating, "cred_old", "", "Ada Lovelace", 0.9, testfixtures.FixedTime)
	})
	s.expectContext(0.5)
	s.grades.EXPECT().Evaluate(gomock.Any(), s.learner.ID, s.course).Return(models.Grade{Percent: 0.9}, nil)
	s.credentials.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ credential.Issuance) (*credential.Credential, error) {
			record := s.storedRecord()
			record.MarkDownloadable("https://www.credential.net/cred_old", "d-uuid", "v-uuid", testfixtures.FixedTime)
			s.Require().NoError(s.store.Save(ctx, record))
			return &credential.Credential{ID: "cred_new"}, nil
		})

	got, err := s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID, CourseID: s.course})

	s.Require().NoError(err)
	s.Equal(models.StatusDownloadable, got)
	record := s.storedRecord()
	s.Equal(models.StatusDownloadable, record.Status)
	s.Equal("cred_old", record.ExternalKey)
	s.Equal("https://www.credential.net/cred_old", record.DownloadURL)
	s.Empty(s.events.types())
	s.InDelta(1, testutil.ToFloat64(s.metrics.IssuanceOutcomes.WithLabelValues("conflict")), 0)
}

func (s *ServiceSuite) TestAddBusyWhileLockHeld() {
	_, ok, err := s.locker.TryAcquire(s.ctx, lock.IssueKey(s.learner.ID, s.course), time.Minute)
	s.Require().NoError(err)
	s.Require().True(ok)

	_, err = s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID, CourseID: s.course})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.ErrorIs(err, models.ErrBusy)
}

func (s *ServiceSuite) TestAddConcurrentRequestsIssueOnce() {
	const goroutines = 8
	var busy atomic.Int32
	release := make(chan struct{})

	s.learners.EXPECT().ByID(gomock.Any(), s.learner.ID).Return(s.learner, nil).AnyTimes()
	s.catalog.EXPECT().Course(gomock.Any(), s.course).Return(&models.Course{ID: s.course, DisplayName: "Demo"}, nil).AnyTimes()
	s.catalog.EXPECT().Description(gomock.Any(), s.course).Return("", nil).AnyTimes()
	s.grades.EXPECT().Evaluate(gomock.Any(), s.learner.ID, s.course).Return(models.Grade{Percent: 0.9}, nil).AnyTimes()
	s.credentials.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ credential.Issuance) (*credential.Credential, error) {
			select {
			case <-release:
			case <-time.After(2 * time.Second):
			}
			return &credential.Credential{ID: "cred_once"}, nil
		}).Times(1)
	s.credentials.EXPECT().DownloadURL(gomock.Any()).Return("https://www.credential.net/cred_once").Times(1)

	result := testfixtures.RunConcurrent(goroutines, func(int) error {
		_, err := s.service.Add(s.ctx, AddRequest{LearnerID: s.learner.ID, CourseID: s.course})
		if dErrors.HasCode(err, dErrors.CodeConflict) && busy.Add(1) == goroutines-1 {
			close(release)
		}
		return err
	})

	s.Equal(int32(1), result.Successes)
	s.Equal(int32(goroutines-1), result.Conflicts)
	s.Equal("cred_once", s.storedRecord().ExternalKey)
}

func (s *ServiceSuite) TestStatus() {
	status, record, err := s.service.Status(s.ctx, s.learner.ID, s.course)
	s.Require().NoError(err)
	s.Equal(models.StatusUnavailable, status)
	s.Nil(record)

	s.seedRecord(func(r *models.Record) { r.Status = models.StatusNotPassing })
	status, record, err = s.service.Status(s.ctx, s.learner.ID, s.course)
	s.Require().NoError(err)
	s.Equal(models.StatusNotPassing, status)
	s.NotNil(record)
}
