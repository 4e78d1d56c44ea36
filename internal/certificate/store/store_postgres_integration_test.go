//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"certifier/internal/certificate/models"
	"certifier/internal/certificate/store"
	dErrors "certifier/pkg/domain-errors"
	"certifier/pkg/platform/sentinel"
	"certifier/pkg/testutil"
	"certifier/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	course   models.CourseID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.course = models.CourseID(testutil.CourseKey1)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

func (s *PostgresStoreSuite) TestUpsertRoundTrip() {
	ctx := context.Background()
	now := testutil.FixedTime

	record := models.NewRecord(testutil.LearnerID1, s.course, now)
	record.MarkIssued(models.StatusGenerating, "cred_1", "", "Ada Lovelace", 0.9123, now)
	s.Require().NoError(s.store.Save(ctx, record))

	later := now.Add(time.Minute)
	record.MarkDownloadable("https://www.credential.net/cred_1", "d-uuid", "v-uuid", later)
	s.Require().NoError(s.store.Save(ctx, record))

	got, err := s.store.Get(ctx, testutil.LearnerID1, s.course)
	s.Require().NoError(err)
	s.Equal(models.StatusDownloadable, got.Status)
	s.Equal("cred_1", got.ExternalKey)
	s.Equal("https://www.credential.net/cred_1", got.DownloadURL)
	s.Equal("d-uuid", got.DownloadUUID)
	s.Equal("v-uuid", got.VerifyUUID)
	s.InDelta(0.9123, got.Grade, 1e-9)
	s.True(now.Equal(got.CreatedAt))
	s.True(later.Equal(got.UpdatedAt))
}

func (s *PostgresStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), testutil.LearnerID1, s.course)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestInvariantRejectedBeforeWrite() {
	record := models.NewRecord(testutil.LearnerID1, s.course, testutil.FixedTime)
	record.Status = models.StatusError
	record.DownloadURL = "https://www.credential.net/cred_1"

	err := s.store.Save(context.Background(), record)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *PostgresStoreSuite) TestFindForCallbackAndList() {
	ctx := context.Background()
	record := models.NewRecord(testutil.LearnerID1, s.course, testutil.FixedTime)
	record.MarkIssued(models.StatusGenerating, "cred_1", "", "Ada", 0.8, testutil.FixedTime)
	s.Require().NoError(s.store.Save(ctx, record))

	got, err := s.store.FindForCallback(ctx, testutil.LearnerID1, s.course, "cred_1")
	s.Require().NoError(err)
	s.Equal(models.StatusGenerating, got.Status)

	_, err = s.store.FindForCallback(ctx, testutil.LearnerID1, s.course, "other")
	s.ErrorIs(err, sentinel.ErrNotFound)

	records, err := s.store.ListByCourseStatus(ctx, s.course, models.StatusGenerating)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *PostgresStoreSuite) TestWhitelistAndRestrictions() {
	ctx := context.Background()

	s.Require().NoError(s.store.SetWhitelist(ctx, models.WhitelistEntry{LearnerID: testutil.LearnerID1, CourseID: s.course, Whitelisted: true}))
	ok, err := s.store.IsWhitelisted(ctx, testutil.LearnerID1, s.course)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.IsWhitelisted(ctx, testutil.LearnerID2, s.course)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.store.Restrict(ctx, models.RestrictionEntry{LearnerID: testutil.LearnerID2, Reason: "embargo"}))
	restricted, err := s.store.IsRestricted(ctx, testutil.LearnerID2)
	s.Require().NoError(err)
	s.True(restricted)

	s.Require().NoError(s.store.Unrestrict(ctx, testutil.LearnerID2))
	restricted, err = s.store.IsRestricted(ctx, testutil.LearnerID2)
	s.Require().NoError(err)
	s.False(restricted)
}
