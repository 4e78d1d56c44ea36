package testutil

import (
	"time"

	"github.com/google/uuid"

	id "certifier/pkg/domain"
)

// Deterministic identifiers shared by package tests.
var (
	LearnerID1 = id.LearnerID(uuid.MustParse("11111111-1111-1111-1111-111111111111"))
	LearnerID2 = id.LearnerID(uuid.MustParse("22222222-2222-2222-2222-222222222222"))

	CourseKey1 = "course-v1:edX+DemoX+2026_T1"
	CourseKey2 = "MITx/6.002x/2013_Spring"
)

// FixedTime is the clock most tests pin via requestcontext.WithTime.
var FixedTime = time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)
