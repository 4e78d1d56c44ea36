package models

import (
	"math"
	"strings"

	id "certifier/pkg/domain"
	dErrors "certifier/pkg/domain-errors"
	"certifier/pkg/validation"
)

// CourseID is a validated course key, either "course-v1:Org+Course+Run" or
// the legacy "Org/Course/Run" form.
type CourseID string

func ParseCourseID(s string) (CourseID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "course_id is required")
	}
	if !validation.IsCourseKey(s) {
		return "", dErrors.New(dErrors.CodeValidation, "course_id must be a valid course key")
	}
	return CourseID(s), nil
}

func (c CourseID) String() string { return string(c) }

// AboutPath is the course link sent to the credential provider. Regeneration
// later identifies the course's credential by this link.
func (c CourseID) AboutPath() string {
	return "/courses/" + string(c) + "/about"
}

// LinkMatches reports whether a credential's course link belongs to this course.
func (c CourseID) LinkMatches(link string) bool {
	return strings.Contains(link, "/courses/"+string(c)+"/")
}

// ScaleGrade converts a 0..1 grade fraction to the provider's integer
// representation in hundredths of a percent (0.9123 -> 9123).
func ScaleGrade(percent float64) int {
	return int(math.Round(percent * 10000))
}

// Grade is the outcome of grade computation for one learner in one course.
type Grade struct {
	Percent float64
	Letter  string
}

// Course is the metadata issuance needs about a course.
type Course struct {
	ID           CourseID
	DisplayName  string
	Description  string
	PassingGrade float64
}

// Learner is the profile snapshot used as the credential recipient.
type Learner struct {
	ID       id.LearnerID
	Username string
	Email    string
	FullName string
}
