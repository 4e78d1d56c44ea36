// Package policy decides whether a learner gets a certificate and builds the
// issuance request sent to the credential provider.
package policy

import (
	"strings"

	"certifier/internal/certificate/credential"
	"certifier/internal/certificate/models"
)

// DefaultDescription is sent when a course has no description configured.
const DefaultDescription = "course_description"

// Outcome is the eligibility decision for one learner in one course.
type Outcome int

const (
	OutcomeNotPassing Outcome = iota
	OutcomeRestricted
	OutcomeIssue
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRestricted:
		return "restricted"
	case OutcomeIssue:
		return "issue"
	default:
		return "notpassing"
	}
}

// Input is everything the decision depends on.
type Input struct {
	Restricted   bool
	Whitelisted  bool
	Grade        float64
	PassingGrade float64
}

// Decide applies the rules in order: a restriction wins over everything, a
// whitelist entry wins over the grade, and otherwise the grade must reach
// the course's passing threshold.
func Decide(in Input) Outcome {
	if in.Restricted {
		return OutcomeRestricted
	}
	if in.Whitelisted || Passes(in.Grade, in.PassingGrade) {
		return OutcomeIssue
	}
	return OutcomeNotPassing
}

// Passes compares grades at the provider's precision. A course without a
// threshold passes every grade.
func Passes(grade, passing float64) bool {
	return models.ScaleGrade(grade) >= models.ScaleGrade(passing)
}

// CredentialName strips a leading beta marker from a course display name.
func CredentialName(displayName string) string {
	name := strings.TrimSpace(displayName)
	for _, prefix := range []string{"BETA", "Beta", "beta"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return name
}

// BuildIssuance builds the create request for a learner in a course.
// requested is the status the record should reach on success; only
// StatusGenerating asks the provider to hold the credential unapproved.
func BuildIssuance(learner models.Learner, course models.Course, grade float64, requested models.Status) credential.Issuance {
	name := CredentialName(course.DisplayName)
	if name == "" {
		name = course.ID.String()
	}
	description := course.Description
	if strings.TrimSpace(description) == "" {
		description = DefaultDescription
	}
	return credential.Issuance{
		Name:          name,
		GroupName:     name,
		Description:   description,
		AchievementID: course.ID.String(),
		CourseLink:    course.ID.AboutPath(),
		Approve:       requested != models.StatusGenerating,
		TemplateName:  course.ID.String(),
		Grade:         models.ScaleGrade(grade),
		Recipient: credential.Recipient{
			Name:  learner.FullName,
			Email: learner.Email,
		},
	}
}

// ShouldRegenerate reports whether a new grade improves on the provider's
// recorded grade.
func ShouldRegenerate(newGrade float64, recorded credential.Grade) bool {
	return models.ScaleGrade(newGrade) > int(recorded)
}
