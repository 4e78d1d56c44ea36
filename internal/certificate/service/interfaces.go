package service

import (
	"context"

	"certifier/internal/certificate/credential"
	"certifier/internal/certificate/models"
	id "certifier/pkg/domain"
)

// GradeEvaluator computes a learner's current grade in a course.
type GradeEvaluator interface {
	Evaluate(ctx context.Context, learnerID id.LearnerID, courseID models.CourseID) (models.Grade, error)
}

// CourseCatalog provides course metadata. Description is looked up
// separately because a missing description must not block issuance.
type CourseCatalog interface {
	Course(ctx context.Context, courseID models.CourseID) (*models.Course, error)
	Description(ctx context.Context, courseID models.CourseID) (string, error)
}

// LearnerDirectory resolves learner profiles.
type LearnerDirectory interface {
	ByID(ctx context.Context, learnerID id.LearnerID) (*models.Learner, error)
	ByUsername(ctx context.Context, username string) (*models.Learner, error)
}

// CredentialClient is the credential provider contract.
type CredentialClient interface {
	Create(ctx context.Context, issuance credential.Issuance) (*credential.Credential, error)
	SearchByRecipient(ctx context.Context, email string) ([]credential.Credential, error)
	Update(ctx context.Context, externalID string, update credential.Update) error
	ListByAchievement(ctx context.Context, achievementID string) ([]credential.Credential, error)
	DownloadURL(cred *credential.Credential) string
	ViewerURL(externalID string) string
}
