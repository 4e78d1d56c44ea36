// Package domain provides type-safe identifiers shared across bounded contexts.
package domain

import (
	"github.com/google/uuid"

	dErrors "certifier/pkg/domain-errors"
)

// LearnerID identifies a learner account. It is a distinct type so a learner
// id cannot be passed where another UUID is expected.
type LearnerID uuid.UUID

// NewLearnerID returns a random learner id. Used by seeders and tests.
func NewLearnerID() LearnerID { return LearnerID(uuid.New()) }

// ParseLearnerID is used at trust boundaries (token claims, queue payloads).
func ParseLearnerID(s string) (LearnerID, error) {
	id, err := parseUUID(s, "learner ID")
	return LearnerID(id), err
}

func (id LearnerID) String() string { return uuid.UUID(id).String() }

func (id LearnerID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return id, nil
}
