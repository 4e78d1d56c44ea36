package models

import "errors"

var (
	// ErrRecordNotFound means a callback matched no record on
	// (learner, course, external key).
	ErrRecordNotFound = errors.New("certificate record not found")

	// ErrInvalidState means a callback arrived for a record whose status
	// does not accept it, including re-delivery of an applied callback.
	ErrInvalidState = errors.New("invalid certificate status")

	// ErrNoRecord means regeneration was requested before any issuance.
	ErrNoRecord = errors.New("no certificate record")

	// ErrBusy means another issuance for the same learner and course holds the lock.
	ErrBusy = errors.New("certificate issuance in progress")
)
