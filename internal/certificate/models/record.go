package models

import (
	"time"

	id "certifier/pkg/domain"
)

// Record is the certificate state for one (learner, course) pair.
//
// Invariants kept by the Mark* transitions:
//   - DownloadURL is non-empty only while Status is StatusDownloadable.
//   - ErrorReason is non-empty only while Status is StatusError.
//   - ExternalKey, once set, is never cleared; regeneration reuses it.
type Record struct {
	LearnerID    id.LearnerID
	CourseID     CourseID
	Status       Status
	Mode         Mode
	Grade        float64
	Name         string
	ExternalKey  string
	DownloadURL  string
	DownloadUUID string
	VerifyUUID   string
	ErrorReason  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewRecord returns the record created on the first issuance attempt.
func NewRecord(learnerID id.LearnerID, courseID CourseID, now time.Time) *Record {
	return &Record{
		LearnerID: learnerID,
		CourseID:  courseID,
		Status:    StatusUnavailable,
		Mode:      ModeHonor,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *Record) setStatus(status Status, now time.Time) {
	r.Status = status
	if status != StatusDownloadable {
		r.DownloadURL = ""
	}
	if status != StatusError {
		r.ErrorReason = ""
	}
	r.UpdatedAt = now
}

func (r *Record) MarkRestricted(now time.Time) {
	r.setStatus(StatusRestricted, now)
}

func (r *Record) MarkNotPassing(grade float64, now time.Time) {
	r.Grade = grade
	r.setStatus(StatusNotPassing, now)
}

// MarkIssued records a successful create. The download URL is kept only when
// the target status is downloadable; a generating record gets its URL when
// the provider confirms.
func (r *Record) MarkIssued(status Status, externalKey, downloadURL, name string, grade float64, now time.Time) {
	r.ExternalKey = externalKey
	r.Name = name
	r.Grade = grade
	r.Mode = ModeHonor
	r.setStatus(status, now)
	if status == StatusDownloadable {
		r.DownloadURL = downloadURL
	}
}

// MarkError records a failure. Existing external key and snapshot fields are
// left untouched.
func (r *Record) MarkError(reason string, now time.Time) {
	r.setStatus(StatusError, now)
	r.ErrorReason = reason
}

// MarkDownloadable applies a provider confirmation. Empty uuids leave the
// stored values in place.
func (r *Record) MarkDownloadable(downloadURL, downloadUUID, verifyUUID string, now time.Time) {
	r.setStatus(StatusDownloadable, now)
	r.DownloadURL = downloadURL
	if downloadUUID != "" {
		r.DownloadUUID = downloadUUID
	}
	if verifyUUID != "" {
		r.VerifyUUID = verifyUUID
	}
}

func (r *Record) MarkDeleted(now time.Time) {
	r.setStatus(StatusDeleted, now)
}

// WhitelistEntry grants issuance regardless of grade unless the learner is
// restricted.
type WhitelistEntry struct {
	LearnerID   id.LearnerID
	CourseID    CourseID
	Whitelisted bool
}

// RestrictionEntry blocks issuance for a learner in every course.
type RestrictionEntry struct {
	LearnerID id.LearnerID
	Reason    string
}
