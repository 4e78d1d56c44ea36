// Package store persists certificate records plus the whitelist and
// restriction tables the issuance policy reads.
package store

import (
	"fmt"

	"certifier/internal/certificate/models"
	dErrors "certifier/pkg/domain-errors"
)

// checkRecord rejects records that would break the record invariants before
// they reach storage. Both stores call it on Save.
func checkRecord(record *models.Record) error {
	if record == nil {
		return fmt.Errorf("certificate record is required")
	}
	if record.LearnerID.IsNil() || record.CourseID == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "certificate record requires learner and course")
	}
	if !record.Status.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "certificate record has unknown status")
	}
	if record.DownloadURL != "" && record.Status != models.StatusDownloadable {
		return dErrors.New(dErrors.CodeInvariantViolation, "download url is only kept for downloadable certificates")
	}
	return nil
}
