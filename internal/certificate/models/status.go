package models

import (
	"fmt"

	dErrors "certifier/pkg/domain-errors"
)

// Status is the lifecycle state of a certificate record. The set is closed;
// the zero value is StatusUnavailable.
type Status uint8

const (
	StatusUnavailable Status = iota
	StatusNotPassing
	StatusRestricted
	StatusGenerating
	StatusDownloadable
	StatusRegenerating
	StatusDeleting
	StatusDeleted
	StatusError
)

var statusNames = [...]string{
	StatusUnavailable:  "unavailable",
	StatusNotPassing:   "notpassing",
	StatusRestricted:   "restricted",
	StatusGenerating:   "generating",
	StatusDownloadable: "downloadable",
	StatusRegenerating: "regenerating",
	StatusDeleting:     "deleting",
	StatusDeleted:      "deleted",
	StatusError:        "error",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// IsValid reports whether s is one of the declared states.
func (s Status) IsValid() bool {
	return int(s) < len(statusNames)
}

// IsReEvaluable reports whether issuance may run again from this state.
// Records in any other state are left alone by Add.
func (s Status) IsReEvaluable() bool {
	switch s {
	case StatusGenerating, StatusUnavailable, StatusDeleted, StatusError, StatusNotPassing:
		return true
	default:
		return false
	}
}

// ParseStatus maps the persisted name back to a Status.
func ParseStatus(s string) (Status, error) {
	for i, name := range statusNames {
		if name == s {
			return Status(i), nil
		}
	}
	return 0, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown certificate status %q", s))
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, s.String()+" is not a certificate status")
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Mode is the enrollment mode recorded on a certificate. Informational only.
type Mode string

const (
	ModeHonor        Mode = "honor"
	ModeVerified     Mode = "verified"
	ModeAudit        Mode = "audit"
	ModeProfessional Mode = "professional"
)

func (m Mode) IsValid() bool {
	switch m {
	case ModeHonor, ModeVerified, ModeAudit, ModeProfessional:
		return true
	}
	return false
}
