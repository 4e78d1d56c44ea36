package validation

import (
	"fmt"

	dErrors "certifier/pkg/domain-errors"
)

// MaxBodySize bounds callback payloads (64 KB).
const MaxBodySize = 64 * 1024

// Field length limits, matching the widths the learning platform stores.
const (
	MaxUsernameLength    = 150
	MaxCourseKeyLength   = 255
	MaxExternalKeyLength = 255
	MaxUUIDLength        = 64
	MaxURLLength         = 2048
	MaxErrorReasonLength = 512
)

// StringLimit pairs a field value with its maximum length.
type StringLimit struct {
	Field string
	Value string
	Max   int
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckStringLengths reports the first field over its limit.
func CheckStringLengths(limits ...StringLimit) error {
	for _, l := range limits {
		if err := CheckStringLength(l.Field, l.Value, l.Max); err != nil {
			return err
		}
	}
	return nil
}

// Truncate cuts s to at most max bytes without splitting a UTF-8 sequence.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}
