// Package strings provides string normalization helpers.
package strings

import (
	"strings"
)

// DedupeAndTrimLower trims and lowercases each element, dropping empties and
// duplicates. Order is preserved.
//
// Example:
//
//	DedupeAndTrimLower([]string{"  FOO ", "bar", "Foo", ""})
//	// Returns: []string{"foo", "bar"}
func DedupeAndTrimLower(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		normalized := Fold(v)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; !ok {
			seen[normalized] = struct{}{}
			result = append(result, normalized)
		}
	}

	return result
}

// Fold trims whitespace and lowercases s. Emails and usernames are compared
// in this form.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TrimStrings trims whitespace in place on each pointed-to string.
func TrimStrings(ss ...*string) {
	for _, s := range ss {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
}
