// Package validate provides centralized input validation utilities for the
// ranking API.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String validation errors
var (
	ErrEmpty             = errors.New("string is empty")
	ErrStringTooLong     = errors.New("string is too long")
	ErrInvalidCharacters = errors.New("string contains invalid characters")
)

// MaxIDLength bounds user and post identifiers. IDs come from the calling
// service and are treated as opaque tokens.
const MaxIDLength = 128

// idPattern matches opaque identifiers: printable, no whitespace or quotes.
var idPattern = regexp.MustCompile(`^[\x21-\x7E]+$`)

// StringConstraints defines validation constraints for a string.
type StringConstraints struct {
	MinLength      int            // Minimum length (0 = no minimum)
	MaxLength      int            // Maximum length (0 = no maximum)
	AllowedPattern *regexp.Regexp // Optional regex pattern for allowed characters
	AllowEmpty     bool           // Whether empty strings are allowed
	TrimSpace      bool           // Whether to trim whitespace before validation
}

// String validates a string against the given constraints.
// Returns the validated (and optionally trimmed) string and an error if validation fails.
func String(s string, constraints StringConstraints) (string, error) {
	if constraints.TrimSpace {
		s = strings.TrimSpace(s)
	}

	if s == "" {
		if !constraints.AllowEmpty {
			return "", ErrEmpty
		}
		return s, nil
	}

	// Character count, not byte count
	length := utf8.RuneCountInString(s)
	if constraints.MinLength > 0 && length < constraints.MinLength {
		return "", ErrEmpty
	}
	if constraints.MaxLength > 0 && length > constraints.MaxLength {
		return "", ErrStringTooLong
	}

	if constraints.AllowedPattern != nil && !constraints.AllowedPattern.MatchString(s) {
		return "", ErrInvalidCharacters
	}

	return s, nil
}

// UserID validates an opaque user or viewer identifier.
// Returns the trimmed ID and an error if it is empty, oversized, or
// contains characters outside the printable ASCII range.
func UserID(s string) (string, error) {
	return String(s, StringConstraints{
		MaxLength:      MaxIDLength,
		AllowedPattern: idPattern,
		TrimSpace:      true,
	})
}
