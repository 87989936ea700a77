package backend

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxInputLength caps the stdin buffer, counted in characters before any
// filtering.
const MaxInputLength = 2000

// ValidateInput rejects NUL bytes and over-long buffers, then drops control
// characters other than newline, carriage return, and tab, and trims the
// result. The length check runs against the original text, not the filtered
// one.
func ValidateInput(text string) (string, error) {
	if strings.ContainsRune(text, '\x00') {
		return "", &InvalidInputError{Message: "Input contains null bytes"}
	}

	if n := utf8.RuneCountInString(text); n > MaxInputLength {
		return "", &InvalidInputError{
			Message: fmt.Sprintf("Input too long (max %d characters, got %d)", MaxInputLength, n),
		}
	}

	var sanitized strings.Builder
	sanitized.Grow(len(text))
	for _, r := range text {
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			sanitized.WriteRune(r)
		}
	}
	return strings.TrimSpace(sanitized.String()), nil
}
