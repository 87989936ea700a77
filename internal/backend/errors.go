package backend

import (
	"fmt"
	"time"
)

// MissingPrerequisites prefixes every prerequisite remedy line, matching the
// string the zsh widget greps for.
const MissingPrerequisites = "zsh-llm-suggestions missing prerequisites:"

// PrerequisiteError means the environment is not ready. Remedy is a literal
// shell line (usually `echo "..." && <fix>`) printed verbatim so the calling
// widget can display or eval it.
type PrerequisiteError struct {
	Remedy string
}

func (e *PrerequisiteError) Error() string { return e.Remedy }

// AuthRequiredError is a prerequisite failure discovered mid-request: the
// backend binary is present but the session is not authenticated.
type AuthRequiredError struct {
	Remedy string
}

func (e *AuthRequiredError) Error() string { return e.Remedy }

// ExtensionMissingError means the base CLI is installed but its required
// sub-extension is not.
type ExtensionMissingError struct {
	Remedy string
}

func (e *ExtensionMissingError) Error() string { return e.Remedy }

// InvalidInputError is returned by ValidateInput when the buffer is rejected
// outright rather than sanitized.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

// TimeoutError means a child process or API call exceeded its deadline and
// was forcibly terminated.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Request timed out after %.0f seconds", e.After.Seconds())
}

// RequestError covers transport failures, unparseable upstream output, and
// leftover stderr with no extractable answer.
type RequestError struct {
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RequestError) Unwrap() error { return e.Err }

// EmptyResponseError means the API answered but carried no content.
type EmptyResponseError struct{}

func (e *EmptyResponseError) Error() string { return "API returned empty response" }
