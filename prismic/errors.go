package prismic

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup by uid or id matches no document.
	ErrNotFound = errors.New("prismic: document not found")
	// ErrForeignCursor is returned when a pagination cursor does not point at
	// the configured repository.
	ErrForeignCursor = errors.New("prismic: cursor does not belong to this repository")
	// ErrMissingField marks a required document field that is absent or null.
	ErrMissingField = errors.New("missing required field")
)

// APIError is a non-2xx answer from the content API.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("prismic: %s returned %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("prismic: %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

// DecodeError reports a response or document that does not match the
// expected schema. DocumentID is empty for envelope-level failures.
type DecodeError struct {
	DocumentID string
	Field      string
	Err        error
}

func (e *DecodeError) Error() string {
	switch {
	case e.DocumentID != "" && e.Field != "":
		return fmt.Sprintf("prismic: decode document %s field %q: %v", e.DocumentID, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("prismic: decode field %q: %v", e.Field, e.Err)
	case e.DocumentID != "":
		return fmt.Sprintf("prismic: decode document %s: %v", e.DocumentID, e.Err)
	}
	return fmt.Sprintf("prismic: decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
