package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error
type Kind string

const (
	KindNetwork     Kind = "network"
	KindDataShape   Kind = "data_shape"
	KindSchema      Kind = "schema"
	KindEmptyResult Kind = "empty_result"
	KindInput       Kind = "input"
)

// Error is a classified failure
type Error struct {
	Kind    Kind
	Message string

	// Set for network errors
	URL        string
	StatusCode int

	// Set for schema errors
	Dataset string
	Column  string

	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Network reports a failed request or a non-success response.
// status is 0 when no response was received.
func Network(url string, status int, cause error) *Error {
	msg := fmt.Sprintf("network error fetching %s", url)
	if status != 0 {
		msg = fmt.Sprintf("network error fetching %s: unexpected status %d", url, status)
	}
	return &Error{
		Kind:       KindNetwork,
		Message:    msg,
		URL:        url,
		StatusCode: status,
		Cause:      cause,
	}
}

// DataShape reports that the remote page no longer has the expected structure
func DataShape(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindDataShape,
		Message: fmt.Sprintf(format, args...),
	}
}

// Schema reports a dataset missing a required column
func Schema(dataset, column string) *Error {
	return &Error{
		Kind:    KindSchema,
		Message: fmt.Sprintf("%s must contain a %q column", dataset, column),
		Dataset: dataset,
		Column:  column,
	}
}

// EmptyResult reports a well-formed page that produced zero usable rows
func EmptyResult(url string) *Error {
	return &Error{
		Kind:    KindEmptyResult,
		Message: fmt.Sprintf("no data found in the table at %s", url),
		URL:     url,
	}
}

// Input reports a user-supplied file that could not be read or written
func Input(path string, cause error) *Error {
	return &Error{
		Kind:    KindInput,
		Message: fmt.Sprintf("reading %s", path),
		Cause:   cause,
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err's chain contains an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
