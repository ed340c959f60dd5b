package registry

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("sample not found")

// FetchError reports a transport or HTTP status failure for Target, which is
// the URL that was requested.
type FetchError struct {
	Target     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("GET %s: %v", e.Target, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type DecodeError struct {
	Snippet string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid sample JSON %q: %v", e.Snippet, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sample %q not found", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
