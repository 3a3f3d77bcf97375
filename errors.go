package blocksim

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// SimError is the error type returned by every simulator operation. Callers are
// expected to show the kind and message to the user verbatim.
type SimError interface {
	error
	Kind() ErrorKind
	WithMessage(message string) SimError
	Wrap(err error) SimError
}

// ErrorKind classifies a [SimError].
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidInput
	KindQuotaExceeded
	KindCapacityExceeded
	KindNotFound
	KindExists
	KindStorageIO
)

var kindNames = map[ErrorKind]string{
	KindInvalidInput:     "InvalidInput",
	KindQuotaExceeded:    "QuotaExceeded",
	KindCapacityExceeded: "CapacityExceeded",
	KindNotFound:         "NotFound",
	KindExists:           "Exists",
	KindStorageIO:        "StorageIOError",
}

var kindMessages = map[ErrorKind]string{
	KindInvalidInput:     "Invalid input",
	KindQuotaExceeded:    "File exceeds the per-file block quota",
	KindCapacityExceeded: "Not enough free blocks",
	KindNotFound:         "No such file",
	KindExists:           "File exists",
	KindStorageIO:        "Storage I/O error",
}

func (k ErrorKind) String() string {
	name, ok := kindNames[k]
	if ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

var ErrInvalidInput SimError = baseSimError(KindInvalidInput)
var ErrQuotaExceeded SimError = baseSimError(KindQuotaExceeded)
var ErrCapacityExceeded SimError = baseSimError(KindCapacityExceeded)
var ErrNotFound SimError = baseSimError(KindNotFound)
var ErrExists SimError = baseSimError(KindExists)
var ErrStorageIO SimError = baseSimError(KindStorageIO)

// KindOf returns the kind of the first [SimError] in err's chain, or
// KindUnknown if there is none.
func KindOf(err error) ErrorKind {
	var simErr SimError
	if errors.As(err, &simErr) {
		return simErr.Kind()
	}
	return KindUnknown
}

type baseSimError ErrorKind

func (e baseSimError) Error() string {
	message, ok := kindMessages[ErrorKind(e)]
	if ok {
		return message
	}
	return fmt.Sprintf("error %d not recognized", int(e))
}

func (e baseSimError) Kind() ErrorKind {
	return ErrorKind(e)
}

func (e baseSimError) WithMessage(message string) SimError {
	return customSimError{
		kind:          ErrorKind(e),
		message:       fmt.Sprintf("%s: %s", e.Error(), message),
		originalError: e,
	}
}

func (e baseSimError) Wrap(err error) SimError {
	return customSimError{
		kind:          ErrorKind(e),
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

// -----------------------------------------------------------------------------

type customSimError struct {
	kind          ErrorKind
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a string
// describing the error.
func (e customSimError) Error() string {
	return e.message
}

func (e customSimError) Kind() ErrorKind {
	return e.kind
}

func (e customSimError) WithMessage(message string) SimError {
	return customSimError{
		kind:          e.kind,
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customSimError) Wrap(err error) SimError {
	return customSimError{
		kind:          e.kind,
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

func (e customSimError) Unwrap() error {
	return e.originalError
}
