package webrtcredux

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	ErrInvalidState        = "InvalidStateError"
	ErrInvalidModification = "InvalidModificationError"
	ErrSyntax              = "SyntaxError"
	ErrOperation           = "OperationError"
)

// RTCError is a coded failure in the style of a DOMException.
type RTCError struct {
	Code string
	Err  error
}

func (e *RTCError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *RTCError) Unwrap() error {
	return e.Err
}

func makeError(code string, err error) error {
	return &RTCError{Code: code, Err: err}
}

func makeErrorf(code string, format string, args ...interface{}) error {
	return makeError(code, errors.Errorf(format, args...))
}

// ErrorCode returns the code of the first RTCError in err's chain, or "".
func ErrorCode(err error) string {
	var rtcErr *RTCError
	if errors.As(err, &rtcErr) {
		return rtcErr.Code
	}
	return ""
}
