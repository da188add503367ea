package sdp

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedLine is returned for a line without a <type>=<value> split or
	// with fewer fields than its type requires.
	ErrMalformedLine = errors.New("sdp: malformed line")
	// ErrUnknownKey is returned for a line type this package does not know.
	ErrUnknownKey = errors.New("sdp: unknown key")
	// ErrUnknownToken is returned when a field does not match any of the
	// values allowed for it.
	ErrUnknownToken = errors.New("sdp: unknown token")
	// ErrNumericConversion is returned when a field expected a non-negative
	// integer.
	ErrNumericConversion = errors.New("sdp: invalid numeric value")
)

// ParseError describes why a document was rejected. It matches its Kind with
// errors.Is.
type ParseError struct {
	// Kind is one of the Err* sentinels of this package.
	Kind error
	// Line is the offending line, without its line ending.
	Line string
	// Key and Value are set for ErrUnknownKey.
	Key   byte
	Value string
	// Token is the field that failed to parse.
	Token string
	// Err is the underlying conversion error, if any.
	Err error
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	switch {
	case e.Kind == ErrUnknownKey:
		msg = fmt.Sprintf("%s `%c` with value `%s`", msg, e.Key, e.Value)
	case e.Token != "":
		msg = fmt.Sprintf("%s `%s`", msg, e.Token)
	}
	if e.Line != "" {
		msg = fmt.Sprintf("%s in line `%s`", msg, e.Line)
	}
	return msg
}

// Is reports whether target is the kind of e.
func (e *ParseError) Is(target error) bool {
	return target == e.Kind
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func malformed(token string) *ParseError {
	return &ParseError{Kind: ErrMalformedLine, Token: token}
}

func unknownToken(token string) *ParseError {
	return &ParseError{Kind: ErrUnknownToken, Token: token}
}

func unknownKey(key byte, value string) *ParseError {
	return &ParseError{Kind: ErrUnknownKey, Key: key, Value: value}
}

func numeric(token string, err error) *ParseError {
	return &ParseError{Kind: ErrNumericConversion, Token: token, Err: err}
}

// withLine attaches line to err when err is a *ParseError without one.
func withLine(err error, line string) error {
	var perr *ParseError
	if errors.As(err, &perr) && perr.Line == "" {
		perr.Line = line
	}
	return err
}
