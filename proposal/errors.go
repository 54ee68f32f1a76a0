package proposal

import "errors"

// ErrorKind is a stable category for programmatic error handling.
//
// Callers should branch on ErrorKind/RuleID rather than matching error strings.
type ErrorKind string

const (
	// KindEncoding marks input the codec cannot represent (EncodingError).
	KindEncoding ErrorKind = "Encoding"
	// KindTruncated marks input too short for the claimed proposal kind (TruncatedRecord).
	KindTruncated ErrorKind = "Truncated"
)

// Error is the codec's structured error type.
//
// RuleID names the violated layout rule (e.g. PROP-ENC-001, PROP-TRUNC-003).
// Message is intended for humans; do not match on it.
type Error struct {
	Kind    ErrorKind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind ErrorKind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

func wrapError(kind ErrorKind, ruleID, msg string, cause error) error {
	if cause == nil {
		return newError(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) an *Error with the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// IsEncodingError reports whether err is an EncodingError.
func IsEncodingError(err error) bool { return IsKind(err, KindEncoding) }

// IsTruncated reports whether err is a TruncatedRecord error.
func IsTruncated(err error) bool { return IsKind(err, KindTruncated) }

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
