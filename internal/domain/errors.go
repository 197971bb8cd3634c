package domain

import "errors"

// Kind classifies a failure by the pipeline stage that produced it.
type Kind string

const (
	KindAuth             Kind = "auth"
	KindInvalid          Kind = "invalid_request"
	KindUnsupportedMedia Kind = "unsupported_media_type"
	KindUpstream         Kind = "upstream"
	KindConfiguration    Kind = "configuration"
)

// Error is a failure tagged with its Kind. Message is the text shown to the
// caller; when empty, the wrapped error's text is used instead.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Message
	case e.Message == "":
		return e.Err.Error()
	default:
		return e.Message + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the Kind of err. Untagged errors are treated as upstream
// failures.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUpstream
}

// MessageOf returns the caller-facing message for err, or fallback when the
// error carries no text at all.
func MessageOf(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var de *Error
	if errors.As(err, &de) {
		if de.Message != "" {
			return de.Message
		}
		if de.Err != nil && de.Err.Error() != "" {
			return de.Err.Error()
		}
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
