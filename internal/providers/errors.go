package providers

import (
	"errors"
	"fmt"
)

// ErrorKind classifies completion failures. The kind decides whether the
// chain walker may try the fallback model; nothing else inspects status codes.
type ErrorKind string

const (
	// ErrKindConfig is a missing or invalid credential. Never retried.
	ErrKindConfig ErrorKind = "config"

	// ErrKindRateLimit is HTTP 429. Terminal for the whole chain.
	ErrKindRateLimit ErrorKind = "rate_limit"

	// ErrKindRequest is any other non-2xx below 500. Terminal for the chain.
	ErrKindRequest ErrorKind = "request"

	// ErrKindTransient is a 5xx or provider outage. Eligible for fallback.
	ErrKindTransient ErrorKind = "transient"

	// ErrKindTimeout is a per-attempt deadline hit. Eligible for fallback.
	ErrKindTimeout ErrorKind = "timeout"

	// ErrKindEmpty is a 2xx with no assistant content. Eligible for fallback.
	ErrKindEmpty ErrorKind = "empty"

	// ErrKindTruncated is empty content with finish_reason "length":
	// the model ran out of tokens before emitting any JSON.
	ErrKindTruncated ErrorKind = "truncated"

	// ErrKindMalformedJSON means content survived fence stripping and brace
	// slicing but still did not parse. Eligible for fallback.
	ErrKindMalformedJSON ErrorKind = "malformed_json"
)

// Error is a classified completion failure. Message is user-facing and is
// surfaced verbatim by callers, so keep it short and free of internals.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int // HTTP status when applicable, 0 otherwise
}

func (e *Error) Error() string {
	return e.Message
}

// Retryable reports whether the fallback model may be tried after this error.
// Pure classification: the chain walker owns the "how", this owns the "whether".
func (e *Error) Retryable() bool {
	switch e.Kind {
	case ErrKindTransient, ErrKindTimeout, ErrKindEmpty, ErrKindTruncated, ErrKindMalformedJSON:
		return true
	default:
		return false
	}
}

// AsError extracts a classified *Error from err, if present.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsRetryable reports whether err permits a fallback-model attempt.
// Unclassified errors (network failures and the like) are treated as transient.
func IsRetryable(err error) bool {
	if ce, ok := AsError(err); ok {
		return ce.Retryable()
	}
	return err != nil
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// classifyStatus maps a non-2xx HTTP status to a completion error.
// The body is truncated before it reaches user-facing messages.
func classifyStatus(status int, body string) *Error {
	body = truncateBody(body)
	switch {
	case status == 429:
		return &Error{Kind: ErrKindRateLimit, Status: status,
			Message: "Rate limit reached. Please wait a moment and try again."}
	case status >= 500:
		return &Error{Kind: ErrKindTransient, Status: status,
			Message: "The AI service is temporarily unavailable. Please try again."}
	default:
		return &Error{Kind: ErrKindRequest, Status: status,
			Message: fmt.Sprintf("AI request failed (%d): %s", status, body)}
	}
}

// maxErrorBodyLen bounds how much of a provider error body is surfaced.
const maxErrorBodyLen = 200

func truncateBody(body string) string {
	if len(body) > maxErrorBodyLen {
		return body[:maxErrorBodyLen]
	}
	return body
}
