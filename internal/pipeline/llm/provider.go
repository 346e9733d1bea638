package llm

import (
	"context"
	"errors"
)

// Provider sends exactly one request to a completion endpoint per call.
// chunkText, when non-empty, is attached as auxiliary context alongside the
// user prompt. Failures come back as *CompletionError so callers can decide
// whether a retry makes sense.
type Provider interface {
	Complete(ctx context.Context, prompt string, chunkText string) (string, error)
}

type ErrorKind string

const (
	TransientError ErrorKind = "transient" //connection trouble, timeout, 5xx, rate limit
	PermanentError ErrorKind = "permanent" //bad request, malformed response - retrying won't help
)

type CompletionError struct {
	Kind   ErrorKind
	Detail string
}

func (e *CompletionError) Error() string {
	return e.Detail
}

func Transient(detail string) *CompletionError {
	return &CompletionError{Kind: TransientError, Detail: detail}
}

func Permanent(detail string) *CompletionError {
	return &CompletionError{Kind: PermanentError, Detail: detail}
}

func IsTransient(err error) bool {
	var completionErr *CompletionError
	return errors.As(err, &completionErr) && completionErr.Kind == TransientError
}
