package ports

import (
	"context"
	"fmt"
	"time"
)

// CompletionRequest is one request to the external text-completion service.
// The service is expected to answer with a single JSON object.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
}

// Completer is the port to the external text-completion service. Complete
// blocks until a response arrives or ctx is done. Implementations handle
// retries for rate-limit errors internally; any error returned is final
// for this unit of work.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ParseError marks a malformed structured response. The unit of work that
// triggered it (one chunk, one candidate, one clip) is skipped; the rest
// of the batch continues.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Msg, e.Err)
	}
	return "parse: " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// RateLimitError marks a retryable rate-limit signal from the service.
// RetryAfter carries the server-suggested wait when it was parseable,
// zero otherwise.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }
