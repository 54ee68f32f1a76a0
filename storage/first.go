package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Candidate is one step of an ordered fallback: a named operation.
type Candidate[T any] struct {
	Name string
	Do   func(ctx context.Context) (T, error)
}

// Attempt records how one candidate fared.
type Attempt struct {
	Source  string
	Err     error
	Elapsed time.Duration
}

// Outcome is the result of the first candidate that succeeded.
type Outcome[T any] struct {
	Value    T
	Source   string
	Index    int
	Attempts []Attempt
}

// ExhaustedError is returned when every candidate failed.
type ExhaustedError struct {
	Op       string
	Attempts []Attempt
	errs     *multierror.Error
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("storage: %s: %v", e.Op, ErrNoEndpoints)
	}
	return fmt.Sprintf("storage: %s: all %d endpoints failed: %v", e.Op, len(e.Attempts), e.errs)
}

// Unwrap exposes every per-candidate error to errors.Is / errors.As.
func (e *ExhaustedError) Unwrap() []error {
	if len(e.Attempts) == 0 {
		return []error{ErrNoEndpoints}
	}
	return e.errs.WrappedErrors()
}

// IsExhausted reports whether err is (or wraps) an *ExhaustedError.
func IsExhausted(err error) bool {
	var e *ExhaustedError
	return errors.As(err, &e)
}

// FirstSuccess runs candidates strictly in order and returns the first
// success. Candidates after the winner are never invoked. A cancelled ctx
// stops the walk and its error is returned as is.
func FirstSuccess[T any](ctx context.Context, op string, candidates []Candidate[T]) (Outcome[T], error) {
	var out Outcome[T]
	errs := &multierror.Error{ErrorFormat: listFormat}
	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		start := time.Now()
		v, err := c.Do(ctx)
		out.Attempts = append(out.Attempts, Attempt{Source: c.Name, Err: err, Elapsed: time.Since(start)})
		if err == nil {
			out.Value, out.Source, out.Index = v, c.Name, i
			return out, nil
		}
		errs = multierror.Append(errs, err)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, &ExhaustedError{Op: op, Attempts: out.Attempts, errs: errs}
}

func listFormat(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}
