// Package fanout runs independent calls concurrently and waits for all of
// them, keeping each call's outcome.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Call is one named unit of work.
type Call struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Result records how a single call settled.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Results holds the outcomes in the order the calls were given.
type Results []Result

// OK reports whether every call succeeded.
func (rs Results) OK() bool {
	for _, r := range rs {
		if r.Err != nil {
			return false
		}
	}
	return true
}

// Failed returns the calls that did not succeed.
func (rs Results) Failed() []Result {
	var out []Result
	for _, r := range rs {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Err joins every failure, prefixed with the call name, or returns nil.
func (rs Results) Err() error {
	var errs []error
	for _, r := range rs.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", r.Name, r.Err))
	}
	return errors.Join(errs...)
}

// Run starts every call at once and blocks until all of them return. A
// failing call never cancels its siblings; each receives ctx unchanged.
func Run(ctx context.Context, calls ...Call) Results {
	results := make(Results, len(calls))
	var g errgroup.Group
	for i, call := range calls {
		results[i].Name = call.Name
		g.Go(func() error {
			start := time.Now()
			results[i].Err = invoke(ctx, call)
			results[i].Duration = time.Since(start)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func invoke(ctx context.Context, call Call) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("fanout: %s panicked: %v", call.Name, rec)
		}
	}()
	if call.Fn == nil {
		return fmt.Errorf("fanout: %s has no function", call.Name)
	}
	return call.Fn(ctx)
}
