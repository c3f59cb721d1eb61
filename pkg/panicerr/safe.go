// Package panicerr turns a panic in background work into an ordinary error
// so one failing fetch cannot take the console down with it.
package panicerr

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/panics"

	"github.com/kazz187/agentconsole/pkg/cerr"
)

// Safe wraps fn; a panic comes back as an Internal *cerr.Error carrying the
// panicking goroutine's stack.
func Safe(fn func() error) func() error {
	return func() error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn()
		})
		if err != nil {
			return err
		}
		return fromRecovered(catcher.Recovered())
	}
}

// SafeContext is Safe for functions run by a context pool.
func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return Safe(func() error { return fn(ctx) })()
	}
}

func fromRecovered(r *panics.Recovered) error {
	if r == nil {
		return nil
	}
	e := cerr.NewError(cerr.Internal, "", fmt.Errorf("recovered panic: %v", r.Value))
	e.Stack = string(r.Stack)
	return e
}
