// Package terminator provides CallTerminator implementations used by the
// screening service to end blocked calls.
package terminator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/haukened/rr-callscreen/internal/screen/domain"
	"github.com/haukened/rr-callscreen/internal/screen/services/screener"
)

// ErrUnsupported is returned by a mechanism that is not available on the
// current platform. Fallback moves on to the next mechanism.
var ErrUnsupported = errors.New("termination mechanism unsupported")

// PlatformError wraps a failure reported by a platform termination mechanism.
type PlatformError struct {
	Mechanism string
	Err       error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s: %v", e.Mechanism, e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }

// Func adapts a function to screener.CallTerminator.
type Func func(ctx context.Context, call domain.IncomingCall) error

// Terminate calls f.
func (f Func) Terminate(ctx context.Context, call domain.IncomingCall) error { return f(ctx, call) }

// Fallback tries Primary and, only if it fails, Secondary.
//
// The preferred mechanism is a screening response (disallow, reject and
// silence the call). The secondary one is a legacy end-call request. When
// both fail the returned error carries both failures.
type Fallback struct {
	Primary   screener.CallTerminator
	Secondary screener.CallTerminator
}

// Terminate implements screener.CallTerminator.
func (f *Fallback) Terminate(ctx context.Context, call domain.IncomingCall) error {
	var errs error
	for _, t := range []screener.CallTerminator{f.Primary, f.Secondary} {
		if t == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		err := t.Terminate(ctx, call)
		if err == nil {
			return nil
		}
		errs = multierr.Append(errs, err)
	}
	if errs == nil {
		return ErrUnsupported
	}
	return errs
}

// Writer reports each terminated call as one line on w. The daemon uses it
// as the platform side when screening events from stdin.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer terminator printing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Terminate implements screener.CallTerminator.
func (t *Writer) Terminate(_ context.Context, call domain.IncomingCall) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintf(t.w, "terminated caller=%s at=%s\n", call.Caller, call.ReceivedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return &PlatformError{Mechanism: "writer", Err: err}
	}
	return nil
}

var (
	_ screener.CallTerminator = (*Fallback)(nil)
	_ screener.CallTerminator = (*Writer)(nil)
	_ screener.CallTerminator = Func(nil)
)
