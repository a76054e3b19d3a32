package detector

import (
	"context"

	"github.com/google/uuid"

	"github.com/doppelkit/doppel/pkg/doppel/types"
)

// Session is one in-flight scan with an explicit lifecycle. The caller owns
// the session: start it, optionally cancel it by handle, and wait for the
// terminal outcome. There is no process-wide "current scan".
type Session struct {
	id     uuid.UUID
	cancel context.CancelFunc
	done   chan struct{}

	result *types.ScanResult
	err    error
}

// Start begins a detection run asynchronously and returns its session.
// The run inherits cancellation from ctx in addition to Cancel.
func Start(ctx context.Context, opts Options) *Session {
	runCtx, cancel := context.WithCancel(ctx)

	s := &Session{
		id:     uuid.New(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer cancel()
		s.result, s.err = New(opts).Run(runCtx)
	}()

	return s
}

// ID returns the session handle.
func (s *Session) ID() string {
	return s.id.String()
}

// Cancel signals cooperative cancellation. The scan stops at the next file
// boundary and Wait returns ErrCancelled; partial results are discarded.
func (s *Session) Cancel() {
	s.cancel()
}

// Done returns a channel closed when the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the scan finishes and returns its outcome: a complete
// ScanResult, ErrCancelled, or an error.
func (s *Session) Wait() (*types.ScanResult, error) {
	<-s.done
	return s.result, s.err
}
