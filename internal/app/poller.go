package app

import (
	"context"
	"time"

	"github.com/five82/pagedeck/internal/editor"
)

const defaultPollInterval = 20 * time.Millisecond

// Drive polls the session on a fixed cadence until no background work
// remains, passing every event to onEvent. Each tick applies at most one
// rendered page and checks the save result once, the same pacing as the UI
// tick loop. Drive runs on the caller's goroutine, which therefore owns the
// session.
//
// When ctx is cancelled Drive cancels the running load and keeps polling
// until the worker confirms, then returns ctx.Err(). A running save cannot be
// cancelled and is waited for.
func Drive(ctx context.Context, s *editor.Session, interval time.Duration, onEvent func(editor.Event)) error {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := ctx.Done()
	for {
		if ev, ok := s.PollLoad(); ok && onEvent != nil {
			onEvent(ev)
		}
		if ev, ok := s.PollSave(); ok && onEvent != nil {
			onEvent(ev)
		}
		if !s.Active() {
			return ctx.Err()
		}

		select {
		case <-done:
			s.CancelLoad()
			done = nil
		case <-ticker.C:
		}
	}
}
