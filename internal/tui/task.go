package tui

import "context"

// taskSlot hands out tokens for async work where only the newest request
// matters. Superseding cancels the previous request's context; results carry
// their token back so stale ones can be dropped in Update.
type taskSlot struct {
	token  int
	cancel context.CancelFunc
}

// Supersede invalidates any pending or in-flight work and returns the new
// current token.
func (s *taskSlot) Supersede() int {
	s.stop()
	s.token++
	return s.token
}

func (s *taskSlot) Current(token int) bool { return token == s.token }

// Context starts the work for token. It fails for stale tokens.
func (s *taskSlot) Context(token int) (context.Context, bool) {
	if !s.Current(token) {
		return nil, false
	}
	s.stop()
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	return ctx, true
}

// Finish releases the context held for token, if it is still current.
func (s *taskSlot) Finish(token int) {
	if s.Current(token) {
		s.stop()
	}
}

func (s *taskSlot) stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
