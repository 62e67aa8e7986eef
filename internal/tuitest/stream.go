package tuitest

import (
	"bytes"
	"sync"
)

// stream collects PTY output while steps poll it from another goroutine.
type stream struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func newStream() *stream { return &stream{} }

func (s *stream) Write(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Write(p)
}

func (s *stream) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.buf.Bytes()...)
}
