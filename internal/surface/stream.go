package surface

import "sync"

// #region stream
// Stream buffers events for one consumer. Push never blocks: when the
// buffer is full the stream is marked overflowed and closed, since a client
// that misses events can no longer rebuild its regions.
type Stream struct {
	mu       sync.Mutex
	ch       chan Event
	closed   bool
	overflow bool
	done     chan struct{}
}

// NewStream creates a stream buffering up to size events.
func NewStream(size int) *Stream {
	if size <= 0 {
		size = 256
	}
	return &Stream{ch: make(chan Event, size), done: make(chan struct{})}
}

// Push queues ev. It reports false once the stream is closed.
func (s *Stream) Push(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- ev:
		return true
	default:
		s.overflow = true
		s.closeLocked()
		return false
	}
}

// Emitter returns a surface that pushes into s.
func (s *Stream) Emitter() Emitter {
	return func(ev Event) { s.Push(ev) }
}

// Events is drained by the consumer; it is closed after Close once the
// buffer empties.
func (s *Stream) Events() <-chan Event { return s.ch }

// Done is closed when the stream closes.
func (s *Stream) Done() <-chan struct{} { return s.done }

// Overflowed reports whether the stream closed because the consumer fell
// behind.
func (s *Stream) Overflowed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overflow
}

// Close stops accepting events. It is safe to call more than once.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Stream) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
	close(s.done)
}

// #endregion stream
