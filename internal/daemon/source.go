package daemon

import (
	"context"
	"sync"

	"fitforge/internal/session"
)

// Source feeds session requests into the daemon loop. Start returns a
// channel that closes when the source is exhausted or shut down.
type Source interface {
	Start(ctx context.Context) (<-chan session.Request, error)
	Close() error
}

// ChannelSource adapts a caller-owned channel into a Source. Used by the
// process command and tests.
type ChannelSource struct {
	ch   chan session.Request
	once sync.Once
}

// NewChannelSource builds a channel source with the given buffer.
func NewChannelSource(buffer int) *ChannelSource {
	if buffer < 0 {
		buffer = 0
	}
	return &ChannelSource{ch: make(chan session.Request, buffer)}
}

// Submit enqueues one request. It blocks when the buffer is full.
func (s *ChannelSource) Submit(req session.Request) {
	s.ch <- req
}

func (s *ChannelSource) Start(ctx context.Context) (<-chan session.Request, error) {
	return s.ch, nil
}

// Close stops delivery. Submit must not be called after Close.
func (s *ChannelSource) Close() error {
	s.once.Do(func() { close(s.ch) })
	return nil
}
