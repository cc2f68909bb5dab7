package process

import (
	"bytes"
	"sync"
)

// Source names the stream a chunk came from.
type Source int

const (
	// SourceStdout is the child's standard output.
	SourceStdout Source = iota + 1
	// SourceStderr is the child's standard error.
	SourceStderr
)

// String returns "stdout" or "stderr".
func (s Source) String() string {
	switch s {
	case SourceStdout:
		return "stdout"
	case SourceStderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// Chunk is one write from the child. Data is owned by the receiver.
type Chunk struct {
	Source Source
	Data   []byte
}

// Consumer receives output chunks as the child writes them. Chunks of one
// stream arrive in order; the two streams are delivered independently.
type Consumer func(Chunk)

// Capture accumulates one output stream of a child. os/exec copies the
// pipe into it from its own goroutine while the child runs, so reads from
// other goroutines see the output written so far.
type Capture struct {
	source   Source
	limit    int
	consumer Consumer

	mu        sync.Mutex
	buf       bytes.Buffer
	truncated bool
}

// NewCapture returns a Capture for source. A positive limit caps the bytes
// kept in memory; bytes past it are dropped but still drained and still
// passed to consumer.
func NewCapture(source Source, limit int, consumer Consumer) *Capture {
	return &Capture{source: source, limit: limit, consumer: consumer}
}

// Write implements io.Writer. It never fails, so the child is never blocked
// by a full buffer.
func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	keep := p
	if c.limit > 0 {
		if room := c.limit - c.buf.Len(); room < len(keep) {
			keep = keep[:max(room, 0)]
			c.truncated = true
		}
	}
	c.buf.Write(keep)
	c.mu.Unlock()

	if c.consumer != nil && len(p) > 0 {
		c.consumer(Chunk{Source: c.source, Data: bytes.Clone(p)})
	}
	return len(p), nil
}

// Bytes returns a copy of the output captured so far.
func (c *Capture) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return bytes.Clone(c.buf.Bytes())
}

// String returns the output captured so far.
func (c *Capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Len returns the number of bytes kept.
func (c *Capture) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Len()
}

// Truncated reports whether output past the limit was dropped.
func (c *Capture) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.truncated
}
