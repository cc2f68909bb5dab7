package process

import (
	"context"
	"sync"

	apperrors "github.com/bbugyi200/bugyi/errors"
	"github.com/bbugyi200/bugyi/provider"
)

var _ provider.Stream[Spec, Chunk] = (*Streamer)(nil)

// Streamer exposes a running command's output as a provider.Stream of
// chunks. The child blocks on its pipes while the consumer falls behind by
// more than the buffer.
type Streamer struct {
	name    string
	spawner *Spawner
	buffer  int
}

// NewStreamer creates a Streamer. A nil spawner uses the default Spawner.
func NewStreamer(name string, spawner *Spawner, buffer int) *Streamer {
	if spawner == nil {
		spawner = defaultSpawner
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Streamer{name: name, spawner: spawner, buffer: buffer}
}

// Name returns the streamer name.
func (s *Streamer) Name() string { return s.name }

// IsAvailable always returns true.
func (s *Streamer) IsAvailable(_ context.Context) bool { return true }

// Execute spawns spec and returns an iterator over its output. The iterator
// ends with a COMMAND_FAILED error if the command exits unsuccessfully.
// Closing the iterator early kills the child.
func (s *Streamer) Execute(ctx context.Context, spec Spec) (provider.Iterator[Chunk], error) {
	it := &chunkIterator{
		chunks: make(chan Chunk, s.buffer),
		closed: make(chan struct{}),
	}

	forward := spec.OnOutput
	spec = spec.WithConsumer(func(c Chunk) {
		if forward != nil {
			forward(c)
		}
		select {
		case it.chunks <- c:
		case <-it.closed:
		}
	})

	p, err := s.spawner.Spawn(ctx, spec).Get()
	if err != nil {
		return nil, err
	}
	it.proc = p

	go func() {
		<-p.Done()
		close(it.chunks)
	}()
	return it, nil
}

type chunkIterator struct {
	proc      *Process
	chunks    chan Chunk
	closed    chan struct{}
	closeOnce sync.Once
}

func (it *chunkIterator) Next(ctx context.Context) (Chunk, bool, error) {
	select {
	case c, ok := <-it.chunks:
		if ok {
			return c, true, nil
		}
	case <-ctx.Done():
		return Chunk{}, false, ctx.Err()
	}

	status, err := it.proc.Wait().Get()
	if err != nil {
		return Chunk{}, false, err
	}
	if !status.Success() {
		return Chunk{}, false, apperrors.CommandFailed(
			it.proc.spec.Argv(), status.Code, "", string(it.proc.Stderr()))
	}
	return Chunk{}, false, nil
}

// Close kills the child if it is still running and waits for it to be
// reaped.
func (it *chunkIterator) Close() error {
	it.closeOnce.Do(func() {
		close(it.closed)
		if it.proc.Poll() == Running {
			_ = it.proc.Kill()
		}
		<-it.proc.Done()
	})
	return nil
}
