package audio

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQueueCapacity bounds the playback queue. At 100ms frames this is
// over a minute of buffered speech, far beyond a single assistant turn.
const DefaultQueueCapacity = 640

// dequeueTimeout bounds the drain loop's wait so a stop request is observed
// promptly even when no audio is queued.
const dequeueTimeout = 100 * time.Millisecond

// PlaybackPipeline buffers PCM frames in a bounded queue and drains them to
// an output device on a dedicated goroutine. Flush discards everything queued
// at once, which is the mechanism behind barge-in interruption.
type PlaybackPipeline struct {
	cfg      Config
	capacity int

	mu      sync.Mutex
	active  bool
	session *playbackSession

	onError func(error)
}

// playbackSession is the state of one Start/Stop cycle, guarded by the
// pipeline mutex. The drain loop holds its own session, so a loop outliving
// Stop can neither dequeue frames enqueued into a later session nor tear a
// later session down when its in-flight write fails.
type playbackSession struct {
	queue      [][]byte
	generation uint64
	device     OutputDevice
	stopped    atomic.Bool
	stop       chan struct{}

	// signal wakes the drain loop when audio arrives; buffered so enqueue
	// never blocks on it.
	signal chan struct{}
}

type PlaybackOption func(*PlaybackPipeline)

// WithPlaybackErrorCallback registers a callback invoked when the pipeline
// stops itself after a fatal device error.
func WithPlaybackErrorCallback(callback func(error)) PlaybackOption {
	return func(p *PlaybackPipeline) { p.onError = callback }
}

// WithQueueCapacity overrides the bounded queue capacity.
func WithQueueCapacity(capacity int) PlaybackOption {
	return func(p *PlaybackPipeline) {
		if capacity > 0 {
			p.capacity = capacity
		}
	}
}

func NewPlaybackPipeline(cfg Config, opts ...PlaybackOption) *PlaybackPipeline {
	p := &PlaybackPipeline{cfg: cfg, capacity: DefaultQueueCapacity}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start opens the device and begins the drain loop. Starting an active
// pipeline is a no-op.
func (p *PlaybackPipeline) Start(device OutputDevice) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		logger.Warn("playback already active, ignoring start")
		return nil
	}

	if err := device.Open(p.cfg); err != nil {
		return fmt.Errorf("failed to open playback device: %w", err)
	}

	s := &playbackSession{
		device: device,
		stop:   make(chan struct{}),
		signal: make(chan struct{}, 1),
	}
	p.active = true
	p.session = s

	go p.drainLoop(device, s)
	return nil
}

// Enqueue appends a frame for playback. Frames submitted while the pipeline
// is inactive are silently dropped; there is no buffering before Start. When
// the bounded queue is full the oldest frame is dropped to make room.
func (p *PlaybackPipeline) Enqueue(frame []byte) {
	p.mu.Lock()
	s := p.session
	if !p.active || s == nil {
		p.mu.Unlock()
		return
	}
	if len(s.queue) >= p.capacity {
		s.queue = s.queue[1:]
		logger.Warn("playback queue full, dropping oldest frame")
	}
	s.queue = append(s.queue, frame)
	p.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Flush atomically discards all queued frames. Frames dequeued before the
// flush but not yet written are abandoned as well; at most the frame already
// inside the device buffer keeps playing.
func (p *PlaybackPipeline) Flush() {
	p.mu.Lock()
	s := p.session
	if s == nil {
		p.mu.Unlock()
		return
	}
	s.queue = nil
	s.generation++
	device := s.device
	p.mu.Unlock()

	if clearer, ok := device.(BufferClearer); ok {
		clearer.ClearBuffer()
	}
}

// Stop flushes, then stops the drain loop and releases the device.
// Idempotent and safe to call from any goroutine. A stopped session's drain
// loop never interferes with a session begun by a later Start.
func (p *PlaybackPipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return
	}

	s := p.session
	p.active = false
	p.session = nil
	s.queue = nil
	s.generation++
	s.stopped.Store(true)
	close(s.stop)
}

// IsActive reports whether the drain loop is running.
func (p *PlaybackPipeline) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *PlaybackPipeline) drainLoop(device OutputDevice, s *playbackSession) {
	defer device.Close()

	for {
		frame, generation, ok := p.dequeue(s)
		if !ok {
			select {
			case <-s.stop:
				if clearer, isClearer := device.(BufferClearer); isClearer {
					clearer.ClearBuffer()
				}
				return
			case <-s.signal:
			case <-time.After(dequeueTimeout):
			}
			continue
		}

		if !p.generationCurrent(s, generation) {
			if clearer, isClearer := device.(BufferClearer); isClearer {
				clearer.ClearBuffer()
			}
			continue
		}

		if err := device.Write(frame); err != nil {
			if s.stopped.Load() {
				return
			}
			logger.Error("playback device write failed", "error", err)
			p.deactivate(s)
			if p.onError != nil {
				p.onError(fmt.Errorf("playback device write failed: %w", err))
			}
			return
		}
	}
}

func (p *PlaybackPipeline) dequeue(s *playbackSession) ([]byte, uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(s.queue) == 0 {
		return nil, s.generation, false
	}
	frame := s.queue[0]
	s.queue = s.queue[1:]
	return frame, s.generation, true
}

func (p *PlaybackPipeline) generationCurrent(s *playbackSession, generation uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return s.generation == generation
}

func (p *PlaybackPipeline) deactivate(s *playbackSession) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != s {
		return
	}

	p.active = false
	p.session = nil
	s.stopped.Store(true)
	close(s.stop)
}
