package audio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// CapturePipeline reads fixed-size PCM frames from an input device on a
// dedicated goroutine and hands them to a frame callback.
//
// A hard device error is fatal to the pipeline: it logs, stops itself and
// surfaces the error through the error callback so the caller can react.
// Transient overflows are dropped and the loop continues.
type CapturePipeline struct {
	cfg Config

	mu      sync.Mutex
	active  bool
	session *captureSession

	onError func(error)
}

// captureSession is the state of one Start/Stop cycle. The read loop holds
// its own session, so a loop outliving Stop can never observe state from a
// later Start.
type captureSession struct {
	stopped atomic.Bool
	stop    chan struct{}
}

type CaptureOption func(*CapturePipeline)

// WithCaptureErrorCallback registers a callback invoked when the pipeline
// stops itself after a fatal device error.
func WithCaptureErrorCallback(callback func(error)) CaptureOption {
	return func(p *CapturePipeline) { p.onError = callback }
}

func NewCapturePipeline(cfg Config, opts ...CaptureOption) *CapturePipeline {
	p := &CapturePipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start opens the device and begins the read loop. Only one capture session
// may be active at a time; starting an active pipeline is a no-op.
func (p *CapturePipeline) Start(device InputDevice, onFrame func(frame []byte)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		logger.Warn("capture already active, ignoring start")
		return nil
	}

	if err := device.Open(p.cfg); err != nil {
		return fmt.Errorf("failed to open capture device: %w", err)
	}

	s := &captureSession{stop: make(chan struct{})}
	p.active = true
	p.session = s

	go p.readLoop(device, onFrame, s)
	return nil
}

func (p *CapturePipeline) readLoop(device InputDevice, onFrame func([]byte), s *captureSession) {
	defer device.Close()

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		frame, err := device.ReadFrame()
		if errors.Is(err, ErrOverflow) {
			continue
		}
		if err != nil {
			if !s.stopped.Load() {
				logger.Error("capture device read failed", "error", err)
				p.deactivate(s)
				if p.onError != nil {
					p.onError(fmt.Errorf("capture device read failed: %w", err))
				}
			}
			return
		}

		if s.stopped.Load() {
			return
		}
		if len(frame) > 0 {
			onFrame(frame)
		}
	}
}

// Stop halts the read loop and releases the device. It is safe to call from
// any goroutine, including the frame callback, and is an idempotent no-op if
// the pipeline is not running. No frames are delivered after Stop returns,
// even if the stopped loop is still blocked inside a device read when the
// pipeline is started again.
func (p *CapturePipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return
	}

	s := p.session
	p.active = false
	p.session = nil
	s.stopped.Store(true)
	close(s.stop)
}

func (p *CapturePipeline) deactivate(s *captureSession) {
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

// IsActive reports whether the read loop is running.
func (p *CapturePipeline) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}
