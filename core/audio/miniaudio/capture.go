package miniaudio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/remylabs/remy-core/core/audio"
)

// frameQueueDepth bounds the frames buffered between the miniaudio data
// callback and ReadFrame. Overruns beyond this are reported as overflow.
const frameQueueDepth = 8

// CaptureDevice is an [audio.InputDevice] backed by a miniaudio capture
// device. The malgo data callback pushes completed frames into a bounded
// channel that ReadFrame drains.
type CaptureDevice struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	frames     chan []byte
	pending    []byte
	overflowed atomic.Bool
	closed     chan struct{}

	mu sync.Mutex
}

func NewCaptureDevice() *CaptureDevice {
	return &CaptureDevice{}
}

func (c *CaptureDevice) Open(cfg audio.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		return fmt.Errorf("capture device already open")
	}

	enc := cfg.EncodingInfo()
	format, err := malgoFormat(enc)
	if err != nil {
		return fmt.Errorf("failed to open capture device: %w", err)
	}
	bytesPerFrame := enc.Format.ByteSize() * cfg.Channels
	frameBytes := cfg.FrameBytes()

	audioContext, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return fmt.Errorf("failed to initialize miniaudio context: %w", err)
	}

	c.config = malgo.DefaultDeviceConfig(malgo.Capture)
	c.config.SampleRate = uint32(cfg.SampleRate)
	c.config.Capture.Format = format
	c.config.Capture.Channels = uint32(cfg.Channels)
	c.config.Alsa.NoMMap = 1
	c.config.PerformanceProfile = malgo.LowLatency
	c.config.PeriodSizeInFrames = uint32(cfg.FrameSize())
	c.config.Periods = 3

	c.audioContext = audioContext
	c.frames = make(chan []byte, frameQueueDepth)
	c.closed = make(chan struct{})
	c.pending = make([]byte, 0, frameBytes)

	c.device, err = malgo.InitDevice(c.audioContext.Context, c.config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}
			c.pending = append(c.pending, pInput[:n]...)
			for len(c.pending) >= frameBytes {
				frame := make([]byte, frameBytes)
				copy(frame, c.pending[:frameBytes])
				c.pending = c.pending[frameBytes:]
				select {
				case c.frames <- frame:
				default:
					c.overflowed.Store(true)
				}
			}
		},
	})
	if err != nil {
		c.releaseContextLocked()
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	if err := c.device.Start(); err != nil {
		c.device.Uninit()
		c.device = nil
		c.releaseContextLocked()
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	return nil
}

// ReadFrame blocks until a full frame has been captured. Dropped frames from
// a queue overrun surface once as [audio.ErrOverflow].
func (c *CaptureDevice) ReadFrame() ([]byte, error) {
	if c.overflowed.Swap(false) {
		return nil, audio.ErrOverflow
	}

	select {
	case frame := <-c.frames:
		return frame, nil
	case <-c.closed:
		return nil, errors.New("capture device closed")
	}
}

func (c *CaptureDevice) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return nil
	}

	if c.device.IsStarted() {
		if err := c.device.Stop(); err != nil {
			return fmt.Errorf("failed to stop capture device: %w", err)
		}
	}
	c.device.Uninit()
	c.device = nil
	close(c.closed)
	c.releaseContextLocked()
	return nil
}

func (c *CaptureDevice) releaseContextLocked() {
	if c.audioContext != nil {
		_ = c.audioContext.Uninit()
		c.audioContext.Free()
		c.audioContext = nil
	}
}
