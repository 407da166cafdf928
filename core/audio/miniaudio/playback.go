package miniaudio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/remylabs/remy-core/core/audio"
)

// PlaybackDevice is an [audio.OutputDevice] backed by a miniaudio playback
// device. The malgo data callback pulls from an internal buffer; Write blocks
// while more than a couple of frames are still buffered so that interruption
// does not leave long stretches of stale audio inside the device.
type PlaybackDevice struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	mu            sync.Mutex
	drained       *sync.Cond
	leftoverAudio []byte
	highWater     int
	closed        bool
}

func NewPlaybackDevice() *PlaybackDevice {
	d := &PlaybackDevice{}
	d.drained = sync.NewCond(&d.mu)
	return d
}

func (c *PlaybackDevice) Open(cfg audio.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		return fmt.Errorf("playback device already open")
	}

	enc := cfg.EncodingInfo()
	format, err := malgoFormat(enc)
	if err != nil {
		return fmt.Errorf("failed to open playback device: %w", err)
	}
	bytesPerFrame := enc.Format.ByteSize() * cfg.Channels

	audioContext, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return fmt.Errorf("failed to initialize miniaudio context: %w", err)
	}

	c.config = malgo.DefaultDeviceConfig(malgo.Playback)
	c.config.SampleRate = uint32(cfg.SampleRate)
	c.config.Playback.Format = format
	c.config.Playback.Channels = uint32(cfg.Channels)
	c.config.Alsa.NoMMap = 1
	c.config.PeriodSizeInFrames = uint32(cfg.FrameSize())
	c.config.Periods = 4

	c.audioContext = audioContext
	c.highWater = 2 * cfg.FrameBytes()
	c.closed = false

	if c.device, err = malgo.InitDevice(
		c.audioContext.Context,
		c.config,
		malgo.DeviceCallbacks{Data: c.processAudio(bytesPerFrame)},
	); err != nil {
		c.releaseContextLocked()
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := c.device.Start(); err != nil {
		c.device.Uninit()
		c.device = nil
		c.releaseContextLocked()
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	return nil
}

// Write hands a frame to the device, blocking while the internal buffer is
// above the high-water mark.
func (c *PlaybackDevice) Write(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil || c.closed {
		return errors.New("playback device closed")
	}

	for len(c.leftoverAudio) > c.highWater {
		c.drained.Wait()
		if c.closed {
			return errors.New("playback device closed")
		}
	}

	c.leftoverAudio = append(c.leftoverAudio, frame...)
	return nil
}

// ClearBuffer drops audio handed to the device but not yet played.
func (c *PlaybackDevice) ClearBuffer() {
	c.mu.Lock()
	c.leftoverAudio = nil
	c.mu.Unlock()
	c.drained.Broadcast()
}

func (c *PlaybackDevice) Close() error {
	c.mu.Lock()
	if c.device == nil {
		c.mu.Unlock()
		return nil
	}

	c.closed = true
	c.leftoverAudio = nil
	device := c.device
	c.device = nil
	c.mu.Unlock()
	c.drained.Broadcast()

	if device.IsStarted() {
		if err := device.Stop(); err != nil {
			return fmt.Errorf("failed to stop playback device: %w", err)
		}
	}
	device.Uninit()

	c.mu.Lock()
	c.releaseContextLocked()
	c.mu.Unlock()
	return nil
}

func (c *PlaybackDevice) releaseContextLocked() {
	if c.audioContext != nil {
		_ = c.audioContext.Uninit()
		c.audioContext.Free()
		c.audioContext = nil
	}
}

func (c *PlaybackDevice) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame

		c.mu.Lock()
		if len(c.leftoverAudio) == 0 {
			c.mu.Unlock()
			return
		}

		if len(c.leftoverAudio) < need {
			copy(pOutput, c.leftoverAudio)
			c.leftoverAudio = nil
		} else {
			copy(pOutput, c.leftoverAudio[:need])
			c.leftoverAudio = c.leftoverAudio[need:]
		}
		c.mu.Unlock()
		c.drained.Broadcast()
	}
}
