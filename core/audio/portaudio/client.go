// Package portaudio provides PortAudio-backed input and output devices as an
// alternative to the miniaudio backend on platforms where PortAudio is the
// better-supported option.
package portaudio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/remylabs/remy-core/core/audio"
)

// portaudio.Initialize/Terminate are process-wide and reference counted
// here so capture and playback devices can be opened independently.
var (
	initMu   sync.Mutex
	initRefs int
)

func acquirePortAudio() error {
	initMu.Lock()
	defer initMu.Unlock()

	if initRefs == 0 {
		if err := portaudio.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize PortAudio: %w", err)
		}
	}
	initRefs++
	return nil
}

func releasePortAudio() {
	initMu.Lock()
	defer initMu.Unlock()

	if initRefs == 0 {
		return
	}
	initRefs--
	if initRefs == 0 {
		_ = portaudio.Terminate()
	}
}

// CaptureDevice is an [audio.InputDevice] reading from the default PortAudio
// input stream one frame at a time.
type CaptureDevice struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	in     []int16
}

func NewCaptureDevice() *CaptureDevice {
	return &CaptureDevice{}
}

func (c *CaptureDevice) Open(cfg audio.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream != nil {
		return fmt.Errorf("capture device already open")
	}

	if enc := cfg.EncodingInfo(); enc.IsZero() || enc.Format != audio.EncodingLinear16 {
		return fmt.Errorf("unsupported capture encoding %q", enc.Format.Name())
	}

	if err := acquirePortAudio(); err != nil {
		return err
	}

	c.in = make([]int16, cfg.FrameSize()*cfg.Channels)
	stream, err := portaudio.OpenDefaultStream(cfg.Channels, 0, float64(cfg.SampleRate), cfg.FrameSize(), c.in)
	if err != nil {
		releasePortAudio()
		return fmt.Errorf("failed to open PortAudio capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		releasePortAudio()
		return fmt.Errorf("failed to start PortAudio capture stream: %w", err)
	}

	c.stream = stream
	return nil
}

func (c *CaptureDevice) ReadFrame() ([]byte, error) {
	c.mu.Lock()
	stream := c.stream
	c.mu.Unlock()
	if stream == nil {
		return nil, errors.New("capture device closed")
	}

	if err := stream.Read(); err != nil {
		if errors.Is(err, portaudio.InputOverflowed) {
			return nil, audio.ErrOverflow
		}
		return nil, fmt.Errorf("failed to read from PortAudio stream: %w", err)
	}

	audioBuffer := bytes.Buffer{}
	if err := binary.Write(&audioBuffer, binary.LittleEndian, c.in); err != nil {
		return nil, err
	}
	return audioBuffer.Bytes(), nil
}

func (c *CaptureDevice) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream == nil {
		return nil
	}
	err := c.stream.Close()
	c.stream = nil
	releasePortAudio()
	return err
}

// PlaybackDevice is an [audio.OutputDevice] writing to the default PortAudio
// output stream, chunking arbitrary frame sizes into the stream's buffer.
type PlaybackDevice struct {
	mu            sync.Mutex
	stream        *portaudio.Stream
	out           []int16
	leftoverAudio []byte
	bufferBytes   int
}

func NewPlaybackDevice() *PlaybackDevice {
	return &PlaybackDevice{}
}

func (c *PlaybackDevice) Open(cfg audio.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream != nil {
		return fmt.Errorf("playback device already open")
	}

	enc := cfg.EncodingInfo()
	if enc.IsZero() || enc.Format != audio.EncodingLinear16 {
		return fmt.Errorf("unsupported playback encoding %q", enc.Format.Name())
	}

	if err := acquirePortAudio(); err != nil {
		return err
	}

	c.out = make([]int16, cfg.FrameSize()*cfg.Channels)
	c.bufferBytes = len(c.out) * enc.Format.ByteSize()
	stream, err := portaudio.OpenDefaultStream(0, cfg.Channels, float64(cfg.SampleRate), cfg.FrameSize(), c.out)
	if err != nil {
		releasePortAudio()
		return fmt.Errorf("failed to open PortAudio playback stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		releasePortAudio()
		return fmt.Errorf("failed to start PortAudio playback stream: %w", err)
	}

	c.stream = stream
	return nil
}

func (c *PlaybackDevice) Write(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream == nil {
		return errors.New("playback device closed")
	}

	buffered := append(c.leftoverAudio, frame...)
	offset := 0
	for offset+c.bufferBytes <= len(buffered) {
		if err := binary.Read(bytes.NewReader(buffered[offset:offset+c.bufferBytes]), binary.LittleEndian, c.out); err != nil {
			return err
		}
		if err := c.stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
			return fmt.Errorf("failed to write to PortAudio stream: %w", err)
		}
		offset += c.bufferBytes
	}

	c.leftoverAudio = make([]byte, len(buffered)-offset)
	copy(c.leftoverAudio, buffered[offset:])
	return nil
}

// ClearBuffer drops any partial frame awaiting the next Write.
func (c *PlaybackDevice) ClearBuffer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leftoverAudio = nil
}

func (c *PlaybackDevice) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stream == nil {
		return nil
	}
	err := c.stream.Close()
	c.stream = nil
	c.leftoverAudio = nil
	releasePortAudio()
	return err
}
