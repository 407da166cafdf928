package audio

import (
	"errors"
	"time"
)

const (
	DefaultSampleRate    = 24000
	DefaultChannels      = 1
	DefaultChunkDuration = 100 * time.Millisecond
)

// ErrOverflow signals a transient input overrun. Capture loops drop the
// affected frame and continue.
var ErrOverflow = errors.New("audio: input overflow")

// Direction distinguishes the two halves of the duplex pipeline.
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// Config describes the fixed PCM format of one pipeline direction. It is
// immutable once handed to a component.
type Config struct {
	SampleRate    int
	Channels      int
	ChunkDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		SampleRate:    DefaultSampleRate,
		Channels:      DefaultChannels,
		ChunkDuration: DefaultChunkDuration,
	}
}

// FrameSize returns the number of samples in one frame.
func (c Config) FrameSize() int {
	return int(int64(c.SampleRate) * int64(c.ChunkDuration) / int64(time.Second))
}

// FrameBytes returns the number of bytes in one frame.
func (c Config) FrameBytes() int {
	return c.FrameSize() * c.Channels * c.EncodingInfo().Format.ByteSize()
}

// EncodingInfo describes the sample encoding of this direction. The pipeline
// is fixed to 16-bit linear PCM; device backends consult this to pick their
// native sample format.
func (c Config) EncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: c.SampleRate, Format: EncodingLinear16}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

type encodingFormat string

const EncodingLinear16 encodingFormat = "linear16"

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	if e == EncodingLinear16 {
		return 2
	}
	return -1
}

// InputDevice is a capture device owned by a single capture pipeline for its
// lifetime. ReadFrame blocks for at most roughly one frame duration.
type InputDevice interface {
	Open(cfg Config) error
	ReadFrame() ([]byte, error)
	Close() error
}

// OutputDevice is a playback device owned by a single playback pipeline for
// its lifetime. Write may block until the device has drained enough of its
// internal buffer to accept the frame.
type OutputDevice interface {
	Open(cfg Config) error
	Write(frame []byte) error
	Close() error
}

// BufferClearer is implemented by output devices that can drop audio already
// handed to them but not yet played.
type BufferClearer interface {
	ClearBuffer()
}
