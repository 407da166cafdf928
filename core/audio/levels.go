package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// levelReference is the RMS value mapped to full deflection, half of the
// maximum 16-bit magnitude.
const levelReference = 16384.0

// LevelMonitor tracks a smoothed loudness level for one pipeline direction.
// Update and Level are safe to call from different goroutines.
type LevelMonitor struct {
	mu        sync.Mutex
	smoothing float64
	level     float64
}

// NewLevelMonitor creates a monitor with the given smoothing factor in
// [0, 1). A factor of 0 disables smoothing entirely.
func NewLevelMonitor(smoothing float64) *LevelMonitor {
	return &LevelMonitor{smoothing: smoothing}
}

// Update folds a frame of 16-bit little-endian PCM into the smoothed level
// and returns the new value, normalized to [0, 1].
func (m *LevelMonitor) Update(frame []byte) float64 {
	raw := rawLevel(frame)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = m.smoothing*m.level + (1-m.smoothing)*raw
	return m.level
}

// Level returns the current smoothed level.
func (m *LevelMonitor) Level() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// Reset zeroes the smoothed level.
func (m *LevelMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = 0
}

func rawLevel(frame []byte) float64 {
	sampleCount := len(frame) / 2
	if sampleCount == 0 {
		return 0
	}

	var sumSquares float64
	for i := range sampleCount {
		sample := int16(binary.LittleEndian.Uint16(frame[i*2:]))
		sumSquares += float64(sample) * float64(sample)
	}

	rms := math.Sqrt(sumSquares / float64(sampleCount))
	return math.Min(1.0, rms/levelReference)
}
