package audio

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingOutputDevice struct {
	mu      sync.Mutex
	writes  [][]byte
	cleared int

	// gate, when non-nil, blocks every Write until released once per call.
	gate chan struct{}
	// wrote signals each completed Write.
	wrote chan struct{}

	writeErr error
}

func newRecordingOutputDevice() *recordingOutputDevice {
	return &recordingOutputDevice{wrote: make(chan struct{}, 64)}
}

func (d *recordingOutputDevice) Open(Config) error { return nil }

func (d *recordingOutputDevice) Write(frame []byte) error {
	if d.gate != nil {
		<-d.gate
	}
	if d.writeErr != nil {
		return d.writeErr
	}

	d.mu.Lock()
	d.writes = append(d.writes, bytes.Clone(frame))
	d.mu.Unlock()

	d.wrote <- struct{}{}
	return nil
}

func (d *recordingOutputDevice) Close() error { return nil }

func (d *recordingOutputDevice) ClearBuffer() {
	d.mu.Lock()
	d.cleared++
	d.mu.Unlock()
}

func (d *recordingOutputDevice) written() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]byte(nil), d.writes...)
}

func TestPlaybackWritesFramesInOrder(t *testing.T) {
	device := newRecordingOutputDevice()
	p := NewPlaybackPipeline(DefaultConfig())

	if err := p.Start(device); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Stop()

	p.Enqueue([]byte{1})
	p.Enqueue([]byte{2})
	p.Enqueue([]byte{3})

	for range 3 {
		select {
		case <-device.wrote:
		case <-time.After(2 * time.Second):
			t.Fatalf("expected 3 frames written, got %d", len(device.written()))
		}
	}

	writes := device.written()
	for i, want := range []byte{1, 2, 3} {
		if writes[i][0] != want {
			t.Fatalf("expected frame %d at position %d, got %d", want, i, writes[i][0])
		}
	}
}

func TestPlaybackFlushDiscardsQueuedFrames(t *testing.T) {
	device := newRecordingOutputDevice()
	device.gate = make(chan struct{})
	p := NewPlaybackPipeline(DefaultConfig())

	if err := p.Start(device); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		p.Stop()
		close(device.gate)
	}()

	p.Enqueue([]byte{1})
	p.Enqueue([]byte{2})
	p.Enqueue([]byte{3})

	// The drain loop is blocked inside the first write; everything behind
	// it must vanish.
	time.Sleep(50 * time.Millisecond)
	p.Flush()
	device.gate <- struct{}{}

	select {
	case <-device.wrote:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected the in-flight frame to finish writing")
	}

	select {
	case <-device.wrote:
		t.Fatalf("expected no frames written after flush, got %v", device.written())
	case <-time.After(200 * time.Millisecond):
	}

	device.mu.Lock()
	cleared := device.cleared
	device.mu.Unlock()
	if cleared == 0 {
		t.Fatalf("expected device buffer cleared on flush")
	}
}

func TestPlaybackDropsFramesWhileInactive(t *testing.T) {
	device := newRecordingOutputDevice()
	p := NewPlaybackPipeline(DefaultConfig())

	p.Enqueue([]byte{1})

	if err := p.Start(device); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Stop()

	select {
	case <-device.wrote:
		t.Fatalf("expected frame enqueued before start to be dropped")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestPlaybackDropsOldestWhenQueueFull(t *testing.T) {
	device := newRecordingOutputDevice()
	device.gate = make(chan struct{})
	p := NewPlaybackPipeline(DefaultConfig(), WithQueueCapacity(2))

	if err := p.Start(device); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		p.Stop()
		close(device.gate)
	}()

	// Block the drain loop on the first frame, then overfill the queue.
	p.Enqueue([]byte{1})
	time.Sleep(50 * time.Millisecond)
	p.Enqueue([]byte{2})
	p.Enqueue([]byte{3})
	p.Enqueue([]byte{4})

	for range 3 {
		device.gate <- struct{}{}
		select {
		case <-device.wrote:
		case <-time.After(2 * time.Second):
			t.Fatalf("expected write to complete")
		}
	}

	writes := device.written()
	if len(writes) != 3 {
		t.Fatalf("expected 3 frames written, got %d", len(writes))
	}
	if writes[1][0] != 3 || writes[2][0] != 4 {
		t.Fatalf("expected oldest queued frame dropped, got %v", writes)
	}
}

func TestPlaybackStopIsIdempotent(t *testing.T) {
	device := newRecordingOutputDevice()
	p := NewPlaybackPipeline(DefaultConfig())

	if err := p.Start(device); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.Stop()
	p.Stop()

	if p.IsActive() {
		t.Fatalf("expected pipeline inactive after stop")
	}
}

func TestPlaybackRestartUnaffectedByStaleWriteError(t *testing.T) {
	oldDevice := newRecordingOutputDevice()
	oldDevice.gate = make(chan struct{})
	oldDevice.writeErr = errors.New("boom")

	errs := make(chan error, 1)
	p := NewPlaybackPipeline(DefaultConfig(), WithPlaybackErrorCallback(func(err error) { errs <- err }))

	if err := p.Start(oldDevice); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Park the old drain loop inside a write, then restart around it.
	p.Enqueue([]byte{1})
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	newDevice := newRecordingOutputDevice()
	if err := p.Start(newDevice); err != nil {
		t.Fatalf("unexpected error on restart: %v", err)
	}
	defer p.Stop()

	p.Enqueue([]byte{2})

	// Release the old write; its failure belongs to the stopped session and
	// must not tear the new one down.
	close(oldDevice.gate)

	select {
	case <-newDevice.wrote:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected the restarted session to write its frame")
	}
	if got := newDevice.written(); got[0][0] != 2 {
		t.Fatalf("expected frame 2 on the new device, got %v", got)
	}

	select {
	case err := <-errs:
		t.Fatalf("expected no error from the stopped session, got %v", err)
	case <-time.After(100 * time.Millisecond):
	}
	if !p.IsActive() {
		t.Fatalf("expected restarted pipeline to stay active")
	}
}

func TestPlaybackStopsOnWriteError(t *testing.T) {
	device := newRecordingOutputDevice()
	device.writeErr = errors.New("boom")

	errs := make(chan error, 1)
	p := NewPlaybackPipeline(DefaultConfig(), WithPlaybackErrorCallback(func(err error) { errs <- err }))

	if err := p.Start(device); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.Enqueue([]byte{1})

	select {
	case err := <-errs:
		if err == nil {
			t.Fatalf("expected write error, got nil")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected error callback, got none")
	}

	if p.IsActive() {
		t.Fatalf("expected pipeline inactive after write error")
	}
}
