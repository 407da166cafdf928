package miniaudio

import (
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/remylabs/remy-core/core/audio"
)

// malgoFormat maps a pipeline sample encoding onto the native miniaudio
// sample format.
func malgoFormat(enc audio.EncodingInfo) (malgo.FormatType, error) {
	if enc.IsZero() {
		return malgo.FormatUnknown, fmt.Errorf("incomplete encoding %q at %d Hz", enc.Format.Name(), enc.SampleRate)
	}
	switch enc.Format {
	case audio.EncodingLinear16:
		return malgo.FormatS16, nil
	}
	return malgo.FormatUnknown, fmt.Errorf("unsupported encoding %q", enc.Format.Name())
}
