package events

import "github.com/remylabs/remy-core/core/audio"

// KindAudioLevelUpdated identifies loudness updates.
const KindAudioLevelUpdated Kind = "audio.level_updated"

// AudioLevelUpdated carries the smoothed loudness for one direction,
// normalized to [0, 1].
type AudioLevelUpdated struct {
	Base
	Direction audio.Direction
	Level     float64
}

func NewAudioLevelUpdated(direction audio.Direction, level float64) AudioLevelUpdated {
	return AudioLevelUpdated{Base: NewBase(KindAudioLevelUpdated), Direction: direction, Level: level}
}
