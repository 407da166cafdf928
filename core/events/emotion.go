package events

import "github.com/remylabs/remy-core/core/emotions"

// KindEmotionDetected identifies detected emotions.
const KindEmotionDetected Kind = "emotion.detected"

// EmotionDetected carries an emotion classified from a transcript or
// supplied by the remote recognizer.
type EmotionDetected struct {
	Base
	Emotion emotions.Emotion
}

func NewEmotionDetected(emotion emotions.Emotion) EmotionDetected {
	return EmotionDetected{Base: NewBase(KindEmotionDetected), Emotion: emotion}
}
