package events

// KindUserTranscriptInterim identifies interim transcription snapshots.
const KindUserTranscriptInterim Kind = "user_input.transcript_interim"

// UserTranscriptInterim is a mutable point-in-time transcription of the
// user's ongoing utterance.
type UserTranscriptInterim struct {
	Base
	Transcript string
}

func NewUserTranscriptInterim(transcript string) UserTranscriptInterim {
	return UserTranscriptInterim{Base: NewBase(KindUserTranscriptInterim), Transcript: transcript}
}

// KindUserTranscriptFinal identifies terminal transcripts.
const KindUserTranscriptFinal Kind = "user_input.transcript_final"

// UserTranscriptFinal is the terminal transcript for the utterance.
type UserTranscriptFinal struct {
	Base
	Transcript string
}

func NewUserTranscriptFinal(transcript string) UserTranscriptFinal {
	return UserTranscriptFinal{Base: NewBase(KindUserTranscriptFinal), Transcript: transcript}
}

// KindAssistantTextSegment identifies assistant speech text segments.
const KindAssistantTextSegment Kind = "assistant.text_segment"

// AssistantTextSegment is a sentence-level piece of the assistant's response
// text, emitted as synthesis reaches it.
type AssistantTextSegment struct {
	Base
	Segment string
}

func NewAssistantTextSegment(segment string) AssistantTextSegment {
	return AssistantTextSegment{Base: NewBase(KindAssistantTextSegment), Segment: segment}
}
