// Package events defines the typed event contract between the session
// orchestrator and the presentation layer.
//
// Event kinds are grouped by namespace:
//
//   - session.*: connection lifecycle and conversation state.
//   - user_input.*: transcription of the user's speech.
//   - assistant.*: the assistant's text as it is spoken.
//   - emotion.*: detected emotion, from either side of the conversation.
//   - turn_state.*: assistant turn lifecycle.
//   - audio.*: loudness levels for visualization.
//   - debug.*: diagnostic messages.
//
// session events
//
//   - SessionReady (session.ready): connection established and configured.
//   - SessionStateChanged (session.state_changed): conversation state moved
//     between idle, listening, thinking and speaking.
//   - SessionError (session.error): a surfaced error; the session is left in
//     the nearest well-defined state.
//
// user_input events
//
//   - UserTranscriptInterim (user_input.transcript_interim): mutable interim
//     transcription snapshot.
//   - UserTranscriptFinal (user_input.transcript_final): terminal transcript
//     for the utterance.
//
// assistant events
//
//   - AssistantTextSegment (assistant.text_segment): sentence-level text of
//     the assistant's speech as synthesis reaches it.
//
// emotion events
//
//   - EmotionDetected (emotion.detected): an emotion classified from a
//     transcript or supplied by the remote recognizer.
//
// turn_state events
//
//   - TurnStarted (turn_state.started): a new assistant turn began.
//   - TurnCompleted (turn_state.completed): the turn finished normally.
//   - TurnFailed (turn_state.failed): the remote service reported failure.
//   - TurnCancelled (turn_state.cancelled): the turn was interrupted.
//
// audio events
//
//   - AudioLevelUpdated (audio.level_updated): smoothed loudness for one
//     direction, normalized to [0, 1].
//
// debug events
//
//   - DebugMessage (debug.message): diagnostic text, never an error.
package events
