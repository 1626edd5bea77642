// Package events defines the typed control-channel event contract between
// the session transport and the orchestrator.
//
// Event kinds are grouped by namespace:
//
//   - session.*: session lifecycle on the control channel.
//   - user_input.*: the user's transcribed speech.
//   - narration.*: the narrator's request/response lifecycle.
//
// session events
//
//   - SessionConfigured (session.configured): the transport acknowledged the
//     session parameters (turn detection, transcription, instructions, voice).
//   - SessionError (session.error): the transport reported a failure; fatal
//     to the current connection attempt, never retried inside the engine.
//
// user_input events
//
//   - UserTranscriptFinal (user_input.transcript_final): one complete
//     transcribed utterance, the unit intent resolution runs on.
//
// narration events
//
//   - NarrationRequested (narration.requested): the engine issued a
//     narration request; the speaking flag is set.
//   - NarrationAudioFrame (narration.audio_frame): one synthesized audio
//     frame of the narration in progress.
//   - NarrationCompleted (narration.completed): the in-flight narration
//     finished (or was cancelled remotely); the speaking flag clears.
package events
