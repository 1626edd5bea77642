package openai

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/voyceradio/voyce-core/core/events"
)

type clientEvent struct {
	Type     string         `json:"type"`
	Session  *sessionUpdate `json:"session,omitempty"`
	Item     *wireItem      `json:"item,omitempty"`
	Response *wireResponse  `json:"response,omitempty"`
	Audio    string         `json:"audio,omitempty"`
}

type sessionUpdate struct {
	Type         string         `json:"type,omitempty"`
	Instructions string         `json:"instructions,omitempty"`
	Audio        *sessionAudio  `json:"audio,omitempty"`
}

type sessionAudio struct {
	Input  *sessionAudioInput  `json:"input,omitempty"`
	Output *sessionAudioOutput `json:"output,omitempty"`
}

type sessionAudioInput struct {
	Format        *audioFormat   `json:"format,omitempty"`
	Transcription *transcription `json:"transcription,omitempty"`
	TurnDetection *turnDetection `json:"turn_detection,omitempty"`
}

type sessionAudioOutput struct {
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

type audioFormat struct {
	Type string `json:"type"`
	Rate int    `json:"rate,omitempty"`
}

type transcription struct {
	Model string `json:"model"`
}

type turnDetection struct {
	Type string `json:"type"`
}

type wireItem struct {
	Type    string        `json:"type"`
	Role    string        `json:"role,omitempty"`
	Content []wireContent `json:"content,omitempty"`
}

type wireContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type wireResponse struct {
	Instructions string `json:"instructions,omitempty"`
}

type serverEvent struct {
	Type       string         `json:"type"`
	Session    *serverSession `json:"session,omitempty"`
	Transcript string         `json:"transcript,omitempty"`
	Delta      string         `json:"delta,omitempty"`
	Error      *serverError   `json:"error,omitempty"`
}

type serverSession struct {
	ID string `json:"id"`
}

type serverError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// parseServerEvent maps an inbound wire message onto the event contract.
// Messages that carry no orchestration-relevant signal map to nil.
func parseServerEvent(msg []byte) (events.Event, error) {
	var parsed serverEvent
	if err := json.Unmarshal(msg, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal server event: %w", err)
	}

	switch parsed.Type {
	case "session.created", "session.updated":
		sessionID := ""
		if parsed.Session != nil {
			sessionID = parsed.Session.ID
		}
		return events.NewSessionConfigured(sessionID), nil

	case "conversation.item.input_audio_transcription.completed":
		return events.NewUserTranscriptFinal(parsed.Transcript), nil

	case "response.output_audio.delta", "response.audio.delta":
		frame, err := base64.StdEncoding.DecodeString(parsed.Delta)
		if err != nil {
			return nil, fmt.Errorf("failed to decode audio delta: %w", err)
		}
		return events.NewNarrationAudioFrame(frame), nil

	case "response.output_audio_transcript.done", "response.audio_transcript.done":
		return events.NewNarrationCompleted(parsed.Transcript), nil

	case "error":
		code, message := "", ""
		if parsed.Error != nil {
			code, message = parsed.Error.Code, parsed.Error.Message
		}
		return events.NewSessionError(code, message), nil
	}

	return nil, nil
}
