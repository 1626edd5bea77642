package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/codes"

	"github.com/voyceradio/voyce-core/core/audio"
	"github.com/voyceradio/voyce-core/core/conversations"
	"github.com/voyceradio/voyce-core/core/narration"
	"github.com/voyceradio/voyce-core/core/realtime"
)

// Connect dials the realtime websocket with a minted credential and
// negotiates the session parameters before returning.
func (c *Client) Connect(ctx context.Context, credential realtime.Credential, opts ...realtime.SessionOption) (realtime.Session, error) {
	ctx, span := tracer.Start(ctx, "openai.connect-session")
	defer span.End()

	config := realtime.SessionConfig{
		Voice:    narration.SanitizeVoice(""),
		Speed:    conversations.DefaultVoiceSpeed,
		Encoding: audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&config)
	}

	sessionURL, err := url.Parse(c.realtimeURL)
	if err != nil {
		return nil, fmt.Errorf("invalid realtime url: %w", err)
	}
	queryParams := sessionURL.Query()
	queryParams.Set("model", c.model)
	sessionURL.RawQuery = queryParams.Encode()

	conn, _, err := c.dialer.DialContext(ctx, sessionURL.String(),
		http.Header{"Authorization": {"Bearer " + credential.Value}})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "websocket dial failed")
		return nil, fmt.Errorf("failed to open realtime websocket: %w", err)
	}

	session := &Session{
		id:     uuid.NewString(),
		conn:   conn,
		config: config,
	}

	if err := session.sendSessionUpdate(config.Instructions, config.Voice, config.Speed); err != nil {
		conn.Close()
		return nil, err
	}

	go session.readAndProcessMessages()

	return session, nil
}

// Session is one live websocket session. All writes go through a single
// mutex so control messages keep their program order on the wire.
type Session struct {
	id     string
	config realtime.SessionConfig

	connMu sync.Mutex
	conn   *websocket.Conn

	trackMu     sync.Mutex
	trackCancel context.CancelFunc

	closeOnce sync.Once
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) sendSessionUpdate(instructions, voice string, speed float64) error {
	update := &sessionUpdate{
		Type:         "realtime",
		Instructions: instructions,
		Audio: &sessionAudio{
			Input: &sessionAudioInput{
				Format:        &audioFormat{Type: "audio/pcm", Rate: s.config.Encoding.SampleRate},
				Transcription: &transcription{Model: transcriptionModel},
				TurnDetection: &turnDetection{Type: "server_vad"},
			},
			Output: &sessionAudioOutput{Voice: voice, Speed: speed},
		},
	}
	return s.writeEvent(clientEvent{Type: "session.update", Session: update})
}

func (s *Session) UpdateInstructions(ctx context.Context, instructions string) error {
	_, span := tracer.Start(ctx, "openai.update-instructions")
	defer span.End()

	return s.writeEvent(clientEvent{Type: "session.update", Session: &sessionUpdate{
		Type:         "realtime",
		Instructions: instructions,
	}})
}

func (s *Session) InjectContext(ctx context.Context, text string) error {
	_, span := tracer.Start(ctx, "openai.inject-context")
	defer span.End()

	return s.writeEvent(clientEvent{Type: "conversation.item.create", Item: &wireItem{
		Type:    "message",
		Role:    "system",
		Content: []wireContent{{Type: "input_text", Text: text}},
	}})
}

func (s *Session) RequestNarration(ctx context.Context, prompt string) error {
	_, span := tracer.Start(ctx, "openai.request-narration")
	defer span.End()

	return s.writeEvent(clientEvent{Type: "response.create", Response: &wireResponse{
		Instructions: prompt,
	}})
}

func (s *Session) CancelNarration(ctx context.Context) error {
	_, span := tracer.Start(ctx, "openai.cancel-narration")
	defer span.End()

	return s.writeEvent(clientEvent{Type: "response.cancel"})
}

// ReplaceTrack stops forwarding frames from the previous track and starts
// forwarding the new one. The session itself stays untouched.
func (s *Session) ReplaceTrack(track realtime.AudioTrack) error {
	s.trackMu.Lock()
	defer s.trackMu.Unlock()

	if s.trackCancel != nil {
		s.trackCancel()
		s.trackCancel = nil
	}
	if track == nil {
		return nil
	}

	feedCtx, cancel := context.WithCancel(context.Background())
	s.trackCancel = cancel

	go func() {
		err := track.Stream(feedCtx, func(frame []byte) {
			if feedCtx.Err() != nil {
				return
			}
			if err := s.sendAudio(frame); err != nil {
				logger.Error("Failed to send audio frame", "error", err)
			}
		})
		if err != nil && feedCtx.Err() == nil {
			logger.Error("Audio track stream ended", "error", err)
		}
	}()

	return nil
}

func (s *Session) sendAudio(frame []byte) error {
	return s.writeEvent(clientEvent{
		Type:  "input_audio_buffer.append",
		Audio: base64.StdEncoding.EncodeToString(frame),
	})
}

func (s *Session) writeEvent(event clientEvent) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn == nil {
		return fmt.Errorf("session is closed")
	}
	if err := s.conn.WriteJSON(event); err != nil {
		return fmt.Errorf("failed to write %s event: %w", event.Type, err)
	}
	return nil
}

func (s *Session) readAndProcessMessages() {
	for {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()
		if conn == nil {
			return
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				logger.Error("Failed to read realtime websocket message", "error", err)
			}
			s.Close()
			return
		}

		event, err := parseServerEvent(msg)
		if err != nil {
			logger.Error("Failed to parse realtime server event", "error", err)
			continue
		}
		if event == nil {
			continue
		}
		if s.config.OnEvent != nil {
			s.config.OnEvent(event)
		}
	}
}

func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.trackMu.Lock()
		if s.trackCancel != nil {
			s.trackCancel()
			s.trackCancel = nil
		}
		s.trackMu.Unlock()

		s.connMu.Lock()
		conn := s.conn
		s.conn = nil
		s.connMu.Unlock()

		if conn != nil {
			closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
				logger.Debug("Failed to send websocket close message", "error", err)
			}
			conn.Close()
		}
	})
	return nil
}
