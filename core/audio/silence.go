package audio

import (
	"context"
	"sync"
	"time"
)

// silenceFrameDuration is the cadence of generated silence frames. It
// matches the capture side's frame pacing so the remote turn detector sees a
// steady stream either way.
const silenceFrameDuration = 20 * time.Millisecond

// SilenceSource generates true digital silence at capture cadence. Swapping
// it in for the microphone track keeps the remote turn detector fed with
// real frames (so it never triggers on ambient noise) without renegotiating
// the session.
type SilenceSource struct {
	encoding EncodingInfo

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

func NewSilenceSource(encoding EncodingInfo) *SilenceSource {
	if encoding.IsZero() {
		encoding = GetNarrationEncodingInfo()
	}
	return &SilenceSource{encoding: encoding}
}

func (s *SilenceSource) EncodingInfo() EncodingInfo { return s.encoding }

// Stream emits zeroed frames until the context is cancelled or the source is
// closed. It returns immediately; generation runs on its own goroutine.
func (s *SilenceSource) Stream(ctx context.Context, onAudio func(audio []byte)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	frameBytes := int(float64(s.encoding.BytesPerSecond()) * silenceFrameDuration.Seconds())
	silenceValue := s.encoding.SilenceValue()

	go func() {
		ticker := time.NewTicker(silenceFrameDuration)
		defer ticker.Stop()

		frame := make([]byte, frameBytes)
		for i := range frame {
			frame[i] = silenceValue
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				onAudio(frame)
			}
		}
	}()

	return nil
}

// Close stops generation permanently. It is safe to call twice.
func (s *SilenceSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
