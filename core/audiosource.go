package orchestration

import (
	"fmt"
	"sync"

	"github.com/voyceradio/voyce-core/core/audio"
	"github.com/voyceradio/voyce-core/core/realtime"
)

// audioSource owns the outbound audio track of a live session. The track
// transmitted is always exactly one of {real microphone, silence generator},
// and setActive is the only code path that swaps it.
type audioSource struct {
	mu sync.Mutex

	micFactory func() (realtime.AudioTrack, error)
	mic        realtime.AudioTrack
	silence    *audio.SilenceSource

	session realtime.Session
	muted   bool
}

func (a *audioSource) setMicrophone(track realtime.AudioTrack) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mic = track
}

func (a *audioSource) setMicrophoneFactory(factory func() (realtime.AudioTrack, error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.micFactory = factory
}

// attach binds the source to a fresh session and starts the microphone feed.
// A new session always starts unmuted.
func (a *audioSource) attach(session realtime.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.session = session
	a.muted = false
	return session.ReplaceTrack(a.micTrackLocked())
}

// setActive swaps the outbound track. The session itself is never touched,
// so the session identity survives every toggle.
func (a *audioSource) setActive(muted bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return fmt.Errorf("no live session to mute")
	}
	if a.muted == muted {
		return nil
	}

	var track realtime.AudioTrack
	if muted {
		track = a.silenceTrackLocked()
	} else {
		track = a.micTrackLocked()
	}
	if err := a.session.ReplaceTrack(track); err != nil {
		return fmt.Errorf("failed to swap outbound track: %w", err)
	}

	a.muted = muted
	return nil
}

// encoding reports the capture encoding the session should expect: the
// microphone's when one is configured, the default otherwise.
func (a *audioSource) encoding() audio.EncodingInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	if track := a.micTrackLocked(); track != nil {
		return track.EncodingInfo()
	}
	return audio.GetDefaultEncodingInfo()
}

func (a *audioSource) isMuted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}

// release detaches from the session, stops the silence generator and resets
// the muted flag. The microphone handle is deliberately left open.
func (a *audioSource) release() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.session = nil
	a.muted = false
	if a.silence != nil {
		a.silence.Close()
		a.silence = nil
	}
}

func (a *audioSource) micTrackLocked() realtime.AudioTrack {
	if a.mic == nil && a.micFactory != nil {
		track, err := a.micFactory()
		if err != nil {
			logger.Error("Failed to acquire microphone track", "error", err)
			return nil
		}
		a.mic = track
	}
	return a.mic
}

func (a *audioSource) silenceTrackLocked() realtime.AudioTrack {
	if a.silence == nil {
		encoding := audio.GetDefaultEncodingInfo()
		if a.mic != nil {
			encoding = a.mic.EncodingInfo()
		}
		a.silence = audio.NewSilenceSource(encoding)
	}
	return a.silence
}
