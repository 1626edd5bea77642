// Package miniaudio provides the listener-side audio devices: a microphone
// track that feeds the live session and a speaker that plays the narration
// stream coming back from it.
package miniaudio

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"

	"github.com/voyceradio/voyce-core/core/audio"
)

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	microphoneClient
	speakerClient
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	client := Client{audioContext: audioCtx}

	if err := client.speakerClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}
	if err := client.speakerClient.Start(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start speaker: %w", err)
	}

	if err := client.microphoneClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize microphone: %w", err)
	}

	return &client, nil
}

// Stream starts microphone capture and forwards frames until Close. The
// device keeps running after the feed is swapped away; frames are simply not
// forwarded anymore.
func (c *Client) Stream(_ context.Context, onAudio func(audio []byte)) error {
	return c.microphoneClient.Start(onAudio)
}

func (c *Client) StopCapture() error {
	return c.microphoneClient.Stop()
}

// PlayNarration queues a narration audio frame for the speaker.
func (c *Client) PlayNarration(frame []byte) error {
	return c.speakerClient.Play(frame)
}

// ClearNarration drops any queued narration audio, for barge-in truncation.
func (c *Client) ClearNarration() {
	c.speakerClient.ClearBuffer()
}

func (c *Client) Close() {
	_ = c.microphoneClient.Uninit()
	_ = c.speakerClient.Uninit()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}
