// Package openai implements the realtime transport and credential source
// against the OpenAI Realtime API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"

	"github.com/voyceradio/voyce-core/core/conversations"
	"github.com/voyceradio/voyce-core/core/narration"
	"github.com/voyceradio/voyce-core/core/realtime"
)

const (
	defaultBaseURL     = "https://api.openai.com"
	defaultRealtimeURL = "wss://api.openai.com/v1/realtime"
	defaultModel       = "gpt-realtime"

	transcriptionModel = "gpt-4o-mini-transcribe"
)

type Client struct {
	apiKey      string
	model       string
	baseURL     string
	realtimeURL string

	httpClient *http.Client
	dialer     *websocket.Dialer
}

var (
	_ realtime.CredentialSource = (*Client)(nil)
	_ realtime.Transport        = (*Client)(nil)
)

type ClientOption func(*Client)

func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithRealtimeURL(realtimeURL string) ClientOption {
	return func(c *Client) { c.realtimeURL = realtimeURL }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		envKey, ok := os.LookupEnv("OPENAI_API_KEY")
		if !ok {
			return nil, fmt.Errorf("openai api key not found")
		}
		apiKey = envKey
	}

	client := &Client{
		apiKey:      apiKey,
		model:       defaultModel,
		baseURL:     defaultBaseURL,
		realtimeURL: defaultRealtimeURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   15 * time.Second,
		},
		dialer: websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type mintRequest struct {
	Session mintSession `json:"session"`
}

type mintSession struct {
	Type  string    `json:"type"`
	Model string    `json:"model"`
	Audio mintAudio `json:"audio"`
}

type mintAudio struct {
	Output mintAudioOutput `json:"output"`
}

type mintAudioOutput struct {
	Voice string  `json:"voice"`
	Speed float64 `json:"speed"`
}

type mintResponse struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at"`
}

// Mint requests a short-lived client secret for one session. Voice and speed
// are normalized before the request so the upstream never rejects them.
func (c *Client) Mint(ctx context.Context, voice string, speed float64) (*realtime.Credential, error) {
	ctx, span := tracer.Start(ctx, "openai.mint-credential")
	defer span.End()

	payload, err := json.Marshal(mintRequest{
		Session: mintSession{
			Type:  "realtime",
			Model: c.model,
			Audio: mintAudio{Output: mintAudioOutput{
				Voice: narration.SanitizeVoice(voice),
				Speed: conversations.ClampSpeed(speed),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credential request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/realtime/client_secrets", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build credential request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "credential mint failed")
		return nil, fmt.Errorf("failed to mint credential: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("failed to mint credential: status %d: %s", resp.StatusCode, body)
		span.RecordError(err)
		span.SetStatus(codes.Error, "credential mint failed")
		return nil, err
	}

	var minted mintResponse
	if err := json.NewDecoder(resp.Body).Decode(&minted); err != nil {
		return nil, fmt.Errorf("failed to decode credential response: %w", err)
	}
	if minted.Value == "" {
		return nil, fmt.Errorf("credential response had no value")
	}

	return &realtime.Credential{
		Value:     minted.Value,
		ExpiresAt: time.Unix(minted.ExpiresAt, 0),
	}, nil
}
