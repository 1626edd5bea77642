// Package openai is the chat-completions client behind the text fallback.
// Replies are forced through a JSON schema so the narration plan stays
// machine-checkable.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/jinzhu/copier"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/voyceradio/voyce-core/core/chat"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4o-mini"
)

type Client struct {
	apiKey string

	defaults   PromptOptions
	httpClient *http.Client
}

// PromptOptions are per-call parameters; the client's defaults are cloned
// into every call so one request can never mutate another's settings.
type PromptOptions struct {
	Model       string
	BaseURL     string
	Temperature float64
}

var _ chat.LLM = (*Client)(nil)

type ClientOption func(*Client)

func WithModel(model string) ClientOption {
	return func(c *Client) { c.defaults.Model = model }
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.defaults.BaseURL = baseURL }
}

func WithTemperature(temperature float64) ClientOption {
	return func(c *Client) { c.defaults.Temperature = temperature }
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
		apiKey: apiKey,
		defaults: PromptOptions{
			Model:       defaultModel,
			BaseURL:     defaultBaseURL,
			Temperature: 0.7,
		},
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type requestBody struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type jsonSchemaFormat struct {
	Name   string            `json:"name"`
	Schema jsonschema.Schema `json:"schema"`
	Strict bool              `json:"strict"`
}

type responseBody struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) PromptStructured(ctx context.Context, systemPrompt, prompt string) (*chat.Reply, error) {
	ctx, span := tracer.Start(ctx, "prompt llm structured")
	defer span.End()

	var options PromptOptions
	if err := copier.Copy(&options, &c.defaults); err != nil {
		return nil, fmt.Errorf("failed to clone prompt options: %w", err)
	}

	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(chat.Reply{})

	messages := []message{}
	if systemPrompt != "" {
		messages = append(messages, message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, message{Role: "user", Content: prompt})

	payload, err := json.Marshal(requestBody{
		Model:       options.Model,
		Messages:    messages,
		Temperature: options.Temperature,
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaFormat{
				Name:   "Reply",
				Schema: *schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		err = fmt.Errorf("error marshalling JSON: %w", err)
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("request.model", options.Model))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		options.BaseURL+"/v1/chat/completions", bytes.NewBuffer(payload))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		return nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		span.SetAttributes(attribute.String("response.error", string(errorBody)))
		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		return nil, err
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("error reading response body: %w", err)
		span.RecordError(err)
		return nil, err
	}

	var parsed responseBody
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		err = fmt.Errorf("error unmarshalling response: %w", err)
		span.RecordError(err)
		return nil, err
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("response had no choices")
	}

	content := parsed.Choices[0].Message.Content
	if split := strings.Split(content, "```"); len(split) > 1 {
		content = split[1]
	}

	var reply chat.Reply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		err = fmt.Errorf("error unmarshalling reply: %w", err)
		span.RecordError(err)
		return nil, err
	}
	return &reply, nil
}
