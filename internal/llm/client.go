// Package llm talks to an OpenAI-compatible chat completions endpoint and
// serves as the bridge's decider.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Fortress-Command/internal/bridge"
)

// DefaultEndpoint is the stock chat completions URL.
const DefaultEndpoint = "https://api.deepseek.com/chat/completions"

// ErrEmptyReply is returned when the endpoint answers without any choices.
var ErrEmptyReply = errors.New("llm: reply has no choices")

// Options configures a Client.
type Options struct {
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
	// System is the rules prompt sent with every report.
	System string
	Logger zerolog.Logger
}

// Client posts situation reports and returns the model's JSON reply.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	system   string
	httpC    *http.Client
	log      zerolog.Logger
}

var _ bridge.Decider = (*Client)(nil)

// NewClient creates a client. Endpoint and model are required.
func NewClient(o Options) (*Client, error) {
	if o.Endpoint == "" {
		return nil, errors.New("llm: endpoint is required")
	}
	if o.Model == "" {
		return nil, errors.New("llm: model is required")
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(o.Endpoint, "/"),
		model:    o.Model,
		apiKey:   o.APIKey,
		system:   o.System,
		httpC:    &http.Client{Timeout: o.Timeout},
		log:      o.Logger.With().Str("component", "llm").Logger(),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Decide sends the report as the user message and returns the content of
// the first choice.
func (c *Client) Decide(ctx context.Context, s *bridge.Summary) (string, error) {
	report, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.system},
			{Role: "user", Content: string(report)},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpC.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode reply: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", ErrEmptyReply
	}
	c.log.Debug().
		Int("round", s.CurrentRoundIndex).
		Dur("took", time.Since(start)).
		Int("bytes", len(cr.Choices[0].Message.Content)).
		Msg("chat reply")
	return cr.Choices[0].Message.Content, nil
}
