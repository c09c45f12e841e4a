// Package llm wraps a provider adapter as a stateless generation
// client: one complete prompt in, one parsed JSON object out. The
// client guarantees syntactic JSON validity only; interpreting the
// content is the caller's job.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stratagem-ai/stratagem/pkg/adapter"
)

// Client sends prompts to a single adapter/model pair.
type Client struct {
	adapter adapter.Adapter
	model   string
}

// NewClient creates a generation client for the given adapter and model.
// An empty model falls back to the adapter's first supported model.
func NewClient(a adapter.Adapter, model string) (*Client, error) {
	if a == nil {
		return nil, fmt.Errorf("adapter is required")
	}
	if model == "" {
		models := a.Models()
		if len(models) == 0 {
			return nil, fmt.Errorf("adapter %s has no models", a.Name())
		}
		model = models[0]
	}
	return &Client{adapter: a, model: model}, nil
}

// Adapter returns the name of the underlying adapter.
func (c *Client) Adapter() string {
	return c.adapter.Name()
}

// Model returns the model the client sends prompts to.
func (c *Client) Model() string {
	return c.model
}

// Invoke sends one stateless prompt and returns the parsed JSON object.
// Each call must carry all needed context; the service keeps no
// conversational memory between calls.
func (c *Client) Invoke(ctx context.Context, prompt string) (map[string]any, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	raw, err := c.adapter.Generate(ctx, c.model, prompt)
	if err != nil {
		if adapter.IsTransport(err) {
			return nil, &TransportError{Err: err}
		}
		return nil, &ServiceError{Err: err}
	}

	text := stripFence(raw)

	var value map[string]any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, &MalformedResponseError{Raw: raw, Err: err}
	}

	return value, nil
}

// stripFence removes a surrounding markdown code fence. Models wrap
// JSON in ```json fences despite the output instructions.
func stripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
