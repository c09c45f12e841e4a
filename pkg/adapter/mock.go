package adapter

import (
	"context"
	"fmt"
	"sync"
)

// MockAdapter returns deterministic responses for local runs and tests.
// Responses can be scripted in call order, which lets tests simulate a
// failure at a specific point in a multi-call sequence.
type MockAdapter struct {
	mu              sync.Mutex
	script          []scriptEntry
	defaultResponse string
	prompts         []string
}

type scriptEntry struct {
	response string
	err      error
}

// NewMockAdapter creates a mock adapter with a default response.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{defaultResponse: "{}"}
}

// Enqueue appends a scripted response consumed by the next Generate call.
func (a *MockAdapter) Enqueue(response string) *MockAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.script = append(a.script, scriptEntry{response: response})
	return a
}

// EnqueueError appends a scripted failure consumed by the next Generate call.
func (a *MockAdapter) EnqueueError(err error) *MockAdapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.script = append(a.script, scriptEntry{err: err})
	return a
}

// Prompts returns the prompts received so far, in call order.
func (a *MockAdapter) Prompts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.prompts))
	copy(out, a.prompts)
	return out
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Generate returns the next scripted response, or the default response
// when the script is exhausted.
func (a *MockAdapter) Generate(_ context.Context, model string, prompt string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.prompts = append(a.prompts, prompt)

	if len(a.script) > 0 {
		entry := a.script[0]
		a.script = a.script[1:]
		if entry.err != nil {
			return "", fmt.Errorf("mock adapter: %w", entry.err)
		}
		return entry.response, nil
	}

	return a.defaultResponse, nil
}
