package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stratagem-ai/stratagem/pkg/adapter"
)

func newTestClient(t *testing.T, mock *adapter.MockAdapter) *Client {
	t.Helper()
	client, err := NewClient(mock, "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestInvokeRejectsEmptyPrompt(t *testing.T) {
	client := newTestClient(t, adapter.NewMockAdapter())

	if _, err := client.Invoke(context.Background(), "   "); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
}

func TestInvokeParsesJSON(t *testing.T) {
	mock := adapter.NewMockAdapter().Enqueue(`{"key_points": ["a"]}`)
	client := newTestClient(t, mock)

	value, err := client.Invoke(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	points, ok := value["key_points"].([]any)
	if !ok || len(points) != 1 || points[0] != "a" {
		t.Fatalf("unexpected value: %v", value)
	}
}

func TestInvokeStripsCodeFence(t *testing.T) {
	mock := adapter.NewMockAdapter().Enqueue("```json\n{\"ok\": \"yes\"}\n```")
	client := newTestClient(t, mock)

	value, err := client.Invoke(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if value["ok"] != "yes" {
		t.Fatalf("unexpected value: %v", value)
	}
}

func TestInvokeMalformedResponse(t *testing.T) {
	mock := adapter.NewMockAdapter().Enqueue("sorry, here is your analysis: ...")
	client := newTestClient(t, mock)

	_, err := client.Invoke(context.Background(), "prompt")
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedResponseError, got %v", err)
	}
	if malformed.Raw == "" {
		t.Fatal("expected raw response to be preserved")
	}
}

func TestInvokeTransportError(t *testing.T) {
	mock := adapter.NewMockAdapter().EnqueueError(&adapter.AdapterError{Temporary: true, Err: fmt.Errorf("connection refused")})
	client := newTestClient(t, mock)

	_, err := client.Invoke(context.Background(), "prompt")
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
}

func TestInvokeServiceError(t *testing.T) {
	mock := adapter.NewMockAdapter().EnqueueError(&adapter.AdapterError{Status: 400, Err: fmt.Errorf("bad request")})
	client := newTestClient(t, mock)

	_, err := client.Invoke(context.Background(), "prompt")
	var service *ServiceError
	if !errors.As(err, &service) {
		t.Fatalf("expected *ServiceError, got %v", err)
	}
}
