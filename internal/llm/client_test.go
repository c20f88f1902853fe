package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOpenAIClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.Temperature != 0.3 || req.MaxTokens != 1000 {
			t.Errorf("sampling settings not forwarded: temp=%v max=%d", req.Temperature, req.MaxTokens)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "generated section"}},
			},
		})
	}))
	defer server.Close()

	stats := NewStats(time.Hour)
	c := NewOpenAIClient("test-key", "test-model", server.URL, stats)
	out, err := c.Complete(context.Background(), Request{
		System:      "be an analyst",
		User:        "write the section",
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "generated section" {
		t.Errorf("output = %q", out)
	}
	if stats.Snapshot().Count != 1 {
		t.Errorf("expected one latency sample, got %d", stats.Snapshot().Count)
	}
}

func TestOpenAIClient_OmitsEmptySystemMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("expected a single user message, got %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "ok"}}},
		})
	}))
	defer server.Close()

	c := NewOpenAIClient("k", "m", server.URL, nil)
	if _, err := c.Complete(context.Background(), Request{User: "hi"}); err != nil {
		t.Fatalf("complete: %v", err)
	}
}

func TestOpenAIClient_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewOpenAIClient("k", "m", server.URL, nil)
	_, err := c.Complete(context.Background(), Request{User: "hi"})
	if err == nil {
		t.Fatal("expected error on 429")
	}
	if !strings.Contains(err.Error(), "status 429") {
		t.Errorf("error should carry the status: %v", err)
	}
}

func TestOpenAIClient_ErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "invalid_request_error", "message": "bad model"},
		})
	}))
	defer server.Close()

	c := NewOpenAIClient("k", "m", server.URL, nil)
	_, err := c.Complete(context.Background(), Request{User: "hi"})
	if err == nil || !strings.Contains(err.Error(), "bad model") {
		t.Errorf("expected error payload surfaced, got %v", err)
	}
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	c := NewOpenAIClient("k", "m", server.URL, nil)
	if _, err := c.Complete(context.Background(), Request{User: "hi"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestOpenAIClient_DefaultBaseURL(t *testing.T) {
	c := NewOpenAIClient("k", "gpt-4-turbo", "", nil)
	if c.baseURL != "https://api.openai.com/v1" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.Model() != "gpt-4-turbo" {
		t.Errorf("model = %q", c.Model())
	}
}
