package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChatClientNotConfigured(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		apiKey  string
	}{
		{"no url", "", "sk-test"},
		{"no key", "http://localhost", ""},
	}
	for _, tt := range tests {
		c := NewChatClient(tt.baseURL, tt.apiKey, "")
		if _, err := c.GenerateContent(context.Background(), Prompt{User: "hi"}); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("%s: err = %v, want ErrNotConfigured", tt.name, err)
		}
	}
}

func TestChatClientRequest(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"[\"Omelette\"]"}}]}`))
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL+"/v1/", "sk-test", "test-model")
	out, err := c.GenerateContent(context.Background(), Prompt{System: "be brief", User: "eggs", JSON: true, Temperature: 0.7})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != `["Omelette"]` {
		t.Errorf("content = %q", out)
	}

	if got.Model != "test-model" {
		t.Errorf("model = %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "eggs" {
		t.Errorf("messages = %+v", got.Messages)
	}
	if got.ResponseFormat["type"] != "json_object" {
		t.Errorf("response_format = %v", got.ResponseFormat)
	}
}

func TestChatClientUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, "sk-test", "")
	_, err := c.GenerateContent(context.Background(), Prompt{User: "hi"})
	if err == nil || !strings.Contains(err.Error(), "status=429") {
		t.Errorf("err = %v, want status 429", err)
	}
}

func TestChatClientNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, "sk-test", "")
	if _, err := c.GenerateContent(context.Background(), Prompt{User: "hi"}); err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestNewProviderSelection(t *testing.T) {
	gen, err := New(context.Background(), Config{Provider: ProviderGemini})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := gen.GenerateContent(context.Background(), Prompt{User: "hi"}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("gemini without key = %v, want ErrNotConfigured", err)
	}

	gen, err = New(context.Background(), Config{})
	if err != nil {
		t.Fatalf("new default: %v", err)
	}
	if _, ok := gen.(*ChatClient); !ok {
		t.Errorf("default provider = %T, want *ChatClient", gen)
	}

	if _, err := New(context.Background(), Config{Provider: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
