package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edwinckc/self-reflection-tool/internal/config"
)

func TestNewProviderSelection(t *testing.T) {
	if _, err := New(&config.AIConfig{Provider: "claude"}, "key"); err != nil {
		t.Errorf("claude: unexpected error: %v", err)
	}
	if _, err := New(&config.AIConfig{Provider: "openai"}, "key"); err != nil {
		t.Errorf("openai: unexpected error: %v", err)
	}
	if _, err := New(&config.AIConfig{Provider: "bard"}, "key"); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := New(&config.AIConfig{Provider: "claude"}, ""); err == nil {
		t.Error("expected error for missing key")
	}
	if _, err := New(nil, "key"); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestClaudeStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: message_start\n")
		fmt.Fprint(w, "data: {\"type\":\"message_start\"}\n\n")
		for _, chunk := range []string{"[1,", "2,", "3]"} {
			fmt.Fprint(w, "event: content_block_delta\n")
			fmt.Fprintf(w, "data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":%q}}\n\n", chunk)
		}
		fmt.Fprint(w, "data: {\"type\":\"message_stop\"}\n\n")
	}))
	defer srv.Close()

	p := &claudeProvider{apiKey: "k", model: "m", client: &http.Client{Timeout: 5 * time.Second}, endpoint: srv.URL}

	var deltas []string
	got, err := p.Stream(context.Background(), Request{Prompt: "hi", Temperature: 0.3}, func(d string) {
		deltas = append(deltas, d)
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if got != "[1,2,3]" {
		t.Errorf("concatenated text = %q, want [1,2,3]", got)
	}
	if len(deltas) != 3 {
		t.Errorf("expected 3 deltas, got %d: %v", len(deltas), deltas)
	}
}

func TestOpenAIStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range []string{"hello", " ", "world"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p := &openaiProvider{apiKey: "k", model: "m", client: &http.Client{Timeout: 5 * time.Second}, endpoint: srv.URL}

	got, err := p.Stream(context.Background(), Request{Prompt: "hi", Temperature: 0.5}, nil)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if got != "hello world" {
		t.Errorf("concatenated text = %q, want \"hello world\"", got)
	}
}

func TestStreamErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"overloaded"}`)
	}))
	defer srv.Close()

	p := &claudeProvider{apiKey: "k", model: "m", client: &http.Client{Timeout: 5 * time.Second}, endpoint: srv.URL}
	_, err := p.Stream(context.Background(), Request{Prompt: "hi"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "overloaded") {
		t.Errorf("error should carry status and body, got: %v", err)
	}
}
