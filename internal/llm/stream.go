package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	claudeEndpoint = "https://api.anthropic.com/v1/messages"
	openaiEndpoint = "https://api.openai.com/v1/chat/completions"
)

// sseData yields the payload of each "data:" line in a server-sent event
// stream, invoking handle per event until the body ends.
func sseData(body io.Reader, handle func(payload string)) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		handle(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
	}
	return scanner.Err()
}

// --- Claude provider ---

type claudeProvider struct {
	apiKey   string
	model    string
	client   *http.Client
	endpoint string
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Messages    []claudeMessage `json:"messages"`
	Stream      bool            `json:"stream"`
	Temperature float64         `json:"temperature"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

func (c *claudeProvider) Stream(ctx context.Context, r Request, onDelta func(string)) (string, error) {
	maxTokens := r.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	body, _ := json.Marshal(claudeRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Messages:    []claudeMessage{{Role: "user", Content: r.Prompt}},
		Stream:      true,
		Temperature: r.Temperature,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("claude API %d: %s", resp.StatusCode, string(b))
	}

	var sb strings.Builder
	err = sseData(resp.Body, func(payload string) {
		var ev claudeEvent
		if json.Unmarshal([]byte(payload), &ev) != nil {
			return
		}
		if ev.Type == "content_block_delta" && ev.Delta.Text != "" {
			sb.WriteString(ev.Delta.Text)
			if onDelta != nil {
				onDelta(ev.Delta.Text)
			}
		}
	})
	if err != nil {
		return "", fmt.Errorf("reading claude stream: %w", err)
	}
	return sb.String(), nil
}

// --- OpenAI provider ---

type openaiProvider struct {
	apiKey   string
	model    string
	client   *http.Client
	endpoint string
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Stream      bool            `json:"stream"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (o *openaiProvider) Stream(ctx context.Context, r Request, onDelta func(string)) (string, error) {
	body, _ := json.Marshal(openaiRequest{
		Model:       o.model,
		Messages:    []openaiMessage{{Role: "user", Content: r.Prompt}},
		Stream:      true,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("openai API %d: %s", resp.StatusCode, string(b))
	}

	var sb strings.Builder
	err = sseData(resp.Body, func(payload string) {
		if payload == "[DONE]" {
			return
		}
		var chunk openaiChunk
		if json.Unmarshal([]byte(payload), &chunk) != nil {
			return
		}
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			sb.WriteString(chunk.Choices[0].Delta.Content)
			if onDelta != nil {
				onDelta(chunk.Choices[0].Delta.Content)
			}
		}
	})
	if err != nil {
		return "", fmt.Errorf("reading openai stream: %w", err)
	}
	return sb.String(), nil
}
