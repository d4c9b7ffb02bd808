// internal/ollama/client.go
// Package ollama provides HTTP clients for Ollama's embedding endpoint and
// its OpenAI-compatible completion endpoints, including streamed chat.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/ragmill/internal/logging"
)

// ChatMessage is a single system/user/assistant turn.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to one Ollama host.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// New constructs a Client for the given host URL with a per-request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		timeout: timeout,
	}
}

// BaseURL returns the host URL the client was constructed with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embeddings requests an embedding vector for the given text.
func (c *Client) Embeddings(ctx context.Context, model, prompt string) ([]float64, error) {
	body, err := json.Marshal(embeddingRequest{Model: model, Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	raw, err := c.post(ctx, "/api/embeddings", model, body)
	if err != nil {
		return nil, err
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("embedding response returned empty vector")
	}
	return parsed.Embedding, nil
}

type completionRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// Completion issues a plain /v1/completions request and returns the trimmed text.
func (c *Client) Completion(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{Model: model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	raw, err := c.post(ctx, "/v1/completions", model, body)
	if err != nil {
		return "", err
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Text), nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// ChatCompletion issues a non-streamed /v1/chat/completions request.
func (c *Client) ChatCompletion(ctx context.Context, model string, messages []ChatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{Model: model, Messages: messages, Stream: false})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	raw, err := c.post(ctx, "/v1/chat/completions", model, body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// ChatStream issues a streamed /v1/chat/completions request and invokes
// onDelta once per incremental content fragment, in arrival order.
func (c *Client) ChatStream(ctx context.Context, model string, messages []ChatMessage, onDelta func(string)) error {
	body, err := json.Marshal(chatRequest{Model: model, Messages: messages, Stream: true})
	if err != nil {
		return fmt.Errorf("marshal chat request: %w", err)
	}
	logging.LogRequest("RAGMILL->LLM", c.baseURL, model, body)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		logging.LogRequest("LLM->RAGMILL", c.baseURL, model, raw)
		return fmt.Errorf("chat request failed: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	return DecodeStream(resp.Body, onDelta)
}

func (c *Client) post(ctx context.Context, path, model string, body []byte) ([]byte, error) {
	logging.LogRequest("RAGMILL->LLM", c.baseURL, model, body)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	logging.LogRequest("LLM->RAGMILL", c.baseURL, model, raw)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request %s failed: %s: %s", path, resp.Status, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}
