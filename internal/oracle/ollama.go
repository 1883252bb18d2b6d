package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaConfig configures the Ollama provider.
type OllamaConfig struct {
	Host    string // e.g. http://localhost:11434
	Model   string
	Timeout time.Duration
}

// OllamaClient talks to a local Ollama server's chat endpoint.
type OllamaClient struct {
	hc     *http.Client
	url    string
	model  string
	config OllamaConfig
}

// NewOllama creates an Ollama provider.
func NewOllama(config OllamaConfig) (*OllamaClient, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("ollama: missing host")
	}
	if config.Model == "" {
		config.Model = "gpt-oss:20b"
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Minute
	}
	url := strings.TrimRight(config.Host, "/") + "/api/chat"
	return &OllamaClient{
		hc:     &http.Client{Timeout: config.Timeout},
		url:    url,
		model:  config.Model,
		config: config,
	}, nil
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaResponse struct {
	Message ollamaMessage `json:"message"`
	Error   string        `json:"error,omitempty"`
}

// Complete submits a single-turn chat request with streaming disabled.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:    c.model,
		Messages: []ollamaMessage{{Role: "user", Content: prompt}},
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("ollama: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: ollama: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: ollama %s: %v", ErrTransport, c.model, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: ollama: read response: %v", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: ollama: status %d: %s", ErrTransport, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("%w: ollama: decode response: %v", ErrTransport, err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("%w: ollama: %s", ErrTransport, parsed.Error)
	}
	return parsed.Message.Content, nil
}
