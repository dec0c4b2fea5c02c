package assistant

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

// Ollama defaults.
const (
	DefaultOllamaURL   = "http://127.0.0.1:11434"
	DefaultOllamaModel = "llama3.2"
)

// OllamaBackend completes prompts against a local Ollama server.
type OllamaBackend struct {
	BaseURL string
	Model   string
	client  *http.Client
}

// NewOllamaBackend returns a backend for url and model. A zero timeout
// leaves deadlines to the caller's context.
func NewOllamaBackend(url, model string, timeout time.Duration) *OllamaBackend {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" {
		url = DefaultOllamaURL
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultOllamaModel
	}
	return &OllamaBackend{
		BaseURL: url,
		Model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Complete sends a single non-streaming generate request.
func (o *OllamaBackend) Complete(ctx context.Context, prompt string) (string, error) {
	if o == nil {
		return "", ErrUnavailable
	}
	body, err := json.Marshal(generateRequest{
		Model:  o.Model,
		Prompt: prompt,
		System: systemPrompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("assistant: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("assistant: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant: ollama request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("assistant: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant: ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	var out generateResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("assistant: decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("assistant: ollama: %s", out.Error)
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", fmt.Errorf("assistant: ollama returned an empty response")
	}
	return text, nil
}

// Ping checks that the server answers its version endpoint.
func (o *OllamaBackend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+"/api/version", nil)
	if err != nil {
		return fmt.Errorf("assistant: build ping: %w", err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("assistant: ping ollama: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("assistant: ping ollama: status %d", resp.StatusCode)
	}
	return nil
}
