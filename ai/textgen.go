package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	messagesAPI      = "https://api.anthropic.com/v1/messages"
	messagesVersion  = "2023-06-01"
	textModelDefault = "claude-sonnet-4-5"
	maxRetries       = 3
	initialBackoff   = time.Second
)

// TextClient calls the long-form text-generation capability over plain HTTP
// with retry and exponential backoff. The split from GeminiClient is
// deliberate: structured intermediate stages use JSON-constrained multimodal
// calls, final-document stages use unconstrained long-form generation.
type TextClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewTextClient creates a text-generation client. Generation calls can run for
// minutes, so the HTTP timeout is sized for the longest stage budget.
func NewTextClient(apiKey string) (*TextClient, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic api key not set")
	}

	return &TextClient{
		apiKey:     apiKey,
		model:      textModelDefault,
		httpClient: &http.Client{Timeout: 300 * time.Second},
	}, nil
}

type messagesRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	System    string `json:"system,omitempty"`
	Messages  []Turn `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason,omitempty"`
	Error      struct {
		Type    string `json:"type,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error,omitempty"`
}

// GenerateText sends a system prompt plus conversation turns and returns the
// generated text. Retries transient failures with exponential backoff.
func (c *TextClient) GenerateText(ctx context.Context, system string, turns []Turn, maxTokens int) (string, error) {
	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  turns,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		text, retryable, err := c.doRequest(ctx, jsonData)
		if err == nil {
			return text, nil
		}
		if !retryable || attempt == maxRetries-1 {
			return "", err
		}
		log.Printf("Warning: text generation attempt %d failed: %v", attempt+1, err)
	}

	return "", errors.New("text generation failed after retries")
}

func (c *TextClient) doRequest(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", messagesAPI, bytes.NewBuffer(body))
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", messagesVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	// Don't retry on auth or malformed-request errors
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return "", false, fmt.Errorf("API error: %d - %s", resp.StatusCode, string(bodyBytes))
	}
	if resp.StatusCode != http.StatusOK {
		return "", true, fmt.Errorf("API error: %d - %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp messagesResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", true, fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error.Message != "" {
		return "", false, fmt.Errorf("API error: %s (%s)", apiResp.Error.Message, apiResp.Error.Type)
	}

	var buf bytes.Buffer
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			buf.WriteString(block.Text)
		}
	}

	if buf.Len() == 0 {
		return "", true, errors.New("API returned empty content")
	}

	return buf.String(), false, nil
}
