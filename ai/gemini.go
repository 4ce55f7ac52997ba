package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const flashModel = "gemini-2.0-flash"

// GeminiClient wraps the Gemini SDK as the multimodal analysis capability:
// structured-JSON generation over mixed text/document/image parts, plus audio
// transcription. Constructed once at process start and injected into services.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed multimodal client
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: flashModel}, nil
}

// Close releases the underlying connection
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// GenerateJSON sends the parts to the model with a JSON response MIME type and
// returns the raw JSON bytes. Callers decode and validate the shape.
func (c *GeminiClient) GenerateJSON(ctx context.Context, parts []Part) ([]byte, error) {
	model := c.client.GenerativeModel(c.model)
	model.ResponseMIMEType = "application/json"

	text, err := c.generate(ctx, model, parts)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

// GenerateText sends the parts to the model without a response-format
// constraint. Used for document digests injected into chat context.
func (c *GeminiClient) GenerateText(ctx context.Context, parts []Part) (string, error) {
	model := c.client.GenerativeModel(c.model)
	return c.generate(ctx, model, parts)
}

// Transcribe returns a verbatim Brazilian Portuguese transcript of an audio
// attachment.
func (c *GeminiClient) Transcribe(ctx context.Context, data []byte, mimeType string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	parts := []Part{
		TextPart("Transcreva este áudio em português brasileiro com fidelidade. Retorne apenas o texto transcrito, sem comentários adicionais."),
		DataPart(mimeType, data),
	}
	return c.generate(ctx, model, parts)
}

func (c *GeminiClient) generate(ctx context.Context, model *genai.GenerativeModel, parts []Part) (string, error) {
	genaiParts := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsText() {
			genaiParts = append(genaiParts, genai.Text(p.Text))
		} else {
			genaiParts = append(genaiParts, genai.Blob{MIMEType: p.MIMEType, Data: p.Data})
		}
	}

	resp, err := model.GenerateContent(ctx, genaiParts...)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	result := builder.String()
	if result == "" {
		return "", errors.New("gemini returned empty content")
	}
	return result, nil
}
