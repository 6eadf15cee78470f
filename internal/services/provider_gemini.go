package services

import (
	"context"
	"fmt"

	"creativedesk/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider classifies prompts through the official Gemini SDK with a
// JSON response MIME type.
type GeminiProvider struct {
	name   string
	apiKey string
	model  string
}

// NewGeminiProvider creates a Gemini classifier provider.
func NewGeminiProvider(cfg models.ProviderConfig) *GeminiProvider {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{
		name:   cfg.Name,
		apiKey: cfg.APIKey,
		model:  model,
	}
}

func (p *GeminiProvider) Name() string { return p.name }

func (p *GeminiProvider) Configured() bool { return p.apiKey != "" }

// TryClassify sends the extraction prompt and parses the JSON candidate.
func (p *GeminiProvider) TryClassify(ctx context.Context, prompt, assetKind string) (*models.ClassificationResult, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(p.model)
	model.SetTemperature(0.2)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(classificationSystemPrompt)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(buildExtractionPrompt(prompt, assetKind)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("empty content returned from Gemini")
	}

	txt, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response format from Gemini")
	}

	return parseClassificationJSON(string(txt))
}
