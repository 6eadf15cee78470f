package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"creativedesk/internal/models"
)

// AnthropicProvider classifies prompts through the Anthropic messages API.
// Anthropic has no JSON-schema response format, so the system prompt asks for
// a bare JSON object and the text block is parsed directly.
type AnthropicProvider struct {
	name    string
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewAnthropicProvider creates an Anthropic classifier provider.
func NewAnthropicProvider(cfg models.ProviderConfig) *AnthropicProvider {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	model := cfg.Model
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	return &AnthropicProvider{
		name:    cfg.Name,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *AnthropicProvider) Name() string { return p.name }

func (p *AnthropicProvider) Configured() bool { return p.apiKey != "" }

// TryClassify sends the extraction prompt and parses the JSON text block.
func (p *AnthropicProvider) TryClassify(ctx context.Context, prompt, assetKind string) (*models.ClassificationResult, error) {
	requestBody := map[string]interface{}{
		"model":      p.model,
		"max_tokens": 1024,
		"system":     classificationSystemPrompt + "\n\nRespond with the JSON object only, no prose.",
		"messages": []map[string]interface{}{
			{"role": "user", "content": buildExtractionPrompt(prompt, assetKind)},
		},
	}

	reqBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/v1/messages", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResponse struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	for _, block := range apiResponse.Content {
		if block.Type == "text" {
			return parseClassificationJSON(block.Text)
		}
	}

	return nil, fmt.Errorf("no text block in response")
}
