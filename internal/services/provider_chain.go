package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"creativedesk/internal/models"
)

// ClassifierProvider is one link in the classification fallback chain.
// TryClassify either returns a syntactically valid result or an error;
// the chain moves to the next provider on error.
type ClassifierProvider interface {
	Name() string
	Configured() bool
	TryClassify(ctx context.Context, prompt, assetKind string) (*models.ClassificationResult, error)
}

// Classification extraction system prompt
const classificationSystemPrompt = `You are a creative asset classifier for a marketing asset library. Analyze the generation prompt for a creative asset and extract structured information about the brand behind it.

WHAT TO EXTRACT:
1. company: the company or brand the asset is for (name, confidence 0-1, website if you know it)
2. project: the campaign or project the asset belongs to (name, type, confidence 0-1)
3. industry: one short industry label
4. target_audience: one sentence describing the intended audience
5. tags: 3-8 short lowercase tags
6. suggested_folder: a short filesystem-safe folder name for filing this asset

RULES:
- Only name a company if the prompt actually references one
- Confidence reflects how explicitly the prompt names the entity
- Keep every field short and factual

Return a single JSON object with keys: company, project, industry, target_audience, tags, suggested_folder.`

// classificationSchema defines structured output for providers that support
// JSON-schema response formats.
var classificationSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"company": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name":       map[string]interface{}{"type": "string"},
				"confidence": map[string]interface{}{"type": "number"},
				"website":    map[string]interface{}{"type": "string"},
			},
			"required":             []string{"name", "confidence"},
			"additionalProperties": false,
		},
		"project": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name":       map[string]interface{}{"type": "string"},
				"type":       map[string]interface{}{"type": "string"},
				"confidence": map[string]interface{}{"type": "number"},
			},
			"required":             []string{"name", "confidence"},
			"additionalProperties": false,
		},
		"industry":         map[string]interface{}{"type": "string"},
		"target_audience":  map[string]interface{}{"type": "string"},
		"tags":             map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"suggested_folder": map[string]interface{}{"type": "string"},
	},
	"required":             []string{"industry", "target_audience", "tags", "suggested_folder"},
	"additionalProperties": false,
}

// buildExtractionPrompt embeds the originating prompt and asset kind into the
// user message sent to every provider.
func buildExtractionPrompt(prompt, assetKind string) string {
	return fmt.Sprintf(`ASSET KIND: %s

GENERATION PROMPT:
%s

Extract the structured classification as JSON.`, assetKind, prompt)
}

// parseClassificationJSON decodes a provider's JSON output, tolerating
// markdown code fences that some models wrap around the object.
func parseClassificationJSON(content string) (*models.ClassificationResult, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var result models.ClassificationResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse classification: %w", err)
	}

	// Companies and projects with empty names are noise, drop them
	if result.Company != nil && strings.TrimSpace(result.Company.Name) == "" {
		result.Company = nil
	}
	if result.Project != nil && strings.TrimSpace(result.Project.Name) == "" {
		result.Project = nil
	}

	return &result, nil
}

// BuildProviderChain constructs the ordered provider chain from configuration.
// Unknown kinds are skipped with a log line; order in the slice is priority.
func BuildProviderChain(configs []models.ProviderConfig) []ClassifierProvider {
	var chain []ClassifierProvider
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		switch cfg.Kind {
		case models.ProviderKindGemini:
			chain = append(chain, NewGeminiProvider(cfg))
		case models.ProviderKindOpenAI:
			chain = append(chain, NewOpenAIProvider(cfg))
		case models.ProviderKindAnthropic:
			chain = append(chain, NewAnthropicProvider(cfg))
		default:
			log.Printf("⚠️ [CLASSIFIER] Unknown provider kind '%s' for '%s', skipping", cfg.Kind, cfg.Name)
		}
	}
	return chain
}
