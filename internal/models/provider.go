package models

// Provider kinds understood by the classifier chain.
const (
	ProviderKindGemini    = "gemini"
	ProviderKindOpenAI    = "openai"
	ProviderKindAnthropic = "anthropic"
)

// ProviderConfig configures one classifier provider. Providers are tried in
// the order they appear in the providers file; a provider without an API key
// is skipped.
type ProviderConfig struct {
	Name    string `yaml:"name" json:"name"`
	Kind    string `yaml:"kind" json:"kind"` // gemini | openai | anthropic
	APIKey  string `yaml:"api_key" json:"api_key,omitempty"`
	BaseURL string `yaml:"base_url" json:"base_url,omitempty"`
	Model   string `yaml:"model" json:"model,omitempty"`
	Enabled bool   `yaml:"enabled" json:"enabled"`
}

// ProvidersFile is the on-disk shape of providers.yaml.
type ProvidersFile struct {
	Providers []ProviderConfig `yaml:"providers"`
}
