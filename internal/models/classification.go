package models

// CompanyCandidate is the classifier's guess at the company behind a prompt.
type CompanyCandidate struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"` // 0-1, provider-supplied
	Website    string  `json:"website,omitempty"`
}

// ProjectCandidate is the classifier's guess at the campaign or project.
type ProjectCandidate struct {
	Name       string  `json:"name"`
	Type       string  `json:"type,omitempty"` // e.g. "campaign", "product-launch"
	Confidence float64 `json:"confidence"`
}

// SearchValidation holds best-effort web-search enrichment for a detected
// company. Validation failures leave the unvalidated data intact.
type SearchValidation struct {
	Validated   bool   `json:"validated"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`
}

// ClassificationResult is the structured extraction a provider returns for a
// generation prompt. Provider records which provider in the chain produced it.
type ClassificationResult struct {
	Company         *CompanyCandidate `json:"company,omitempty"`
	Project         *ProjectCandidate `json:"project,omitempty"`
	Industry        string            `json:"industry,omitempty"`
	TargetAudience  string            `json:"target_audience,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	SuggestedFolder string            `json:"suggested_folder,omitempty"`
	Provider        string            `json:"provider,omitempty"`
	Validation      *SearchValidation `json:"validation,omitempty"`
}

// CompanyName returns the trimmed detected company name, or "" when the
// classification carries no usable company.
func (r *ClassificationResult) CompanyName() string {
	if r == nil || r.Company == nil {
		return ""
	}
	return r.Company.Name
}
