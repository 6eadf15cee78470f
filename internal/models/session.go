package models

import "time"

// Session is a bounded working period during which assets are generated.
// Exactly one session is current at a time; closed sessions become read-only
// entries in the library index.
type Session struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"created_at"`
	Images    []GeneratedAsset `json:"images"`
	Videos    []GeneratedAsset `json:"videos"`
	Pairs     []Pair           `json:"pairs"`
	Meta      SessionMeta      `json:"meta"`
}

// SessionMeta aggregates counts and classification state for a session.
type SessionMeta struct {
	ImageCount      int                   `json:"image_count"`
	VideoCount      int                   `json:"video_count"`
	PairCount       int                   `json:"pair_count"`
	Prompts         []string              `json:"prompts,omitempty"` // accumulated prompt log
	DetectedCompany string                `json:"detected_company,omitempty"`
	DetectedProject string                `json:"detected_project,omitempty"`
	CompanyID       int64                 `json:"company_id,omitempty"` // linked CRM company
	ProjectID       int64                 `json:"project_id,omitempty"` // linked CRM project
	Tags            []string              `json:"tags,omitempty"`
	LastResult      *ClassificationResult `json:"last_result,omitempty"`
}

// ImageByID looks up an image asset in the session. Videos never match, so
// explicit pairing cannot produce a pair with a video on the image side.
func (s *Session) ImageByID(id string) *GeneratedAsset {
	for i := range s.Images {
		if s.Images[i].ID == id {
			return &s.Images[i]
		}
	}
	return nil
}

// Clone returns a copy whose slices and classification state are detached
// from the original, safe to marshal while the original keeps mutating.
func (s *Session) Clone() Session {
	out := *s
	out.Images = append([]GeneratedAsset(nil), s.Images...)
	out.Videos = append([]GeneratedAsset(nil), s.Videos...)
	out.Pairs = append([]Pair(nil), s.Pairs...)
	out.Meta.Prompts = append([]string(nil), s.Meta.Prompts...)
	out.Meta.Tags = append([]string(nil), s.Meta.Tags...)
	if s.Meta.LastResult != nil {
		result := *s.Meta.LastResult
		out.Meta.LastResult = &result
	}
	return out
}

// LibraryEntry is the durable index row for a persisted session.
type LibraryEntry struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	CreatedAt       time.Time `json:"created_at"`
	ImageCount      int       `json:"image_count"`
	VideoCount      int       `json:"video_count"`
	PairCount       int       `json:"pair_count"`
	DetectedCompany string    `json:"detected_company,omitempty"`
	DetectedProject string    `json:"detected_project,omitempty"`
	CompanyID       int64     `json:"company_id,omitempty"`
	ProjectID       int64     `json:"project_id,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}
