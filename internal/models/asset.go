package models

import "time"

// Asset kinds
const (
	AssetKindImage = "image"
	AssetKindVideo = "video"
)

// GeneratedAsset represents one generated media artifact (image or video).
// Assets are owned by the session that created them and are immutable after
// creation, except for being referenced by a Pair.
type GeneratedAsset struct {
	ID           string            `json:"id"`
	Kind         string            `json:"kind"` // "image" or "video"
	ContentRef   string            `json:"content_ref"`             // data URI or remote URL
	ThumbnailRef string            `json:"thumbnail_ref,omitempty"` // smaller preview reference
	Prompt       string            `json:"prompt"`
	Model        string            `json:"model,omitempty"` // producing model name
	Width        int               `json:"width,omitempty"`
	Height       int               `json:"height,omitempty"`
	DurationSecs float64           `json:"duration_secs,omitempty"` // video only
	CreatedAt    time.Time         `json:"created_at"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Pair associates one image asset with one video asset believed to share the
// same creative intent. Similarity is nil when the pairing was explicit
// (caller supplied the image ID) rather than scored.
type Pair struct {
	ImageID    string    `json:"image_id"`
	VideoID    string    `json:"video_id"`
	Prompt     string    `json:"prompt"`
	Similarity *float64  `json:"similarity,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AssetInput carries the caller-supplied fields for a new asset.
type AssetInput struct {
	ContentRef   string            `json:"content_ref"`
	ThumbnailRef string            `json:"thumbnail_ref,omitempty"`
	Prompt       string            `json:"prompt"`
	Model        string            `json:"model,omitempty"`
	Width        int               `json:"width,omitempty"`
	Height       int               `json:"height,omitempty"`
	DurationSecs float64           `json:"duration_secs,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}
