package model

import (
	"time"

	"github.com/google/uuid"
)

// ResourceRef references a resource (paper, author, dataset, concept, ...)
// that participates in the relationship graph. The catalog owning the full
// resource record lives outside this library; only the fields the discovery
// engine reads are carried here.
type ResourceRef struct {
	ID           uuid.UUID `json:"id"`
	ResourceType string    `json:"resource_type"`
	QualityScore *float64  `json:"quality_score,omitempty"` // In [0,1] if present
	Embedding    []float32 `json:"embedding,omitempty"`
	Metadata     Metadata  `json:"metadata,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Quality returns the quality score, falling back to 0.5 when none is set.
func (r *ResourceRef) Quality() float64 {
	if r == nil || r.QualityScore == nil {
		return 0.5
	}
	return *r.QualityScore
}
