package exam

import (
	"github.com/google/uuid"
)

// Diagram is a region reference into a page image. It never carries pixels.
type Diagram struct {
	ID   string      `json:"id"`
	Type DiagramType `json:"type"`

	AltText     string `json:"alt_text,omitempty"`
	Description string `json:"description,omitempty"`

	Box  *BoundingBox `json:"bounding_box"`
	Page int          `json:"source_page"`

	Shared     bool     `json:"is_shared"`
	SharedWith []string `json:"shared_with_questions"`

	Confidence float64 `json:"extraction_confidence"`
}

func NewDiagram(t DiagramType, box *BoundingBox, page int) *Diagram {
	return &Diagram{
		ID:   uuid.NewString()[:8],
		Type: t,

		Box:  box,
		Page: page,

		SharedWith: []string{},
	}
}
