package types

import (
	"time"

	"github.com/google/uuid"
)

// MaterialType classifies an uploaded career material.
type MaterialType string

// Material type constants.
const (
	MaterialCV          MaterialType = "cv"
	MaterialCoverLetter MaterialType = "cover_letter"
	MaterialDegree      MaterialType = "degree"
	MaterialDiploma     MaterialType = "diploma"
	MaterialLinkedIn    MaterialType = "linkedin"
	MaterialGitHub      MaterialType = "github"
	MaterialPortfolio   MaterialType = "portfolio"
	MaterialResearch    MaterialType = "research"
	MaterialOther       MaterialType = "other"
)

// Valid reports whether the type is one of the known material kinds.
func (t MaterialType) Valid() bool {
	switch t {
	case MaterialCV, MaterialCoverLetter, MaterialDegree, MaterialDiploma,
		MaterialLinkedIn, MaterialGitHub, MaterialPortfolio, MaterialResearch, MaterialOther:
		return true
	}
	return false
}

// Material is one uploaded career document. Content holds the extracted
// plain text; file parsing happens upstream of this core.
type Material struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	Type      MaterialType `json:"type"`
	Title     *string      `json:"title"`
	Content   *string      `json:"content"`
	FileURL   *string      `json:"file_url"`
	FileName  *string      `json:"file_name"`
	FileType  *string      `json:"file_type"`
	CreatedAt time.Time    `json:"created_at"`
}
