package models

import "time"

const (
	StatusDraft       = "draft"
	StatusPublished   = "published"
	StatusRepublished = "republished"
	StatusClosed      = "closed"
)

type Survey struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CreatorID   uint      `json:"creator_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Status      string    `json:"status" gorm:"not null;default:'draft'"` // draft, published, republished, closed
	IsDeleted   bool      `json:"is_deleted" gorm:"not null;default:false;index"`
	Archived    bool      `json:"archived" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Creator   User       `json:"creator,omitempty"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:SurveyID"`
	Responses []Response `json:"responses,omitempty" gorm:"foreignKey:SurveyID"`
}

// AcceptsResponses reports whether takers may currently submit.
func (s *Survey) AcceptsResponses() bool {
	if s.IsDeleted {
		return false
	}
	return s.Status == StatusPublished || s.Status == StatusRepublished
}
