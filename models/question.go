package models

import "time"

const (
	QuestionText     = "text"
	QuestionRadio    = "radio"
	QuestionCheckbox = "checkbox"
)

// ValidQuestionType reports whether t is one of the closed set of
// question types. Everything downstream switches exhaustively on these.
func ValidQuestionType(t string) bool {
	switch t {
	case QuestionText, QuestionRadio, QuestionCheckbox:
		return true
	}
	return false
}

type Question struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SurveyID  uint      `json:"survey_id" gorm:"not null;index"`
	Text      string    `json:"text" gorm:"not null"`
	Type      string    `json:"type" gorm:"not null"` // text, radio, checkbox
	Position  int       `json:"position" gorm:"not null"`
	Required  bool      `json:"required" gorm:"not null;default:false"`
	IsDeleted bool      `json:"is_deleted" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Survey  Survey   `json:"survey,omitempty"`
	Options []Option `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}
