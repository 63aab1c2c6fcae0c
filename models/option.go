package models

import "time"

type Option struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	QuestionID uint      `json:"question_id" gorm:"not null;index"`
	Text       string    `json:"text" gorm:"not null"`
	Position   int       `json:"position" gorm:"not null"`
	IsDeleted  bool      `json:"is_deleted" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	Question Question `json:"question,omitempty"`
	Answers  []Answer `json:"answers,omitempty" gorm:"foreignKey:SelectedOptionID"`
}
