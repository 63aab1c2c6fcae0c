package models

import "time"

// Answer holds exactly one of Text or SelectedOptionID, matching the
// question's type. Checkbox questions produce one row per selected option,
// so uniqueness is per (response, question, selected_option) rather than
// per (response, question).
type Answer struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	ResponseID       uint      `json:"response_id" gorm:"not null;uniqueIndex:idx_answers_response_question_option"`
	QuestionID       uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_answers_response_question_option"`
	Text             string    `json:"text,omitempty"`
	SelectedOptionID *uint     `json:"selected_option_id,omitempty" gorm:"uniqueIndex:idx_answers_response_question_option"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Relationships
	Response       Response `json:"response,omitempty"`
	Question       Question `json:"question,omitempty"`
	SelectedOption *Option  `json:"selected_option,omitempty"`
}
