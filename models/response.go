package models

import "time"

// Response records one taker's submission for one survey. The composite
// unique index closes the race between the duplicate check and the insert:
// two concurrent submissions by the same taker cannot both commit.
type Response struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	SurveyID    uint      `json:"survey_id" gorm:"not null;uniqueIndex:idx_responses_survey_taker"`
	TakerID     uint      `json:"taker_id" gorm:"not null;uniqueIndex:idx_responses_survey_taker"`
	SubmittedAt time.Time `json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Survey  Survey   `json:"survey,omitempty"`
	Taker   User     `json:"taker,omitempty"`
	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:ResponseID"`
}
