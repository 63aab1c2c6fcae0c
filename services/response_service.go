package services

import (
	"strings"
	"time"

	"surveymaster/models"

	"gorm.io/gorm"
)

type ResponseService struct {
	db *gorm.DB
}

func NewResponseService(db *gorm.DB) *ResponseService {
	return &ResponseService{db: db}
}

type SubmittedAnswer struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Text       string `json:"text"`
	OptionIDs  []uint `json:"option_ids"`
}

type SubmitResponseRequest struct {
	Answers []SubmittedAnswer `json:"answers"`
}

// SubmitResponse validates a taker's submission against the survey's
// questions and persists the response with all of its answers in a single
// transaction. On any validation failure nothing is written.
func (s *ResponseService) SubmitResponse(surveyID, takerID uint, req *SubmitResponseRequest) (*models.Response, error) {
	var survey models.Survey
	if err := s.db.Where("id = ? AND is_deleted = ?", surveyID, false).First(&survey).Error; err != nil {
		return nil, ErrSurveyNotFound
	}
	if !survey.AcceptsResponses() {
		return nil, ErrSurveyNotAcceptingResponses
	}

	var existing int64
	if err := s.db.Model(&models.Response{}).
		Where("survey_id = ? AND taker_id = ?", surveyID, takerID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrDuplicateSubmission
	}

	var questions []models.Question
	if err := s.db.Where("survey_id = ? AND is_deleted = ?", surveyID, false).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("options.position")
		}).
		Order("position").
		Find(&questions).Error; err != nil {
		return nil, err
	}

	submitted := make(map[uint]SubmittedAnswer, len(req.Answers))
	for _, a := range req.Answers {
		submitted[a.QuestionID] = a
	}

	// Reject answers aimed at questions outside this survey.
	known := make(map[uint]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}
	for qid := range submitted {
		if !known[qid] {
			return nil, ErrQuestionNotFound
		}
	}

	answers, err := buildAnswers(questions, submitted)
	if err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	response := models.Response{
		SurveyID:    surveyID,
		TakerID:     takerID,
		SubmittedAt: time.Now().UTC(),
	}
	if err := tx.Create(&response).Error; err != nil {
		tx.Rollback()
		// The unique index on (survey_id, taker_id) is the authoritative
		// duplicate guard; a concurrent submission that won the race shows
		// up here as a constraint violation.
		var count int64
		s.db.Model(&models.Response{}).
			Where("survey_id = ? AND taker_id = ?", surveyID, takerID).
			Count(&count)
		if count > 0 {
			return nil, ErrDuplicateSubmission
		}
		return nil, err
	}

	for i := range answers {
		answers[i].ResponseID = response.ID
		if err := tx.Create(&answers[i]).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	response.Answers = answers
	return &response, nil
}

// buildAnswers switches over the closed question-type set and turns the
// submitted values into answer rows, or fails the whole submission.
func buildAnswers(questions []models.Question, submitted map[uint]SubmittedAnswer) ([]models.Answer, error) {
	var answers []models.Answer

	for _, question := range questions {
		sub, answered := submitted[question.ID]

		switch question.Type {
		case models.QuestionText:
			if answered && len(sub.OptionIDs) > 0 {
				return nil, ErrInvalidAnswerShape
			}
			text := strings.TrimSpace(sub.Text)
			if text == "" {
				if question.Required {
					return nil, ErrValidation
				}
				continue
			}
			answers = append(answers, models.Answer{
				QuestionID: question.ID,
				Text:       text,
			})

		case models.QuestionRadio:
			if !answered || (sub.Text == "" && len(sub.OptionIDs) == 0) {
				if question.Required {
					return nil, ErrValidation
				}
				continue
			}
			if sub.Text != "" || len(sub.OptionIDs) != 1 {
				return nil, ErrInvalidAnswerShape
			}
			optionID, err := resolveOption(&question, sub.OptionIDs[0])
			if err != nil {
				return nil, err
			}
			answers = append(answers, models.Answer{
				QuestionID:       question.ID,
				SelectedOptionID: &optionID,
			})

		case models.QuestionCheckbox:
			if answered && sub.Text != "" {
				return nil, ErrInvalidAnswerShape
			}
			if question.Required && len(sub.OptionIDs) == 0 {
				return nil, ErrValidation
			}
			seen := make(map[uint]bool, len(sub.OptionIDs))
			for _, id := range sub.OptionIDs {
				if seen[id] {
					return nil, ErrInvalidAnswerShape
				}
				seen[id] = true
				optionID, err := resolveOption(&question, id)
				if err != nil {
					return nil, err
				}
				answers = append(answers, models.Answer{
					QuestionID:       question.ID,
					SelectedOptionID: &optionID,
				})
			}
		}
	}

	return answers, nil
}

func resolveOption(question *models.Question, optionID uint) (uint, error) {
	for _, option := range question.Options {
		if option.ID == optionID {
			return option.ID, nil
		}
	}
	return 0, ErrOptionNotFound
}

// GetSurveyResponses returns all responses for a survey owned by creatorID,
// answers included.
func (s *ResponseService) GetSurveyResponses(surveyID, creatorID uint) ([]models.Response, error) {
	var survey models.Survey
	if err := s.db.Where("id = ? AND creator_id = ? AND is_deleted = ?", surveyID, creatorID, false).
		First(&survey).Error; err != nil {
		return nil, ErrSurveyNotFound
	}

	var responses []models.Response
	err := s.db.Where("survey_id = ?", surveyID).
		Preload("Answers").
		Preload("Answers.SelectedOption").
		Order("submitted_at").
		Find(&responses).Error
	return responses, err
}
