package services

import (
	"strings"

	"surveymaster/models"

	"gorm.io/gorm"
)

type SurveyService struct {
	db *gorm.DB
}

func NewSurveyService(db *gorm.DB) *SurveyService {
	return &SurveyService{db: db}
}

type CreateSurveyRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Description string                  `json:"description"`
	Questions   []CreateQuestionRequest `json:"questions"`
}

type CreateQuestionRequest struct {
	Text     string                `json:"text" binding:"required"`
	Type     string                `json:"type" binding:"required"`
	Position int                   `json:"position"`
	Required bool                  `json:"required"`
	Options  []CreateOptionRequest `json:"options"`
}

type CreateOptionRequest struct {
	Text     string `json:"text" binding:"required"`
	Position int    `json:"position"`
}

type UpdateSurveyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *SurveyService) CreateSurvey(creatorID uint, req *CreateSurveyRequest) (*models.Survey, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrValidation
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	survey := models.Survey{
		CreatorID:   creatorID,
		Name:        req.Name,
		Description: req.Description,
		Status:      models.StatusDraft,
	}

	if err := tx.Create(&survey).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, qReq := range req.Questions {
		if _, err := s.createQuestion(tx, survey.ID, &qReq); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetSurveyByID(survey.ID, creatorID)
}

func (s *SurveyService) createQuestion(tx *gorm.DB, surveyID uint, req *CreateQuestionRequest) (*models.Question, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrValidation
	}
	if !models.ValidQuestionType(req.Type) {
		return nil, ErrValidation
	}

	position := req.Position
	if position <= 0 {
		var max int
		if err := tx.Model(&models.Question{}).
			Where("survey_id = ?", surveyID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&max).Error; err != nil {
			return nil, err
		}
		position = max + 1
	}

	question := models.Question{
		SurveyID: surveyID,
		Text:     req.Text,
		Type:     req.Type,
		Position: position,
		Required: req.Required,
	}

	if err := tx.Create(&question).Error; err != nil {
		return nil, err
	}

	for _, optReq := range req.Options {
		if _, err := s.createOption(tx, question.ID, &optReq); err != nil {
			return nil, err
		}
	}

	return &question, nil
}

func (s *SurveyService) createOption(tx *gorm.DB, questionID uint, req *CreateOptionRequest) (*models.Option, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrValidation
	}

	// Option text must be unique within its question, case-insensitively.
	var count int64
	if err := tx.Model(&models.Option{}).
		Where("question_id = ? AND LOWER(text) = LOWER(?)", questionID, req.Text).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrValidation
	}

	position := req.Position
	if position <= 0 {
		var max int
		if err := tx.Model(&models.Option{}).
			Where("question_id = ?", questionID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&max).Error; err != nil {
			return nil, err
		}
		position = max + 1
	}

	option := models.Option{
		QuestionID: questionID,
		Text:       req.Text,
		Position:   position,
	}

	if err := tx.Create(&option).Error; err != nil {
		return nil, err
	}

	return &option, nil
}

// AddQuestion appends a question to a draft or published survey owned by
// creatorID. Position is assigned max+1 when not given.
func (s *SurveyService) AddQuestion(surveyID, creatorID uint, req *CreateQuestionRequest) (*models.Question, error) {
	if _, err := s.getOwnedSurvey(surveyID, creatorID); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	question, err := s.createQuestion(tx, surveyID, req)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return question, nil
}

func (s *SurveyService) AddOption(questionID, creatorID uint, req *CreateOptionRequest) (*models.Option, error) {
	var question models.Question
	if err := s.db.Where("id = ? AND is_deleted = ?", questionID, false).First(&question).Error; err != nil {
		return nil, ErrQuestionNotFound
	}
	if _, err := s.getOwnedSurvey(question.SurveyID, creatorID); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	option, err := s.createOption(tx, questionID, req)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return option, nil
}

func (s *SurveyService) GetSurveyByID(surveyID, creatorID uint) (*models.Survey, error) {
	var survey models.Survey
	err := s.db.Where("id = ? AND creator_id = ? AND is_deleted = ?", surveyID, creatorID, false).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("questions.position")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("options.position")
		}).
		First(&survey).Error
	if err != nil {
		return nil, ErrSurveyNotFound
	}
	return &survey, nil
}

func (s *SurveyService) ListCreatorSurveys(creatorID uint, includeArchived bool) ([]models.Survey, error) {
	query := s.db.Where("creator_id = ? AND is_deleted = ?", creatorID, false)
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}

	var surveys []models.Survey
	err := query.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("questions.position")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("options.position")
		}).
		Order("created_at DESC").
		Find(&surveys).Error
	return surveys, err
}

// ListOpenSurveys returns the surveys takers may currently respond to.
func (s *SurveyService) ListOpenSurveys() ([]models.Survey, error) {
	var surveys []models.Survey
	err := s.db.
		Where("status IN ? AND is_deleted = ? AND archived = ?",
			[]string{models.StatusPublished, models.StatusRepublished}, false, false).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("questions.position")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("options.position")
		}).
		Order("created_at DESC").
		Find(&surveys).Error
	return surveys, err
}

func (s *SurveyService) UpdateSurvey(surveyID, creatorID uint, req *UpdateSurveyRequest) (*models.Survey, error) {
	survey, err := s.getOwnedSurvey(surveyID, creatorID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		survey.Name = req.Name
	}
	if req.Description != "" {
		survey.Description = req.Description
	}

	if err := s.db.Save(survey).Error; err != nil {
		return nil, err
	}
	return s.GetSurveyByID(surveyID, creatorID)
}

// Publish opens a draft survey for responses.
func (s *SurveyService) Publish(surveyID, creatorID uint) (*models.Survey, error) {
	survey, err := s.getOwnedSurvey(surveyID, creatorID)
	if err != nil {
		return nil, err
	}

	if survey.Status != models.StatusDraft {
		return nil, ErrInvalidTransition
	}

	if err := s.db.Model(survey).Update("status", models.StatusPublished).Error; err != nil {
		return nil, err
	}
	return survey, nil
}

// Republish reopens a published survey for a fresh round of responses.
// Republishing an already republished survey is reported as a no-op
// (changed=false), not an error.
func (s *SurveyService) Republish(surveyID, creatorID uint) (survey *models.Survey, changed bool, err error) {
	survey, err = s.getOwnedSurvey(surveyID, creatorID)
	if err != nil {
		return nil, false, err
	}

	switch survey.Status {
	case models.StatusPublished:
		if err := s.db.Model(survey).Update("status", models.StatusRepublished).Error; err != nil {
			return nil, false, err
		}
		return survey, true, nil
	case models.StatusRepublished:
		return survey, false, nil
	default:
		return nil, false, ErrInvalidTransition
	}
}

// Close stops a survey from accepting responses. The source versions
// disagree on the guard (one forbids closing with responses, another
// requires the republished state); the policy here is the permissive one:
// closing is allowed from published or republished, unconditionally.
func (s *SurveyService) Close(surveyID, creatorID uint) (*models.Survey, error) {
	survey, err := s.getOwnedSurvey(surveyID, creatorID)
	if err != nil {
		return nil, err
	}

	if survey.Status != models.StatusPublished && survey.Status != models.StatusRepublished {
		return nil, ErrInvalidTransition
	}

	if err := s.db.Model(survey).Update("status", models.StatusClosed).Error; err != nil {
		return nil, err
	}
	return survey, nil
}

// SoftDelete hides a draft survey and cascades the flag down to its
// questions and their options. Published or closed surveys hold real
// responses and cannot be deleted.
func (s *SurveyService) SoftDelete(surveyID, creatorID uint) error {
	survey, err := s.getOwnedSurvey(surveyID, creatorID)
	if err != nil {
		return err
	}

	if survey.Status != models.StatusDraft {
		return ErrInvalidTransition
	}

	return s.setDeletedFlag(survey, true)
}

// Restore reverses SoftDelete over the same survey/question/option tree.
func (s *SurveyService) Restore(surveyID, creatorID uint) error {
	var survey models.Survey
	if err := s.db.Where("id = ? AND creator_id = ? AND is_deleted = ?", surveyID, creatorID, true).
		First(&survey).Error; err != nil {
		return ErrSurveyNotFound
	}

	return s.setDeletedFlag(&survey, false)
}

func (s *SurveyService) setDeletedFlag(survey *models.Survey, deleted bool) error {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(survey).Update("is_deleted", deleted).Error; err != nil {
		tx.Rollback()
		return err
	}

	var questionIDs []uint
	if err := tx.Model(&models.Question{}).
		Where("survey_id = ?", survey.ID).
		Pluck("id", &questionIDs).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Model(&models.Question{}).
		Where("survey_id = ?", survey.ID).
		Update("is_deleted", deleted).Error; err != nil {
		tx.Rollback()
		return err
	}

	if len(questionIDs) > 0 {
		if err := tx.Model(&models.Option{}).
			Where("question_id IN ?", questionIDs).
			Update("is_deleted", deleted).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

// SoftDeleteQuestion hides a question and its options.
func (s *SurveyService) SoftDeleteQuestion(questionID, creatorID uint) error {
	return s.setQuestionDeletedFlag(questionID, creatorID, true)
}

func (s *SurveyService) RestoreQuestion(questionID, creatorID uint) error {
	return s.setQuestionDeletedFlag(questionID, creatorID, false)
}

func (s *SurveyService) setQuestionDeletedFlag(questionID, creatorID uint, deleted bool) error {
	var question models.Question
	if err := s.db.Where("id = ? AND is_deleted = ?", questionID, !deleted).First(&question).Error; err != nil {
		return ErrQuestionNotFound
	}
	if _, err := s.getOwnedSurvey(question.SurveyID, creatorID); err != nil {
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(&question).Update("is_deleted", deleted).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Model(&models.Option{}).
		Where("question_id = ?", question.ID).
		Update("is_deleted", deleted).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// Archive flips the orthogonal visibility flag; any status allows it.
func (s *SurveyService) Archive(surveyID, creatorID uint) error {
	return s.setArchivedFlag(surveyID, creatorID, true)
}

func (s *SurveyService) Unarchive(surveyID, creatorID uint) error {
	return s.setArchivedFlag(surveyID, creatorID, false)
}

func (s *SurveyService) setArchivedFlag(surveyID, creatorID uint, archived bool) error {
	survey, err := s.getOwnedSurvey(surveyID, creatorID)
	if err != nil {
		return err
	}
	return s.db.Model(survey).Update("archived", archived).Error
}

func (s *SurveyService) getOwnedSurvey(surveyID, creatorID uint) (*models.Survey, error) {
	var survey models.Survey
	if err := s.db.Where("id = ? AND creator_id = ? AND is_deleted = ?", surveyID, creatorID, false).
		First(&survey).Error; err != nil {
		return nil, ErrSurveyNotFound
	}
	return &survey, nil
}
