package services

import (
	"fmt"
	"testing"

	"surveymaster/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory SQLite database so the services run their
// real query paths. A single connection keeps the in-memory database alive
// for the whole test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Survey{},
		&models.Question{},
		&models.Option{},
		&models.Response{},
		&models.Answer{},
	))

	return db
}

func createUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createCreator(t *testing.T, db *gorm.DB) *models.User {
	return createUser(t, db, "creator", models.RoleCreator)
}

func createTaker(t *testing.T, db *gorm.DB, n int) *models.User {
	return createUser(t, db, fmt.Sprintf("taker%d", n), models.RoleTaker)
}

// createColorPoll builds the canonical radio survey: "Favorite color?"
// with options Red, Blue, Green, already published.
func createColorPoll(t *testing.T, db *gorm.DB, creatorID uint) *models.Survey {
	t.Helper()

	svc := NewSurveyService(db)
	survey, err := svc.CreateSurvey(creatorID, &CreateSurveyRequest{
		Name: "Color Poll",
		Questions: []CreateQuestionRequest{
			{
				Text: "Favorite color?",
				Type: models.QuestionRadio,
				Options: []CreateOptionRequest{
					{Text: "Red"},
					{Text: "Blue"},
					{Text: "Green"},
				},
			},
		},
	})
	require.NoError(t, err)

	survey, err = svc.Publish(survey.ID, creatorID)
	require.NoError(t, err)

	return reloadSurvey(t, db, survey.ID, creatorID)
}

func reloadSurvey(t *testing.T, db *gorm.DB, surveyID, creatorID uint) *models.Survey {
	t.Helper()

	survey, err := NewSurveyService(db).GetSurveyByID(surveyID, creatorID)
	require.NoError(t, err)
	return survey
}

// submitRadio records one taker's vote for a single option.
func submitRadio(t *testing.T, db *gorm.DB, survey *models.Survey, takerID, optionID uint) {
	t.Helper()

	_, err := NewResponseService(db).SubmitResponse(survey.ID, takerID, &SubmitResponseRequest{
		Answers: []SubmittedAnswer{
			{QuestionID: survey.Questions[0].ID, OptionIDs: []uint{optionID}},
		},
	})
	require.NoError(t, err)
}

func optionByText(t *testing.T, question *models.Question, text string) *models.Option {
	t.Helper()

	for i := range question.Options {
		if question.Options[i].Text == text {
			return &question.Options[i]
		}
	}
	t.Fatalf("option %q not found", text)
	return nil
}
