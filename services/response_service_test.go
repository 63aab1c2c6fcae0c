package services

import (
	"testing"

	"surveymaster/models"

	"github.com/stretchr/testify/require"
)

func TestSubmitResponseOncePerTaker(t *testing.T) {
	db := setupTestDB(t)
	creator := createCreator(t, db)
	taker := createTaker(t, db, 1)
	survey := createColorPoll(t, db, creator.ID)
	red := optionByText(t, &survey.Questions[0], "Red")
	svc := NewResponseService(db)

	req := &SubmitResponseRequest{
		Answers: []SubmittedAnswer{
			{QuestionID: survey.Questions[0].ID, OptionIDs: []uint{red.ID}},
		},
	}

	response, err := svc.SubmitResponse(survey.ID, taker.ID, req)
	require.NoError(t, err)
	require.Len(t, response.Answers, 1)

	_, err = svc.SubmitResponse(survey.ID, taker.ID, req)
	require.ErrorIs(t, err, ErrDuplicateSubmission)

	// Exactly one response and one answer exist afterwards.
	var responses, answers int64
	require.NoError(t, db.Model(&models.Response{}).Where("survey_id = ?", survey.ID).Count(&responses).Error)
	require.NoError(t, db.Model(&models.Answer{}).Count(&answers).Error)
	require.EqualValues(t, 1, responses)
	require.EqualValues(t, 1, answers)
}

func TestSubmitRejectedUnlessAccepting(t *testing.T) {
	db := setupTestDB(t)
	creator := createCreator(t, db)
	taker := createTaker(t, db, 1)
	surveySvc := NewSurveyService(db)
	svc := NewResponseService(db)

	survey, err := surveySvc.CreateSurvey(creator.ID, &CreateSurveyRequest{Name: "Poll"})
	require.NoError(t, err)

	// Draft surveys do not accept responses.
	_, err = svc.SubmitResponse(survey.ID, taker.ID, &SubmitResponseRequest{})
	require.ErrorIs(t, err, ErrSurveyNotAcceptingResponses)

	_, err = surveySvc.Publish(survey.ID, creator.ID)
	require.NoError(t, err)
	_, err = surveySvc.Close(survey.ID, creator.ID)
	require.NoError(t, err)

	_, err = svc.SubmitResponse(survey.ID, taker.ID, &SubmitResponseRequest{})
	require.ErrorIs(t, err, ErrSurveyNotAcceptingResponses)

	_, err = svc.SubmitResponse(9999, taker.ID, &SubmitResponseRequest{})
	require.ErrorIs(t, err, ErrSurveyNotFound)
}

func TestCheckboxCreatesOneAnswerPerOption(t *testing.T) {
	db := setupTestDB(t)
	creator := createCreator(t, db)
	taker := createTaker(t, db, 1)
	surveySvc := NewSurveyService(db)

	survey, err := surveySvc.CreateSurvey(creator.ID, &CreateSurveyRequest{
		Name: "Toppings",
		Questions: []CreateQuestionRequest{
			{
				Text: "Pick toppings",
				Type: models.QuestionCheckbox,
				Options: []CreateOptionRequest{
					{Text: "Olives"},
					{Text: "Mushrooms"},
					{Text: "Onions"},
				},
			},
		},
	})
	require.NoError(t, err)
	_, err = surveySvc.Publish(survey.ID, creator.ID)
	require.NoError(t, err)
	survey = reloadSurvey(t, db, survey.ID, creator.ID)

	question := survey.Questions[0]
	response, err := NewResponseService(db).SubmitResponse(survey.ID, taker.ID, &SubmitResponseRequest{
		Answers: []SubmittedAnswer{
			{QuestionID: question.ID, OptionIDs: []uint{question.Options[0].ID, question.Options[2].ID}},
		},
	})
	require.NoError(t, err)
	require.Len(t, response.Answers, 2)

	var answers int64
	require.NoError(t, db.Model(&models.Answer{}).
		Where("response_id = ? AND question_id = ?", response.ID, question.ID).
		Count(&answers).Error)
	require.EqualValues(t, 2, answers)
}

func TestRadioRequiresExactlyOneOption(t *testing.T) {
	db := setupTestDB(t)
	creator := createCreator(t, db)
	taker := createTaker(t, db, 1)
	survey := createColorPoll(t, db, creator.ID)
	question := survey.Questions[0]
	svc := NewResponseService(db)

	_, err := svc.SubmitResponse(survey.ID, taker.ID, &SubmitResponseRequest{
		Answers: []SubmittedAnswer{
			{QuestionID: question.ID, OptionIDs: []uint{question.Options[0].ID, question.Options[1].ID}},
		},
	})
	require.ErrorIs(t, err, ErrInvalidAnswerShape)

	// Text on a radio question is the wrong shape too.
	_, err = svc.SubmitResponse(survey.ID, taker.ID, &SubmitResponseRequest{
		Answers: []SubmittedAnswer{
			{QuestionID: question.ID, Text: "Red"},
		},
	})
	require.ErrorIs(t, err, ErrInvalidAnswerShape)

	// An option that belongs to a different question does not resolve.
	_, err = svc.SubmitResponse(survey.ID, taker.ID, &SubmitResponseRequest{
		Answers: []SubmittedAnswer{
			{QuestionID: question.ID, OptionIDs: []uint{9999}},
		},
	})
	require.ErrorIs(t, err, ErrOptionNotFound)
}

func TestTextAnswerRules(t *testing.T) {
	db := setupTestDB(t)
	creator := createCreator(t, db)
	surveySvc := NewSurveyService(db)

	survey, err := surveySvc.CreateSurvey(creator.ID, &CreateSurveyRequest{
		Name: "Feedback",
		Questions: []CreateQuestionRequest{
			{Text: "Required comment", Type: models.QuestionText, Required: true},
			{Text: "Optional comment", Type: models.QuestionText},
		},
	})
	require.NoError(t, err)
	_, err = surveySvc.Publish(survey.ID, creator.ID)
	require.NoError(t, err)
	survey = reloadSurvey(t, db, survey.ID, creator.ID)

	svc := NewResponseService(db)

	// Missing required text fails the whole submission.
	taker1 := createTaker(t, db, 1)
	_, err = svc.SubmitResponse(survey.ID, taker1.ID, &SubmitResponseRequest{
		Answers: []SubmittedAnswer{
			{QuestionID: survey.Questions[1].ID, Text: "only the optional one"},
		},
	})
	require.ErrorIs(t, err, ErrValidation)

	// Empty optional text is simply omitted.
	taker2 := createTaker(t, db, 2)
	response, err := svc.SubmitResponse(survey.ID, taker2.ID, &SubmitResponseRequest{
		Answers: []SubmittedAnswer{
			{QuestionID: survey.Questions[0].ID, Text: "all good"},
			{QuestionID: survey.Questions[1].ID, Text: "   "},
		},
	})
	require.NoError(t, err)
	require.Len(t, response.Answers, 1)
	require.Equal(t, "all good", response.Answers[0].Text)
}

func TestSubmitUnknownQuestionRejected(t *testing.T) {
	db := setupTestDB(t)
	creator := createCreator(t, db)
	taker := createTaker(t, db, 1)
	survey := createColorPoll(t, db, creator.ID)

	_, err := NewResponseService(db).SubmitResponse(survey.ID, taker.ID, &SubmitResponseRequest{
		Answers: []SubmittedAnswer{
			{QuestionID: 9999, Text: "hello"},
		},
	})
	require.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestFailedSubmissionLeavesNothingBehind(t *testing.T) {
	db := setupTestDB(t)
	creator := createCreator(t, db)
	taker := createTaker(t, db, 1)
	survey := createColorPoll(t, db, creator.ID)
	question := survey.Questions[0]

	// Valid radio pick plus an invalid extra answer: no partial state
	// may survive.
	_, err := NewResponseService(db).SubmitResponse(survey.ID, taker.ID, &SubmitResponseRequest{
		Answers: []SubmittedAnswer{
			{QuestionID: question.ID, OptionIDs: []uint{question.Options[0].ID}},
			{QuestionID: 9999, Text: "stray"},
		},
	})
	require.ErrorIs(t, err, ErrQuestionNotFound)

	var responses, answers int64
	require.NoError(t, db.Model(&models.Response{}).Count(&responses).Error)
	require.NoError(t, db.Model(&models.Answer{}).Count(&answers).Error)
	require.Zero(t, responses)
	require.Zero(t, answers)

	// The taker can still submit a valid response afterwards.
	_, err = NewResponseService(db).SubmitResponse(survey.ID, taker.ID, &SubmitResponseRequest{
		Answers: []SubmittedAnswer{
			{QuestionID: question.ID, OptionIDs: []uint{question.Options[0].ID}},
		},
	})
	require.NoError(t, err)
}
