package services

import (
	"testing"

	"surveymaster/models"

	"github.com/stretchr/testify/require"
)

func TestColorPollAggregation(t *testing.T) {
	db := setupTestDB(t)
	creator := createCreator(t, db)
	survey := createColorPoll(t, db, creator.ID)
	red := optionByText(t, &survey.Questions[0], "Red")
	blue := optionByText(t, &survey.Questions[0], "Blue")

	// Three takers vote Red, Red, Blue.
	submitRadio(t, db, survey, createTaker(t, db, 1).ID, red.ID)
	submitRadio(t, db, survey, createTaker(t, db, 2).ID, red.ID)
	submitRadio(t, db, survey, createTaker(t, db, 3).ID, blue.ID)

	results, err := NewResultsService(db, nil).GetSurveyResults(survey.ID, creator.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, results.TotalResponses)
	require.Len(t, results.Questions, 1)

	question := results.Questions[0]
	require.EqualValues(t, 3, question.TotalAnswers)
	require.Len(t, question.Options, 3)

	// Sorted by count descending: Red, Blue, Green.
	require.Equal(t, "Red", question.Options[0].Text)
	require.EqualValues(t, 2, question.Options[0].Count)
	require.InDelta(t, 66.67, question.Options[0].Percentage, 0.001)

	require.Equal(t, "Blue", question.Options[1].Text)
	require.EqualValues(t, 1, question.Options[1].Count)
	require.InDelta(t, 33.33, question.Options[1].Percentage, 0.001)

	require.Equal(t, "Green", question.Options[2].Text)
	require.Zero(t, question.Options[2].Count)
	require.Zero(t, question.Options[2].Percentage)

	// Counts always sum to the question total.
	var sum int64
	for _, option := range question.Options {
		sum += option.Count
	}
	require.Equal(t, question.TotalAnswers, sum)
}

func TestAggregationWithNoResponses(t *testing.T) {
	db := setupTestDB(t)
	creator := createCreator(t, db)
	survey := createColorPoll(t, db, creator.ID)

	results, err := NewResultsService(db, nil).GetSurveyResults(survey.ID, creator.ID)
	require.NoError(t, err)
	require.Zero(t, results.TotalResponses)

	for _, option := range results.Questions[0].Options {
		require.Zero(t, option.Count)
		require.Zero(t, option.Percentage)
	}
}

func TestAggregationTieBreakByPosition(t *testing.T) {
	db := setupTestDB(t)
	creator := createCreator(t, db)
	survey := createColorPoll(t, db, creator.ID)
	blue := optionByText(t, &survey.Questions[0], "Blue")
	green := optionByText(t, &survey.Questions[0], "Green")

	// Blue and Green get one vote each; Red gets none. Equal counts fall
	// back to option position, so Blue (position 2) precedes Green (3).
	submitRadio(t, db, survey, createTaker(t, db, 1).ID, green.ID)
	submitRadio(t, db, survey, createTaker(t, db, 2).ID, blue.ID)

	results, err := NewResultsService(db, nil).GetSurveyResults(survey.ID, creator.ID)
	require.NoError(t, err)

	options := results.Questions[0].Options
	require.Equal(t, "Blue", options[0].Text)
	require.Equal(t, "Green", options[1].Text)
	require.Equal(t, "Red", options[2].Text)
}

func TestTextQuestionAggregation(t *testing.T) {
	db := setupTestDB(t)
	creator := createCreator(t, db)
	surveySvc := NewSurveyService(db)

	survey, err := surveySvc.CreateSurvey(creator.ID, &CreateSurveyRequest{
		Name: "Feedback",
		Questions: []CreateQuestionRequest{
			{Text: "Any comments?", Type: models.QuestionText},
		},
	})
	require.NoError(t, err)
	_, err = surveySvc.Publish(survey.ID, creator.ID)
	require.NoError(t, err)
	survey = reloadSurvey(t, db, survey.ID, creator.ID)

	responseSvc := NewResponseService(db)
	_, err = responseSvc.SubmitResponse(survey.ID, createTaker(t, db, 1).ID, &SubmitResponseRequest{
		Answers: []SubmittedAnswer{{QuestionID: survey.Questions[0].ID, Text: "great"}},
	})
	require.NoError(t, err)
	_, err = responseSvc.SubmitResponse(survey.ID, createTaker(t, db, 2).ID, &SubmitResponseRequest{
		Answers: []SubmittedAnswer{{QuestionID: survey.Questions[0].ID, Text: ""}},
	})
	require.NoError(t, err)

	results, err := NewResultsService(db, nil).GetSurveyResults(survey.ID, creator.ID)
	require.NoError(t, err)

	question := results.Questions[0]
	// Only the non-empty answer counts; text questions have no option
	// breakdown.
	require.EqualValues(t, 1, question.TotalAnswers)
	require.Empty(t, question.Options)
}

func TestDeletedOptionExcludedFromResults(t *testing.T) {
	db := setupTestDB(t)
	creator := createCreator(t, db)
	survey := createColorPoll(t, db, creator.ID)
	green := optionByText(t, &survey.Questions[0], "Green")

	require.NoError(t, db.Model(&models.Option{}).
		Where("id = ?", green.ID).
		Update("is_deleted", true).Error)

	results, err := NewResultsService(db, nil).GetSurveyResults(survey.ID, creator.ID)
	require.NoError(t, err)
	require.Len(t, results.Questions[0].Options, 2)
	for _, option := range results.Questions[0].Options {
		require.NotEqual(t, "Green", option.Text)
	}
}

func TestResultsRequireOwnership(t *testing.T) {
	db := setupTestDB(t)
	creator := createCreator(t, db)
	other := createUser(t, db, "other", models.RoleCreator)
	survey := createColorPoll(t, db, creator.ID)

	_, err := NewResultsService(db, nil).GetSurveyResults(survey.ID, other.ID)
	require.ErrorIs(t, err, ErrSurveyNotFound)
}

func TestAggregateQuestionRounding(t *testing.T) {
	question := models.Question{
		ID:   1,
		Text: "Pick",
		Type: models.QuestionRadio,
		Options: []models.Option{
			{ID: 10, Text: "A", Position: 1},
			{ID: 11, Text: "B", Position: 2},
			{ID: 12, Text: "C", Position: 3},
		},
	}

	// 1/3 and 2/3 must come out as 33.33 and 66.67 with half-up rounding.
	result := aggregateQuestion(&question, map[uint]int64{10: 2, 11: 1}, 0)
	require.EqualValues(t, 3, result.TotalAnswers)
	require.InDelta(t, 66.67, result.Options[0].Percentage, 0.0001)
	require.InDelta(t, 33.33, result.Options[1].Percentage, 0.0001)
	require.Zero(t, result.Options[2].Percentage)

	// An even split of 8 across A and B is 50 each.
	result = aggregateQuestion(&question, map[uint]int64{10: 4, 11: 4}, 0)
	require.InDelta(t, 50.0, result.Options[0].Percentage, 0.0001)
	require.Equal(t, "A", result.Options[0].Text)
	require.Equal(t, "B", result.Options[1].Text)
}
