package services

import "errors"

// Sentinel errors returned by the survey, response and results services.
// Handlers map these to HTTP statuses with errors.Is; the services never
// format user-facing messages beyond the error text itself.
var (
	ErrSurveyNotFound              = errors.New("survey not found")
	ErrQuestionNotFound            = errors.New("question not found")
	ErrOptionNotFound              = errors.New("option not found")
	ErrInvalidTransition           = errors.New("invalid survey status transition")
	ErrSurveyNotAcceptingResponses = errors.New("survey is not accepting responses")
	ErrDuplicateSubmission         = errors.New("a response for this survey was already submitted")
	ErrInvalidAnswerShape          = errors.New("answer does not match the question type")
	ErrValidation                  = errors.New("validation failed")
)
