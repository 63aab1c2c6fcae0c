package handlers

import (
	"errors"
	"net/http"

	"surveymaster/services"

	"github.com/gin-gonic/gin"
)

// currentUserID pulls the authenticated user's id out of the gin context.
func currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, false
	}
	return userID.(uint), true
}

// errorStatus translates the service sentinel errors into HTTP statuses.
// The services own the error kinds; this is the only place they become
// user-facing.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrSurveyNotFound),
		errors.Is(err, services.ErrQuestionNotFound),
		errors.Is(err, services.ErrOptionNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrSurveyNotAcceptingResponses),
		errors.Is(err, services.ErrDuplicateSubmission):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidAnswerShape),
		errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}
