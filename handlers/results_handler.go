package handlers

import (
	"net/http"

	"surveymaster/services"

	"github.com/gin-gonic/gin"
)

type ResultsHandler struct {
	resultsService *services.ResultsService
}

func NewResultsHandler(resultsService *services.ResultsService) *ResultsHandler {
	return &ResultsHandler{
		resultsService: resultsService,
	}
}

func (h *ResultsHandler) GetSurveyResults(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	surveyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	results, err := h.resultsService.GetSurveyResults(surveyID, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
