package handlers

import (
	"net/http"

	"surveymaster/services"

	"github.com/gin-gonic/gin"
)

type ResponseHandler struct {
	responseService *services.ResponseService
	resultsService  *services.ResultsService
	hub             *services.Hub
}

func NewResponseHandler(responseService *services.ResponseService, resultsService *services.ResultsService, hub *services.Hub) *ResponseHandler {
	return &ResponseHandler{
		responseService: responseService,
		resultsService:  resultsService,
		hub:             hub,
	}
}

func (h *ResponseHandler) SubmitResponse(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	surveyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.responseService.SubmitResponse(surveyID, userID, &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	// Stored aggregates are stale now; watchers get the fresh numbers.
	h.resultsService.InvalidateCache(surveyID)
	if h.hub != nil {
		h.hub.BroadcastResults(surveyID)
	}

	c.JSON(http.StatusCreated, response)
}

func (h *ResponseHandler) GetSurveyResponses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	surveyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	responses, err := h.responseService.GetSurveyResponses(surveyID, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses)
}
