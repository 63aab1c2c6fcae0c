package handlers

import (
	"net/http"
	"strconv"

	"surveymaster/models"
	"surveymaster/services"

	"github.com/gin-gonic/gin"
)

type SurveyHandler struct {
	surveyService *services.SurveyService
}

func NewSurveyHandler(surveyService *services.SurveyService) *SurveyHandler {
	return &SurveyHandler{
		surveyService: surveyService,
	}
}

func (h *SurveyHandler) CreateSurvey(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	survey, err := h.surveyService.CreateSurvey(userID, &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, survey)
}

func (h *SurveyHandler) ListCreatorSurveys(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	includeArchived := c.Query("archived") == "true"

	surveys, err := h.surveyService.ListCreatorSurveys(userID, includeArchived)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, surveys)
}

func (h *SurveyHandler) ListOpenSurveys(c *gin.Context) {
	surveys, err := h.surveyService.ListOpenSurveys()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, surveys)
}

func (h *SurveyHandler) GetSurveyByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	surveyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	survey, err := h.surveyService.GetSurveyByID(surveyID, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

func (h *SurveyHandler) UpdateSurvey(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	surveyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	survey, err := h.surveyService.UpdateSurvey(surveyID, userID, &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

func (h *SurveyHandler) AddQuestion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	surveyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.surveyService.AddQuestion(surveyID, userID, &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

func (h *SurveyHandler) AddOption(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	questionID, ok := pathID(c, "questionID")
	if !ok {
		return
	}

	var req services.CreateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	option, err := h.surveyService.AddOption(questionID, userID, &req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, option)
}

func (h *SurveyHandler) DeleteQuestion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	questionID, ok := pathID(c, "questionID")
	if !ok {
		return
	}

	if err := h.surveyService.SoftDeleteQuestion(questionID, userID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "question deleted"})
}

func (h *SurveyHandler) RestoreQuestion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	questionID, ok := pathID(c, "questionID")
	if !ok {
		return
	}

	if err := h.surveyService.RestoreQuestion(questionID, userID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "question restored"})
}

func (h *SurveyHandler) Publish(c *gin.Context) {
	h.transition(c, h.surveyService.Publish, "survey published")
}

func (h *SurveyHandler) Close(c *gin.Context) {
	h.transition(c, h.surveyService.Close, "survey closed")
}

func (h *SurveyHandler) Republish(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	surveyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	survey, changed, err := h.surveyService.Republish(surveyID, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	message := "survey republished"
	if !changed {
		message = "survey is already republished"
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "survey": survey})
}

func (h *SurveyHandler) DeleteSurvey(c *gin.Context) {
	h.flagOp(c, h.surveyService.SoftDelete, "survey deleted")
}

func (h *SurveyHandler) RestoreSurvey(c *gin.Context) {
	h.flagOp(c, h.surveyService.Restore, "survey restored")
}

func (h *SurveyHandler) ArchiveSurvey(c *gin.Context) {
	h.flagOp(c, h.surveyService.Archive, "survey archived")
}

func (h *SurveyHandler) UnarchiveSurvey(c *gin.Context) {
	h.flagOp(c, h.surveyService.Unarchive, "survey unarchived")
}

func (h *SurveyHandler) transition(c *gin.Context, op func(surveyID, creatorID uint) (*models.Survey, error), message string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	surveyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	survey, err := op(surveyID, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message, "survey": survey})
}

func (h *SurveyHandler) flagOp(c *gin.Context, op func(surveyID, creatorID uint) error, message string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	surveyID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := op(surveyID, userID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
