package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"surveymaster/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ResultsService computes per-question answer counts and percentages.
// Aggregations are pure reads; the redis client, when present, caches the
// marshaled result per survey until the next submission invalidates it.
type ResultsService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewResultsService(db *gorm.DB, redis *redis.Client) *ResultsService {
	return &ResultsService{db: db, redis: redis}
}

type OptionResult struct {
	OptionID   uint    `json:"option_id"`
	Text       string  `json:"text"`
	Position   int     `json:"position"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type QuestionResults struct {
	QuestionID   uint           `json:"question_id"`
	Text         string         `json:"text"`
	Type         string         `json:"type"`
	Position     int            `json:"position"`
	TotalAnswers int64          `json:"total_answers"`
	Options      []OptionResult `json:"options,omitempty"`
}

type SurveyResults struct {
	SurveyID       uint              `json:"survey_id"`
	Name           string            `json:"name"`
	Status         string            `json:"status"`
	TotalResponses int64             `json:"total_responses"`
	Questions      []QuestionResults `json:"questions"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

const resultsCacheTTL = 30 * time.Second

// GetSurveyResults returns the aggregated results for a survey owned by
// creatorID, serving from cache when possible.
func (s *ResultsService) GetSurveyResults(surveyID, creatorID uint) (*SurveyResults, error) {
	var survey models.Survey
	if err := s.db.Where("id = ? AND creator_id = ? AND is_deleted = ?", surveyID, creatorID, false).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("questions.position")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("options.position")
		}).
		First(&survey).Error; err != nil {
		return nil, ErrSurveyNotFound
	}

	if cached := s.getCachedResults(surveyID); cached != nil {
		return cached, nil
	}

	results, err := s.computeResults(&survey)
	if err != nil {
		return nil, err
	}

	s.storeCachedResults(surveyID, results)
	return results, nil
}

// ComputeSurveyResults recomputes without touching the cache. The hub uses
// this to push fresh aggregates after a submission.
func (s *ResultsService) ComputeSurveyResults(surveyID uint) (*SurveyResults, error) {
	var survey models.Survey
	if err := s.db.Where("id = ? AND is_deleted = ?", surveyID, false).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("questions.position")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_deleted = ?", false).Order("options.position")
		}).
		First(&survey).Error; err != nil {
		return nil, ErrSurveyNotFound
	}
	return s.computeResults(&survey)
}

func (s *ResultsService) computeResults(survey *models.Survey) (*SurveyResults, error) {
	optionCounts, err := s.optionCounts(survey.ID)
	if err != nil {
		return nil, err
	}
	textCounts, err := s.textAnswerCounts(survey.ID)
	if err != nil {
		return nil, err
	}

	var totalResponses int64
	if err := s.db.Model(&models.Response{}).
		Where("survey_id = ?", survey.ID).
		Count(&totalResponses).Error; err != nil {
		return nil, err
	}

	results := &SurveyResults{
		SurveyID:       survey.ID,
		Name:           survey.Name,
		Status:         survey.Status,
		TotalResponses: totalResponses,
		Questions:      make([]QuestionResults, 0, len(survey.Questions)),
		GeneratedAt:    time.Now().UTC(),
	}

	for _, question := range survey.Questions {
		results.Questions = append(results.Questions,
			aggregateQuestion(&question, optionCounts, textCounts[question.ID]))
	}

	return results, nil
}

// aggregateQuestion builds one question's breakdown. For choice questions
// the total is the sum of per-option counts; percentages are rounded
// half-up to two decimals and are all zero when the total is zero. Options
// are ordered by count descending, ties by position ascending. Text
// questions report only the number of non-empty answers.
func aggregateQuestion(question *models.Question, optionCounts map[uint]int64, textCount int64) QuestionResults {
	result := QuestionResults{
		QuestionID: question.ID,
		Text:       question.Text,
		Type:       question.Type,
		Position:   question.Position,
	}

	if question.Type == models.QuestionText {
		result.TotalAnswers = textCount
		return result
	}

	var total int64
	for _, option := range question.Options {
		total += optionCounts[option.ID]
	}
	result.TotalAnswers = total

	result.Options = make([]OptionResult, 0, len(question.Options))
	for _, option := range question.Options {
		count := optionCounts[option.ID]
		var percentage float64
		if total > 0 {
			percentage = round2(float64(count) / float64(total) * 100)
		}
		result.Options = append(result.Options, OptionResult{
			OptionID:   option.ID,
			Text:       option.Text,
			Position:   option.Position,
			Count:      count,
			Percentage: percentage,
		})
	}

	sort.SliceStable(result.Options, func(i, j int) bool {
		if result.Options[i].Count != result.Options[j].Count {
			return result.Options[i].Count > result.Options[j].Count
		}
		return result.Options[i].Position < result.Options[j].Position
	})

	return result
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func (s *ResultsService) optionCounts(surveyID uint) (map[uint]int64, error) {
	type row struct {
		SelectedOptionID uint
		N                int64
	}
	var rows []row
	err := s.db.Model(&models.Answer{}).
		Select("answers.selected_option_id, COUNT(*) as n").
		Joins("JOIN responses ON responses.id = answers.response_id").
		Where("responses.survey_id = ? AND answers.selected_option_id IS NOT NULL", surveyID).
		Group("answers.selected_option_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.SelectedOptionID] = r.N
	}
	return counts, nil
}

func (s *ResultsService) textAnswerCounts(surveyID uint) (map[uint]int64, error) {
	type row struct {
		QuestionID uint
		N          int64
	}
	var rows []row
	err := s.db.Model(&models.Answer{}).
		Select("answers.question_id, COUNT(*) as n").
		Joins("JOIN responses ON responses.id = answers.response_id").
		Where("responses.survey_id = ? AND answers.selected_option_id IS NULL AND answers.text <> ''", surveyID).
		Group("answers.question_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.QuestionID] = r.N
	}
	return counts, nil
}

func resultsCacheKey(surveyID uint) string {
	return fmt.Sprintf("survey_results:%d", surveyID)
}

func (s *ResultsService) getCachedResults(surveyID uint) *SurveyResults {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Get(context.Background(), resultsCacheKey(surveyID)).Result()
	if err != nil {
		return nil
	}

	var results SurveyResults
	if err := json.Unmarshal([]byte(data), &results); err != nil {
		log.Printf("Failed to unmarshal cached results for survey %d: %v", surveyID, err)
		return nil
	}
	return &results
}

func (s *ResultsService) storeCachedResults(surveyID uint, results *SurveyResults) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(results)
	if err != nil {
		log.Printf("Failed to marshal results for survey %d: %v", surveyID, err)
		return
	}

	if err := s.redis.Set(context.Background(), resultsCacheKey(surveyID), data, resultsCacheTTL).Err(); err != nil {
		log.Printf("Failed to cache results for survey %d: %v", surveyID, err)
	}
}

// InvalidateCache drops a survey's cached results after a new submission.
func (s *ResultsService) InvalidateCache(surveyID uint) {
	if s.redis == nil {
		return
	}

	if err := s.redis.Del(context.Background(), resultsCacheKey(surveyID)).Err(); err != nil {
		log.Printf("Failed to invalidate results cache for survey %d: %v", surveyID, err)
	}
}
