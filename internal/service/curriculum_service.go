package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"growwise/internal/model"
	"growwise/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrResultNotFound = errors.New("assessment result not found")
	ErrPathNotFound   = errors.New("learning path not found")
	ErrNotYourPath    = errors.New("learning path belongs to another user")
)

// CurriculumService builds personalized learning paths from assessment
// results
type CurriculumService struct {
	ai      *GenAIClient
	paths   repository.CurriculumRepo
	results repository.AssessmentRepo
}

// NewCurriculumService creates a new curriculum service
func NewCurriculumService(ai *GenAIClient, paths repository.CurriculumRepo, results repository.AssessmentRepo) *CurriculumService {
	return &CurriculumService{
		ai:      ai,
		paths:   paths,
		results: results,
	}
}

var pathSchema = &ResponseSchema{
	Name: "learning-path",
	Definition: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"stages": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name":      map[string]interface{}{"type": "string"},
						"focusArea": map[string]interface{}{"type": "string"},
						"content": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"type": map[string]interface{}{
										"type": "string",
										"enum": []interface{}{"video", "documentation", "article", "tutorial", "exercise"},
									},
									"title":           map[string]interface{}{"type": "string"},
									"description":     map[string]interface{}{"type": "string"},
									"url":             map[string]interface{}{"type": "string"},
									"durationMinutes": map[string]interface{}{"type": "integer"},
								},
								"required": []interface{}{"type", "title"},
							},
						},
					},
					"required": []interface{}{"name", "focusArea"},
				},
			},
		},
		"required": []interface{}{"stages"},
	},
}

// GeneratePath builds and persists a learning path from a finished
// assessment. AI failure degrades to the deterministic level-keyed path.
func (s *CurriculumService) GeneratePath(ctx context.Context, userID, resultID string) (*model.LearningPath, error) {
	result, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrResultNotFound
	}
	if result.UserID != userID {
		return nil, ErrResultNotFound
	}

	path := &model.LearningPath{
		UserID:   userID,
		ResultID: result.ID,
		Topic:    result.Topic,
		Level:    result.DetectedLevel,
		Stages:   s.generateStages(ctx, result),
	}

	if _, err := s.paths.Create(ctx, path); err != nil {
		return nil, err
	}
	return path, nil
}

func (s *CurriculumService) generateStages(ctx context.Context, result *model.AssessmentResult) []model.Stage {
	if !s.ai.Enabled() {
		return fallbackStages(result.Topic, result.DetectedLevel)
	}

	prompt := s.buildPathPrompt(result)
	raw, err := s.ai.Complete(ctx, s.ai.Models().Curriculum, prompt, pathSchema)
	if err != nil {
		log.Printf("curriculum generation failed for user %s, using fallback: %v", result.UserID, err)
		return fallbackStages(result.Topic, result.DetectedLevel)
	}

	var parsed struct {
		Stages []model.Stage `json:"stages"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.Stages) == 0 {
		log.Printf("curriculum parse failed for user %s, using fallback: %v", result.UserID, err)
		return fallbackStages(result.Topic, result.DetectedLevel)
	}

	for i := range parsed.Stages {
		parsed.Stages[i].Order = i + 1
		for j := range parsed.Stages[i].Content {
			parsed.Stages[i].Content[j].ID = uuid.New().String()
		}
	}
	return parsed.Stages
}

func (s *CurriculumService) buildPathPrompt(result *model.AssessmentResult) string {
	return fmt.Sprintf(`You are designing a personalized curriculum. Return ONLY valid JSON:
{
  "stages": [
    {
      "name": "stage name",
      "focusArea": "what this stage develops",
      "content": [
        {"type": "video|documentation|article|tutorial|exercise", "title": "...", "description": "...", "url": "https://...", "durationMinutes": 20}
      ]
    }
  ]
}

Learner profile:
- Topic: %s
- Detected level: %s
- Score: %d/100
- Weak areas: %s
- Strong areas: %s

Generate 3 ordered stages that start from the weak areas. Each stage needs
6-8 content items mixing videos, documentation, articles, tutorials and at
least one hands-on exercise.`,
		result.Topic, result.DetectedLevel, result.Score,
		strings.Join(result.Weaknesses, ", "), strings.Join(result.Strengths, ", "))
}

// GetCurrent returns the user's most recent path
func (s *CurriculumService) GetCurrent(ctx context.Context, userID string) (*model.LearningPath, error) {
	return s.paths.GetCurrentByUser(ctx, userID)
}

// GetByID returns a path after checking ownership
func (s *CurriculumService) GetByID(ctx context.Context, pathID, userID string) (*model.LearningPath, error) {
	path, err := s.paths.GetByID(ctx, pathID)
	if err != nil {
		return nil, err
	}
	if path == nil {
		return nil, ErrPathNotFound
	}
	if path.UserID != userID {
		return nil, ErrNotYourPath
	}
	return path, nil
}

// CompleteContent marks a content item done and returns the refreshed
// completion percentage
func (s *CurriculumService) CompleteContent(ctx context.Context, pathID, userID, contentID string) (int, error) {
	path, err := s.GetByID(ctx, pathID, userID)
	if err != nil {
		return 0, err
	}

	if err := s.paths.MarkContentComplete(ctx, pathID, contentID); err != nil {
		return 0, err
	}

	for i := range path.Stages {
		for j := range path.Stages[i].Content {
			if path.Stages[i].Content[j].ID == contentID {
				path.Stages[i].Content[j].Completed = true
			}
		}
	}
	return path.Completion(), nil
}

// fallbackStages is the deterministic level-keyed curriculum used when
// the AI collaborator is unavailable
func fallbackStages(topic string, level model.SkillLevel) []model.Stage {
	var defs []struct {
		name  string
		focus string
	}

	switch level {
	case model.LevelAdvanced:
		defs = []struct {
			name  string
			focus string
		}{
			{"Expert Techniques", "Advanced patterns and architectures"},
			{"System Design", "Scalable solutions"},
			{"Leadership", "Technical leadership and mentoring"},
		}
	case model.LevelIntermediate:
		defs = []struct {
			name  string
			focus string
		}{
			{"Advanced Concepts", fmt.Sprintf("Deep dive into %s", topic)},
			{"Real-world Applications", "Industry-standard practices"},
			{"Complex Projects", "End-to-end implementation"},
		}
	default:
		defs = []struct {
			name  string
			focus string
		}{
			{"Fundamentals", fmt.Sprintf("Basic concepts of %s", topic)},
			{"Core Skills", "Essential skills and techniques"},
			{"Practice Projects", "Hands-on application"},
		}
	}

	stages := make([]model.Stage, 0, len(defs))
	for i, d := range defs {
		stages = append(stages, model.Stage{
			Name:      d.name,
			Order:     i + 1,
			FocusArea: d.focus,
			Content:   fallbackContent(d.name, d.focus, topic),
		})
	}
	return stages
}

func fallbackContent(stageName, focusArea, topic string) []model.ContentItem {
	slug := strings.ReplaceAll(strings.ToLower(stageName), " ", "-")
	return []model.ContentItem{
		{
			ID:          uuid.New().String(),
			Type:        model.ContentVideo,
			Title:       fmt.Sprintf("%s - Tutorial Video", stageName),
			Description: fmt.Sprintf("Comprehensive video tutorial covering %s", focusArea),
			URL:         fmt.Sprintf("https://youtube.com/results?search_query=%s+%s", strings.ReplaceAll(topic, " ", "+"), slug),
			Duration:    30,
		},
		{
			ID:          uuid.New().String(),
			Type:        model.ContentDocumentation,
			Title:       fmt.Sprintf("Official %s Documentation", stageName),
			Description: fmt.Sprintf("Reference documentation for %s", focusArea),
			Duration:    25,
		},
		{
			ID:          uuid.New().String(),
			Type:        model.ContentArticle,
			Title:       fmt.Sprintf("Understanding %s: Complete Guide", stageName),
			Description: fmt.Sprintf("In-depth article about %s with examples", focusArea),
			Duration:    15,
		},
		{
			ID:          uuid.New().String(),
			Type:        model.ContentExercise,
			Title:       fmt.Sprintf("%s - Practice Exercise", stageName),
			Description: fmt.Sprintf("Implement a solution that demonstrates %s, test it and document your approach.", focusArea),
			Duration:    45,
		},
	}
}
