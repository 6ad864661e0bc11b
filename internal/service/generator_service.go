package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"growwise/internal/model"

	"github.com/google/uuid"
)

// GeneratorService produces the fixed-size, difficulty-curved question
// batch an assessment session runs on
type GeneratorService struct {
	ai *GenAIClient
}

// NewGeneratorService creates a new question generator
func NewGeneratorService(ai *GenAIClient) *GeneratorService {
	return &GeneratorService{ai: ai}
}

var questionBatchSchema = &ResponseSchema{
	Name: "question-batch",
	Definition: map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"kind": map[string]interface{}{
					"type": "string",
					"enum": []interface{}{"single_choice", "open_response"},
				},
				"prompt": map[string]interface{}{"type": "string"},
				"options": map[string]interface{}{
					"type":  "array",
					"items": map[string]interface{}{"type": "string"},
				},
				"correctIndex": map[string]interface{}{"type": "integer"},
				"difficulty": map[string]interface{}{
					"type": "string",
					"enum": []interface{}{"basic", "medium", "advanced", "niche"},
				},
				"topic":       map[string]interface{}{"type": "string"},
				"explanation": map[string]interface{}{"type": "string"},
			},
			"required": []interface{}{"kind", "prompt", "difficulty", "topic"},
		},
	},
}

// Generate returns exactly BatchSize questions for the topic. It never
// fails: any AI problem degrades to the deterministic fallback batch.
func (s *GeneratorService) Generate(ctx context.Context, topic string) []model.Question {
	if !s.ai.Enabled() {
		return s.fallbackBatch(topic)
	}

	prompt := s.buildGenerationPrompt(topic)
	raw, err := s.ai.Complete(ctx, s.ai.Models().QuestionGen, prompt, questionBatchSchema)
	if err != nil {
		log.Printf("question generation failed for %q, using fallback: %v", topic, err)
		return s.fallbackBatch(topic)
	}

	var generated []model.Question
	if err := json.Unmarshal(raw, &generated); err != nil {
		log.Printf("question batch parse failed for %q, using fallback: %v", topic, err)
		return s.fallbackBatch(topic)
	}

	questions := make([]model.Question, 0, model.BatchSize)
	for _, q := range generated {
		if !usable(q) {
			continue
		}
		if q.Topic == "" {
			q.Topic = topic
		}
		q.ID = uuid.New().String()
		questions = append(questions, q)
		if len(questions) == model.BatchSize {
			break // silently truncate oversized batches
		}
	}

	if len(questions) < model.BatchSize {
		log.Printf("question batch for %q had %d usable items, using fallback", topic, len(questions))
		return s.fallbackBatch(topic)
	}

	// Pin each slot to the fixed difficulty curve
	for i := range questions {
		questions[i].Difficulty = model.DifficultyCurve[i]
	}
	return questions
}

// usable rejects items the session could not safely present
func usable(q model.Question) bool {
	if q.Prompt == "" {
		return false
	}
	switch q.Kind {
	case model.QuestionSingleChoice:
		return len(q.Options) >= 2 && q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options)
	case model.QuestionOpenResponse:
		return true
	default:
		return false
	}
}

func (s *GeneratorService) buildGenerationPrompt(topic string) string {
	return fmt.Sprintf(`You are generating a skill assessment quiz. Return ONLY a JSON array of exactly 5 questions:
[
  {
    "kind": "single_choice" or "open_response",
    "prompt": "question text",
    "options": ["a", "b", "c", "d"],
    "correctIndex": 0,
    "difficulty": "basic" | "medium" | "advanced" | "niche",
    "topic": "%s",
    "explanation": "why the correct answer is correct"
  }
]

Topic: %s

Rules:
1. Exactly 5 questions, no prose outside the JSON.
2. Difficulty must follow this curve by position: 1=basic, 2=medium, 3=medium, 4=advanced, 5=niche.
3. single_choice questions need 4 options and a valid correctIndex.
4. open_response questions omit options and correctIndex.
5. The last question should probe niche, expert-level knowledge of the topic.`,
		topic, topic)
}

// fallbackBatch is the deterministic question set used when the AI
// collaborator is unavailable. One single-choice question per curve slot,
// always answerable, so a learner is never blocked by an outage.
func (s *GeneratorService) fallbackBatch(topic string) []model.Question {
	build := func(slot int, prompt string, options []string, correct int, explanation string) model.Question {
		return model.Question{
			ID:           uuid.New().String(),
			Kind:         model.QuestionSingleChoice,
			Prompt:       prompt,
			Options:      options,
			CorrectIndex: correct,
			Difficulty:   model.DifficultyCurve[slot],
			Topic:        topic,
			Explanation:  explanation,
		}
	}

	return []model.Question{
		build(0,
			fmt.Sprintf("Which statement best describes what %s is?", topic),
			[]string{
				fmt.Sprintf("A technology or discipline used to build and reason about %s solutions", topic),
				"A hardware certification program",
				"A project management methodology",
				"A type of network protocol",
			},
			0,
			fmt.Sprintf("%s is best understood through what it is used to build and reason about.", topic)),
		build(1,
			fmt.Sprintf("When starting a new %s project, which practice matters most?", topic),
			[]string{
				"Skipping documentation to move faster",
				"Understanding the core concepts before writing code",
				"Copying an existing project wholesale",
				"Avoiding version control until release",
			},
			1,
			"Solid fundamentals prevent rework later."),
		build(2,
			fmt.Sprintf("A %s application behaves incorrectly only under load. What is the most effective first step?", topic),
			[]string{
				"Rewrite the application from scratch",
				"Disable all logging to reduce overhead",
				"Reproduce the issue with measurements before changing anything",
				"Increase hardware resources immediately",
			},
			2,
			"Measure first: changes without a reproduction are guesses."),
		build(3,
			fmt.Sprintf("Which concern dominates when scaling a %s system to many users?", topic),
			[]string{
				"Choosing a popular code editor",
				"Managing state, contention, and failure modes",
				"Using the newest language release",
				"Minimizing the number of source files",
			},
			1,
			"Scale problems are state and failure problems, not tooling problems."),
		build(4,
			fmt.Sprintf("An expert reviewing a mature %s codebase looks first at which signal?", topic),
			[]string{
				"Total line count",
				"Number of contributors",
				"Commit message style",
				"Boundaries between modules and how errors cross them",
			},
			3,
			"Module boundaries and error flow reveal architectural health faster than any metric."),
	}
}
