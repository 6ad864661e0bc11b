package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"growwise/internal/model"
)

// GraderService grades answers. Choice questions are graded locally;
// open responses go to the AI with a fail-closed policy.
type GraderService struct {
	ai *GenAIClient
}

// NewGraderService creates a new grader
func NewGraderService(ai *GenAIClient) *GraderService {
	return &GraderService{ai: ai}
}

var verdictSchema = &ResponseSchema{
	Name: "grading-verdict",
	Definition: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"isCorrect": map[string]interface{}{"type": "boolean"},
			"feedback":  map[string]interface{}{"type": "string"},
		},
		"required": []interface{}{"isCorrect", "feedback"},
	},
}

// GradeChoice grades a single-choice answer by index comparison
func (s *GraderService) GradeChoice(q model.Question, selectedIndex int) bool {
	if q.Kind != model.QuestionSingleChoice {
		return false
	}
	return selectedIndex == q.CorrectIndex
}

// GradeOpenResponse grades a free-text answer. Any transport, parse, or
// schema failure scores the answer incorrect with the error as feedback;
// an ungradable answer is never skipped and never left pending.
func (s *GraderService) GradeOpenResponse(ctx context.Context, questionText, answerText, topic string) model.Verdict {
	if !s.ai.Enabled() {
		return s.mockGrade(answerText)
	}

	prompt := s.buildGradingPrompt(questionText, answerText, topic)
	raw, err := s.ai.Complete(ctx, s.ai.Models().Grading, prompt, verdictSchema)
	if err != nil {
		return model.Verdict{Correct: false, Feedback: "grading error: " + err.Error()}
	}

	var verdict model.Verdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return model.Verdict{Correct: false, Feedback: "grading error: " + err.Error()}
	}
	return verdict
}

func (s *GraderService) buildGradingPrompt(questionText, answerText, topic string) string {
	return fmt.Sprintf(`You are grading an answer in a %s skill assessment. Return ONLY valid JSON:
{
  "isCorrect": true or false,
  "feedback": "short critique, two sentences max"
}

Question: %s
Learner's Answer: %s

Judge technical accuracy and depth. Minor omissions are still correct;
mark incorrect only for real misconceptions or missing core substance.`,
		topic, questionText, answerText)
}

// mockGrade is a length-and-keyword heuristic used when no API key is set
func (s *GraderService) mockGrade(answerText string) model.Verdict {
	words := strings.Fields(answerText)
	if len(words) < 5 {
		return model.Verdict{
			Correct:  false,
			Feedback: "The answer is too brief to demonstrate understanding. Explain the concept and give an example.",
		}
	}
	return model.Verdict{
		Correct:  true,
		Feedback: "The answer covers the core idea. Adding a concrete example would strengthen it.",
	}
}
