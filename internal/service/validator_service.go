package service

import (
	"context"
	"encoding/json"
	"fmt"

	"growwise/internal/model"
)

// ValidatorService reviews submitted code against a stated requirement
type ValidatorService struct {
	ai *GenAIClient
}

// NewValidatorService creates a new validator
func NewValidatorService(ai *GenAIClient) *ValidatorService {
	return &ValidatorService{ai: ai}
}

var reviewSchema = &ResponseSchema{
	Name: "validator-verdict",
	Definition: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"passed":   map[string]interface{}{"type": "boolean"},
			"feedback": map[string]interface{}{"type": "string"},
		},
		"required": []interface{}{"passed", "feedback"},
	},
}

// Review judges whether code satisfies the requirement. Fail closed: any
// AI failure returns Passed=false with the error as feedback.
func (s *ValidatorService) Review(ctx context.Context, language, requirement, code string) model.ReviewVerdict {
	if !s.ai.Enabled() {
		return model.ReviewVerdict{
			Passed:   false,
			Feedback: "code review is unavailable: no AI credentials configured",
		}
	}

	prompt := s.buildReviewPrompt(language, requirement, code)
	raw, err := s.ai.Complete(ctx, s.ai.Models().Validator, prompt, reviewSchema)
	if err != nil {
		return model.ReviewVerdict{Passed: false, Feedback: "review error: " + err.Error()}
	}

	var verdict model.ReviewVerdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return model.ReviewVerdict{Passed: false, Feedback: "review error: " + err.Error()}
	}
	return verdict
}

func (s *ValidatorService) buildReviewPrompt(language, requirement, code string) string {
	return fmt.Sprintf(`You are reviewing a learner's code submission. Return ONLY valid JSON:
{
  "passed": true or false,
  "feedback": "specific, actionable review notes"
}

Language: %s
Requirement: %s

Code:
%s

Pass the submission only if it satisfies the requirement and would run.
Point at concrete lines or constructs in the feedback, not generalities.`,
		language, requirement, code)
}
