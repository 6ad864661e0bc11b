package model

// QuestionKind defines the kind of assessment question
type QuestionKind string

const (
	QuestionSingleChoice QuestionKind = "single_choice" // Graded locally by option index
	QuestionOpenResponse QuestionKind = "open_response" // Free text, AI-graded
)

// Difficulty is one of four ordered tiers
type Difficulty string

const (
	DifficultyBasic    Difficulty = "basic"
	DifficultyMedium   Difficulty = "medium"
	DifficultyAdvanced Difficulty = "advanced"
	DifficultyNiche    Difficulty = "niche"
)

// BatchSize is the fixed number of questions per assessment
const BatchSize = 5

// DifficultyCurve is the fixed tier per batch slot
var DifficultyCurve = [BatchSize]Difficulty{
	DifficultyBasic,
	DifficultyMedium,
	DifficultyMedium,
	DifficultyAdvanced,
	DifficultyNiche,
}

// Question is a single assessment question, immutable once generated
type Question struct {
	ID           string       `json:"id" bson:"id"`
	Kind         QuestionKind `json:"kind" bson:"kind"`
	Prompt       string       `json:"prompt" bson:"prompt"`
	Options      []string     `json:"options,omitempty" bson:"options,omitempty"`           // single_choice only
	CorrectIndex int          `json:"correctIndex,omitempty" bson:"correctIndex,omitempty"` // single_choice only
	Difficulty   Difficulty   `json:"difficulty" bson:"difficulty"`
	Topic        string       `json:"topic" bson:"topic"`
	Explanation  string       `json:"explanation,omitempty" bson:"explanation,omitempty"`
}

// Public returns a copy safe to send to the learner mid-session
// (correct index and explanation stripped)
func (q Question) Public() Question {
	q.CorrectIndex = 0
	q.Explanation = ""
	return q
}
