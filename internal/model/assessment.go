package model

import "time"

// SessionState is the lifecycle state of an assessment session
type SessionState string

const (
	SessionLoading   SessionState = "loading"
	SessionActive    SessionState = "active"
	SessionGrading   SessionState = "grading" // transient, open-response only
	SessionFinishing SessionState = "finishing"
	SessionDone      SessionState = "done"
	SessionAbandoned SessionState = "abandoned" // manual early exit
)

// Outcome records how a single question was answered.
// Appended once, never mutated.
type Outcome struct {
	QuestionID string `json:"questionId" bson:"questionId"`
	Correct    bool   `json:"correct" bson:"correct"`
	Topic      string `json:"topic" bson:"topic"`
}

// SessionSnapshot is the externally visible view of a live session
type SessionSnapshot struct {
	ID              string       `json:"id"`
	UserID          string       `json:"userId"`
	Topic           string       `json:"topic"`
	State           SessionState `json:"state"`
	CurrentIndex    int          `json:"currentIndex"`
	TotalQuestions  int          `json:"totalQuestions"`
	Answered        int          `json:"answered"`
	Deadline        time.Time    `json:"deadline"`
	CurrentQuestion *Question    `json:"currentQuestion,omitempty"`
	StartedAt       time.Time    `json:"startedAt"`
}

// Verdict is the grading outcome for an open-response answer
type Verdict struct {
	Correct  bool   `json:"isCorrect"`
	Feedback string `json:"feedback"`
}

// ReviewVerdict is the code validator's judgment
type ReviewVerdict struct {
	Passed   bool   `json:"passed"`
	Feedback string `json:"feedback"`
}
