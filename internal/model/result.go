package model

import "time"

// SkillLevel buckets the overall score
type SkillLevel string

const (
	LevelBeginner     SkillLevel = "beginner"
	LevelIntermediate SkillLevel = "intermediate"
	LevelAdvanced     SkillLevel = "advanced"
)

// KnowledgeAxis is one axis of the fixed 5-axis knowledge graph
type KnowledgeAxis struct {
	Axis  string `json:"axis" bson:"axis"`
	Value int    `json:"value" bson:"value"`
}

// AssessmentResult is the immutable output of a finished session
type AssessmentResult struct {
	ID             string          `json:"id" bson:"_id,omitempty"`
	SessionID      string          `json:"sessionId" bson:"sessionId"`
	UserID         string          `json:"userId" bson:"userId"`
	Topic          string          `json:"topic" bson:"topic"`
	Score          int             `json:"score" bson:"score"` // 0-100
	TotalQuestions int             `json:"totalQuestions" bson:"totalQuestions"`
	Weaknesses     []string        `json:"weaknesses" bson:"weaknesses"`
	Strengths      []string        `json:"strengths" bson:"strengths"`
	KnowledgeGraph []KnowledgeAxis `json:"knowledgeGraph" bson:"knowledgeGraph"`
	DetectedLevel  SkillLevel      `json:"detectedLevel" bson:"detectedLevel"`
	Questions      []Question      `json:"questions,omitempty" bson:"questions,omitempty"`
	CreatedAt      time.Time       `json:"createdAt" bson:"createdAt"`
}
