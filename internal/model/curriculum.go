package model

import "time"

// ContentType classifies a learning content item
type ContentType string

const (
	ContentVideo         ContentType = "video"
	ContentDocumentation ContentType = "documentation"
	ContentArticle       ContentType = "article"
	ContentTutorial      ContentType = "tutorial"
	ContentExercise      ContentType = "exercise"
)

// ContentItem is one resource inside a curriculum stage
type ContentItem struct {
	ID          string      `json:"id" bson:"id"`
	Type        ContentType `json:"type" bson:"type"`
	Title       string      `json:"title" bson:"title"`
	Description string      `json:"description" bson:"description"`
	URL         string      `json:"url,omitempty" bson:"url,omitempty"`
	Duration    int         `json:"durationMinutes" bson:"durationMinutes"`
	Completed   bool        `json:"completed" bson:"completed"`
}

// Stage is one ordered step of a learning path
type Stage struct {
	Name      string        `json:"name" bson:"name"`
	Order     int           `json:"order" bson:"order"`
	FocusArea string        `json:"focusArea" bson:"focusArea"`
	Content   []ContentItem `json:"content" bson:"content"`
}

// LearningPath is a personalized curriculum derived from an assessment result
type LearningPath struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	UserID    string     `json:"userId" bson:"userId"`
	ResultID  string     `json:"resultId" bson:"resultId"`
	Topic     string     `json:"topic" bson:"topic"`
	Level     SkillLevel `json:"level" bson:"level"`
	Stages    []Stage    `json:"stages" bson:"stages"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
}

// Completion returns the percentage of content items marked complete
func (p *LearningPath) Completion() int {
	total, done := 0, 0
	for _, st := range p.Stages {
		for _, c := range st.Content {
			total++
			if c.Completed {
				done++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return done * 100 / total
}
