package service

import (
	"math"

	"growwise/internal/model"
)

// knowledgeAxes are the fixed radar-chart axes with the score threshold
// each axis needs before it reads the full score. Below its threshold an
// axis reads half the score. Coarse on purpose: the graph is a profile
// sketch derived from one number, not five independent measurements.
var knowledgeAxes = []struct {
	name      string
	threshold int
}{
	{"Fundamentals", 30},
	{"Problem Solving", 45},
	{"Architecture", 60},
	{"Optimization", 70},
	{"Debugging", 50},
}

// Aggregate computes the immutable result of a finished session.
// Questions without a matching outcome (timer expiry mid-session) count
// as incorrect: their topics land in weaknesses and the denominator stays
// the full batch size.
func Aggregate(sessionID, userID, topic string, questions []model.Question, outcomes []model.Outcome) *model.AssessmentResult {
	byQuestion := make(map[string]model.Outcome, len(outcomes))
	for _, o := range outcomes {
		byQuestion[o.QuestionID] = o
	}

	correct := 0
	var strengths, weaknesses []string
	seenStrength := make(map[string]bool)
	seenWeakness := make(map[string]bool)

	for _, q := range questions {
		o, answered := byQuestion[q.ID]
		if answered && o.Correct {
			correct++
			if !seenStrength[q.Topic] {
				seenStrength[q.Topic] = true
				strengths = append(strengths, q.Topic)
			}
		} else {
			if !seenWeakness[q.Topic] {
				seenWeakness[q.Topic] = true
				weaknesses = append(weaknesses, q.Topic)
			}
		}
	}

	score := 0
	if len(questions) > 0 {
		score = int(math.Round(100 * float64(correct) / float64(len(questions))))
	}

	return &model.AssessmentResult{
		SessionID:      sessionID,
		UserID:         userID,
		Topic:          topic,
		Score:          score,
		TotalQuestions: len(questions),
		Weaknesses:     weaknesses,
		Strengths:      strengths,
		KnowledgeGraph: knowledgeGraph(score),
		DetectedLevel:  detectLevel(score),
		Questions:      questions,
	}
}

// knowledgeGraph maps the single overall score onto the fixed 5-axis vector
func knowledgeGraph(score int) []model.KnowledgeAxis {
	graph := make([]model.KnowledgeAxis, 0, len(knowledgeAxes))
	for _, axis := range knowledgeAxes {
		value := score / 2
		if score >= axis.threshold {
			value = score
		}
		graph = append(graph, model.KnowledgeAxis{Axis: axis.name, Value: value})
	}
	return graph
}

func detectLevel(score int) model.SkillLevel {
	switch {
	case score >= 80:
		return model.LevelAdvanced
	case score >= 60:
		return model.LevelIntermediate
	default:
		return model.LevelBeginner
	}
}
