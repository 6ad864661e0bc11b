package model

import "time"

// User is the external identity the app holds a read-only copy of
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	IsPro        bool      `json:"isPro" bson:"isPro"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// SkillProfile summarizes a user's demonstrated skills after an assessment
type SkillProfile struct {
	UserID          string    `json:"userId" bson:"_id"`
	Strengths       string    `json:"strengths" bson:"strengths"`
	Weaknesses      string    `json:"weaknesses" bson:"weaknesses"`
	ThinkingPattern string    `json:"thinkingPattern" bson:"thinkingPattern"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}
