package model

import "time"

// ChatSender identifies who produced a chat message
type ChatSender string

const (
	SenderUser   ChatSender = "user"
	SenderMentor ChatSender = "ai"
)

// ChatSession is one tutor conversation
type ChatSession struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	UserID    string    `json:"userId" bson:"userId"`
	Topic     string    `json:"topic" bson:"topic"`
	StageName string    `json:"stageName,omitempty" bson:"stageName,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// ChatMessage is a single message in a tutor conversation
type ChatMessage struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	SessionID string     `json:"sessionId" bson:"sessionId"`
	Sender    ChatSender `json:"sender" bson:"sender"`
	Text      string     `json:"text" bson:"text"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
}
