package repository

import (
	"context"
	"time"

	"growwise/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatRepo handles MongoDB operations for tutor chat sessions and messages
type ChatRepo interface {
	CreateSession(ctx context.Context, session *model.ChatSession) (string, error)
	GetSession(ctx context.Context, id string) (*model.ChatSession, error)
	DeleteSession(ctx context.Context, id string) error
	AddMessage(ctx context.Context, msg *model.ChatMessage) (string, error)
	ListMessages(ctx context.Context, sessionID string, limit int64) ([]*model.ChatMessage, error)
	LastMessages(ctx context.Context, sessionID string, n int64) ([]*model.ChatMessage, error)
}

type chatRepo struct {
	sessions *mongo.Collection
	messages *mongo.Collection
}

// NewChatRepo creates a new chat repository
func NewChatRepo(db *mongo.Database) ChatRepo {
	return &chatRepo{
		sessions: db.Collection("chat_sessions"),
		messages: db.Collection("chat_messages"),
	}
}

func (r *chatRepo) CreateSession(ctx context.Context, session *model.ChatSession) (string, error) {
	if session.ID == "" {
		session.ID = primitive.NewObjectID().Hex()
	}
	session.CreatedAt = time.Now()

	_, err := r.sessions.InsertOne(ctx, session)
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

func (r *chatRepo) GetSession(ctx context.Context, id string) (*model.ChatSession, error) {
	var session model.ChatSession
	err := r.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *chatRepo) DeleteSession(ctx context.Context, id string) error {
	if _, err := r.messages.DeleteMany(ctx, bson.M{"sessionId": id}); err != nil {
		return err
	}
	_, err := r.sessions.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *chatRepo) AddMessage(ctx context.Context, msg *model.ChatMessage) (string, error) {
	if msg.ID == "" {
		msg.ID = primitive.NewObjectID().Hex()
	}
	msg.CreatedAt = time.Now()

	_, err := r.messages.InsertOne(ctx, msg)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (r *chatRepo) ListMessages(ctx context.Context, sessionID string, limit int64) ([]*model.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := r.messages.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var msgs []*model.ChatMessage
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// LastMessages returns the n most recent messages in chronological order
func (r *chatRepo) LastMessages(ctx context.Context, sessionID string, n int64) ([]*model.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(n)

	cursor, err := r.messages.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var msgs []*model.ChatMessage
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}

	// Reverse into chronological order
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
