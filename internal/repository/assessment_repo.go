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

// AssessmentRepo handles MongoDB operations for assessment results
type AssessmentRepo interface {
	SaveResult(ctx context.Context, result *model.AssessmentResult) (string, error)
	GetByID(ctx context.Context, id string) (*model.AssessmentResult, error)
	GetLatestByUser(ctx context.Context, userID string) (*model.AssessmentResult, error)
	GetByUser(ctx context.Context, userID string) ([]*model.AssessmentResult, error)
}

type assessmentRepo struct {
	collection *mongo.Collection
}

// NewAssessmentRepo creates a new assessment repository
func NewAssessmentRepo(db *mongo.Database) AssessmentRepo {
	return &assessmentRepo{
		collection: db.Collection("assessments"),
	}
}

func (r *assessmentRepo) SaveResult(ctx context.Context, result *model.AssessmentResult) (string, error) {
	if result.ID == "" {
		result.ID = primitive.NewObjectID().Hex()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, result)
	if err != nil {
		return "", err
	}
	return result.ID, nil
}

func (r *assessmentRepo) GetByID(ctx context.Context, id string) (*model.AssessmentResult, error) {
	var result model.AssessmentResult
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *assessmentRepo) GetLatestByUser(ctx context.Context, userID string) (*model.AssessmentResult, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var result model.AssessmentResult
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *assessmentRepo) GetByUser(ctx context.Context, userID string) ([]*model.AssessmentResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []*model.AssessmentResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
