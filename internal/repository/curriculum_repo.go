package repository

import (
	"context"
	"errors"
	"time"

	"growwise/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrContentNotFound is returned when a content ID matches nothing in the path
var ErrContentNotFound = errors.New("content item not found")

// CurriculumRepo handles MongoDB operations for learning paths
type CurriculumRepo interface {
	Create(ctx context.Context, path *model.LearningPath) (string, error)
	GetByID(ctx context.Context, id string) (*model.LearningPath, error)
	GetCurrentByUser(ctx context.Context, userID string) (*model.LearningPath, error)
	MarkContentComplete(ctx context.Context, pathID, contentID string) error
}

type curriculumRepo struct {
	collection *mongo.Collection
}

// NewCurriculumRepo creates a new curriculum repository
func NewCurriculumRepo(db *mongo.Database) CurriculumRepo {
	return &curriculumRepo{
		collection: db.Collection("learning_paths"),
	}
}

func (r *curriculumRepo) Create(ctx context.Context, path *model.LearningPath) (string, error) {
	if path.ID == "" {
		path.ID = primitive.NewObjectID().Hex()
	}
	path.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, path)
	if err != nil {
		return "", err
	}
	return path.ID, nil
}

func (r *curriculumRepo) GetByID(ctx context.Context, id string) (*model.LearningPath, error) {
	var path model.LearningPath
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&path)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &path, nil
}

func (r *curriculumRepo) GetCurrentByUser(ctx context.Context, userID string) (*model.LearningPath, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var path model.LearningPath
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&path)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &path, nil
}

func (r *curriculumRepo) MarkContentComplete(ctx context.Context, pathID, contentID string) error {
	filter := bson.M{"_id": pathID, "stages.content.id": contentID}
	update := bson.M{"$set": bson.M{"stages.$[].content.$[c].completed": true}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"c.id": contentID}},
	})

	res, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrContentNotFound
	}
	return nil
}
