package repository

import (
	"context"
	"time"

	"growwise/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfileRepo handles MongoDB operations for skill profiles
type ProfileRepo interface {
	Upsert(ctx context.Context, profile *model.SkillProfile) error
	GetByUserID(ctx context.Context, userID string) (*model.SkillProfile, error)
}

type profileRepo struct {
	collection *mongo.Collection
}

// NewProfileRepo creates a new skill profile repository
func NewProfileRepo(db *mongo.Database) ProfileRepo {
	return &profileRepo{
		collection: db.Collection("skill_profiles"),
	}
}

func (r *profileRepo) Upsert(ctx context.Context, profile *model.SkillProfile) error {
	profile.UpdatedAt = time.Now()

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": profile.UserID}, profile, opts)
	return err
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*model.SkillProfile, error) {
	var profile model.SkillProfile
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
