package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"growwise/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database("growwise")
	users := db.Collection("users")

	// Unique index so duplicate registrations fail at the database too
	_, err = users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Fatalf("Failed to create email index: %v", err)
	}

	email := "demo@growwise.dev"
	password := os.Getenv("DEMO_PASSWORD")
	if password == "" {
		password = "demo1234"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	demo := model.User{
		ID:           primitive.NewObjectID().Hex(),
		Name:         "Demo Learner",
		Email:        email,
		PasswordHash: string(hash),
		IsPro:        true,
		CreatedAt:    time.Now(),
	}

	_, err = users.InsertOne(ctx, demo)
	if err != nil {
		log.Fatalf("Failed to insert demo user: %v", err)
	}

	fmt.Printf("Successfully created demo user '%s' (password: %s)\n", email, password)
}
