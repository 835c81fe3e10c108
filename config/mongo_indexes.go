package config

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureMongoIndexes creates the transcript indexes; safe to call repeatedly.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := db.Collection("transcripts").Indexes().CreateMany(ctx, []mongo.IndexModel{
		// one transcript per blob base name
		{
			Keys: bson.D{{Key: "filename", Value: 1}},
			Options: options.Index().
				SetName("uniq_filename").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_created_at"),
		},
	})
	return err
}
