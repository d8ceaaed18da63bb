package config

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/wacrm/internal/repositories/mongo"
	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureMongoIndexes creates the reply_traces indexes; it is idempotent.
func EnsureMongoIndexes(opts MongoOptions) error {
	db := MongoDatabase(opts)
	if db == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	traces := db.Collection(mongo.TraceCollection)
	_, err := traces.Indexes().CreateMany(ctx, []mongodrv.IndexModel{
		// TTL index: expire at ExpiresAt (must be Date)
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().
				SetName("ttl_expires_at").
				SetExpireAfterSeconds(0),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_session_created"),
		},
		{
			Keys:    bson.D{{Key: "contact_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_contact_created"),
		},
	})
	return err
}
