package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var MongoClient *mongo.Client

// InitMongo connects and pings. Only reply traces live in Mongo, so callers
// skip it when MONGO_URI is empty.
func InitMongo(opts MongoOptions) error {
	if opts.URI == "" {
		return errors.New("MONGO_URI environment variable is not set")
	}
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 15 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*connectTimeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(opts.URI).
		SetAppName(opts.AppName).
		SetServerSelectionTimeout(connectTimeout).
		SetConnectTimeout(connectTimeout).
		SetMaxPoolSize(opts.MaxPoolSize).
		SetMinPoolSize(1)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return err
	}

	MongoClient = client
	return nil
}

// MongoDatabase returns the configured database, or nil when Mongo is off.
func MongoDatabase(opts MongoOptions) *mongo.Database {
	if MongoClient == nil {
		return nil
	}
	return MongoClient.Database(opts.Database)
}
