package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionEvents       = "events"
	CollectionParticipants = "participants"
	CollectionLabels       = "labels"
	CollectionSelections   = "selections"
	CollectionHosts        = "hosts"
	CollectionAdminLogs    = "admin_logs"
)

// EnsureIndexes creates the indexes every repository relies on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionEvents: {
			{Keys: bson.D{{Key: "pin", Value: 1}, {Key: "active", Value: 1}}},
			{Keys: bson.D{{Key: "hostId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		CollectionParticipants: {
			{Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "name", Value: 1}}},
		},
		CollectionLabels: {
			{Keys: bson.D{{Key: "eventId", Value: 1}, {Key: "order", Value: 1}}},
		},
		CollectionSelections: {
			{Keys: bson.D{{Key: "eventId", Value: 1}}},
			{Keys: bson.D{{Key: "participantId", Value: 1}}},
		},
		CollectionHosts: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollectionAdminLogs: {
			{Keys: bson.D{{Key: "collection", Value: 1}, {Key: "documentId", Value: 1}}},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
