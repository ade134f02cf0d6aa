package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pinot/internal/model"
)

const defaultLogLimit = 100

// LogRepo handles the append-only admin changelog
type LogRepo interface {
	Insert(ctx context.Context, entry *model.AdminLog) error
	List(ctx context.Context, filter model.LogFilter) ([]*model.AdminLog, error)
}

type logRepo struct {
	collection *mongo.Collection
}

// NewLogRepo creates a new changelog repository
func NewLogRepo(db *mongo.Database) LogRepo {
	return &logRepo{
		collection: db.Collection(CollectionAdminLogs),
	}
}

func (r *logRepo) Insert(ctx context.Context, entry *model.AdminLog) error {
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

func (r *logRepo) List(ctx context.Context, filter model.LogFilter) ([]*model.AdminLog, error) {
	query := bson.M{}
	if filter.Collection != "" {
		query["collection"] = filter.Collection
	}
	if filter.DocumentID != "" {
		query["documentId"] = filter.DocumentID
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLogLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []*model.AdminLog{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
