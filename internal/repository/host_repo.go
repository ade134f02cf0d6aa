package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"pinot/internal/model"
)

type HostRepo interface {
	Create(ctx context.Context, host *model.Host) error
	GetByID(ctx context.Context, id string) (*model.Host, error)
	GetByEmail(ctx context.Context, email string) (*model.Host, error)
}

type hostRepo struct {
	collection *mongo.Collection
}

func NewHostRepo(db *mongo.Database) HostRepo {
	return &hostRepo{
		collection: db.Collection(CollectionHosts),
	}
}

func (r *hostRepo) Create(ctx context.Context, host *model.Host) error {
	if host.ID == "" {
		host.ID = "host_" + primitive.NewObjectID().Hex()
	}
	host.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, host)
	return err
}

func (r *hostRepo) GetByID(ctx context.Context, id string) (*model.Host, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *hostRepo) GetByEmail(ctx context.Context, email string) (*model.Host, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *hostRepo) findOne(ctx context.Context, filter bson.M) (*model.Host, error) {
	var host model.Host
	err := r.collection.FindOne(ctx, filter).Decode(&host)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &host, nil
}
