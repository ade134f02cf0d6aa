package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pinot/internal/model"
)

type ParticipantRepo interface {
	Create(ctx context.Context, participant *model.Participant) error
	GetByID(ctx context.Context, id string) (*model.Participant, error)
	FindByName(ctx context.Context, eventID, name string) (*model.Participant, error)
	ListByEvent(ctx context.Context, eventID string) ([]*model.Participant, error)
	Update(ctx context.Context, participant *model.Participant) error
	Delete(ctx context.Context, id string) error
	DeleteByEvent(ctx context.Context, eventID string) error
}

type participantRepo struct {
	collection *mongo.Collection
}

func NewParticipantRepo(db *mongo.Database) ParticipantRepo {
	return &participantRepo{
		collection: db.Collection(CollectionParticipants),
	}
}

func (r *participantRepo) Create(ctx context.Context, participant *model.Participant) error {
	// Generate ObjectID if not provided
	if participant.ID == "" {
		participant.ID = primitive.NewObjectID().Hex()
	}
	if participant.CreatedAt.IsZero() {
		participant.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, participant)
	return err
}

func (r *participantRepo) GetByID(ctx context.Context, id string) (*model.Participant, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *participantRepo) FindByName(ctx context.Context, eventID, name string) (*model.Participant, error) {
	return r.findOne(ctx, bson.M{"eventId": eventID, "name": name})
}

func (r *participantRepo) findOne(ctx context.Context, filter bson.M) (*model.Participant, error) {
	var participant model.Participant
	err := r.collection.FindOne(ctx, filter).Decode(&participant)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Participant not found
		}
		return nil, err
	}
	return &participant, nil
}

func (r *participantRepo) ListByEvent(ctx context.Context, eventID string) ([]*model.Participant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"eventId": eventID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	participants := []*model.Participant{}
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *participantRepo) Update(ctx context.Context, participant *model.Participant) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": participant.ID}, participant)
	return err
}

func (r *participantRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *participantRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"eventId": eventID})
	return err
}
