package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pinot/internal/model"
)

// ErrNoMatch is returned when a conditional update matched nothing
var ErrNoMatch = errors.New("no matching document")

// EventRepo handles MongoDB operations for events
type EventRepo interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetActiveByPIN(ctx context.Context, pin string) (*model.Event, error)
	ListByHost(ctx context.Context, hostID string) ([]*model.Event, error)
	ListActive(ctx context.Context) ([]*model.Event, error)
	List(ctx context.Context, limit int64) ([]*model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	UpdateCards(ctx context.Context, id string, cards []model.CardAssignment) error
	Finalize(ctx context.Context, id string, solution map[string]string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type eventRepo struct {
	collection *mongo.Collection
}

// NewEventRepo creates a new event repository
func NewEventRepo(db *mongo.Database) EventRepo {
	return &eventRepo{
		collection: db.Collection(CollectionEvents),
	}
}

func (r *eventRepo) Create(ctx context.Context, event *model.Event) error {
	if event.ID == "" {
		event.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.CardAssignments == nil {
		event.CardAssignments = []model.CardAssignment{}
	}

	_, err := r.collection.InsertOne(ctx, event)
	return err
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *eventRepo) GetActiveByPIN(ctx context.Context, pin string) (*model.Event, error) {
	return r.findOne(ctx, bson.M{"pin": pin, "active": true})
}

func (r *eventRepo) findOne(ctx context.Context, filter bson.M) (*model.Event, error) {
	var event model.Event
	err := r.collection.FindOne(ctx, filter).Decode(&event)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) ListByHost(ctx context.Context, hostID string) ([]*model.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"hostId": hostID}, opts)
}

func (r *eventRepo) ListActive(ctx context.Context) ([]*model.Event, error) {
	return r.find(ctx, bson.M{"active": true})
}

func (r *eventRepo) List(ctx context.Context, limit int64) ([]*model.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, bson.M{}, opts)
}

func (r *eventRepo) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*model.Event, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []*model.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Update writes the editable fields only, so a concurrent Finalize is never
// overwritten. Reopening matches active-state events only.
func (r *eventRepo) Update(ctx context.Context, event *model.Event) error {
	event.UpdatedAt = time.Now()

	filter := bson.M{"_id": event.ID}
	if event.Active {
		filter["state"] = model.EventActive
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{
			"name":      event.Name,
			"slug":      event.Slug,
			"pin":       event.PIN,
			"active":    event.Active,
			"updatedAt": event.UpdatedAt,
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoMatch
	}
	return nil
}

func (r *eventRepo) UpdateCards(ctx context.Context, id string, cards []model.CardAssignment) error {
	if cards == nil {
		cards = []model.CardAssignment{}
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"cardAssignments": cards, "updatedAt": time.Now()},
	})
	return err
}

// Finalize moves an active event to its terminal state
func (r *eventRepo) Finalize(ctx context.Context, id string, solution map[string]string, at time.Time) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "state": model.EventActive},
		bson.M{"$set": bson.M{
			"solution":    solution,
			"state":       model.EventFinalized,
			"active":      false,
			"finalizedAt": at,
			"updatedAt":   at,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoMatch
	}
	return nil
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
