package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pinot/internal/model"
)

type SelectionRepo interface {
	Upsert(ctx context.Context, selection *model.Selection) error
	Get(ctx context.Context, eventID, participantID string) (*model.Selection, error)
	ListByEvent(ctx context.Context, eventID string) ([]*model.Selection, error)
	Delete(ctx context.Context, id string) error
	DeleteByParticipant(ctx context.Context, participantID string) error
	DeleteByEvent(ctx context.Context, eventID string) error
}

type selectionRepo struct {
	collection *mongo.Collection
}

func NewSelectionRepo(db *mongo.Database) SelectionRepo {
	return &selectionRepo{
		collection: db.Collection(CollectionSelections),
	}
}

// SelectionID is the document id of a participant's selection in an event
func SelectionID(eventID, participantID string) string {
	return eventID + ":" + participantID
}

func (r *selectionRepo) Upsert(ctx context.Context, selection *model.Selection) error {
	selection.ID = SelectionID(selection.EventID, selection.ParticipantID)
	if selection.UpdatedAt.IsZero() {
		selection.UpdatedAt = time.Now()
	}

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": selection.ID}, selection, opts)
	return err
}

func (r *selectionRepo) Get(ctx context.Context, eventID, participantID string) (*model.Selection, error) {
	var selection model.Selection
	err := r.collection.FindOne(ctx, bson.M{"_id": SelectionID(eventID, participantID)}).Decode(&selection)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &selection, nil
}

func (r *selectionRepo) ListByEvent(ctx context.Context, eventID string) ([]*model.Selection, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"eventId": eventID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	selections := []*model.Selection{}
	if err = cursor.All(ctx, &selections); err != nil {
		return nil, err
	}
	return selections, nil
}

func (r *selectionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *selectionRepo) DeleteByParticipant(ctx context.Context, participantID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"participantId": participantID})
	return err
}

func (r *selectionRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"eventId": eventID})
	return err
}
