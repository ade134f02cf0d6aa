package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pinot/internal/model"
)

// LabelRepo handles MongoDB operations for event labels
type LabelRepo interface {
	ReplaceAll(ctx context.Context, eventID string, labels []*model.Label) error
	ListByEvent(ctx context.Context, eventID string) ([]*model.Label, error)
	RevealCards(ctx context.Context, eventID string, cards map[string]model.CardAssignment) error
	DeleteByEvent(ctx context.Context, eventID string) error
}

type labelRepo struct {
	collection *mongo.Collection
}

// NewLabelRepo creates a new label repository
func NewLabelRepo(db *mongo.Database) LabelRepo {
	return &labelRepo{
		collection: db.Collection(CollectionLabels),
	}
}

// ReplaceAll deletes every label of the event and inserts the new set in one
// ordered bulk write. It is not transactional: if an insert fails after the
// delete, the event is left with a partial set.
func (r *labelRepo) ReplaceAll(ctx context.Context, eventID string, labels []*model.Label) error {
	writes := []mongo.WriteModel{
		mongo.NewDeleteManyModel().SetFilter(bson.M{"eventId": eventID}),
	}
	for _, l := range labels {
		if l.ID == "" {
			l.ID = primitive.NewObjectID().Hex()
		}
		l.EventID = eventID
		writes = append(writes, mongo.NewInsertOneModel().SetDocument(l))
	}

	_, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	return err
}

func (r *labelRepo) ListByEvent(ctx context.Context, eventID string) ([]*model.Label, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"eventId": eventID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	labels := []*model.Label{}
	if err := cursor.All(ctx, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// RevealCards writes the winning card into each label, keyed by labelId
func (r *labelRepo) RevealCards(ctx context.Context, eventID string, cards map[string]model.CardAssignment) error {
	if len(cards) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(cards))
	for labelID, card := range cards {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"eventId": eventID, "labelId": labelID}).
			SetUpdate(bson.M{"$set": bson.M{"cardId": card.CardID, "cardName": card.CardName}}))
	}

	_, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

func (r *labelRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"eventId": eventID})
	return err
}
