package moderation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	repo := &Repository{
		collection: db.Collection("moderation_events"),
	}
	repo.createIndexes()
	return repo
}

func (r *Repository) createIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "countryCode", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "contributorId", Value: 1}},
		},
	}

	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Insert records a new queue item. The caller fills everything but the
// bookkeeping fields.
func (r *Repository) Insert(ctx context.Context, event *Event) error {
	event.ID = primitive.NewObjectID()
	if event.Status == "" {
		event.Status = EventPending
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, event)
	return err
}

// FetchEvents returns one page of the queue under the given filters, newest
// first, along with the unpaged total. Pages are zero based.
func (r *Repository) FetchEvents(ctx context.Context, f Filters, page, pageSize int) ([]Event, int64, error) {
	filter := bson.M{}
	if len(f.DataSources) > 0 {
		filter["source"] = bson.M{"$in": f.DataSources}
	}
	if len(f.ModerationStatuses) > 0 {
		filter["status"] = bson.M{"$in": f.ModerationStatuses}
	}
	if len(f.Countries) > 0 {
		filter["countryCode"] = bson.M{"$in": f.Countries}
	}
	if f.AfterDate != nil || f.BeforeDate != nil {
		created := bson.M{}
		if f.AfterDate != nil {
			created["$gte"] = *f.AfterDate
		}
		if f.BeforeDate != nil {
			// The bound is a date; include the whole day.
			created["$lt"] = f.BeforeDate.AddDate(0, 0, 1)
		}
		filter["createdAt"] = created
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(page * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	events := []Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// GetByID returns a single queue item, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id string) (*Event, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var event Event
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&event)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Resolve sets a queue item's outcome and returns the updated item.
func (r *Repository) Resolve(ctx context.Context, id string, status EventStatus) (*Event, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var event Event
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&event)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// DistinctCountries lists the country codes present in the queue, for the
// filter options endpoint.
func (r *Repository) DistinctCountries(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "countryCode", bson.M{})
	if err != nil {
		return nil, err
	}

	countries := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			countries = append(countries, s)
		}
	}
	return countries, nil
}
