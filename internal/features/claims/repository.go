package claims

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/opensupplyhub/oshub/pkg/errors"
)

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("claims")

	// Create indexes
	collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "facilityOsId", Value: 1}}},
		{Keys: bson.D{{Key: "contributorId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})

	return &Repository{collection: collection}
}

func (r *Repository) Create(ctx context.Context, claim *Claim) error {
	claim.CreatedAt = time.Now()
	claim.UpdatedAt = time.Now()
	claim.Status = StatusPending

	result, err := r.collection.InsertOne(ctx, claim)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		claim.ID = oid
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Claim, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid claim id", apperrors.ErrBadRequest)
	}

	var claim Claim
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&claim)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

// HasPendingClaim reports whether the facility already has an open claim.
func (r *Repository) HasPendingClaim(ctx context.Context, osID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"facilityOsId": osID,
		"status":       StatusPending,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) ListByContributor(ctx context.Context, contributorID string) ([]Claim, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"contributorId": contributorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var claims []Claim
	if err := cursor.All(ctx, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *Repository) List(ctx context.Context, status Status, page, limit int) ([]Claim, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var claims []Claim
	if err := cursor.All(ctx, &claims); err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

// UpdateStatus transitions a claim and returns the updated document.
// Approval stamps approvedAt; deny and revoke record the reason.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status, reason string) (*Claim, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid claim id", apperrors.ErrBadRequest)
	}

	set := bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}
	if reason != "" {
		set["statusChangeReason"] = reason
	}
	if status == StatusApproved {
		set["approvedAt"] = time.Now()
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Claim
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: claim", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &updated, nil
}

// AppendMessage attaches a moderator message and returns the updated claim.
func (r *Repository) AppendMessage(ctx context.Context, id string, message Message) (*Claim, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid claim id", apperrors.ErrBadRequest)
	}

	message.SentAt = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Claim
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$push": bson.M{"messages": message},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: claim", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &updated, nil
}

// AddReviewNote attaches an internal note and returns the updated claim; the
// caller renders the note from the returned detail, not from local state.
func (r *Repository) AddReviewNote(ctx context.Context, id string, note ReviewNote) (*Claim, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid claim id", apperrors.ErrBadRequest)
	}

	note.ID = primitive.NewObjectID()
	note.CreatedAt = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Claim
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$push": bson.M{"reviewNotes": note},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: claim", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &updated, nil
}
