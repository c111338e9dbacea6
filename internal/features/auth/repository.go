package auth

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

// Repository handles database interactions for the auth feature
type Repository struct {
	collection *mongo.Collection
}

// NewRepository initializes the repository and creates necessary indexes
func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("users")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "googleId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})

	return &Repository{collection: collection}
}

// CreateUser inserts a new user into the database
func (r *Repository) CreateUser(ctx context.Context, user *User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = RoleUser
	}
	if user.ClaimedFacilities.Approved == nil {
		user.ClaimedFacilities.Approved = []string{}
	}
	if user.ClaimedFacilities.Pending == nil {
		user.ClaimedFacilities.Pending = []string{}
	}

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: user with this google account or email", apperrors.ErrDuplicate)
		}
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}

	return nil
}

// GetUserByGoogleID finds a user by their Google ID
func (r *Repository) GetUserByGoogleID(ctx context.Context, googleID string) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, bson.M{"googleId": googleID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID finds a user by their MongoDB ID
func (r *Repository) GetUserByID(ctx context.Context, userID string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errors.New("invalid user id format")
	}

	var user User
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates specific fields of a user
func (r *Repository) UpdateUser(ctx context.Context, userID string, updates map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.New("invalid user id format")
	}

	updates["updatedAt"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updates})
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return errors.New("user not found")
	}

	return nil
}

// TouchLastLogin stamps the login time
func (r *Repository) TouchLastLogin(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"lastLoginAt": time.Now(), "updatedAt": time.Now()},
	})
	return err
}

// ClaimedIDs returns the approved and pending claimed facility IDs for a user.
// An unknown user yields empty sets rather than an error so that public
// lookups degrade gracefully.
func (r *Repository) ClaimedIDs(ctx context.Context, userID string) (approved, pending []string, err error) {
	user, err := r.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return []string{}, []string{}, nil
	}
	return user.ClaimedFacilities.Approved, user.ClaimedFacilities.Pending, nil
}

// AddPendingClaim records a newly submitted claim on the user's ledger
func (r *Repository) AddPendingClaim(ctx context.Context, userID, osID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.New("invalid user id format")
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$addToSet": bson.M{"claimedFacilities.pending": osID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
	return err
}

// PromoteClaim moves a claimed facility ID from pending to approved
func (r *Repository) PromoteClaim(ctx context.Context, userID, osID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.New("invalid user id format")
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$pull":     bson.M{"claimedFacilities.pending": osID},
		"$addToSet": bson.M{"claimedFacilities.approved": osID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
	return err
}

// RemoveClaim drops a claimed facility ID from both lists. Used on denial
// and on revocation.
func (r *Repository) RemoveClaim(ctx context.Context, userID, osID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return errors.New("invalid user id format")
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$pull": bson.M{
			"claimedFacilities.pending":  osID,
			"claimedFacilities.approved": osID,
		},
		"$set": bson.M{"updatedAt": time.Now()},
	})
	return err
}
