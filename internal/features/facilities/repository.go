package facilities

import (
	"context"
	"errors"
	"strings"
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
	collection := db.Collection("facilities")

	// Create indexes
	collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "osId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "countryCode", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "address", Value: "text"}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})

	return &Repository{collection: collection}
}

func (r *Repository) Create(ctx context.Context, facility *Facility) error {
	facility.CreatedAt = time.Now()
	facility.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, facility)
	if err != nil {
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		facility.ID = oid
	}
	return nil
}

func (r *Repository) GetByOSID(ctx context.Context, osID string) (*Facility, error) {
	var facility Facility
	err := r.collection.FindOne(ctx, bson.M{"osId": osID}).Decode(&facility)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &facility, nil
}

// ListQuery holds the supported facility list filters.
type ListQuery struct {
	Countries []string
	Q         string
	Page      int
	Limit     int
}

func (r *Repository) List(ctx context.Context, q ListQuery) ([]Facility, int64, error) {
	filter := bson.M{}
	if len(q.Countries) > 0 {
		codes := make([]string, len(q.Countries))
		for i, c := range q.Countries {
			codes[i] = strings.ToUpper(c)
		}
		filter["countryCode"] = bson.M{"$in": codes}
	}
	if q.Q != "" {
		filter["$text"] = bson.M{"$search": q.Q}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((q.Page - 1) * q.Limit)).
		SetLimit(int64(q.Limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var facilities []Facility
	if err := cursor.All(ctx, &facilities); err != nil {
		return nil, 0, err
	}
	return facilities, total, nil
}

// SetClaimInfo replaces the facility's active claim info. Passing nil clears
// it (deny/revoke leaves the facility unclaimed).
func (r *Repository) SetClaimInfo(ctx context.Context, osID string, info *ClaimInfo) error {
	update := bson.M{"$set": bson.M{"updatedAt": time.Now()}}
	if info == nil {
		update["$unset"] = bson.M{"claimInfo": ""}
	} else {
		update["$set"].(bson.M)["claimInfo"] = info
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"osId": osID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("facility not found")
	}
	return nil
}

// AddActivityReport prepends a report so reports stay most recent first.
func (r *Repository) AddActivityReport(ctx context.Context, osID string, report ActivityReport) error {
	report.ReportedAt = time.Now()
	report.Status = ReportPending

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"osId": osID},
		bson.M{
			"$push": bson.M{"activityReports": bson.M{
				"$each":     []ActivityReport{report},
				"$position": 0,
			}},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("facility not found")
	}
	return nil
}

// ResolveActivityReport marks the most recent report resolved and applies
// its closure verdict to the facility record.
func (r *Repository) ResolveActivityReport(ctx context.Context, osID string, closed bool, newOSID string) error {
	set := bson.M{
		"activityReports.0.status": ReportResolved,
		"isClosed":                 closed,
		"updatedAt":                time.Now(),
	}
	if newOSID != "" {
		set["newOsId"] = newOSID
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"osId": osID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("facility not found")
	}
	return nil
}

// DistinctCountries returns the country codes present in the facility set,
// used to build the moderation queue's country filter options.
func (r *Repository) DistinctCountries(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "countryCode", bson.M{})
	if err != nil {
		return nil, err
	}

	countries := make([]string, 0, len(values))
	for _, v := range values {
		if code, ok := v.(string); ok {
			countries = append(countries, code)
		}
	}
	return countries, nil
}
