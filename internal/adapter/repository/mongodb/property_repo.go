package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SashaDiz/real-estate-directory/internal/property/domain"
)

type PropertyRepository struct {
	collection *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{collection: db.Collection("properties")}
}

func (r *PropertyRepository) Create(ctx context.Context, property *domain.Property) error {
	property.ID = primitive.NewObjectID().Hex()
	now := time.Now().UTC()
	property.CreatedAt = now
	property.UpdatedAt = now
	if property.Images == nil {
		property.Images = []string{}
	}
	if _, err := r.collection.InsertOne(ctx, property); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

func (r *PropertyRepository) Update(ctx context.Context, property *domain.Property) error {
	property.UpdatedAt = time.Now().UTC()
	res, err := r.collection.UpdateByID(ctx, property.ID, bson.M{"$set": property})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PropertyRepository) FindByID(ctx context.Context, id string) (*domain.Property, error) {
	var property domain.Property
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&property)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return &property, nil
}

func (r *PropertyRepository) FindAll(ctx context.Context) ([]*domain.Property, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	properties := []*domain.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return properties, nil
}

func (r *PropertyRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	return r.increment(ctx, id, "views")
}

func (r *PropertyRepository) IncrementContactRequests(ctx context.Context, id string) (int64, error) {
	return r.increment(ctx, id, "contactRequests")
}

// increment is a single atomic $inc so concurrent requests for the
// same record never lose updates. The post-increment document is
// returned by the server, not re-read.
func (r *PropertyRepository) increment(ctx context.Context, id, field string) (int64, error) {
	var property domain.Property
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{field: 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&property)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	switch field {
	case "views":
		return property.Views, nil
	default:
		return property.ContactRequests, nil
	}
}
