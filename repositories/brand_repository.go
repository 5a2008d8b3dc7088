package repositories

import (
	"context"

	"github.com/HSouheill/storefront_backend/config"
	"github.com/HSouheill/storefront_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BrandRepository struct {
	collection *mongo.Collection
}

func NewBrandRepository(db *mongo.Database) *BrandRepository {
	return &BrandRepository{
		collection: db.Collection(config.BrandsCollection),
	}
}

func (r *BrandRepository) FindAll(ctx context.Context, activeOnly bool) ([]models.Brand, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := bson.M{}
	if activeOnly {
		query["isActive"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "displayOrder", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	brands := []models.Brand{}
	if err := cursor.All(ctx, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *BrandRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Brand, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var brand models.Brand
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&brand); err != nil {
		return nil, translate(err)
	}
	return &brand, nil
}

func (r *BrandRepository) Insert(ctx context.Context, b *models.Brand) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, b)
	if err != nil {
		return translateSlug(err)
	}
	b.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *BrandRepository) Update(ctx context.Context, b *models.Brand) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":            b.Name,
		"slug":            b.Slug,
		"description":     b.Description,
		"backgroundImage": b.BackgroundImage,
		"logo":            b.Logo,
		"isActive":        b.IsActive,
		"displayOrder":    b.DisplayOrder,
		"updatedAt":       b.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": b.ID}, update)
	if err != nil {
		return translateSlug(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BrandRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
