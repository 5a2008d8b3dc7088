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

type AnnouncementRepository struct {
	collection *mongo.Collection
}

func NewAnnouncementRepository(db *mongo.Database) *AnnouncementRepository {
	return &AnnouncementRepository{
		collection: db.Collection(config.AnnouncementsCollection),
	}
}

func (r *AnnouncementRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{})
}

// List returns announcements by display order, oldest first on ties.
func (r *AnnouncementRepository) List(ctx context.Context, activeOnly bool, limit int64) ([]models.Announcement, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := bson.M{}
	if activeOnly {
		query["isActive"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	announcements := []models.Announcement{}
	if err := cursor.All(ctx, &announcements); err != nil {
		return nil, err
	}
	return announcements, nil
}

func (r *AnnouncementRepository) Insert(ctx context.Context, a *models.Announcement) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, a)
	if err != nil {
		return err
	}
	a.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *AnnouncementRepository) Update(ctx context.Context, a *models.Announcement) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"text":      a.Text,
		"isActive":  a.IsActive,
		"order":     a.Order,
		"updatedAt": a.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": a.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AnnouncementRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
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
