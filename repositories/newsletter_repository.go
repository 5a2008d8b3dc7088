package repositories

import (
	"context"
	"regexp"

	"github.com/HSouheill/storefront_backend/config"
	"github.com/HSouheill/storefront_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NewsletterRepository struct {
	collection *mongo.Collection
}

func NewNewsletterRepository(db *mongo.Database) *NewsletterRepository {
	return &NewsletterRepository{
		collection: db.Collection(config.NewslettersCollection),
	}
}

func (r *NewsletterRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Newsletter, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *NewsletterRepository) FindByEmail(ctx context.Context, email string) (*models.Newsletter, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *NewsletterRepository) findOne(ctx context.Context, filter bson.M) (*models.Newsletter, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var n models.Newsletter
	if err := r.collection.FindOne(ctx, filter).Decode(&n); err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (r *NewsletterRepository) Insert(ctx context.Context, n *models.Newsletter) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, n)
	if err != nil {
		return translate(err)
	}
	n.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *NewsletterRepository) Save(ctx context.Context, n *models.Newsletter) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"isActive":       n.IsActive,
		"unsubscribedAt": n.UnsubscribedAt,
		"updatedAt":      n.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": n.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NewsletterRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
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

func newsletterQuery(f models.NewsletterFilter) bson.M {
	query := bson.M{}
	switch f.Status {
	case "active":
		query["isActive"] = true
	case "inactive":
		query["isActive"] = false
	}
	if f.Search != "" {
		query["email"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}
	return query
}

// List returns subscribers newest first. A zero Limit returns every match.
func (r *NewsletterRepository) List(ctx context.Context, f models.NewsletterFilter) ([]models.Newsletter, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := newsletterQuery(f)
	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "subscribedAt", Value: -1}})
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * f.Limit)).SetLimit(int64(f.Limit))
	}
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	subscribers := []models.Newsletter{}
	if err := cursor.All(ctx, &subscribers); err != nil {
		return nil, 0, err
	}
	return subscribers, total, nil
}

func (r *NewsletterRepository) Stats(ctx context.Context) (models.NewsletterStats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var stats models.NewsletterStats
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return stats, err
	}
	active, err := r.collection.CountDocuments(ctx, bson.M{"isActive": true})
	if err != nil {
		return stats, err
	}
	stats.Total = total
	stats.Active = active
	stats.Inactive = total - active
	return stats, nil
}
