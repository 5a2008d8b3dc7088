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

type PageRepository struct {
	collection *mongo.Collection
}

func NewPageRepository(db *mongo.Database) *PageRepository {
	return &PageRepository{
		collection: db.Collection(config.PageContentsCollection),
	}
}

func (r *PageRepository) FindAll(ctx context.Context) ([]models.PageContent, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "pageSlug", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	pages := []models.PageContent{}
	if err := cursor.All(ctx, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *PageRepository) FindBySlug(ctx context.Context, slug string) (*models.PageContent, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var page models.PageContent
	if err := r.collection.FindOne(ctx, bson.M{"pageSlug": slug}).Decode(&page); err != nil {
		return nil, translate(err)
	}
	return &page, nil
}

func (r *PageRepository) Insert(ctx context.Context, page *models.PageContent) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, page)
	if err != nil {
		return translate(err)
	}
	page.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// Save replaces the page stored under page.PageSlug, creating it if needed.
func (r *PageRepository) Save(ctx context.Context, page *models.PageContent) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	doc := *page
	doc.ID = primitive.NilObjectID
	result, err := r.collection.ReplaceOne(ctx, bson.M{"pageSlug": page.PageSlug}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return translate(err)
	}
	if id, ok := result.UpsertedID.(primitive.ObjectID); ok {
		page.ID = id
	}
	return nil
}

func (r *PageRepository) DeleteBySlug(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"pageSlug": slug})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
