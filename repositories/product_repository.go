package repositories

import (
	"context"
	"fmt"
	"regexp"

	"github.com/HSouheill/storefront_backend/config"
	"github.com/HSouheill/storefront_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var flagFields = map[string]bool{
	"isNewOffer":  true,
	"isBestOffer": true,
	"isFeatured":  true,
}

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		collection: db.Collection(config.ProductsCollection),
	}
}

// productQuery turns a filter into a bson query. Search input is quoted so
// it always matches literally.
func productQuery(f models.ProductFilter) bson.M {
	query := bson.M{}
	if f.ActiveOnly {
		query["isActive"] = true
	}
	if len(f.CategoryIDs) > 0 {
		query["category"] = bson.M{"$in": f.CategoryIDs}
	}
	if f.BrandID != nil {
		query["brand"] = *f.BrandID
	}
	if f.Flag != "" {
		query[f.Flag] = true
	}
	if f.WithCarousel {
		query["carouselImage"] = bson.M{"$exists": true, "$ne": ""}
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	return query
}

// Find lists products newest first.
func (r *ProductRepository) Find(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	if f.Flag != "" && !flagFields[f.Flag] {
		return nil, fmt.Errorf("unknown product flag %q", f.Flag)
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cursor, err := r.collection.Find(ctx, productQuery(f), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *ProductRepository) findOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var product models.Product
	if err := r.collection.FindOne(ctx, filter).Decode(&product); err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByIDs returns the products in ids order; missing ids are skipped.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID, activeOnly bool) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := bson.M{"_id": bson.M{"$in": ids}}
	if activeOnly {
		query["isActive"] = true
	}
	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var found []models.Product
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	products := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
			delete(byID, id)
		}
	}
	return products, nil
}

func (r *ProductRepository) Insert(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		return translateSlug(err)
	}
	product.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// Update writes the editable fields. Images are managed by AddImages.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	set := bson.M{
		"name":          product.Name,
		"slug":          product.Slug,
		"description":   product.Description,
		"price":         product.Price,
		"stock":         product.Stock,
		"category":      product.Category,
		"metadata":      product.Metadata,
		"isActive":      product.IsActive,
		"isNewOffer":    product.IsNewOffer,
		"isBestOffer":   product.IsBestOffer,
		"isFeatured":    product.IsFeatured,
		"carouselImage": product.CarouselImage,
		"updatedAt":     product.UpdatedAt,
	}
	unset := bson.M{}
	if product.OriginalPrice != nil {
		set["originalPrice"] = *product.OriginalPrice
	} else {
		unset["originalPrice"] = ""
	}
	if product.Brand != nil {
		set["brand"] = *product.Brand
	} else {
		unset["brand"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": product.ID}, update)
	if err != nil {
		return translateSlug(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
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

func (r *ProductRepository) updateByID(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) AddImages(ctx context.Context, id primitive.ObjectID, images, thumbnails []string) error {
	return r.updateByID(ctx, id, bson.M{"$push": bson.M{
		"images":     bson.M{"$each": images},
		"thumbnails": bson.M{"$each": thumbnails},
	}})
}

// DecrementStock is a plain $inc; checkout is not transactional.
func (r *ProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	return r.updateByID(ctx, id, bson.M{"$inc": bson.M{"stock": -quantity}})
}

func (r *ProductRepository) SetFlag(ctx context.Context, id primitive.ObjectID, field string, value bool) error {
	if !flagFields[field] {
		return fmt.Errorf("unknown product flag %q", field)
	}
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{field: value}})
}

func (r *ProductRepository) SetCarouselImage(ctx context.Context, id primitive.ObjectID, image string) error {
	if image == "" {
		return r.updateByID(ctx, id, bson.M{"$unset": bson.M{"carouselImage": ""}})
	}
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"carouselImage": image}})
}

func (r *ProductRepository) UnsetBrand(ctx context.Context, brandID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.UpdateMany(ctx, bson.M{"brand": brandID}, bson.M{"$unset": bson.M{"brand": ""}})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *ProductRepository) CountByBrand(ctx context.Context, brandID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{"brand": brandID})
}
