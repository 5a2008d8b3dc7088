package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments), ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("find: %w", mongo.ErrNoDocuments)), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translate(dup), ErrDuplicateKey)
	assert.ErrorIs(t, translateSlug(dup), ErrDuplicateSlug)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}

func TestProductQuery(t *testing.T) {
	cat := primitive.NewObjectID()
	brand := primitive.NewObjectID()

	q := productQuery(models.ProductFilter{
		CategoryIDs:  []primitive.ObjectID{cat},
		BrandID:      &brand,
		ActiveOnly:   true,
		Flag:         "isFeatured",
		WithCarousel: true,
		Search:       "c++ (pro)",
	})

	assert.Equal(t, true, q["isActive"])
	assert.Equal(t, bson.M{"$in": []primitive.ObjectID{cat}}, q["category"])
	assert.Equal(t, brand, q["brand"])
	assert.Equal(t, true, q["isFeatured"])
	assert.Equal(t, bson.M{"$exists": true, "$ne": ""}, q["carouselImage"])

	or, ok := q["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	pattern := or[0].(bson.M)["name"].(primitive.Regex)
	assert.Equal(t, `c\+\+ \(pro\)`, pattern.Pattern)
	assert.Equal(t, "i", pattern.Options)

	assert.Empty(t, productQuery(models.ProductFilter{}))
}

func TestOrderQuery(t *testing.T) {
	q := orderQuery(models.OrderFilter{Status: models.StatusShipped, Search: "ord-1"})
	assert.Equal(t, models.StatusShipped, q["status"])
	or, ok := q["$or"].(bson.A)
	require.True(t, ok)
	assert.Len(t, or, 4)
	assert.Contains(t, or, bson.M{"customer.email": primitive.Regex{Pattern: "ord-1", Options: "i"}})

	assert.Empty(t, orderQuery(models.OrderFilter{}))
}

func TestNewsletterQuery(t *testing.T) {
	assert.Equal(t, bson.M{"isActive": true}, newsletterQuery(models.NewsletterFilter{Status: "active"}))
	assert.Equal(t, bson.M{"isActive": false}, newsletterQuery(models.NewsletterFilter{Status: "inactive"}))
	assert.Empty(t, newsletterQuery(models.NewsletterFilter{Status: "all"}))

	q := newsletterQuery(models.NewsletterFilter{Search: "a.b"})
	assert.Equal(t, primitive.Regex{Pattern: `a\.b`, Options: "i"}, q["email"])
}

func TestSessionKeys(t *testing.T) {
	assert.Equal(t, "session:admin:abc", sessionKey(models.RealmAdmin, "abc"))
	assert.Equal(t, "login_attempts:seo:10.0.0.1", attemptsKey(models.RealmSeo, "10.0.0.1"))
}
