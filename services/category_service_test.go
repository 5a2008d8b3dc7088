package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeCategoryStore struct {
	items   map[primitive.ObjectID]models.Category
	findErr error
}

func newFakeCategoryStore(categories ...models.Category) *fakeCategoryStore {
	s := &fakeCategoryStore{items: map[primitive.ObjectID]models.Category{}}
	for _, c := range categories {
		s.items[c.ID] = c
	}
	return s
}

func (s *fakeCategoryStore) FindAll(ctx context.Context) ([]models.Category, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := make([]models.Category, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeCategoryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	c, ok := s.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (s *fakeCategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	for _, c := range s.items {
		if c.Slug == slug {
			c := c
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeCategoryStore) Insert(ctx context.Context, category *models.Category) error {
	for _, c := range s.items {
		if c.Slug == category.Slug {
			return repositories.ErrDuplicateSlug
		}
	}
	category.ID = primitive.NewObjectID()
	s.items[category.ID] = *category
	return nil
}

func (s *fakeCategoryStore) Update(ctx context.Context, category *models.Category) error {
	if _, ok := s.items[category.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.items[category.ID] = *category
	return nil
}

func (s *fakeCategoryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := s.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *fakeCategoryStore) HasChildren(ctx context.Context, id primitive.ObjectID) (bool, error) {
	for _, c := range s.items {
		if c.Parent != nil && *c.Parent == id {
			return true, nil
		}
	}
	return false, nil
}

func TestCategoryServiceCreate(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	store := newFakeCategoryStore(f.categories...)
	svc := NewCategoryService(store)
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	created, err := svc.Create(ctx, models.CategoryRequest{
		Name:   "  Tablets & E-Readers ",
		Parent: f.electronics.Hex(),
		Attributes: []models.AttributeInput{
			{Label: "Screen Size", FieldType: "number"},
			{Label: "  "},
			{Label: "Connectivity", FieldType: "select", Options: models.OptionList{" Wi-Fi", "", "LTE "}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Tablets & E-Readers", created.Name)
	assert.Equal(t, "tablets-e-readers", created.Slug)
	assert.Equal(t, fixed, created.CreatedAt)
	require.NotNil(t, created.Parent)
	assert.Equal(t, f.electronics, *created.Parent)
	require.Len(t, created.Attributes, 2)
	assert.Equal(t, "screen_size", created.Attributes[0].Key)
	assert.Equal(t, models.FieldTypeNumber, created.Attributes[0].FieldType)
	assert.Equal(t, []string{"Wi-Fi", "LTE"}, created.Attributes[1].Options)

	attrs, err := svc.InheritedAttributes(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, attrs, 4)
	assert.Equal(t, "Electronics", *attrs[0].InheritedFrom)
}

func TestCategoryServiceCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewCategoryService(newFakeCategoryStore())

	_, err := svc.Create(ctx, models.CategoryRequest{Name: " "})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = svc.Create(ctx, models.CategoryRequest{Name: "!!!"})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = svc.Create(ctx, models.CategoryRequest{
		Name:       "Shoes",
		Attributes: []models.AttributeInput{{Label: "Size", FieldType: "date"}},
	})
	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.ErrorIs(t, err, models.ErrUnknownFieldType)

	_, err = svc.Create(ctx, models.CategoryRequest{Name: "Shoes", Parent: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = svc.Create(ctx, models.CategoryRequest{Name: "Shoes", Parent: primitive.NewObjectID().Hex()})
	assert.ErrorIs(t, err, ErrParentNotFound)
}

func TestCategoryServiceCreateDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	svc := NewCategoryService(newFakeCategoryStore(f.categories...))

	_, err := svc.Create(ctx, models.CategoryRequest{Name: "Phones"})
	assert.ErrorIs(t, err, repositories.ErrDuplicateSlug)
}

func TestCategoryServiceUpdateRejectsCycle(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	store := newFakeCategoryStore(f.categories...)
	svc := NewCategoryService(store)

	_, err := svc.Update(ctx, f.electronics, models.CategoryRequest{
		Name:   "Electronics",
		Parent: f.smartphones.Hex(),
	})
	assert.ErrorIs(t, err, ErrCycleDetected)
	assert.True(t, store.items[f.electronics].IsRoot())

	_, err = svc.Update(ctx, f.phones, models.CategoryRequest{
		Name:   "Phones",
		Parent: f.phones.Hex(),
	})
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestCategoryServiceUpdateReplacesAttributes(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	store := newFakeCategoryStore(f.categories...)
	svc := NewCategoryService(store)

	updated, err := svc.Update(ctx, f.phones, models.CategoryRequest{
		Name:       "Mobile Phones",
		Slug:       "mobile",
		Parent:     f.electronics.Hex(),
		Attributes: []models.AttributeInput{{Label: "Battery", Key: "battery_mah", FieldType: "number"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "mobile", updated.Slug)

	stored := store.items[f.phones]
	require.Len(t, stored.Attributes, 1)
	assert.Equal(t, "battery_mah", stored.Attributes[0].Key)

	// moving to root
	updated, err = svc.Update(ctx, f.phones, models.CategoryRequest{Name: "Mobile Phones"})
	require.NoError(t, err)
	assert.True(t, updated.IsRoot())

	_, err = svc.Update(ctx, primitive.NewObjectID(), models.CategoryRequest{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryServiceDelete(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	store := newFakeCategoryStore(f.categories...)
	svc := NewCategoryService(store)

	assert.ErrorIs(t, svc.Delete(ctx, f.electronics), ErrHasChildren)
	assert.Contains(t, store.items, f.electronics)

	assert.ErrorIs(t, svc.Delete(ctx, f.phones), ErrHasChildren)

	require.NoError(t, svc.Delete(ctx, f.smartphones))
	assert.NotContains(t, store.items, f.smartphones)

	// Laptops still hangs under Electronics
	require.NoError(t, svc.Delete(ctx, f.phones))
	assert.NotContains(t, store.items, f.phones)
	assert.ErrorIs(t, svc.Delete(ctx, f.electronics), ErrHasChildren)

	require.NoError(t, svc.Delete(ctx, f.laptops))
	require.NoError(t, svc.Delete(ctx, f.electronics))
	assert.NotContains(t, store.items, f.electronics)
	assert.ErrorIs(t, svc.Delete(ctx, f.electronics), ErrCategoryNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, primitive.NewObjectID()), ErrCategoryNotFound)
}

func TestCategoryServiceResolveSlugPath(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	svc := NewCategoryService(newFakeCategoryStore(f.categories...))

	c, err := svc.ResolveSlugPath(ctx, "electronics", "phones", "smartphones")
	require.NoError(t, err)
	assert.Equal(t, f.smartphones, c.ID)

	c, err = svc.ResolveSlugPath(ctx, "smartphones")
	require.NoError(t, err)
	assert.Equal(t, f.smartphones, c.ID)

	_, err = svc.ResolveSlugPath(ctx, "clothing", "smartphones")
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = svc.ResolveSlugPath(ctx, "missing")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryServicePropagatesStoreErrors(t *testing.T) {
	store := newFakeCategoryStore()
	store.findErr = errors.New("connection reset")
	svc := NewCategoryService(store)

	_, err := svc.Flatten(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.findErr)
}
