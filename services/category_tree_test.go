package services

import (
	"testing"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type catalogFixture struct {
	electronics, phones, laptops, smartphones, clothing, men primitive.ObjectID
	categories                                               []models.Category
}

func newCatalogFixture() catalogFixture {
	f := catalogFixture{
		electronics: primitive.NewObjectID(),
		phones:      primitive.NewObjectID(),
		laptops:     primitive.NewObjectID(),
		smartphones: primitive.NewObjectID(),
		clothing:    primitive.NewObjectID(),
		men:         primitive.NewObjectID(),
	}
	// deliberately not in display order
	f.categories = []models.Category{
		{ID: f.phones, Name: "Phones", Slug: "phones", Parent: ptr(f.electronics), Attributes: []models.AttributeDefinition{
			{Label: "Storage", Key: "storage", FieldType: models.FieldTypeSelect, Options: []string{"128GB", "256GB"}},
		}},
		{ID: f.men, Name: "Men", Slug: "men", Parent: ptr(f.clothing)},
		{ID: f.electronics, Name: "Electronics", Slug: "electronics", Attributes: []models.AttributeDefinition{
			{Label: "Warranty", Key: "warranty", FieldType: models.FieldTypeText},
			{Label: "Brand", Key: "brand", FieldType: models.FieldTypeText},
		}},
		{ID: f.smartphones, Name: "Smartphones", Slug: "smartphones", Parent: ptr(f.phones), Attributes: []models.AttributeDefinition{
			{Label: "Screen Size", Key: "screen_size", FieldType: models.FieldTypeNumber},
		}},
		{ID: f.laptops, Name: "Laptops", Slug: "laptops", Parent: ptr(f.electronics)},
		{ID: f.clothing, Name: "Clothing", Slug: "clothing"},
	}
	return f
}

func ptr(id primitive.ObjectID) *primitive.ObjectID {
	return &id
}

func names(categories []models.Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = c.Name
	}
	return out
}

func TestAncestors(t *testing.T) {
	f := newCatalogFixture()
	tree := BuildCategoryTree(f.categories)

	ancestors, err := tree.Ancestors(f.smartphones)
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Phones"}, names(ancestors))

	ancestors, err = tree.Ancestors(f.electronics)
	require.NoError(t, err)
	assert.Empty(t, ancestors)

	ancestors, err = tree.Ancestors(primitive.NewObjectID())
	require.NoError(t, err)
	assert.NotNil(t, ancestors)
	assert.Empty(t, ancestors)
}

func TestAncestorsStopsAtDanglingParent(t *testing.T) {
	orphan := primitive.NewObjectID()
	child := primitive.NewObjectID()
	tree := BuildCategoryTree([]models.Category{
		{ID: orphan, Name: "Orphan", Parent: ptr(primitive.NewObjectID())},
		{ID: child, Name: "Child", Parent: ptr(orphan)},
	})

	ancestors, err := tree.Ancestors(child)
	require.NoError(t, err)
	assert.Equal(t, []string{"Orphan"}, names(ancestors))
}

func TestAncestorsDetectsCycle(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	tree := BuildCategoryTree([]models.Category{
		{ID: a, Name: "A", Parent: ptr(b)},
		{ID: b, Name: "B", Parent: ptr(a)},
	})

	_, err := tree.Ancestors(a)
	assert.ErrorIs(t, err, ErrCycleDetected)

	self := primitive.NewObjectID()
	tree = BuildCategoryTree([]models.Category{{ID: self, Name: "Self", Parent: ptr(self)}})
	_, err = tree.Ancestors(self)
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestDescendantIDs(t *testing.T) {
	f := newCatalogFixture()
	tree := BuildCategoryTree(f.categories)

	ids, err := tree.DescendantIDs(f.electronics)
	require.NoError(t, err)
	assert.ElementsMatch(t, []primitive.ObjectID{f.phones, f.laptops, f.smartphones}, ids)
	assert.NotContains(t, ids, f.electronics)

	ids, err = tree.DescendantIDs(f.smartphones)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = tree.DescendantIDs(primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDescendantIDsDetectsCycle(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	tree := BuildCategoryTree([]models.Category{
		{ID: a, Name: "A", Parent: ptr(b)},
		{ID: b, Name: "B", Parent: ptr(a)},
	})

	_, err := tree.DescendantIDs(a)
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestDescendantsCoverEveryChainThroughNode(t *testing.T) {
	f := newCatalogFixture()
	tree := BuildCategoryTree(f.categories)

	for _, c := range f.categories {
		ids, err := tree.DescendantIDs(c.ID)
		require.NoError(t, err)
		for _, other := range f.categories {
			ancestors, err := tree.Ancestors(other.ID)
			require.NoError(t, err)
			passes := false
			for _, a := range ancestors {
				if a.ID == c.ID {
					passes = true
				}
			}
			assert.Equal(t, passes, containsID(ids, other.ID), "%s below %s", other.Name, c.Name)
		}
	}
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestInheritedAttributes(t *testing.T) {
	f := newCatalogFixture()
	tree := BuildCategoryTree(f.categories)

	attrs, err := tree.InheritedAttributes(f.phones)
	require.NoError(t, err)
	require.Len(t, attrs, 3)

	assert.Equal(t, "warranty", attrs[0].Key)
	require.NotNil(t, attrs[0].InheritedFrom)
	assert.Equal(t, "Electronics", *attrs[0].InheritedFrom)
	assert.Equal(t, "brand", attrs[1].Key)
	assert.Equal(t, "storage", attrs[2].Key)
	assert.Nil(t, attrs[2].InheritedFrom)

	attrs, err = tree.InheritedAttributes(f.smartphones)
	require.NoError(t, err)
	keys := make([]string, len(attrs))
	for i, a := range attrs {
		keys[i] = a.Key
	}
	assert.Equal(t, []string{"warranty", "brand", "storage", "screen_size"}, keys)
	assert.Equal(t, "Phones", *attrs[2].InheritedFrom)
	assert.Nil(t, attrs[3].InheritedFrom)
}

func TestInheritedAttributesKeepsDuplicateKeys(t *testing.T) {
	parent, child := primitive.NewObjectID(), primitive.NewObjectID()
	tree := BuildCategoryTree([]models.Category{
		{ID: parent, Name: "Parent", Attributes: []models.AttributeDefinition{{Label: "Color", Key: "color"}}},
		{ID: child, Name: "Child", Parent: ptr(parent), Attributes: []models.AttributeDefinition{{Label: "Colour", Key: "color"}}},
	})

	attrs, err := tree.InheritedAttributes(child)
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	assert.Equal(t, "Color", attrs[0].Label)
	assert.Equal(t, "Colour", attrs[1].Label)
}

func TestInheritedAttributesDoesNotAliasOptions(t *testing.T) {
	f := newCatalogFixture()
	tree := BuildCategoryTree(f.categories)

	attrs, err := tree.InheritedAttributes(f.phones)
	require.NoError(t, err)
	attrs[2].Options[0] = "changed"

	phones, _ := tree.Get(f.phones)
	assert.Equal(t, "128GB", phones.Attributes[0].Options[0])
}

func TestInheritedAttributesUnknownID(t *testing.T) {
	tree := BuildCategoryTree(nil)
	attrs, err := tree.InheritedAttributes(primitive.NewObjectID())
	require.NoError(t, err)
	assert.NotNil(t, attrs)
	assert.Empty(t, attrs)
}

func TestFlatten(t *testing.T) {
	f := newCatalogFixture()
	tree := BuildCategoryTree(f.categories)

	flat, err := tree.Flatten(nil)
	require.NoError(t, err)

	type row struct {
		name  string
		level int
	}
	var got []row
	for _, c := range flat {
		got = append(got, row{c.Name, c.Level})
	}
	assert.Equal(t, []row{
		{"Clothing", 0},
		{"Men", 1},
		{"Electronics", 0},
		{"Laptops", 1},
		{"Phones", 1},
		{"Smartphones", 2},
	}, got)

	assert.Equal(t, "Clothing", flat[0].DisplayName)
	assert.Equal(t, "— Men", flat[1].DisplayName)
	assert.Equal(t, "—— Smartphones", flat[5].DisplayName)
	assert.Nil(t, flat[0].ParentID)
	require.NotNil(t, flat[1].ParentID)
	assert.Equal(t, f.clothing, *flat[1].ParentID)
}

func TestFlattenLevelsStepByOne(t *testing.T) {
	f := newCatalogFixture()
	tree := BuildCategoryTree(f.categories)

	flat, err := tree.Flatten(nil)
	require.NoError(t, err)

	levels := map[primitive.ObjectID]int{}
	for _, c := range flat {
		levels[c.ID] = c.Level
	}
	for _, c := range flat {
		if c.ParentID == nil {
			assert.Equal(t, 0, c.Level)
			continue
		}
		assert.Equal(t, levels[*c.ParentID]+1, c.Level, c.Name)
	}
}

func TestFlattenSubtree(t *testing.T) {
	f := newCatalogFixture()
	tree := BuildCategoryTree(f.categories)

	flat, err := tree.Flatten(&f.phones)
	require.NoError(t, err)
	require.Len(t, flat, 2)
	assert.Equal(t, "Phones", flat[0].Name)
	assert.Equal(t, 0, flat[0].Level)
	assert.Equal(t, "Smartphones", flat[1].Name)
	assert.Equal(t, 1, flat[1].Level)

	unknown := primitive.NewObjectID()
	flat, err = tree.Flatten(&unknown)
	require.NoError(t, err)
	assert.Empty(t, flat)
}

func TestFlattenReportsUnreachableCycle(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	tree := BuildCategoryTree([]models.Category{
		{ID: primitive.NewObjectID(), Name: "Root"},
		{ID: a, Name: "A", Parent: ptr(b)},
		{ID: b, Name: "B", Parent: ptr(a)},
	})

	_, err := tree.Flatten(nil)
	assert.ErrorIs(t, err, ErrCycleDetected)

	_, err = tree.Flatten(&a)
	assert.ErrorIs(t, err, ErrCycleDetected)

	_, err = tree.Nested(nil)
	assert.ErrorIs(t, err, ErrCycleDetected)
}

func TestNestedMatchesFlatten(t *testing.T) {
	f := newCatalogFixture()
	tree := BuildCategoryTree(f.categories)

	nested, err := tree.Nested(nil)
	require.NoError(t, err)
	require.Len(t, nested, 2)

	assert.Equal(t, "Clothing", nested[0].Name)
	require.Len(t, nested[0].Children, 1)
	assert.Equal(t, "Men", nested[0].Children[0].Name)
	assert.Empty(t, nested[0].Children[0].Children)

	electronics := nested[1]
	assert.Equal(t, "Electronics", electronics.Name)
	require.Len(t, electronics.Children, 2)
	assert.Equal(t, "Laptops", electronics.Children[0].Name)
	assert.Equal(t, "Phones", electronics.Children[1].Name)
	require.Len(t, electronics.Children[1].Children, 1)
	assert.Equal(t, "Smartphones", electronics.Children[1].Children[0].Name)
	assert.Equal(t, 2, electronics.Children[1].Children[0].Level)

	// pre-order walk of the nested form yields the flat form
	flat, err := tree.Flatten(nil)
	require.NoError(t, err)
	var walked []string
	var visit func(nodes []models.CategoryNode)
	visit = func(nodes []models.CategoryNode) {
		for _, n := range nodes {
			walked = append(walked, n.Name)
			visit(n.Children)
		}
	}
	visit(nested)
	var flatNames []string
	for _, c := range flat {
		flatNames = append(flatNames, c.Name)
	}
	assert.Equal(t, flatNames, walked)
}

func TestPath(t *testing.T) {
	f := newCatalogFixture()
	tree := BuildCategoryTree(f.categories)

	path, err := tree.Path(f.smartphones)
	require.NoError(t, err)
	assert.Equal(t, []string{"electronics", "phones", "smartphones"}, path)
}

func TestValidateParent(t *testing.T) {
	f := newCatalogFixture()
	tree := BuildCategoryTree(f.categories)

	assert.NoError(t, tree.ValidateParent(f.laptops, f.clothing))
	assert.ErrorIs(t, tree.ValidateParent(f.electronics, f.smartphones), ErrCycleDetected)
	assert.ErrorIs(t, tree.ValidateParent(f.electronics, f.electronics), ErrCycleDetected)
	assert.ErrorIs(t, tree.ValidateParent(f.electronics, primitive.NewObjectID()), ErrParentNotFound)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Shoes", DisplayName("Shoes", 0))
	assert.Equal(t, "——— Shoes", DisplayName("Shoes", 3))
}
