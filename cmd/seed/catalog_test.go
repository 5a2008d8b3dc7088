package main

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refs(list []CategorySeed) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Ref()
	}
	return out
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func TestLoadBundledCatalog(t *testing.T) {
	f, err := os.Open("../../seeds/catalog.yaml")
	require.NoError(t, err)
	defer f.Close()

	catalog, err := LoadCatalog(f)
	require.NoError(t, err)
	assert.Len(t, catalog.Categories, 5)
	assert.Len(t, catalog.Products, 3)
	assert.Len(t, catalog.Announcements, 2)

	phones := catalog.Categories[1]
	assert.Equal(t, "phones", phones.Ref())
	assert.Equal(t, []string{"64GB", "128GB", "256GB"}, phones.Attributes[0].Options)

	ordered, err := OrderCategories(catalog.Categories)
	require.NoError(t, err)
	got := refs(ordered)
	assert.Less(t, indexOf(got, "electronics"), indexOf(got, "phones"))
	assert.Less(t, indexOf(got, "phones"), indexOf(got, "android"))
	assert.Contains(t, got, "home-kitchen")
}

func TestLoadCatalogRejectsUnknownFields(t *testing.T) {
	_, err := LoadCatalog(strings.NewReader("categories:\n  - name: A\n    parnet: b\n"))
	assert.Error(t, err)
}

func TestLoadEmptyCatalog(t *testing.T) {
	catalog, err := LoadCatalog(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, catalog.Categories)
}

func TestOrderCategoriesParentsFirst(t *testing.T) {
	ordered, err := OrderCategories([]CategorySeed{
		{Name: "Leaf", Parent: "Middle"},
		{Name: "Middle", Parent: "root-slug"},
		{Name: "Root", Slug: "root-slug"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"root-slug", "middle", "leaf"}, refs(ordered))
}

func TestOrderCategoriesErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []CategorySeed
		want string
	}{
		{"unknown parent", []CategorySeed{{Name: "A", Parent: "missing"}}, "unknown parent"},
		{"cycle", []CategorySeed{{Name: "A", Parent: "B"}, {Name: "B", Parent: "A"}}, "own ancestor"},
		{"duplicate", []CategorySeed{{Name: "A"}, {Name: "Other", Slug: "a"}}, "declared twice"},
		{"missing name", []CategorySeed{{Slug: "x"}}, "has no name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OrderCategories(tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSeedRequests(t *testing.T) {
	price := 10.0
	p := ProductSeed{Name: "X", Price: 5, OriginalPrice: &price, Category: "c", Inactive: true, Featured: true}
	req := p.request("abc")
	assert.Equal(t, "abc", req.Category)
	require.NotNil(t, req.IsActive)
	assert.False(t, *req.IsActive)
	assert.True(t, req.IsFeatured)

	on := AnnouncementSeed{Text: "hi", Active: true}.request()
	off := AnnouncementSeed{Text: "hi"}.request()
	assert.True(t, on.Active())
	assert.False(t, off.Active())

	c := CategorySeed{Name: "Phones", Attributes: []AttributeSeed{{Label: "Storage", FieldType: "select", Options: []string{"a"}}}}
	creq := c.request("")
	assert.Empty(t, creq.Parent)
	assert.Equal(t, "select", creq.Attributes[0].FieldType)
}
