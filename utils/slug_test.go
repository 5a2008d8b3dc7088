package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Electronics":          "electronics",
		"Men's Clothing":       "men-s-clothing",
		"  Home & Garden  ":    "home-garden",
		"--Already-Slugged--":  "already-slugged",
		"TV / Audio // Video":  "tv-audio-video",
		"":                     "",
		"!!!":                  "",
		"Phones 2024 Edition!": "phones-2024-edition",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestSlugOrDerive(t *testing.T) {
	assert.Equal(t, "custom-slug", SlugOrDerive("Custom Slug", "Name"))
	assert.Equal(t, "kitchen-tools", SlugOrDerive("", "Kitchen Tools"))
}

func TestProductSlug(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "iphone-15-pro-1700000000123", ProductSlug("iPhone 15 Pro", now))
}
