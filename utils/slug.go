package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s, collapses every run of non-alphanumeric characters
// into one hyphen and trims hyphens from both ends.
func Slugify(s string) string {
	slug := nonAlnumRun.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

// SlugOrDerive keeps an explicit slug (normalized) or derives one from name.
func SlugOrDerive(slug, name string) string {
	if s := Slugify(slug); s != "" {
		return s
	}
	return Slugify(name)
}

// ProductSlug derives a product slug, suffixed with the creation time in
// milliseconds so equal names don't collide.
func ProductSlug(name string, now time.Time) string {
	return Slugify(name) + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}
