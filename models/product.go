package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product model
type Product struct {
	ID            primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	Name          string                 `json:"name" bson:"name"`
	Slug          string                 `json:"slug" bson:"slug"`
	Description   string                 `json:"description" bson:"description"`
	Price         float64                `json:"price" bson:"price"`
	OriginalPrice *float64               `json:"originalPrice,omitempty" bson:"originalPrice,omitempty"`
	Stock         int                    `json:"stock" bson:"stock"`
	Category      primitive.ObjectID     `json:"category" bson:"category"`
	Brand         *primitive.ObjectID    `json:"brand,omitempty" bson:"brand,omitempty"`
	Metadata      map[string]interface{} `json:"metadata" bson:"metadata"`
	Images        []string               `json:"images" bson:"images"`
	Thumbnails    []string               `json:"thumbnails,omitempty" bson:"thumbnails,omitempty"`
	IsActive      bool                   `json:"isActive" bson:"isActive"`
	IsNewOffer    bool                   `json:"isNewOffer" bson:"isNewOffer"`
	IsBestOffer   bool                   `json:"isBestOffer" bson:"isBestOffer"`
	IsFeatured    bool                   `json:"isFeatured" bson:"isFeatured"`
	CarouselImage string                 `json:"carouselImage,omitempty" bson:"carouselImage,omitempty"`
	CreatedAt     time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt" bson:"updatedAt"`
}

// FormattedPrice renders the price the way the shop templates show it.
func (p *Product) FormattedPrice() string {
	return fmt.Sprintf("$%.2f", p.Price)
}

// ProductView is a product with its category populated for display.
type ProductView struct {
	Product      `bson:",inline"`
	CategoryInfo *CategoryRef `json:"categoryInfo,omitempty" bson:"categoryInfo,omitempty"`
	Path         string       `json:"path,omitempty" bson:"-"`
}

// CategoryRef is the populated subset of a category.
type CategoryRef struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"name" bson:"name"`
	Slug string             `json:"slug" bson:"slug"`
}

// Homepage section names accepted by the admin section toggles
const (
	SectionNewOffers  = "newOffers"
	SectionBestOffers = "bestOffers"
	SectionFeatured   = "featured"
)

// SectionField maps a homepage section to the product flag that backs it.
func SectionField(section string) (string, bool) {
	switch section {
	case SectionNewOffers:
		return "isNewOffer", true
	case SectionBestOffers:
		return "isBestOffer", true
	case SectionFeatured:
		return "isFeatured", true
	}
	return "", false
}

// ProductRequest is the admin create/update payload. Metadata values arrive
// as strings and are typed against the category's attributes.
type ProductRequest struct {
	Name          string            `json:"name" form:"name" validate:"required"`
	Slug          string            `json:"slug" form:"slug"`
	Description   string            `json:"description" form:"description"`
	Price         float64           `json:"price" form:"price" validate:"min=0"`
	OriginalPrice *float64          `json:"originalPrice" form:"originalPrice" validate:"omitempty,min=0"`
	Stock         int               `json:"stock" form:"stock" validate:"min=0"`
	Category      string            `json:"category" form:"category" validate:"required"`
	Brand         string            `json:"brand" form:"brand"`
	Metadata      map[string]string `json:"metadata"`
	IsActive      *bool             `json:"isActive" form:"isActive"`
	IsNewOffer    bool              `json:"isNewOffer" form:"isNewOffer"`
	IsBestOffer   bool              `json:"isBestOffer" form:"isBestOffer"`
	IsFeatured    bool              `json:"isFeatured" form:"isFeatured"`
	CarouselImage string            `json:"carouselImage" form:"carouselImage"`
}

// ProductFilter narrows product listings. Zero values mean "no constraint".
type ProductFilter struct {
	CategoryIDs []primitive.ObjectID
	BrandID     *primitive.ObjectID
	ActiveOnly  bool
	// Search is matched case-insensitively as a substring of name or description
	Search string
	// Flag is one of isNewOffer, isBestOffer, isFeatured
	Flag         string
	WithCarousel bool
	Limit        int64
}

// BatchRequest carries the product ids of a cart.
type BatchRequest struct {
	IDs []string `json:"ids" validate:"required"`
}

// HomeSections is everything the home page shows.
type HomeSections struct {
	Carousel   []Product      `json:"carousel"`
	NewOffers  []Product      `json:"newOffers"`
	BestOffers []Product      `json:"bestOffers"`
	Featured   []Product      `json:"featured"`
	Categories []CategoryNode `json:"categories"`
	Brands     []Brand        `json:"brands"`
}

// CarouselRequest puts a product on the home carousel. The image may also
// arrive as an uploaded carouselImage file.
type CarouselRequest struct {
	ProductID     string `json:"productId" form:"productId" validate:"required"`
	CarouselImage string `json:"carouselImage" form:"carouselImage"`
}

// SectionRequest adds a product to or removes it from a homepage section.
type SectionRequest struct {
	ProductID string `json:"productId" form:"productId"`
	Section   string `json:"section" form:"section" validate:"required"`
	Action    string `json:"action" form:"action" validate:"omitempty,oneof=add remove"`
}
