package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Brand struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Slug            string             `json:"slug" bson:"slug"`
	Description     string             `json:"description" bson:"description"`
	BackgroundImage string             `json:"backgroundImage" bson:"backgroundImage"`
	Logo            string             `json:"logo" bson:"logo"`
	IsActive        bool               `json:"isActive" bson:"isActive"`
	DisplayOrder    int                `json:"displayOrder" bson:"displayOrder"`
	ProductCount    int64              `json:"productCount,omitempty" bson:"-"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type BrandRequest struct {
	Name            string `json:"name" form:"name" validate:"required"`
	Slug            string `json:"slug" form:"slug"`
	Description     string `json:"description" form:"description"`
	BackgroundImage string `json:"backgroundImage" form:"backgroundImage"`
	Logo            string `json:"logo" form:"logo"`
	IsActive        string `json:"isActive" form:"isActive"`
	DisplayOrder    int    `json:"displayOrder" form:"displayOrder"`
}

// Active interprets the checkbox values the admin form sends.
func (r *BrandRequest) Active() bool {
	return r.IsActive == "on" || r.IsActive == "true"
}
