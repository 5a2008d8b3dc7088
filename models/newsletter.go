package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription sources
const (
	SourceWebsite  = "website"
	SourceCheckout = "checkout"
	SourceAdmin    = "admin"
	SourceImport   = "import"
)

type Newsletter struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email          string             `json:"email" bson:"email"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
	SubscribedAt   time.Time          `json:"subscribedAt" bson:"subscribedAt"`
	UnsubscribedAt *time.Time         `json:"unsubscribedAt" bson:"unsubscribedAt"`
	Source         string             `json:"source" bson:"source"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type SubscribeRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

// NewsletterStats is shown above the subscriber list
type NewsletterStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

// NewsletterFilter selects subscribers for the admin list and export.
// A zero Limit returns every match.
type NewsletterFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}
