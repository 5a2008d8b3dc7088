package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxAnnouncements       = 5
	MaxAnnouncementTextLen = 200
)

type Announcement struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Text      string             `json:"text" bson:"text"`
	IsActive  bool               `json:"isActive" bson:"isActive"`
	Order     int                `json:"order" bson:"order"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type AnnouncementRequest struct {
	Text     string `json:"text" form:"text" validate:"required,max=200"`
	IsActive string `json:"isActive" form:"isActive"`
	Order    *int   `json:"order" form:"order"`
}

// Active interprets the checkbox values the admin form sends.
func (r *AnnouncementRequest) Active() bool {
	return r.IsActive == "on" || r.IsActive == "true"
}
