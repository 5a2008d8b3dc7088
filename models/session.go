package models

// Realm names one of the independent back-office capabilities.
type Realm string

const (
	RealmAdmin Realm = "admin"
	RealmSeo   Realm = "seo"
)

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}
