package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxMetaTitleLen       = 70
	MaxMetaDescriptionLen = 160
	DefaultRobots         = "index, follow"
	DefaultOgType         = "website"
)

var ErrInvalidRobots = errors.New("invalid robots directive")

var robotsValues = map[string]bool{
	"index, follow":     true,
	"noindex, follow":   true,
	"index, nofollow":   true,
	"noindex, nofollow": true,
}

// ValidRobots reports whether r is one of the accepted robots directives.
func ValidRobots(r string) bool {
	return robotsValues[r]
}

// ContentElement is one editable text element of a page
type ContentElement struct {
	OriginalText string `json:"originalText" bson:"originalText"`
	EditedText   string `json:"editedText" bson:"editedText"`
	ElementType  string `json:"elementType" bson:"elementType" validate:"omitempty,oneof=heading paragraph button link label"`
	Description  string `json:"description" bson:"description"`
}

// Text returns the edited text when it is not blank, the original otherwise.
func (e ContentElement) Text() string {
	if strings.TrimSpace(e.EditedText) != "" {
		return e.EditedText
	}
	return e.OriginalText
}

type PageContent struct {
	ID              primitive.ObjectID        `json:"id,omitempty" bson:"_id,omitempty"`
	PageSlug        string                    `json:"pageSlug" bson:"pageSlug"`
	PageName        string                    `json:"pageName" bson:"pageName"`
	MetaTitle       string                    `json:"metaTitle" bson:"metaTitle"`
	MetaDescription string                    `json:"metaDescription" bson:"metaDescription"`
	MetaKeywords    string                    `json:"metaKeywords" bson:"metaKeywords"`
	OgImage         string                    `json:"ogImage" bson:"ogImage"`
	OgType          string                    `json:"ogType" bson:"ogType"`
	CanonicalURL    string                    `json:"canonicalUrl" bson:"canonicalUrl"`
	Robots          string                    `json:"robots" bson:"robots"`
	OnPageContent   map[string]ContentElement `json:"onPageContent" bson:"onPageContent"`
	StructuredData  string                    `json:"structuredData" bson:"structuredData"`
	CustomHeadTags  string                    `json:"customHeadTags" bson:"customHeadTags"`
	CreatedAt       time.Time                 `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time                 `json:"updatedAt" bson:"updatedAt"`
}

// DefaultPageContent is what a page looks like before anyone edited it.
func DefaultPageContent(slug string) *PageContent {
	return &PageContent{
		PageSlug:      slug,
		PageName:      slug,
		OgType:        DefaultOgType,
		Robots:        DefaultRobots,
		OnPageContent: map[string]ContentElement{},
	}
}

// ContentText returns the text of an on-page element or fallback.
func (p *PageContent) ContentText(key, fallback string) string {
	if p == nil || p.OnPageContent == nil {
		return fallback
	}
	el, ok := p.OnPageContent[key]
	if !ok {
		return fallback
	}
	if text := el.Text(); text != "" {
		return text
	}
	return fallback
}

type PageSeoRequest struct {
	PageName        string                    `json:"pageName" form:"pageName"`
	MetaTitle       string                    `json:"metaTitle" form:"metaTitle" validate:"max=70"`
	MetaDescription string                    `json:"metaDescription" form:"metaDescription" validate:"max=160"`
	MetaKeywords    string                    `json:"metaKeywords" form:"metaKeywords"`
	OgImage         string                    `json:"ogImage" form:"ogImage"`
	OgType          string                    `json:"ogType" form:"ogType"`
	CanonicalURL    string                    `json:"canonicalUrl" form:"canonicalUrl"`
	Robots          string                    `json:"robots" form:"robots"`
	OnPageContent   map[string]ContentElement `json:"onPageContent" validate:"dive"`
	StructuredData  string                    `json:"structuredData" form:"structuredData"`
	CustomHeadTags  string                    `json:"customHeadTags" form:"customHeadTags"`
}

type CreatePageRequest struct {
	PageSlug string `json:"pageSlug" form:"pageSlug" validate:"required"`
	PageName string `json:"pageName" form:"pageName" validate:"required"`
}

// SeoMetadata is the resolved set of head tags a page renders
type SeoMetadata struct {
	Title           string                    `json:"title"`
	MetaDescription string                    `json:"metaDescription"`
	MetaKeywords    string                    `json:"metaKeywords"`
	OgImage         string                    `json:"ogImage"`
	OgType          string                    `json:"ogType"`
	CanonicalURL    string                    `json:"canonicalUrl"`
	Robots          string                    `json:"robots"`
	OnPageContent   map[string]ContentElement `json:"onPageContent"`
	StructuredData  string                    `json:"structuredData"`
	CustomHeadTags  string                    `json:"customHeadTags"`
}
