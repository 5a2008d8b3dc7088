package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/repositories"
)

var (
	ErrPageNotFound   = errors.New("page not found")
	ErrPageExists     = errors.New("a page with this slug already exists")
	ErrDefaultPage    = errors.New("cannot delete default pages")
	ErrInvalidSeoData = errors.New("invalid seo data")
)

const (
	DefaultSiteName = "E-Commerce Store"
	DefaultOgImage  = "/images/og-default.jpg"
)

// DefaultPage is a page every installation has.
type DefaultPage struct {
	Slug string
	Name string
}

var DefaultPages = []DefaultPage{
	{"home", "Home Page"},
	{"shop", "Shop / Products Listing"},
	{"category", "Category Pages"},
	{"product", "Product Detail Pages"},
	{"cart", "Shopping Cart"},
	{"checkout", "Checkout"},
	{"search", "Search Results"},
	{"track", "Order Tracking"},
	{"offers", "Special Offers"},
}

func IsDefaultPage(slug string) bool {
	for _, p := range DefaultPages {
		if p.Slug == slug {
			return true
		}
	}
	return false
}

// PageStore persists page content documents keyed by pageSlug.
type PageStore interface {
	FindAll(ctx context.Context) ([]models.PageContent, error)
	FindBySlug(ctx context.Context, slug string) (*models.PageContent, error)
	Insert(ctx context.Context, page *models.PageContent) error
	Save(ctx context.Context, page *models.PageContent) error
	DeleteBySlug(ctx context.Context, slug string) error
}

type SeoService struct {
	store PageStore
	now   func() time.Time
}

func NewSeoService(store PageStore) *SeoService {
	return &SeoService{store: store, now: time.Now}
}

// EnsureDefaultPages creates whichever default pages are missing.
func (s *SeoService) EnsureDefaultPages(ctx context.Context) error {
	for _, p := range DefaultPages {
		_, err := s.store.FindBySlug(ctx, p.Slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("find page %s: %w", p.Slug, err)
		}
		page := models.DefaultPageContent(p.Slug)
		page.PageName = p.Name
		page.CreatedAt = s.now()
		page.UpdatedAt = page.CreatedAt
		if err := s.store.Insert(ctx, page); err != nil && !errors.Is(err, repositories.ErrDuplicateKey) {
			return fmt.Errorf("create page %s: %w", p.Slug, err)
		}
	}
	return nil
}

func (s *SeoService) ListPages(ctx context.Context) ([]models.PageContent, error) {
	pages, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return pages, nil
}

func (s *SeoService) GetPage(ctx context.Context, slug string) (*models.PageContent, error) {
	page, err := s.store.FindBySlug(ctx, slug)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find page %s: %w", slug, err)
	}
	return page, nil
}

// GetPageSeo never fails on a missing page; it returns the defaults.
func (s *SeoService) GetPageSeo(ctx context.Context, slug string) (*models.PageContent, error) {
	page, err := s.GetPage(ctx, slug)
	if errors.Is(err, ErrPageNotFound) {
		return models.DefaultPageContent(slug), nil
	}
	return page, err
}

// CreatePage adds a custom page. Slugs are stored lower-cased.
func (s *SeoService) CreatePage(ctx context.Context, req models.CreatePageRequest) (*models.PageContent, error) {
	slug := strings.ToLower(strings.TrimSpace(req.PageSlug))
	name := strings.TrimSpace(req.PageName)
	if slug == "" || name == "" {
		return nil, fmt.Errorf("%w: page slug and name are required", ErrInvalidSeoData)
	}

	page := models.DefaultPageContent(slug)
	page.PageName = name
	page.CreatedAt = s.now()
	page.UpdatedAt = page.CreatedAt
	if err := s.store.Insert(ctx, page); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrPageExists
		}
		return nil, fmt.Errorf("create page %s: %w", slug, err)
	}
	return page, nil
}

// UpdatePage upserts the SEO fields of slug. On-page elements are merged by
// key so partial submissions keep the other elements.
func (s *SeoService) UpdatePage(ctx context.Context, slug string, req models.PageSeoRequest) (*models.PageContent, error) {
	if utf8.RuneCountInString(req.MetaTitle) > models.MaxMetaTitleLen {
		return nil, fmt.Errorf("%w: meta title exceeds %d characters", ErrInvalidSeoData, models.MaxMetaTitleLen)
	}
	if utf8.RuneCountInString(req.MetaDescription) > models.MaxMetaDescriptionLen {
		return nil, fmt.Errorf("%w: meta description exceeds %d characters", ErrInvalidSeoData, models.MaxMetaDescriptionLen)
	}
	robots := strings.TrimSpace(req.Robots)
	if robots == "" {
		robots = models.DefaultRobots
	}
	if !models.ValidRobots(robots) {
		return nil, fmt.Errorf("%w: %w %q", ErrInvalidSeoData, models.ErrInvalidRobots, robots)
	}

	page, err := s.GetPageSeo(ctx, slug)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.PageName); name != "" {
		page.PageName = name
	}
	page.MetaTitle = strings.TrimSpace(req.MetaTitle)
	page.MetaDescription = strings.TrimSpace(req.MetaDescription)
	page.MetaKeywords = strings.TrimSpace(req.MetaKeywords)
	page.OgImage = strings.TrimSpace(req.OgImage)
	page.OgType = strings.TrimSpace(req.OgType)
	if page.OgType == "" {
		page.OgType = models.DefaultOgType
	}
	page.CanonicalURL = strings.TrimSpace(req.CanonicalURL)
	page.Robots = robots
	page.StructuredData = req.StructuredData
	page.CustomHeadTags = req.CustomHeadTags

	if page.OnPageContent == nil {
		page.OnPageContent = map[string]models.ContentElement{}
	}
	for key, el := range req.OnPageContent {
		existing, ok := page.OnPageContent[key]
		if ok && el.OriginalText == "" {
			el.OriginalText = existing.OriginalText
		}
		page.OnPageContent[key] = el
	}

	now := s.now()
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}
	page.UpdatedAt = now
	if err := s.store.Save(ctx, page); err != nil {
		return nil, fmt.Errorf("save page %s: %w", slug, err)
	}
	return page, nil
}

func (s *SeoService) DeletePage(ctx context.Context, slug string) error {
	if IsDefaultPage(slug) {
		return ErrDefaultPage
	}
	if err := s.store.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPageNotFound
		}
		return fmt.Errorf("delete page %s: %w", slug, err)
	}
	return nil
}

// SeoDefaults are the per-page fallbacks a handler supplies.
type SeoDefaults struct {
	SiteName        string
	Title           string
	MetaDescription string
	MetaKeywords    string
	OgImage         string
	OgType          string
	CanonicalURL    string
	Robots          string
}

// BuildSeoMetadata resolves each head field from the stored page, then the
// handler defaults, then the site wide defaults.
func BuildSeoMetadata(page *models.PageContent, defaults SeoDefaults) models.SeoMetadata {
	if page == nil {
		page = &models.PageContent{}
	}
	siteName := firstNonEmpty(defaults.SiteName, DefaultSiteName)
	content := page.OnPageContent
	if content == nil {
		content = map[string]models.ContentElement{}
	}
	return models.SeoMetadata{
		Title:           firstNonEmpty(page.MetaTitle, defaults.Title, siteName),
		MetaDescription: firstNonEmpty(page.MetaDescription, defaults.MetaDescription),
		MetaKeywords:    firstNonEmpty(page.MetaKeywords, defaults.MetaKeywords),
		OgImage:         firstNonEmpty(page.OgImage, defaults.OgImage, DefaultOgImage),
		OgType:          firstNonEmpty(page.OgType, defaults.OgType, models.DefaultOgType),
		CanonicalURL:    firstNonEmpty(page.CanonicalURL, defaults.CanonicalURL),
		Robots:          firstNonEmpty(page.Robots, defaults.Robots, models.DefaultRobots),
		OnPageContent:   content,
		StructuredData:  page.StructuredData,
		CustomHeadTags:  page.CustomHeadTags,
	}
}

// PageSlugFromPath picks the page whose SEO data a request path uses: the
// first path segment, "home" for the root.
func PageSlugFromPath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "home"
	}
	return strings.SplitN(trimmed, "/", 2)[0]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
