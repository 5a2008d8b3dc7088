package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/repositories"
	"github.com/HSouheill/storefront_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrAnnouncementLimit    = errors.New("maximum 5 announcements allowed")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrInvalidAnnouncement  = errors.New("invalid announcement")
	ErrSubscriberNotFound   = errors.New("subscriber not found")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrBrandNotFound        = errors.New("brand not found")
	ErrInvalidBrand         = errors.New("invalid brand")
)

// AnnouncementStore persists the announcement bar entries.
type AnnouncementStore interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, activeOnly bool, limit int64) ([]models.Announcement, error)
	Insert(ctx context.Context, a *models.Announcement) error
	Update(ctx context.Context, a *models.Announcement) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type AnnouncementService struct {
	store AnnouncementStore
	now   func() time.Time
}

func NewAnnouncementService(store AnnouncementStore) *AnnouncementService {
	return &AnnouncementService{store: store, now: time.Now}
}

func (s *AnnouncementService) List(ctx context.Context) ([]models.Announcement, error) {
	return s.store.List(ctx, false, 0)
}

// Active is what the storefront banner rotates through.
func (s *AnnouncementService) Active(ctx context.Context) ([]models.Announcement, error) {
	return s.store.List(ctx, true, models.MaxAnnouncements)
}

func validAnnouncementText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: text is required", ErrInvalidAnnouncement)
	}
	if utf8.RuneCountInString(text) > models.MaxAnnouncementTextLen {
		return "", fmt.Errorf("%w: text exceeds %d characters", ErrInvalidAnnouncement, models.MaxAnnouncementTextLen)
	}
	return text, nil
}

// Create adds an announcement while fewer than five exist. Without an
// explicit order it goes last.
func (s *AnnouncementService) Create(ctx context.Context, req models.AnnouncementRequest) (*models.Announcement, error) {
	text, err := validAnnouncementText(req.Text)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count announcements: %w", err)
	}
	if count >= models.MaxAnnouncements {
		return nil, ErrAnnouncementLimit
	}

	order := int(count)
	if req.Order != nil {
		order = *req.Order
	}
	now := s.now()
	a := &models.Announcement{
		Text:      text,
		IsActive:  req.Active(),
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("insert announcement: %w", err)
	}
	return a, nil
}

func (s *AnnouncementService) Update(ctx context.Context, id primitive.ObjectID, req models.AnnouncementRequest) (*models.Announcement, error) {
	text, err := validAnnouncementText(req.Text)
	if err != nil {
		return nil, err
	}
	a := &models.Announcement{
		ID:        id,
		Text:      text,
		IsActive:  req.Active(),
		UpdatedAt: s.now(),
	}
	if req.Order != nil {
		a.Order = *req.Order
	}
	if err := s.store.Update(ctx, a); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("update announcement %s: %w", id.Hex(), err)
	}
	return a, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAnnouncementNotFound
		}
		return fmt.Errorf("delete announcement %s: %w", id.Hex(), err)
	}
	return nil
}

// NewsletterStore persists newsletter subscriptions.
type NewsletterStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Newsletter, error)
	FindByEmail(ctx context.Context, email string) (*models.Newsletter, error)
	Insert(ctx context.Context, n *models.Newsletter) error
	Save(ctx context.Context, n *models.Newsletter) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter models.NewsletterFilter) ([]models.Newsletter, int64, error)
	Stats(ctx context.Context) (models.NewsletterStats, error)
}

// NewsletterPageSize is the admin subscriber list page size.
const NewsletterPageSize = 20

type NewsletterService struct {
	store NewsletterStore
	now   func() time.Time
}

func NewNewsletterService(store NewsletterStore) *NewsletterService {
	return &NewsletterService{store: store, now: time.Now}
}

// NormalizeEmail lower-cases and validates an address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return email, nil
}

// Subscribe records email. An inactive subscription is reactivated, an
// active one is left as is.
func (s *NewsletterService) Subscribe(ctx context.Context, email, source string) (*models.Newsletter, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsActive {
			existing.IsActive = true
			existing.UnsubscribedAt = nil
			existing.UpdatedAt = s.now()
			if err := s.store.Save(ctx, existing); err != nil {
				return nil, fmt.Errorf("reactivate %s: %w", email, err)
			}
		}
		return existing, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("find subscriber %s: %w", email, err)
	}

	now := s.now()
	n := &models.Newsletter{
		Email:        email,
		IsActive:     true,
		SubscribedAt: now,
		Source:       source,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Insert(ctx, n); err != nil {
		// lost a race with a concurrent subscribe of the same address
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return s.store.FindByEmail(ctx, email)
		}
		return nil, fmt.Errorf("insert subscriber %s: %w", email, err)
	}
	return n, nil
}

// Toggle flips a subscription between active and unsubscribed.
func (s *NewsletterService) Toggle(ctx context.Context, id primitive.ObjectID) (*models.Newsletter, error) {
	n, err := s.store.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrSubscriberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find subscriber %s: %w", id.Hex(), err)
	}

	now := s.now()
	n.IsActive = !n.IsActive
	if n.IsActive {
		n.UnsubscribedAt = nil
	} else {
		n.UnsubscribedAt = &now
	}
	n.UpdatedAt = now
	if err := s.store.Save(ctx, n); err != nil {
		return nil, fmt.Errorf("save subscriber %s: %w", id.Hex(), err)
	}
	return n, nil
}

func (s *NewsletterService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSubscriberNotFound
		}
		return fmt.Errorf("delete subscriber %s: %w", id.Hex(), err)
	}
	return nil
}

// List returns one page of subscribers plus overall stats.
func (s *NewsletterService) List(ctx context.Context, status, search string, page int) ([]models.Newsletter, models.Pagination, models.NewsletterStats, error) {
	if page < 1 {
		page = 1
	}
	filter := models.NewsletterFilter{
		Status: status,
		Search: strings.TrimSpace(search),
		Page:   page,
		Limit:  NewsletterPageSize,
	}
	subscribers, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, models.NewsletterStats{}, fmt.Errorf("list subscribers: %w", err)
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, models.Pagination{}, models.NewsletterStats{}, fmt.Errorf("subscriber stats: %w", err)
	}
	return subscribers, models.NewPagination(page, NewsletterPageSize, total), stats, nil
}

// ExportCSV writes every subscriber matching status, newest first.
func (s *NewsletterService) ExportCSV(ctx context.Context, w io.Writer, status string) error {
	subscribers, _, err := s.store.List(ctx, models.NewsletterFilter{Status: status})
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Email", "Status", "Subscribed Date", "Source"}); err != nil {
		return err
	}
	for _, n := range subscribers {
		state := "Inactive"
		if n.IsActive {
			state = "Active"
		}
		record := []string{n.Email, state, n.SubscribedAt.UTC().Format(time.RFC3339), n.Source}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// BrandStore persists brands.
type BrandStore interface {
	FindAll(ctx context.Context, activeOnly bool) ([]models.Brand, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Brand, error)
	Insert(ctx context.Context, b *models.Brand) error
	Update(ctx context.Context, b *models.Brand) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type BrandService struct {
	brands   BrandStore
	products ProductStore
	now      func() time.Time
}

func NewBrandService(brands BrandStore, products ProductStore) *BrandService {
	return &BrandService{brands: brands, products: products, now: time.Now}
}

// List returns brands ordered by display order then name, with product
// counts for the admin list.
func (s *BrandService) List(ctx context.Context, withCounts bool) ([]models.Brand, error) {
	brands, err := s.brands.FindAll(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	if withCounts {
		for i := range brands {
			n, err := s.products.CountByBrand(ctx, brands[i].ID)
			if err != nil {
				return nil, fmt.Errorf("count products of brand %s: %w", brands[i].ID.Hex(), err)
			}
			brands[i].ProductCount = n
		}
	}
	return brands, nil
}

func (s *BrandService) Active(ctx context.Context) ([]models.Brand, error) {
	return s.brands.FindAll(ctx, true)
}

func (s *BrandService) Get(ctx context.Context, id primitive.ObjectID) (*models.Brand, error) {
	b, err := s.brands.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrBrandNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find brand %s: %w", id.Hex(), err)
	}
	return b, nil
}

func (s *BrandService) Create(ctx context.Context, req models.BrandRequest) (*models.Brand, error) {
	b := &models.Brand{}
	if err := applyBrand(b, req); err != nil {
		return nil, err
	}
	now := s.now()
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := s.brands.Insert(ctx, b); err != nil {
		return nil, fmt.Errorf("insert brand: %w", err)
	}
	return b, nil
}

// Update edits a brand. An empty BackgroundImage in req keeps the current one.
func (s *BrandService) Update(ctx context.Context, id primitive.ObjectID, req models.BrandRequest) (*models.Brand, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyBrand(b, req); err != nil {
		return nil, err
	}
	b.UpdatedAt = s.now()
	if err := s.brands.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update brand %s: %w", id.Hex(), err)
	}
	return b, nil
}

// Delete removes the brand and detaches it from its products.
func (s *BrandService) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	if err := s.brands.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, ErrBrandNotFound
		}
		return 0, fmt.Errorf("delete brand %s: %w", id.Hex(), err)
	}
	n, err := s.products.UnsetBrand(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("detach brand %s from products: %w", id.Hex(), err)
	}
	return n, nil
}

func applyBrand(b *models.Brand, req models.BrandRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidBrand)
	}
	slug := utils.SlugOrDerive(req.Slug, name)
	if slug == "" {
		return fmt.Errorf("%w: name %q yields an empty slug", ErrInvalidBrand, name)
	}
	b.Name = name
	b.Slug = slug
	b.Description = strings.TrimSpace(req.Description)
	if req.BackgroundImage != "" {
		b.BackgroundImage = req.BackgroundImage
	}
	if req.Logo != "" {
		b.Logo = req.Logo
	}
	b.IsActive = req.Active()
	b.DisplayOrder = req.DisplayOrder
	return nil
}
