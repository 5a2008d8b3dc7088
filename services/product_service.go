package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/repositories"
	"github.com/HSouheill/storefront_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrUnknownOffer    = errors.New("unknown offer type")
	ErrUnknownSection  = errors.New("unknown homepage section")
)

const (
	HomeCarouselLimit = 5
	HomeSectionLimit  = 8
	ShopListLimit     = 50
	OfferListLimit    = 50
)

// ProductStore is the persistence the product service needs.
type ProductStore interface {
	Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID, activeOnly bool) ([]models.Product, error)
	Insert(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddImages(ctx context.Context, id primitive.ObjectID, images, thumbnails []string) error
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
	SetFlag(ctx context.Context, id primitive.ObjectID, field string, value bool) error
	SetCarouselImage(ctx context.Context, id primitive.ObjectID, image string) error
	UnsetBrand(ctx context.Context, brandID primitive.ObjectID) (int64, error)
	CountByBrand(ctx context.Context, brandID primitive.ObjectID) (int64, error)
}

type ProductService struct {
	products   ProductStore
	categories *CategoryService
	now        func() time.Time
}

func NewProductService(products ProductStore, categories *CategoryService) *ProductService {
	return &ProductService{products: products, categories: categories, now: time.Now}
}

func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	products, err := s.products.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", id.Hex(), err)
	}
	return product, nil
}

// GetActiveBySlug hides inactive products from the shop.
func (s *ProductService) GetActiveBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.products.FindBySlug(ctx, slug)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product %q: %w", slug, err)
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Batch returns the active products among ids, for the cart.
func (s *ProductService) Batch(ctx context.Context, ids []string) ([]models.Product, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, raw := range ids {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, id)
	}
	if len(objectIDs) == 0 {
		return []models.Product{}, nil
	}
	products, err := s.products.FindByIDs(ctx, objectIDs, true)
	if err != nil {
		return nil, fmt.Errorf("batch products: %w", err)
	}
	return products, nil
}

// InCategoryTree lists active products of categoryID and every category
// below it, newest first.
func (s *ProductService) InCategoryTree(ctx context.Context, categoryID primitive.ObjectID, limit int64) ([]models.Product, error) {
	descendants, err := s.categories.DescendantIDs(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return s.List(ctx, models.ProductFilter{
		CategoryIDs: append([]primitive.ObjectID{categoryID}, descendants...),
		ActiveOnly:  true,
		Limit:       limit,
	})
}

// Search matches q as a case-insensitive substring of name or description.
func (s *ProductService) Search(ctx context.Context, q string) ([]models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Product{}, nil
	}
	return s.List(ctx, models.ProductFilter{Search: q, ActiveOnly: true, Limit: ShopListLimit})
}

// OfferField maps the public offer type to its product flag.
func OfferField(offerType string) (string, error) {
	switch offerType {
	case "new":
		return "isNewOffer", nil
	case "best":
		return "isBestOffer", nil
	case "featured":
		return "isFeatured", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOffer, offerType)
}

func (s *ProductService) Offers(ctx context.Context, offerType string) ([]models.Product, error) {
	field, err := OfferField(offerType)
	if err != nil {
		return nil, err
	}
	return s.List(ctx, models.ProductFilter{Flag: field, ActiveOnly: true, Limit: OfferListLimit})
}

// HomeSections gathers the product sections and category menu of the home
// page.
func (s *ProductService) HomeSections(ctx context.Context) (*models.HomeSections, error) {
	home := &models.HomeSections{}
	var err error

	if home.Carousel, err = s.List(ctx, models.ProductFilter{WithCarousel: true, ActiveOnly: true, Limit: HomeCarouselLimit}); err != nil {
		return nil, err
	}
	if home.NewOffers, err = s.List(ctx, models.ProductFilter{Flag: "isNewOffer", ActiveOnly: true, Limit: HomeSectionLimit}); err != nil {
		return nil, err
	}
	if home.BestOffers, err = s.List(ctx, models.ProductFilter{Flag: "isBestOffer", ActiveOnly: true, Limit: HomeSectionLimit}); err != nil {
		return nil, err
	}
	if home.Featured, err = s.List(ctx, models.ProductFilter{Flag: "isFeatured", ActiveOnly: true, Limit: HomeSectionLimit}); err != nil {
		return nil, err
	}
	if home.Categories, err = s.categories.Nested(ctx, nil); err != nil {
		return nil, err
	}
	return home, nil
}

// MaxPathCategories is the deepest category chain the SEO product routes
// accept in front of the product slug.
const MaxPathCategories = 3

// ProductPath builds /<category slugs>/<product slug>. Products without a
// category, or nested deeper than the routes go, use /product/<slug>.
func ProductPath(categorySlugs []string, productSlug string) string {
	if len(categorySlugs) == 0 || len(categorySlugs) > MaxPathCategories {
		return "/product/" + productSlug
	}
	return "/" + strings.Join(append(append([]string{}, categorySlugs...), productSlug), "/")
}

// CanonicalPath is the product's ProductPath.
func (s *ProductService) CanonicalPath(ctx context.Context, product *models.Product) (string, error) {
	path, err := s.categories.Path(ctx, product.Category)
	if err != nil {
		return "", err
	}
	return ProductPath(path, product.Slug), nil
}

// View decorates product with its category and canonical path.
func (s *ProductService) View(ctx context.Context, product *models.Product) (*models.ProductView, error) {
	tree, err := s.categories.Tree(ctx)
	if err != nil {
		return nil, err
	}
	view := &models.ProductView{Product: *product}
	if c, ok := tree.Get(product.Category); ok {
		view.CategoryInfo = &models.CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug}
	}
	path, err := tree.Path(product.Category)
	if err != nil {
		return nil, err
	}
	view.Path = ProductPath(path, product.Slug)
	return view, nil
}

// Views decorates a listing with one snapshot of the category tree.
func (s *ProductService) Views(ctx context.Context, products []models.Product) ([]models.ProductView, error) {
	tree, err := s.categories.Tree(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		view := models.ProductView{Product: p}
		if c, ok := tree.Get(p.Category); ok {
			view.CategoryInfo = &models.CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug}
		}
		// a broken hierarchy still lists the product under /product/<slug>
		path, err := tree.Path(p.Category)
		if err != nil {
			path = nil
		}
		view.Path = ProductPath(path, p.Slug)
		views = append(views, view)
	}
	return views, nil
}

func (s *ProductService) Create(ctx context.Context, req models.ProductRequest) (*models.Product, error) {
	product := &models.Product{IsActive: true}
	if err := s.apply(ctx, product, req); err != nil {
		return nil, err
	}
	now := s.now()
	if product.Slug == "" {
		product.Slug = utils.ProductSlug(product.Name, now)
	}
	product.Images = []string{}
	product.CreatedAt = now
	product.UpdatedAt = now
	if err := s.products.Insert(ctx, product); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, req models.ProductRequest) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, product, req); err != nil {
		return nil, err
	}
	now := s.now()
	if product.Slug == "" {
		product.Slug = utils.ProductSlug(product.Name, now)
	}
	product.UpdatedAt = now
	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product %s: %w", id.Hex(), err)
	}
	return product, nil
}

// apply validates req and copies it onto product. Metadata is typed against
// the attributes the chosen category inherits.
func (s *ProductService) apply(ctx context.Context, product *models.Product, req models.ProductRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if req.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}

	categoryID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.Category))
	if err != nil {
		return fmt.Errorf("%w: invalid category id", ErrInvalidProduct)
	}
	tree, err := s.categories.Tree(ctx)
	if err != nil {
		return err
	}
	if _, ok := tree.Get(categoryID); !ok {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrCategoryNotFound)
	}
	attrs, err := tree.InheritedAttributes(categoryID)
	if err != nil {
		return err
	}
	metadata, err := models.CoerceMetadata(attrs, utils.SanitizeMap(req.Metadata))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, err)
	}

	var brand *primitive.ObjectID
	if raw := strings.TrimSpace(req.Brand); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return fmt.Errorf("%w: invalid brand id", ErrInvalidProduct)
		}
		brand = &id
	}

	product.Name = name
	product.Slug = utils.Slugify(req.Slug)
	product.Description = strings.TrimSpace(req.Description)
	product.Price = req.Price
	product.OriginalPrice = req.OriginalPrice
	product.Stock = req.Stock
	product.Category = categoryID
	product.Brand = brand
	product.Metadata = metadata
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.IsNewOffer = req.IsNewOffer
	product.IsBestOffer = req.IsBestOffer
	product.IsFeatured = req.IsFeatured
	product.CarouselImage = strings.TrimSpace(req.CarouselImage)
	return nil
}

func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product %s: %w", id.Hex(), err)
	}
	return nil
}

func (s *ProductService) AddImages(ctx context.Context, id primitive.ObjectID, images, thumbnails []string) error {
	if err := s.products.AddImages(ctx, id, images, thumbnails); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("add images to %s: %w", id.Hex(), err)
	}
	return nil
}

// SetSection adds or removes a product from a homepage section.
func (s *ProductService) SetSection(ctx context.Context, id primitive.ObjectID, section string, on bool) error {
	field, ok := models.SectionField(section)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	if err := s.products.SetFlag(ctx, id, field, on); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("set %s on %s: %w", field, id.Hex(), err)
	}
	return nil
}

// SetCarouselImage puts a product in the carousel, an empty image removes it.
func (s *ProductService) SetCarouselImage(ctx context.Context, id primitive.ObjectID, image string) error {
	if err := s.products.SetCarouselImage(ctx, id, strings.TrimSpace(image)); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("set carousel image on %s: %w", id.Hex(), err)
	}
	return nil
}
