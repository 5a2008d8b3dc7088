package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/services"
	"github.com/HSouheill/storefront_backend/views"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ShopSettings are the site-wide values the shop pages show.
type ShopSettings struct {
	SiteName              string
	BaseURL               string
	DeliveryFee           float64
	FreeDeliveryThreshold float64
}

type ShopController struct {
	products      *services.ProductService
	categories    *services.CategoryService
	brands        *services.BrandService
	announcements *services.AnnouncementService
	seo           *services.SeoService
	settings      ShopSettings
	logger        *zap.Logger
}

func NewShopController(
	products *services.ProductService,
	categories *services.CategoryService,
	brands *services.BrandService,
	announcements *services.AnnouncementService,
	seo *services.SeoService,
	settings ShopSettings,
	logger *zap.Logger,
) *ShopController {
	return &ShopController{
		products:      products,
		categories:    categories,
		brands:        brands,
		announcements: announcements,
		seo:           seo,
		settings:      settings,
		logger:        logger,
	}
}

type homeData struct {
	Carousel   []models.Product
	NewOffers  []models.ProductView
	BestOffers []models.ProductView
	Featured   []models.ProductView
	Brands     []models.Brand
}

type listingData struct {
	Heading    string
	Breadcrumb []models.Category
	Category   *models.Category
	Query      string
	Products   []models.ProductView
}

// Spec is one labelled metadata value on the product page.
type Spec struct {
	Label string
	Value string
}

type productData struct {
	Product    *models.ProductView
	Attributes []models.ResolvedAttribute
	Specs      []Spec
}

// render wraps data in the shared page chrome. The announcement bar, the
// category menu and the stored SEO fields degrade to empty on failure.
func (sc *ShopController) render(c echo.Context, code int, name string, defaults services.SeoDefaults, data interface{}) error {
	ctx := c.Request().Context()
	defaults.SiteName = sc.settings.SiteName
	if defaults.CanonicalURL == "" {
		defaults.CanonicalURL = sc.settings.BaseURL + c.Request().URL.Path
	}

	page, err := sc.seo.GetPageSeo(ctx, services.PageSlugFromPath(c.Request().URL.Path))
	if err != nil {
		sc.logger.Warn("failed to load page seo", zap.String("path", c.Request().URL.Path), zap.Error(err))
		page = nil
	}
	menu, err := sc.categories.Nested(ctx, nil)
	if err != nil {
		sc.logger.Warn("failed to load category menu", zap.Error(err))
	}
	announcements, err := sc.announcements.Active(ctx)
	if err != nil {
		sc.logger.Warn("failed to load announcements", zap.Error(err))
	}

	return c.Render(code, name, views.Page{
		SiteName:      sc.settings.SiteName,
		Seo:           services.BuildSeoMetadata(page, defaults),
		Categories:    menu,
		Announcements: announcements,
		Data:          data,
	})
}

func (sc *ShopController) renderError(c echo.Context, code int, message string, err error) error {
	if err != nil {
		sc.logger.Error(message, zap.String("path", c.Request().URL.Path), zap.Error(err))
	}
	return sc.render(c, code, "error", services.SeoDefaults{Title: message, Robots: "noindex, nofollow"}, message)
}

func (sc *ShopController) Home(c echo.Context) error {
	ctx := c.Request().Context()
	sections, err := sc.products.HomeSections(ctx)
	if err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading home page", err)
	}

	data := homeData{Carousel: sections.Carousel}
	if data.NewOffers, err = sc.products.Views(ctx, sections.NewOffers); err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading home page", err)
	}
	if data.BestOffers, err = sc.products.Views(ctx, sections.BestOffers); err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading home page", err)
	}
	if data.Featured, err = sc.products.Views(ctx, sections.Featured); err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading home page", err)
	}
	if data.Brands, err = sc.brands.Active(ctx); err != nil {
		sc.logger.Warn("failed to load brands", zap.Error(err))
	}

	return sc.render(c, http.StatusOK, "home", services.SeoDefaults{Title: "Home"}, data)
}

// Shop lists the newest active products. An unknown category slug lists
// everything.
func (sc *ShopController) Shop(c echo.Context) error {
	ctx := c.Request().Context()
	filter := models.ProductFilter{ActiveOnly: true, Limit: services.ShopListLimit}
	data := listingData{Heading: "Shop"}

	if slug := strings.TrimSpace(c.QueryParam("category")); slug != "" {
		category, err := sc.categories.GetBySlug(ctx, slug)
		switch {
		case err == nil:
			filter.CategoryIDs = []primitive.ObjectID{category.ID}
			data.Category = category
			data.Heading = category.Name
		case !errors.Is(err, services.ErrCategoryNotFound):
			return sc.renderError(c, http.StatusInternalServerError, "Error loading shop", err)
		}
	}

	products, err := sc.products.List(ctx, filter)
	if err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading shop", err)
	}
	if data.Products, err = sc.products.Views(ctx, products); err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading shop", err)
	}
	return sc.render(c, http.StatusOK, "listing", services.SeoDefaults{Title: data.Heading}, data)
}

// Category lists the products of a category and all of its descendants. The
// path segments are the slugs from the root down.
func (sc *ShopController) Category(c echo.Context) error {
	ctx := c.Request().Context()
	slugs := make([]string, 0, 3)
	for _, name := range []string{"grandparent", "parent", "slug"} {
		if v := c.Param(name); v != "" {
			slugs = append(slugs, v)
		}
	}

	category, err := sc.categories.ResolveSlugPath(ctx, slugs...)
	if errors.Is(err, services.ErrCategoryNotFound) {
		return sc.renderError(c, http.StatusNotFound, "Category not found", nil)
	}
	if err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading category", err)
	}

	products, err := sc.products.InCategoryTree(ctx, category.ID, 0)
	if err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading category", err)
	}
	ancestors, err := sc.categories.Ancestors(ctx, category.ID)
	if err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading category", err)
	}

	data := listingData{
		Heading:    category.Name,
		Category:   category,
		Breadcrumb: append(ancestors, *category),
	}
	if data.Products, err = sc.products.Views(ctx, products); err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading category", err)
	}
	return sc.render(c, http.StatusOK, "listing", services.SeoDefaults{
		Title:           category.Name,
		MetaDescription: category.Description,
	}, data)
}

// Product renders /product/:slug.
func (sc *ShopController) Product(c echo.Context) error {
	product, err := sc.products.GetActiveBySlug(c.Request().Context(), c.Param("slug"))
	if errors.Is(err, services.ErrProductNotFound) {
		return sc.renderError(c, http.StatusNotFound, "Product not found", nil)
	}
	if err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading product", err)
	}
	return sc.renderProduct(c, product)
}

// ProductByPath renders /<category slugs>/<product slug> and redirects to the
// canonical path when the category segments do not match.
func (sc *ShopController) ProductByPath(c echo.Context) error {
	ctx := c.Request().Context()
	product, err := sc.products.GetActiveBySlug(ctx, c.Param("productSlug"))
	if errors.Is(err, services.ErrProductNotFound) {
		return sc.renderError(c, http.StatusNotFound, "Product not found", nil)
	}
	if err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading product", err)
	}

	canonical, err := sc.products.CanonicalPath(ctx, product)
	if err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading product", err)
	}
	if canonical != c.Request().URL.Path {
		return c.Redirect(http.StatusMovedPermanently, canonical)
	}
	return sc.renderProduct(c, product)
}

func (sc *ShopController) renderProduct(c echo.Context, product *models.Product) error {
	ctx := c.Request().Context()
	view, err := sc.products.View(ctx, product)
	if err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading product", err)
	}
	attrs, err := sc.categories.InheritedAttributes(ctx, product.Category)
	if err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading product", err)
	}

	defaults := services.SeoDefaults{
		Title:           product.Name,
		MetaDescription: truncate(product.Description, models.MaxMetaDescriptionLen),
		OgType:          "product",
		CanonicalURL:    sc.settings.BaseURL + view.Path,
	}
	if len(product.Images) > 0 {
		defaults.OgImage = product.Images[0]
	}
	return sc.render(c, http.StatusOK, "product", defaults, productData{
		Product:    view,
		Attributes: attrs,
		Specs:      productSpecs(attrs, product.Metadata),
	})
}

// productSpecs pairs metadata values with the labels of the attributes that
// declare them, in attribute order.
func productSpecs(attrs []models.ResolvedAttribute, metadata map[string]interface{}) []Spec {
	specs := make([]Spec, 0, len(metadata))
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if seen[a.Key] {
			continue
		}
		seen[a.Key] = true
		v, ok := metadata[a.Key]
		if !ok {
			continue
		}
		specs = append(specs, Spec{Label: a.Label, Value: formatValue(v)})
	}
	return specs
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case string:
		return t
	}
	return ""
}

func truncate(s string, max int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= max {
		return string(r)
	}
	return string(r[:max])
}

func (sc *ShopController) Search(c echo.Context) error {
	ctx := c.Request().Context()
	q := strings.TrimSpace(c.QueryParam("q"))

	products, err := sc.products.Search(ctx, q)
	if err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error searching products", err)
	}
	data := listingData{Heading: "Search results for \"" + q + "\"", Query: q}
	if data.Products, err = sc.products.Views(ctx, products); err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error searching products", err)
	}
	return sc.render(c, http.StatusOK, "listing", services.SeoDefaults{Title: "Search", Robots: "noindex, follow"}, data)
}

var offerHeadings = map[string]string{
	"new":      "New Offers",
	"best":     "Best Offers",
	"featured": "Featured Products",
}

func (sc *ShopController) Offers(c echo.Context) error {
	ctx := c.Request().Context()
	offerType := c.Param("type")

	products, err := sc.products.Offers(ctx, offerType)
	if errors.Is(err, services.ErrUnknownOffer) {
		return sc.renderError(c, http.StatusNotFound, "Offer not found", nil)
	}
	if err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading offers", err)
	}

	data := listingData{Heading: offerHeadings[offerType]}
	if data.Products, err = sc.products.Views(ctx, products); err != nil {
		return sc.renderError(c, http.StatusInternalServerError, "Error loading offers", err)
	}
	return sc.render(c, http.StatusOK, "listing", services.SeoDefaults{Title: data.Heading}, data)
}

// Cart renders the cart shell. Its lines live in the browser and are priced
// through the batch API.
func (sc *ShopController) Cart(c echo.Context) error {
	return sc.render(c, http.StatusOK, "cart", services.SeoDefaults{Title: "Cart", Robots: "noindex, nofollow"}, nil)
}

func (sc *ShopController) Checkout(c echo.Context) error {
	return sc.render(c, http.StatusOK, "checkout", services.SeoDefaults{Title: "Checkout", Robots: "noindex, nofollow"}, sc.settings)
}
