package views

import (
	"bytes"
	"testing"
	"time"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePage(data interface{}) Page {
	return Page{
		SiteName: "Test Store",
		Seo: models.SeoMetadata{
			Title:          "Phones | Test Store",
			Robots:         models.DefaultRobots,
			OgType:         models.DefaultOgType,
			CustomHeadTags: `<meta name="x-verify" content="abc">`,
		},
		Categories: []models.CategoryNode{
			{Name: "Electronics", Slug: "electronics", Children: []models.CategoryNode{{Name: "Phones", Slug: "phones", Level: 1}}},
		},
		Announcements: []models.Announcement{{Text: "Free delivery this week"}},
		Data:          data,
	}
}

func TestRenderListing(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	price := 899.0
	data := struct {
		Heading    string
		Breadcrumb []models.Category
		Products   []models.ProductView
	}{
		Heading:    "Phones",
		Breadcrumb: []models.Category{{Name: "Electronics"}, {Name: "Phones"}},
		Products: []models.ProductView{{
			Product: models.Product{Name: "Pixel <9>", Slug: "pixel-9", Price: 799, OriginalPrice: &price},
			Path:    "/electronics/phones/pixel-9",
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "listing", samplePage(data), nil))
	out := buf.String()
	assert.Contains(t, out, "<title>Phones | Test Store</title>")
	assert.Contains(t, out, `<meta name="x-verify" content="abc">`)
	assert.Contains(t, out, `href="/category/phones"`)
	assert.Contains(t, out, `href="/electronics/phones/pixel-9"`)
	assert.Contains(t, out, "Pixel &lt;9&gt;")
	assert.Contains(t, out, "$799.00")
	assert.Contains(t, out, "<del>$899.00</del>")
	assert.Contains(t, out, "Free delivery this week")
}

func TestRenderTrack(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	eta := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	tracking := models.OrderTracking{
		OrderNumber:       "ORD-1-ABCDE",
		Status:            models.StatusShipped,
		StatusDisplay:     models.StatusShipped.Display(),
		Step:              models.StatusShipped.Step(),
		EstimatedDelivery: &eta,
		StatusHistory:     []models.StatusChange{{Status: models.StatusPending, UpdatedAt: eta}},
	}
	data := struct {
		Query    string
		NotFound bool
		Tracking *models.OrderTracking
	}{Query: "ORD-1-ABCDE", Tracking: &tracking}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "track", samplePage(data), nil))
	assert.Contains(t, buf.String(), "ORD-1-ABCDE: Shipped")
	assert.Contains(t, buf.String(), "Mar 9, 2024")
	assert.Contains(t, buf.String(), "/track/ORD-1-ABCDE/qr.png")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "missing", samplePage(nil), nil))
}
