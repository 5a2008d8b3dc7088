package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/labstack/echo/v4"
)

//go:embed templates
var templateFS embed.FS

// Page is the data every shop template receives. Data holds the
// page-specific values.
type Page struct {
	SiteName      string
	Seo           models.SeoMetadata
	Categories    []models.CategoryNode
	Announcements []models.Announcement
	Data          interface{}
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"year":  func() int { return time.Now().Year() },
	"date":  func(t time.Time) string { return t.Format("Jan 2, 2006") },
	// head tags and JSON-LD are entered by the SEO editors and emitted as is
	"rawHTML": func(s string) template.HTML { return template.HTML(s) },
	"rawJS":   func(s string) template.JS { return template.JS(s) },
	"content": func(seo models.SeoMetadata, key, fallback string) string {
		page := &models.PageContent{OnPageContent: seo.OnPageContent}
		return page.ContentText(key, fallback)
	},
	"firstImage": func(images []string) string {
		if len(images) == 0 {
			return "/static/img/placeholder.png"
		}
		return images[0]
	},
	"add": func(a, b int) int { return a + b },
}

// Renderer executes one template set per page, each combining the shared
// layout with the page's own file.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		page, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := page.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.pages[strings.TrimSuffix(path.Base(file), ".html")] = page
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	page, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return page.ExecuteTemplate(w, "layout.html", data)
}
