package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/HSouheill/storefront_backend/models"
	"github.com/HSouheill/storefront_backend/utils"
	"gopkg.in/yaml.v3"
)

// Catalog is the seed file layout. Categories refer to their parent and
// products to their category by slug or name.
type Catalog struct {
	Categories    []CategorySeed     `yaml:"categories"`
	Products      []ProductSeed      `yaml:"products"`
	Announcements []AnnouncementSeed `yaml:"announcements"`
}

type AttributeSeed struct {
	Label     string   `yaml:"label"`
	Key       string   `yaml:"key,omitempty"`
	FieldType string   `yaml:"fieldType"`
	Options   []string `yaml:"options,omitempty"`
}

type CategorySeed struct {
	Name        string          `yaml:"name"`
	Slug        string          `yaml:"slug,omitempty"`
	Description string          `yaml:"description,omitempty"`
	Parent      string          `yaml:"parent,omitempty"`
	Attributes  []AttributeSeed `yaml:"attributes,omitempty"`
}

// Ref is the slug other entries use to point at this category.
func (c CategorySeed) Ref() string {
	return utils.SlugOrDerive(c.Slug, c.Name)
}

type ProductSeed struct {
	Name          string            `yaml:"name"`
	Slug          string            `yaml:"slug,omitempty"`
	Description   string            `yaml:"description,omitempty"`
	Price         float64           `yaml:"price"`
	OriginalPrice *float64          `yaml:"originalPrice,omitempty"`
	Stock         int               `yaml:"stock"`
	Category      string            `yaml:"category"`
	Metadata      map[string]string `yaml:"metadata,omitempty"`
	Inactive      bool              `yaml:"inactive,omitempty"`
	NewOffer      bool              `yaml:"newOffer,omitempty"`
	BestOffer     bool              `yaml:"bestOffer,omitempty"`
	Featured      bool              `yaml:"featured,omitempty"`
}

type AnnouncementSeed struct {
	Text   string `yaml:"text"`
	Active bool   `yaml:"active"`
	Order  *int   `yaml:"order,omitempty"`
}

// LoadCatalog decodes a seed file. Unknown fields are rejected so typos
// surface instead of silently seeding empty values.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var catalog Catalog
	if err := dec.Decode(&catalog); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &catalog, nil
}

// refKey normalizes a slug or name reference.
func refKey(ref string) string {
	return utils.Slugify(strings.TrimSpace(ref))
}

// OrderCategories returns the categories parents first. A parent may be
// referenced by slug or name and must be declared in the same file.
func OrderCategories(list []CategorySeed) ([]CategorySeed, error) {
	byRef := make(map[string]int, len(list))
	for i, c := range list {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("category #%d has no name", i+1)
		}
		ref := c.Ref()
		if _, dup := byRef[ref]; dup {
			return nil, fmt.Errorf("category %q declared twice", ref)
		}
		byRef[ref] = i
		if alias := refKey(c.Name); alias != ref {
			if _, taken := byRef[alias]; !taken {
				byRef[alias] = i
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(list))
	ordered := make([]CategorySeed, 0, len(list))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("category %q is its own ancestor", list[i].Ref())
		}
		state[i] = visiting
		if parent := strings.TrimSpace(list[i].Parent); parent != "" {
			p, ok := byRef[refKey(parent)]
			if !ok {
				return fmt.Errorf("category %q: unknown parent %q", list[i].Ref(), parent)
			}
			if err := visit(p); err != nil {
				return err
			}
		}
		state[i] = done
		ordered = append(ordered, list[i])
		return nil
	}

	for i := range list {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

func (c CategorySeed) request(parentID string) models.CategoryRequest {
	attrs := make([]models.AttributeInput, 0, len(c.Attributes))
	for _, a := range c.Attributes {
		attrs = append(attrs, models.AttributeInput{
			Label:     a.Label,
			Key:       a.Key,
			FieldType: a.FieldType,
			Options:   models.OptionList(a.Options),
		})
	}
	return models.CategoryRequest{
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Parent:      parentID,
		Attributes:  attrs,
	}
}

func (p ProductSeed) request(categoryID string) models.ProductRequest {
	active := !p.Inactive
	return models.ProductRequest{
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Stock:         p.Stock,
		Category:      categoryID,
		Metadata:      p.Metadata,
		IsActive:      &active,
		IsNewOffer:    p.NewOffer,
		IsBestOffer:   p.BestOffer,
		IsFeatured:    p.Featured,
	}
}

func (a AnnouncementSeed) request() models.AnnouncementRequest {
	req := models.AnnouncementRequest{Text: a.Text, Order: a.Order}
	if a.Active {
		req.IsActive = "true"
	}
	return req
}
