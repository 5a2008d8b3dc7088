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

// CategoryStore is the persistence the category service needs.
type CategoryStore interface {
	FindAll(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Insert(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	HasChildren(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// CategoryService loads the whole category collection per call and answers
// hierarchy questions in memory.
type CategoryService struct {
	store CategoryStore
	now   func() time.Time
}

func NewCategoryService(store CategoryStore) *CategoryService {
	return &CategoryService{store: store, now: time.Now}
}

// Tree loads a fresh snapshot of the hierarchy.
func (s *CategoryService) Tree(ctx context.Context) (*CategoryTree, error) {
	categories, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return BuildCategoryTree(categories), nil
}

func (s *CategoryService) Ancestors(ctx context.Context, id primitive.ObjectID) ([]models.Category, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Ancestors(id)
}

func (s *CategoryService) DescendantIDs(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.DescendantIDs(id)
}

func (s *CategoryService) InheritedAttributes(ctx context.Context, id primitive.ObjectID) ([]models.ResolvedAttribute, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.InheritedAttributes(id)
}

func (s *CategoryService) Flatten(ctx context.Context, rootID *primitive.ObjectID) ([]models.FlatCategory, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Flatten(rootID)
}

func (s *CategoryService) Nested(ctx context.Context, rootID *primitive.ObjectID) ([]models.CategoryNode, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Nested(rootID)
}

// Path returns the slug chain of id, root first.
func (s *CategoryService) Path(ctx context.Context, id primitive.ObjectID) ([]string, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Path(id)
}

func (s *CategoryService) Get(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	category, err := s.store.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category %s: %w", id.Hex(), err)
	}
	return category, nil
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.store.FindBySlug(ctx, slug)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category %q: %w", slug, err)
	}
	return category, nil
}

// ResolveSlugPath resolves /a/b/c to category c, requiring a and b to be its
// ancestors' slugs in order.
func (s *CategoryService) ResolveSlugPath(ctx context.Context, slugs ...string) (*models.Category, error) {
	if len(slugs) == 0 {
		return nil, ErrCategoryNotFound
	}
	category, err := s.GetBySlug(ctx, slugs[len(slugs)-1])
	if err != nil {
		return nil, err
	}
	if len(slugs) == 1 {
		return category, nil
	}

	path, err := s.Path(ctx, category.ID)
	if err != nil {
		return nil, err
	}
	if !equalStrings(path, slugs) {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Create validates req and inserts a new category.
func (s *CategoryService) Create(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	category, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}

	if category.Parent != nil {
		if _, err := s.Get(ctx, *category.Parent); err != nil {
			if errors.Is(err, ErrCategoryNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
	}

	now := s.now()
	category.CreatedAt = now
	category.UpdatedAt = now
	if err := s.store.Insert(ctx, category); err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return category, nil
}

// Update replaces the editable fields of id, attributes included. Moving a
// category below one of its own descendants is rejected.
func (s *CategoryService) Update(ctx context.Context, id primitive.ObjectID, req models.CategoryRequest) (*models.Category, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}

	if updated.Parent != nil {
		tree, err := s.Tree(ctx)
		if err != nil {
			return nil, err
		}
		if err := tree.ValidateParent(id, *updated.Parent); err != nil {
			return nil, err
		}
	}

	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()
	if err := s.store.Update(ctx, updated); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update category %s: %w", id.Hex(), err)
	}
	return updated, nil
}

// Delete removes a leaf category.
func (s *CategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	hasChildren, err := s.store.HasChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("check children of %s: %w", id.Hex(), err)
	}
	if hasChildren {
		return ErrHasChildren
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("delete category %s: %w", id.Hex(), err)
	}
	return nil
}

func (s *CategoryService) fromRequest(req models.CategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}

	slug := utils.SlugOrDerive(req.Slug, name)
	if slug == "" {
		return nil, fmt.Errorf("%w: name %q yields an empty slug", ErrInvalidCategory, name)
	}

	attrs, err := models.ParseAttributes(req.Attributes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCategory, err)
	}

	category := &models.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		Attributes:  attrs,
	}

	if parent := strings.TrimSpace(req.Parent); parent != "" {
		parentID, err := primitive.ObjectIDFromHex(parent)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid parent id", ErrInvalidCategory)
		}
		category.Parent = &parentID
	}
	return category, nil
}
