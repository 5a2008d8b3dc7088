package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/HSouheill/storefront_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrCycleDetected    = errors.New("category hierarchy contains a cycle")
	ErrHasChildren      = errors.New("category has subcategories")
	ErrCategoryNotFound = errors.New("category not found")
	ErrParentNotFound   = errors.New("parent category not found")
	ErrInvalidCategory  = errors.New("invalid category")
)

// IndentMarker prefixes flattened entries once per nesting level.
const IndentMarker = "—"

// CategoryTree is an adjacency index over one snapshot of the category
// collection. It is built per request and never mutated afterwards.
type CategoryTree struct {
	byID     map[primitive.ObjectID]*models.Category
	children map[primitive.ObjectID][]*models.Category
	// roots holds parentless categories and those whose parent is missing
	roots []*models.Category
}

// BuildCategoryTree indexes categories by id and by parent. Siblings are
// sorted by name.
func BuildCategoryTree(categories []models.Category) *CategoryTree {
	t := &CategoryTree{
		byID:     make(map[primitive.ObjectID]*models.Category, len(categories)),
		children: make(map[primitive.ObjectID][]*models.Category),
	}

	for i := range categories {
		t.byID[categories[i].ID] = &categories[i]
	}

	for i := range categories {
		c := &categories[i]
		if t.byID[c.ID] != c {
			// duplicate id, the later record won
			continue
		}
		if c.IsRoot() {
			t.roots = append(t.roots, c)
			continue
		}
		if _, ok := t.byID[*c.Parent]; !ok {
			t.roots = append(t.roots, c)
			continue
		}
		t.children[*c.Parent] = append(t.children[*c.Parent], c)
	}

	sortByName(t.roots)
	for _, list := range t.children {
		sortByName(list)
	}
	return t
}

func sortByName(list []*models.Category) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID.Hex() < list[j].ID.Hex()
	})
}

// Len returns the number of categories in the snapshot.
func (t *CategoryTree) Len() int {
	return len(t.byID)
}

// Get returns the category with the given id.
func (t *CategoryTree) Get(id primitive.ObjectID) (*models.Category, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Children returns the direct children of id in display order.
func (t *CategoryTree) Children(id primitive.ObjectID) []*models.Category {
	return t.children[id]
}

// Ancestors returns the ancestors of id from the root down to the immediate
// parent. Unknown ids have no ancestors. The walk stops at a parent reference
// that points nowhere.
func (t *CategoryTree) Ancestors(id primitive.ObjectID) ([]models.Category, error) {
	current, ok := t.byID[id]
	if !ok {
		return []models.Category{}, nil
	}

	visited := map[primitive.ObjectID]struct{}{id: {}}
	var chain []*models.Category
	for !current.IsRoot() {
		parentID := *current.Parent
		if _, seen := visited[parentID]; seen {
			return nil, fmt.Errorf("%w: %s is its own ancestor", ErrCycleDetected, parentID.Hex())
		}
		parent, ok := t.byID[parentID]
		if !ok {
			break
		}
		visited[parentID] = struct{}{}
		chain = append(chain, parent)
		current = parent
	}

	ancestors := make([]models.Category, len(chain))
	for i, c := range chain {
		ancestors[len(chain)-1-i] = *c
	}
	return ancestors, nil
}

// DescendantIDs returns the ids of every category below id, excluding id
// itself. The order is unspecified.
func (t *CategoryTree) DescendantIDs(id primitive.ObjectID) ([]primitive.ObjectID, error) {
	ids := []primitive.ObjectID{}
	if _, ok := t.byID[id]; !ok {
		return ids, nil
	}

	visited := map[primitive.ObjectID]struct{}{id: {}}
	queue := []primitive.ObjectID{id}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		for _, child := range t.children[next] {
			if _, seen := visited[child.ID]; seen {
				return nil, fmt.Errorf("%w: %s reached twice below %s", ErrCycleDetected, child.ID.Hex(), id.Hex())
			}
			visited[child.ID] = struct{}{}
			ids = append(ids, child.ID)
			queue = append(queue, child.ID)
		}
	}
	return ids, nil
}

// InheritedAttributes returns the attributes visible to id: every ancestor's
// attributes root first, then its own. Entries sharing a key are all kept.
func (t *CategoryTree) InheritedAttributes(id primitive.ObjectID) ([]models.ResolvedAttribute, error) {
	category, ok := t.byID[id]
	if !ok {
		return []models.ResolvedAttribute{}, nil
	}

	ancestors, err := t.Ancestors(id)
	if err != nil {
		return nil, err
	}

	resolved := []models.ResolvedAttribute{}
	for _, ancestor := range ancestors {
		name := ancestor.Name
		for _, attr := range ancestor.Attributes {
			resolved = append(resolved, resolve(attr, &name))
		}
	}
	for _, attr := range category.Attributes {
		resolved = append(resolved, resolve(attr, nil))
	}
	return resolved, nil
}

func resolve(attr models.AttributeDefinition, from *string) models.ResolvedAttribute {
	options := make([]string, len(attr.Options))
	copy(options, attr.Options)
	attr.Options = options
	return models.ResolvedAttribute{AttributeDefinition: attr, InheritedFrom: from}
}

// Path returns the slugs from the root down to id inclusive.
func (t *CategoryTree) Path(id primitive.ObjectID) ([]string, error) {
	category, ok := t.byID[id]
	if !ok {
		return []string{}, nil
	}
	ancestors, err := t.Ancestors(id)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(ancestors)+1)
	for _, a := range ancestors {
		slugs = append(slugs, a.Slug)
	}
	return append(slugs, category.Slug), nil
}

// ValidateParent checks that making parent the parent of id keeps the graph
// acyclic.
func (t *CategoryTree) ValidateParent(id, parent primitive.ObjectID) error {
	if _, ok := t.byID[parent]; !ok {
		return ErrParentNotFound
	}
	visited := map[primitive.ObjectID]struct{}{}
	current := parent
	for {
		if current == id {
			return fmt.Errorf("%w: %s would become its own ancestor", ErrCycleDetected, id.Hex())
		}
		if _, seen := visited[current]; seen {
			return fmt.Errorf("%w: existing cycle through %s", ErrCycleDetected, current.Hex())
		}
		visited[current] = struct{}{}
		c, ok := t.byID[current]
		if !ok || c.IsRoot() {
			return nil
		}
		current = *c.Parent
	}
}

// Flatten lists the forest (rootID nil) or the subtree at *rootID depth first
// in pre-order. The subtree root is reported at level 0.
func (t *CategoryTree) Flatten(rootID *primitive.ObjectID) ([]models.FlatCategory, error) {
	flat := []models.FlatCategory{}
	err := t.walk(rootID, func(c *models.Category, level int) {
		flat = append(flat, models.FlatCategory{
			ID:          c.ID,
			Name:        c.Name,
			Slug:        c.Slug,
			Level:       level,
			ParentID:    c.Parent,
			DisplayName: DisplayName(c.Name, level),
		})
	})
	if err != nil {
		return nil, err
	}
	return flat, nil
}

// Nested returns the same traversal as Flatten as a recursive structure.
func (t *CategoryTree) Nested(rootID *primitive.ObjectID) ([]models.CategoryNode, error) {
	nodes := []models.CategoryNode{}
	// stack[level] is the node currently open at that depth
	var stack []*models.CategoryNode
	err := t.walk(rootID, func(c *models.Category, level int) {
		node := models.CategoryNode{
			ID:       c.ID,
			Name:     c.Name,
			Slug:     c.Slug,
			Level:    level,
			Children: []models.CategoryNode{},
		}
		stack = stack[:level]
		if level == 0 {
			nodes = append(nodes, node)
			stack = append(stack, &nodes[len(nodes)-1])
			return
		}
		parent := stack[level-1]
		parent.Children = append(parent.Children, node)
		stack = append(stack, &parent.Children[len(parent.Children)-1])
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// walk visits categories depth first, parents before children, siblings in
// name order. Pointers handed out by Nested stay valid because a parent's
// Children slice is only appended to while that parent is the deepest open
// node.
func (t *CategoryTree) walk(rootID *primitive.ObjectID, visit func(c *models.Category, level int)) error {
	starts := t.roots
	if rootID != nil {
		root, ok := t.byID[*rootID]
		if !ok {
			return nil
		}
		starts = []*models.Category{root}
	}

	visited := make(map[primitive.ObjectID]struct{}, len(t.byID))
	var descend func(c *models.Category, level int) error
	descend = func(c *models.Category, level int) error {
		if _, seen := visited[c.ID]; seen {
			return fmt.Errorf("%w: %s visited twice", ErrCycleDetected, c.ID.Hex())
		}
		visited[c.ID] = struct{}{}
		visit(c, level)
		for _, child := range t.children[c.ID] {
			if err := descend(child, level+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, c := range starts {
		if err := descend(c, 0); err != nil {
			return err
		}
	}

	// categories on a closed loop hang off no root and are never reached
	if rootID == nil && len(visited) != len(t.byID) {
		return fmt.Errorf("%w: %d categories unreachable from any root", ErrCycleDetected, len(t.byID)-len(visited))
	}
	return nil
}

// DisplayName indents name by level markers for flat dropdowns. Roots are
// returned as the bare name, without a marker or a leading space.
func DisplayName(name string, level int) string {
	if level == 0 {
		return name
	}
	return strings.Repeat(IndentMarker, level) + " " + name
}
